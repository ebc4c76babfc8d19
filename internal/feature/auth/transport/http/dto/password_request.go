package dto

// ChangePasswordReq は PUT /change-password のリクエストボディを表します。
type ChangePasswordReq struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// ForgotPasswordReq は POST /forgot-password のリクエストボディを表します。
type ForgotPasswordReq struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordReq は POST /reset-password/:token のリクエストボディを表します。
type ResetPasswordReq struct {
	Password string `json:"password" binding:"required"`
}
