package dto

// UpdateMeReq は PUT /me のリクエストボディを表します。省略されたフィールドは変更されません。
type UpdateMeReq struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// UpdateSettingsReq は POST /update-settings のリクエストボディを表します。
type UpdateSettingsReq struct {
	Username        *string `json:"username"`
	Email           *string `json:"email" binding:"omitempty,email"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`

	DarkMode           *bool   `json:"darkMode"`
	Language           *string `json:"language"`
	EmailNotifications *bool   `json:"emailNotifications"`
	PushNotifications  *bool   `json:"pushNotifications"`
}
