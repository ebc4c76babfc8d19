// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"passvault/internal/api"
	"passvault/internal/feature/auth/domain/entity"
	"passvault/internal/feature/auth/transport/http/dto"
	"passvault/internal/feature/auth/usecase"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録し、JWTトークンを返します。
	Register(ctx context.Context, name, email, password string) (string, *entity.User, error)
	// Login はユーザーを認証し、成功時にJWTトークンを返します。
	Login(ctx context.Context, email, password string) (string, *entity.User, error)
}

// ResetUsecase はパスワード再設定のユースケースを定義します。
type ResetUsecase interface {
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthHandler は認証不要のアカウント操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth  AuthUsecase
	reset ResetUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase, reset ResetUsecase) *AuthHandler {
	return &AuthHandler{auth: auth, reset: reset}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - リクエスト不正・パスワード要件違反時は400を返却
// - メールアドレス重複時は409を返却
// - 成功時は201で{token, user}を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	token, user, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(c, "register failed", err)
		return
	}
	slog.Info("user registered", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.AuthRes{Token: token, User: dto.NewUserRes(user)})
}

// Login はログインAPIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - 未登録メールアドレス・パスワード不一致時は区別せず401を返却
// - 成功時は200で{token, user}を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, "login failed", err)
		return
	}
	slog.Info("user login successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.AuthRes{Token: token, User: dto.NewUserRes(user)})
}

// ForgotPassword は POST /forgot-password を処理します。
// メールアドレスがアカウントに紐づくかどうかに関わらず同じレスポンスを返します。
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("forgot password validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "a valid email is required"})
		return
	}

	if err := h.reset.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		writeError(c, "forgot password failed", err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "if the email is registered, a reset link has been sent",
	})
}

// ResetPassword は POST /reset-password/:token を処理します。
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("reset password validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "password is required"})
		return
	}

	if err := h.reset.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		writeError(c, "reset password failed", err)
		return
	}
	slog.Info("password reset completed", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.MessageResponse{Message: "password has been reset"})
}

// statusFor はusecaseのエラーをHTTPステータスコードに変換します。未知のエラーは500です。
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrWrongPassword),
		errors.Is(err, usecase.ErrWeakPassword),
		errors.Is(err, usecase.ErrPasswordTooLong),
		errors.Is(err, usecase.ErrInvalidResetToken),
		errors.Is(err, usecase.ErrNoFile):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, usecase.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// writeError はエラーをログに記録し、対応するステータスで応答します。
// 内部エラーの詳細はクライアントに返しません。
func writeError(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(msg, "error", err, "remote_addr", c.ClientIP())
		c.JSON(status, api.ErrorResponse{Error: "internal server error"})
		return
	}
	slog.Warn(msg, "error", err, "remote_addr", c.ClientIP())
	c.JSON(status, api.ErrorResponse{Error: err.Error()})
}
