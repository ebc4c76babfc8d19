package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"passvault/internal/api"
	"passvault/internal/feature/auth/domain/entity"
	"passvault/internal/feature/auth/transport/http/dto"
	"passvault/internal/feature/auth/usecase"
	jwtmw "passvault/internal/platform/jwt"
)

// avatarField はプロフィール画像を運ぶmultipartフィールド名です。
const avatarField = "photo"

// ProfileUsecase は認証済みユーザー自身の操作を定義します。
type ProfileUsecase interface {
	GetSelf(ctx context.Context, id string) (*entity.User, error)
	UpdateSelf(ctx context.Context, id string, in usecase.ProfileUpdate) (*entity.User, error)
	ChangePassword(ctx context.Context, id, current, next string) error
	UpdateAvatar(ctx context.Context, id string, data []byte) (*entity.User, error)
	UpdateSettings(ctx context.Context, id string, in usecase.SettingsUpdate) (*entity.User, error)
}

// ProfileHandler は認証が必要なプロフィール系のHTTPリクエストを処理します。
type ProfileHandler struct {
	profile        ProfileUsecase
	maxAvatarBytes int64
}

// NewProfileHandler はProfileHandlerの新しいインスタンスを生成します。
// usecaseが上限超過を判定できるよう、アップロードはmaxAvatarBytes+1バイトまで読み込みます。
func NewProfileHandler(profile ProfileUsecase, maxAvatarBytes int64) *ProfileHandler {
	return &ProfileHandler{profile: profile, maxAvatarBytes: maxAvatarBytes}
}

// callerID は認証ミドルウェアが設定したユーザーIDを取得します。
// IDがない場合、ルートが認証ミドルウェアなしで登録されています。
func callerID(c *gin.Context) (string, bool) {
	id, ok := jwtmw.UserID(c)
	if !ok {
		slog.Error("handler reached without authenticated user", "path", c.FullPath())
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
	}
	return id, ok
}

// Me は GET /me を処理します。
func (h *ProfileHandler) Me(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		return
	}
	user, err := h.profile.GetSelf(c.Request.Context(), id)
	if err != nil {
		writeError(c, "get profile failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// UpdateMe は PUT /me を処理します。
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.UpdateMeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update profile validation failed", "error", err, "user_id", id)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.profile.UpdateSelf(c.Request.Context(), id, usecase.ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		writeError(c, "update profile failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// ChangePassword は PUT /change-password を処理します。
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("change password validation failed", "error", err, "user_id", id)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "currentPassword and newPassword are required"})
		return
	}

	if err := h.profile.ChangePassword(c.Request.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(c, "change password failed", err)
		return
	}
	slog.Info("password changed", "user_id", id)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "password updated"})
}

// UpdatePhoto は multipartの"photo"フィールドを持つ PUT /me/photo を処理します。
func (h *ProfileHandler) UpdatePhoto(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		return
	}

	data, err := h.readUpload(c)
	if err != nil {
		writeError(c, "update photo failed", err)
		return
	}

	user, err := h.profile.UpdateAvatar(c.Request.Context(), id, data)
	if err != nil {
		writeError(c, "update photo failed", err)
		return
	}
	slog.Info("avatar updated", "user_id", id, "bytes", len(data))
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

func (h *ProfileHandler) readUpload(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile(avatarField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, usecase.ErrNoFile
		}
		return nil, fmt.Errorf("%w: %v", usecase.ErrNoFile, err)
	}
	if h.maxAvatarBytes > 0 && fh.Size > h.maxAvatarBytes {
		return nil, usecase.ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxAvatarBytes > 0 {
		r = io.LimitReader(f, h.maxAvatarBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

// UpdateSettings は POST /update-settings を処理します。
func (h *ProfileHandler) UpdateSettings(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.UpdateSettingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update settings validation failed", "error", err, "user_id", id)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	_, err := h.profile.UpdateSettings(c.Request.Context(), id, usecase.SettingsUpdate{
		Username:           req.Username,
		Email:              req.Email,
		CurrentPassword:    req.CurrentPassword,
		NewPassword:        req.NewPassword,
		DarkMode:           req.DarkMode,
		Language:           req.Language,
		EmailNotifications: req.EmailNotifications,
		PushNotifications:  req.PushNotifications,
	})
	if err != nil {
		writeError(c, "update settings failed", err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "settings updated"})
}
