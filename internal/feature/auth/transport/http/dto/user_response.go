package dto

import (
	"time"

	"passvault/internal/feature/auth/domain/entity"
)

// SettingsRes はentity.SettingsのJSON表現です。
type SettingsRes struct {
	DarkMode           bool   `json:"darkMode"`
	Language           string `json:"language"`
	EmailNotifications bool   `json:"emailNotifications"`
	PushNotifications  bool   `json:"pushNotifications"`
}

// UserRes はユーザーの公開用表現です。
// パスワードやリセット項目を持たないため、どのエンドポイントからも漏洩しません。
type UserRes struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Photo     string      `json:"photo,omitempty"`
	Settings  SettingsRes `json:"settings"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NewUserRes はuをUserResに変換します。
func NewUserRes(u *entity.User) UserRes {
	return UserRes{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Photo: u.Photo,
		Settings: SettingsRes{
			DarkMode:           u.Settings.DarkMode,
			Language:           u.Settings.Language,
			EmailNotifications: u.Settings.EmailNotifications,
			PushNotifications:  u.Settings.PushNotifications,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
