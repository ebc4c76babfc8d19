// Package entity はauthフィーチャーのドメインエンティティを定義します。
package entity

import "time"

// Settings はユーザーごとの表示・通知設定です。
type Settings struct {
	DarkMode           bool
	Language           string
	EmailNotifications bool
	PushNotifications  bool
}

// DefaultSettings は新規登録ユーザーに適用される設定を返します。
func DefaultSettings() Settings {
	return Settings{EmailNotifications: true}
}

// User は登録済みアカウントを表します。
type User struct {
	// ID はCreate時にストアが割り当てます。
	ID string

	Name string

	// Email は空白除去・小文字化済みで、全ユーザーで一意です。
	Email string

	// PasswordHash はbcryptのハッシュです。平文は保存しません。
	PasswordHash string

	// Photo はアバターの参照（data URIまたはURL）です。未設定時は空です。
	Photo string

	// ResetTokenHash と ResetExpires は両方設定されるか両方空です。
	// トークンはSHA-256のダイジェストのみ保存します。
	ResetTokenHash string
	ResetExpires   *time.Time

	Settings Settings

	CreatedAt time.Time
	UpdatedAt time.Time
}

