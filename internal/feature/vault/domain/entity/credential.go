// Package entity はvaultフィーチャーのドメインエンティティを定義します。
package entity

import "time"

// Credential は保存されたサービスのログイン情報です。必ず1人のユーザーに属します。
type Credential struct {
	ID string

	// UserID は所有者です。すべての検索はこれで絞り込みます。
	UserID string

	Service  string
	Username string

	// Secret は保存されたパスワードで、受け取ったまま保持します。
	Secret string

	// Category は任意の自由形式タグです。未設定時は空です。
	Category string

	CreatedAt time.Time
	UpdatedAt time.Time
}
