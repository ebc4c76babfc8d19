// Package dto はvaultフィーチャーのHTTPトランスポート層で使用するデータ転送オブジェクトを定義します。
package dto

import (
	"time"

	"passvault/internal/feature/vault/domain/entity"
)

// CreateCredentialReq は POST /passwords のリクエストボディを表します。
type CreateCredentialReq struct {
	Service  string `json:"service" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Category string `json:"category"`
}

// UpdateCredentialReq は PUT /passwords/:id のリクエストボディを表します。
// 省略されたフィールドは変更されません。
type UpdateCredentialReq struct {
	Service  *string `json:"service"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Category *string `json:"category"`
}

// CredentialRes は保存済み認証情報のJSON表現です。
type CredentialRes struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Service   string    `json:"service"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Category  *string   `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CredentialEnvelope は作成・更新時にメッセージとレコードをまとめて返します。
type CredentialEnvelope struct {
	Message  string        `json:"message"`
	Password CredentialRes `json:"password"`
}

// NewCredentialRes はcを変換します。空のcategoryはnullになります。
func NewCredentialRes(c *entity.Credential) CredentialRes {
	res := CredentialRes{
		ID:        c.ID,
		UserID:    c.UserID,
		Service:   c.Service,
		Username:  c.Username,
		Password:  c.Secret,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Category != "" {
		cat := c.Category
		res.Category = &cat
	}
	return res
}

// NewCredentialList はcsを変換します。レスポンスがnullでなく[]になるようnilは返しません。
func NewCredentialList(cs []entity.Credential) []CredentialRes {
	out := make([]CredentialRes, 0, len(cs))
	for i := range cs {
		out = append(out, NewCredentialRes(&cs[i]))
	}
	return out
}
