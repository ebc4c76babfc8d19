package usecase

import (
	"context"

	"passvault/internal/feature/vault/domain/entity"
)

// CredentialPatch はUpdateOwnedで変更可能なフィールドです。nilのフィールドは変更しません。
type CredentialPatch struct {
	Service  *string
	Username *string
	Secret   *string
	Category *string
}

// IsEmpty はpatchが何も変更しないかを返します。
func (p CredentialPatch) IsEmpty() bool {
	return p == CredentialPatch{}
}

// CredentialRepository は認証情報の永続化層を抽象化します。
// すべてのメソッドは所有者を受け取り、レコードIDと同じクエリで適用します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type CredentialRepository interface {
	// Create はcを永続化し、IDとタイムスタンプを設定します。
	Create(ctx context.Context, c *entity.Credential) error

	// ListByOwner は所有者のレコードを新しい順に返します。
	// categoryが空でない場合は絞り込みます。
	ListByOwner(ctx context.Context, ownerID, category string) ([]entity.Credential, error)

	// UpdateOwned はidとownerIDの両方に一致するレコードにpatchを適用します。
	// 一致するレコードがない場合、ErrCredentialNotFoundを返します。
	UpdateOwned(ctx context.Context, id, ownerID string, patch CredentialPatch) (*entity.Credential, error)

	// DeleteOwned はidとownerIDの両方に一致するレコードを削除します。
	// 一致するレコードがない場合、ErrCredentialNotFoundを返します。
	DeleteOwned(ctx context.Context, id, ownerID string) error
}
