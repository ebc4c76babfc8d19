package usecase

import (
	"context"
	"errors"
	"strings"

	"passvault/internal/feature/vault/domain/entity"
)

// NewCredential は POST /passwords のフィールドを保持します。
type NewCredential struct {
	Service  string
	Username string
	Secret   string
	Category string
}

// vaultUsecase は認証済みユーザーの認証情報CRUDを実装します。
type vaultUsecase struct {
	repo CredentialRepository
}

// NewVaultUsecase はvaultUsecaseの新しいインスタンスを生成します。
func NewVaultUsecase(repo CredentialRepository) *vaultUsecase {
	return &vaultUsecase{repo: repo}
}

// Create はownerIDが所有するレコードを保存します。
// service・username・categoryは空白を除去し、secretは受け取ったまま保存します。
func (u *vaultUsecase) Create(ctx context.Context, ownerID string, in NewCredential) (*entity.Credential, error) {
	if ownerID == "" {
		return nil, errors.New("owner id is required")
	}
	c := &entity.Credential{
		UserID:   ownerID,
		Service:  strings.TrimSpace(in.Service),
		Username: strings.TrimSpace(in.Username),
		Secret:   in.Secret,
		Category: strings.TrimSpace(in.Category),
	}
	if c.Service == "" || c.Username == "" || c.Secret == "" {
		return nil, ErrInvalidInput
	}
	if err := u.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List は呼び出し元のレコードを返します。categoryで絞り込むこともできます。
func (u *vaultUsecase) List(ctx context.Context, ownerID, category string) ([]entity.Credential, error) {
	if ownerID == "" {
		return nil, errors.New("owner id is required")
	}
	return u.repo.ListByOwner(ctx, ownerID, strings.TrimSpace(category))
}

// Update は呼び出し元が所有するレコードを更新します。
// 他のユーザーのレコードは存在しないレコードと同じく扱います。
func (u *vaultUsecase) Update(ctx context.Context, ownerID, id string, patch CredentialPatch) (*entity.Credential, error) {
	if ownerID == "" || id == "" {
		return nil, ErrCredentialNotFound
	}

	patch.Service = trimRequired(patch.Service)
	patch.Username = trimRequired(patch.Username)
	if patch.Category != nil {
		cat := strings.TrimSpace(*patch.Category)
		patch.Category = &cat
	}
	if (patch.Service != nil && *patch.Service == "") ||
		(patch.Username != nil && *patch.Username == "") ||
		(patch.Secret != nil && *patch.Secret == "") {
		return nil, ErrInvalidInput
	}
	if patch.IsEmpty() {
		return nil, ErrInvalidInput
	}

	return u.repo.UpdateOwned(ctx, id, ownerID, patch)
}

// Delete は呼び出し元が所有するレコードを削除します。
func (u *vaultUsecase) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" || id == "" {
		return ErrCredentialNotFound
	}
	return u.repo.DeleteOwned(ctx, id, ownerID)
}

func trimRequired(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
