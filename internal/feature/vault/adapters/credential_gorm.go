// Package adapters はvaultフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"passvault/internal/feature/vault/domain/entity"
	"passvault/internal/feature/vault/usecase"
)

// credentialModel はpasswordsテーブルの行を表します。
type credentialModel struct {
	ID        string `gorm:"primaryKey"`
	UserID    string
	Service   string
	Username  string
	Password  string
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (credentialModel) TableName() string { return "passwords" }

func (m *credentialModel) toEntity() entity.Credential {
	return entity.Credential{
		ID:        m.ID,
		UserID:    m.UserID,
		Service:   m.Service,
		Username:  m.Username,
		Secret:    m.Password,
		Category:  m.Category,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// credentialGorm はCredentialRepositoryのGORM実装です。
type credentialGorm struct {
	db  *gorm.DB
	now func() time.Time
}

// credentialGorm が CredentialRepository を実装していることをコンパイル時に検証
var _ usecase.CredentialRepository = (*credentialGorm)(nil)

// NewCredentialGorm は指定された接続でcredentialGormを生成します。
func NewCredentialGorm(db *gorm.DB) *credentialGorm {
	return &credentialGorm{db: db, now: time.Now}
}

// ownedBy はクエリを1人の所有者の1レコードに限定します。
func ownedBy(id, ownerID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ? AND user_id = ?", id, ownerID)
	}
}

// Create は CredentialRepository を実装します。
func (r *credentialGorm) Create(ctx context.Context, c *entity.Credential) error {
	now := r.now().UTC()
	m := credentialModel{
		ID:        uuid.NewString(),
		UserID:    c.UserID,
		Service:   c.Service,
		Username:  c.Username,
		Password:  c.Secret,
		Category:  c.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	c.ID = m.ID
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// ListByOwner は CredentialRepository を実装します。
func (r *credentialGorm) ListByOwner(ctx context.Context, ownerID, category string) ([]entity.Credential, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var rows []credentialModel
	if err := q.Order("created_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}

	out := make([]entity.Credential, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toEntity())
	}
	return out, nil
}

// UpdateOwned はidと所有者を1つのWHERE句に含めてUPDATEを実行し、
// 同じトランザクション内で行を読み直します。
func (r *credentialGorm) UpdateOwned(ctx context.Context, id, ownerID string, patch usecase.CredentialPatch) (*entity.Credential, error) {
	cols := map[string]any{"updated_at": r.now().UTC()}
	if patch.Service != nil {
		cols["service"] = *patch.Service
	}
	if patch.Username != nil {
		cols["username"] = *patch.Username
	}
	if patch.Secret != nil {
		cols["password"] = *patch.Secret
	}
	if patch.Category != nil {
		cols["category"] = *patch.Category
	}

	var m credentialModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&credentialModel{}).Scopes(ownedBy(id, ownerID)).Updates(cols)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrCredentialNotFound
		}
		return tx.Scopes(ownedBy(id, ownerID)).First(&m).Error
	})
	switch {
	case err == nil:
		c := m.toEntity()
		return &c, nil
	case errors.Is(err, usecase.ErrCredentialNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return nil, usecase.ErrCredentialNotFound
	default:
		return nil, fmt.Errorf("failed to update credential: %w", err)
	}
}

// DeleteOwned は CredentialRepository を実装します。
func (r *credentialGorm) DeleteOwned(ctx context.Context, id, ownerID string) error {
	res := r.db.WithContext(ctx).Scopes(ownedBy(id, ownerID)).Delete(&credentialModel{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete credential: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return usecase.ErrCredentialNotFound
	}
	return nil
}
