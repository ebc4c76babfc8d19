// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"passvault/internal/feature/auth/domain/entity"
	"passvault/internal/feature/auth/usecase"
)

// userModel はusersテーブルの行を表します。
type userModel struct {
	ID                 string `gorm:"primaryKey"`
	Name               string
	Email              string
	PasswordHash       string
	Photo              string
	ResetTokenHash     *string
	ResetExpires       *time.Time
	DarkMode           bool
	Language           string
	EmailNotifications bool
	PushNotifications  bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (userModel) TableName() string { return "users" }

func toUserModel(u *entity.User) *userModel {
	m := &userModel{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		PasswordHash:       u.PasswordHash,
		Photo:              u.Photo,
		ResetExpires:       u.ResetExpires,
		DarkMode:           u.Settings.DarkMode,
		Language:           u.Settings.Language,
		EmailNotifications: u.Settings.EmailNotifications,
		PushNotifications:  u.Settings.PushNotifications,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
	if u.ResetTokenHash != "" {
		h := u.ResetTokenHash
		m.ResetTokenHash = &h
	}
	return m
}

func (m *userModel) toEntity() *entity.User {
	u := &entity.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Photo:        m.Photo,
		ResetExpires: m.ResetExpires,
		Settings: entity.Settings{
			DarkMode:           m.DarkMode,
			Language:           m.Language,
			EmailNotifications: m.EmailNotifications,
			PushNotifications:  m.PushNotifications,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.ResetTokenHash != nil {
		u.ResetTokenHash = *m.ResetTokenHash
	}
	return u
}

// userGorm はUserRepositoryのGORM実装で、postgresとsqliteのストアドライバーで使用します。
type userGorm struct {
	db  *gorm.DB
	now func() time.Time
}

// userGorm が UserRepository を実装していることをコンパイル時に検証
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定された接続でuserGormを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db, now: time.Now}
}

// isDuplicateKey はダイアレクタが変換したかどうかに関わらず一意制約違反を判定します。
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create はユーザーを登録します。メールアドレス重複時はusecase.ErrEmailAlreadyExistsを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	now := r.now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(toUserModel(u)).Error; err != nil {
		u.ID = ""
		if isDuplicateKey(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userGorm) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return m.toEntity(), nil
}

// FindByEmail はメールアドレスでユーザーを検索します。見つからない場合usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByID はIDでユーザーを検索します。見つからない場合usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// Exists は UserRepository を実装します。
func (r *userGorm) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).Limit(1).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return n > 0, nil
}

// Update はpatchのnilでないフィールドを書き込み、同じトランザクション内で行を読み直します。
func (r *userGorm) Update(ctx context.Context, id string, patch usecase.UserPatch) (*entity.User, error) {
	cols := map[string]any{"updated_at": r.now().UTC()}
	if patch.Name != nil {
		cols["name"] = *patch.Name
	}
	if patch.Email != nil {
		cols["email"] = *patch.Email
	}
	if patch.PasswordHash != nil {
		cols["password_hash"] = *patch.PasswordHash
	}
	if patch.Photo != nil {
		cols["photo"] = *patch.Photo
	}
	if s := patch.Settings; s != nil {
		cols["dark_mode"] = s.DarkMode
		cols["language"] = s.Language
		cols["email_notifications"] = s.EmailNotifications
		cols["push_notifications"] = s.PushNotifications
	}

	var m userModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userModel{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrUserNotFound
		}
		return tx.Where("id = ?", id).First(&m).Error
	})
	switch {
	case err == nil:
		return m.toEntity(), nil
	case errors.Is(err, usecase.ErrUserNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return nil, usecase.ErrUserNotFound
	case isDuplicateKey(err):
		return nil, usecase.ErrEmailAlreadyExists
	default:
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
}

// SetResetToken は UserRepository を実装します。
func (r *userGorm) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	res := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).Updates(map[string]any{
		"reset_token_hash": tokenHash,
		"reset_expires":    expires.UTC(),
		"updated_at":       r.now().UTC(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to store reset token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// ConsumeResetToken はパスワードを保存するUPDATEのWHERE句でダイジェストと有効期限を照合するため、
// 期限切れや使用済みのトークンが通ることはありません。
func (r *userGorm) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&userModel{}).
		Where("reset_token_hash = ? AND reset_expires > ?", tokenHash, now.UTC()).
		Updates(map[string]any{
			"password_hash":    passwordHash,
			"reset_token_hash": nil,
			"reset_expires":    nil,
			"updated_at":       r.now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to reset password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return usecase.ErrInvalidResetToken
	}
	return nil
}
