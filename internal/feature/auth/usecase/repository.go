package usecase

import (
	"context"
	"time"

	"passvault/internal/feature/auth/domain/entity"
)

// UserPatch はUpdateで変更可能なフィールドです。nilのフィールドは変更しません。
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Photo        *string
	Settings     *entity.Settings
}

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを永続化し、IDとタイムスタンプを設定します。
	// メールアドレスが使用中の場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// Exists は指定されたIDのユーザーが存在するかを返します。
	Exists(ctx context.Context, id string) (bool, error)

	// Update はpatchを適用し、保存後のユーザーを返します。
	// ErrUserNotFoundまたはErrEmailAlreadyExistsを返すことがあります。
	Update(ctx context.Context, id string, patch UserPatch) (*entity.User, error)

	// SetResetToken はリセットトークンのダイジェストと有効期限を保存します。
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error

	// ConsumeResetToken はダイジェストが一致し有効期限がnowより後のユーザーに対して、
	// passwordHashの設定とリセット項目の消去を1回の条件付き書き込みで行います。
	// 一致するユーザーがない場合、ErrInvalidResetTokenを返します。
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) error
}

// PasswordHasher はパスワードのハッシュ化と検証を行います。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer はJWTトークン生成のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenIssuer interface {
	GenerateToken(userID string) (string, error)
}
