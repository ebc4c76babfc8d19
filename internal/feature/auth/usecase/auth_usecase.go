package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"passvault/internal/feature/auth/domain/entity"
)

// minPasswordLength はパスワードの最低文字数を定義します。
const minPasswordLength = 6

// maxPasswordBytes はbcryptが扱える入力の上限です。
const maxPasswordBytes = 72

// dummyHash はユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュです。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, hasher PasswordHasher, tokens TokenIssuer) *authUsecase {
	return &authUsecase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// NormalizeEmail はメールアドレスの前後の空白を除去し、小文字に変換します。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateNewPassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// Register は新規ユーザーを登録し、JWTトークンを返します。
// 重複メールアドレスはストアのユニークインデックスで検出するため、同時登録が両方成功することはありません。
func (u *authUsecase) Register(ctx context.Context, name, email, password string) (string, *entity.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" {
		return "", nil, ErrInvalidInput
	}
	if err := validateNewPassword(password); err != nil {
		return "", nil, err
	}

	hashed, err := u.hasher.Hash(password)
	if err != nil {
		return "", nil, err
	}

	user := &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Settings:     entity.DefaultSettings(),
	}
	if err := u.users.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := u.tokens.GenerateToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, user, nil
}

// Login はユーザーを認証し、成功時にJWTトークンを返します。
// 未登録のメールアドレスと誤ったパスワードはどちらもErrInvalidCredentialsを返します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return "", nil, err
	}

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.PasswordHash
	}

	// タイミング攻撃防止のため、常にパスワードを検証
	match := u.hasher.Verify(password, passwordHash)
	if err != nil || !match {
		return "", nil, ErrInvalidCredentials
	}

	token, err := u.tokens.GenerateToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, user, nil
}

// UserExists は認証ミドルウェアがリクエストごとにアカウントを確認するために使います。
func (u *authUsecase) UserExists(ctx context.Context, id string) (bool, error) {
	return u.users.Exists(ctx, id)
}
