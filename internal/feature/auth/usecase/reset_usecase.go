package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// resetTokenBytes はhexエンコード前のリセットトークンのバイト数です。
const resetTokenBytes = 20

// ResetMailer はリセットリンクをメールで配送します。
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// resetUsecase はパスワード再設定フローを実装します。
type resetUsecase struct {
	users       UserRepository
	hasher      PasswordHasher
	mailer      ResetMailer
	frontendURL string
	ttl         time.Duration
	now         func() time.Time
}

// NewResetUsecase はresetUsecaseの新しいインスタンスを生成します。
// リンクは "<frontendURL>/reset-password/<token>" の形式で生成されます。
func NewResetUsecase(users UserRepository, hasher PasswordHasher, mailer ResetMailer, frontendURL string, ttl time.Duration) *resetUsecase {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &resetUsecase{
		users:       users,
		hasher:      hasher,
		mailer:      mailer,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		ttl:         ttl,
		now:         time.Now,
	}
}

// HashResetToken はトークンの代わりに保存するダイジェストを返します。
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ForgotPassword はリセットトークンを発行し、リンクをメール送信します。
// アカウントの存在を判別できないよう、未登録のメールアドレスでもnilを返します。
// 検索後の失敗は既存アカウントでのみ起こるため、ログに記録して同じく受理として扱います。
// 新しいリクエストは保留中のトークンを置き換えます。
func (u *resetUsecase) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrInvalidInput
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		slog.Debug("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	if err := u.users.SetResetToken(ctx, user.ID, HashResetToken(token), u.now().Add(u.ttl)); err != nil {
		slog.Error("failed to store reset token", "error", err, "user_id", user.ID)
		return nil
	}

	resetURL := u.frontendURL + "/reset-password/" + token
	if err := u.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		slog.Error("failed to send password reset mail", "error", err, "user_id", user.ID)
		return nil
	}
	slog.Info("password reset issued", "user_id", user.ID)
	return nil
}

// ResetPassword は有効なトークンと引き換えにパスワードを再設定します。
// パスワードを保存する同じ書き込みでトークンを消去するため、トークンは1回しか使えません。
func (u *resetUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidResetToken
	}
	if err := validateNewPassword(newPassword); err != nil {
		return err
	}

	hashed, err := u.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return u.users.ConsumeResetToken(ctx, HashResetToken(token), u.now(), hashed)
}
