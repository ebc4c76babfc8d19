package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"passvault/internal/feature/auth/domain/entity"
	"passvault/internal/platform/storage"
)

// mockUserRepository is a mock implementation of UserRepository.
type mockUserRepository struct {
	CreateFunc            func(ctx context.Context, user *entity.User) error
	FindByEmailFunc       func(ctx context.Context, email string) (*entity.User, error)
	FindByIDFunc          func(ctx context.Context, id string) (*entity.User, error)
	ExistsFunc            func(ctx context.Context, id string) (bool, error)
	UpdateFunc            func(ctx context.Context, id string, patch UserPatch) (*entity.User, error)
	SetResetTokenFunc     func(ctx context.Context, id, tokenHash string, expires time.Time) error
	ConsumeResetTokenFunc func(ctx context.Context, tokenHash string, now time.Time, passwordHash string) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	return false, nil
}

func (m *mockUserRepository) Update(ctx context.Context, id string, patch UserPatch) (*entity.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, patch)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	if m.SetResetTokenFunc != nil {
		return m.SetResetTokenFunc(ctx, id, tokenHash, expires)
	}
	return nil
}

func (m *mockUserRepository) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) error {
	if m.ConsumeResetTokenFunc != nil {
		return m.ConsumeResetTokenFunc(ctx, tokenHash, now, passwordHash)
	}
	return ErrInvalidResetToken
}

// fakeHasher is a reversible PasswordHasher so tests stay fast.
type fakeHasher struct {
	err error
}

func (f fakeHasher) Hash(plaintext string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hashed:" + plaintext, nil
}

func (f fakeHasher) Verify(plaintext, digest string) bool {
	return strings.HasPrefix(digest, "hashed:") && digest == "hashed:"+plaintext
}

// mockTokenIssuer is a mock implementation of TokenIssuer.
type mockTokenIssuer struct {
	GenerateTokenFunc func(userID string) (string, error)
}

func (m *mockTokenIssuer) GenerateToken(userID string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID)
	}
	return "token-for-" + userID, nil
}

// mockAvatarStore is a mock implementation of AvatarStore.
type mockAvatarStore struct {
	SaveFunc func(ctx context.Context, ownerID string, img storage.Image) (string, error)
	calls    int
}

func (m *mockAvatarStore) Save(ctx context.Context, ownerID string, img storage.Image) (string, error) {
	m.calls++
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, ownerID, img)
	}
	return "ref://" + ownerID + img.Ext, nil
}

// mockResetMailer is a mock implementation of ResetMailer.
type mockResetMailer struct {
	SendPasswordResetFunc func(ctx context.Context, to, resetURL string) error
	sent                  []string
}

func (m *mockResetMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	m.sent = append(m.sent, resetURL)
	if m.SendPasswordResetFunc != nil {
		return m.SendPasswordResetFunc(ctx, to, resetURL)
	}
	return nil
}

var errDB = errors.New("database error")
