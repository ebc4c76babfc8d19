package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passvault/internal/feature/auth/usecase"
	"passvault/internal/platform/mongo/mongotest"
)

func TestUserMongo_CreateAndFind(t *testing.T) {
	repo := NewUserMongo(mongotest.NewDatabase(t))
	ctx := context.Background()

	user := newTestUser("mongo@example.com")
	require.NoError(t, repo.Create(ctx, user))
	assert.Len(t, user.ID, 24)

	got, err := repo.FindByEmail(ctx, "mongo@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hashed_password", got.PasswordHash)

	ok, err := repo.Exists(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, "not-an-object-id")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.FindByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)

	err = repo.Create(ctx, newTestUser("mongo@example.com"))
	assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
}

func TestUserMongo_Update(t *testing.T) {
	repo := NewUserMongo(mongotest.NewDatabase(t))
	ctx := context.Background()

	a := newTestUser("a@example.com")
	b := newTestUser("b@example.com")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	name := "Renamed"
	got, err := repo.Update(ctx, a.ID, usecase.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "a@example.com", got.Email)

	email := "a@example.com"
	_, err = repo.Update(ctx, b.ID, usecase.UserPatch{Email: &email})
	assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
}

func TestUserMongo_ResetToken(t *testing.T) {
	repo := NewUserMongo(mongotest.NewDatabase(t))
	ctx := context.Background()
	now := time.Now()

	user := newTestUser("reset@example.com")
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.SetResetToken(ctx, user.ID, "digest", now.Add(time.Hour)))

	err := repo.ConsumeResetToken(ctx, "digest", now.Add(2*time.Hour), "late_hash")
	assert.ErrorIs(t, err, usecase.ErrInvalidResetToken)

	require.NoError(t, repo.ConsumeResetToken(ctx, "digest", now, "new_hash"))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new_hash", got.PasswordHash)
	assert.Empty(t, got.ResetTokenHash)
	assert.Nil(t, got.ResetExpires)

	err = repo.ConsumeResetToken(ctx, "digest", now, "again")
	assert.ErrorIs(t, err, usecase.ErrInvalidResetToken)
}
