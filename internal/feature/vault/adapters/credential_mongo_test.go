package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"passvault/internal/feature/vault/usecase"
	"passvault/internal/platform/mongo/mongotest"
)

func TestCredentialMongo_OwnerScoping(t *testing.T) {
	repo := NewCredentialMongo(mongotest.NewDatabase(t))
	ctx := context.Background()

	alice := bson.NewObjectID().Hex()
	bob := bson.NewObjectID().Hex()

	a := create(t, repo, alice, "GitHub", "dev")
	create(t, repo, alice, "Bank", "finance")
	b := create(t, repo, bob, "Mail", "")

	list, err := repo.ListByOwner(ctx, alice, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bank", list[0].Service)

	list, err = repo.ListByOwner(ctx, alice, "dev")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	_, err = repo.UpdateOwned(ctx, b.ID, alice, usecase.CredentialPatch{Secret: strPtr("stolen")})
	assert.ErrorIs(t, err, usecase.ErrCredentialNotFound)
	assert.ErrorIs(t, repo.DeleteOwned(ctx, b.ID, alice), usecase.ErrCredentialNotFound)

	list, err = repo.ListByOwner(ctx, bob, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "pw", list[0].Secret)

	got, err := repo.UpdateOwned(ctx, a.ID, alice, usecase.CredentialPatch{Secret: strPtr("new"), Category: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Secret)
	assert.Empty(t, got.Category)

	require.NoError(t, repo.DeleteOwned(ctx, a.ID, alice))
	assert.ErrorIs(t, repo.DeleteOwned(ctx, "not-hex", alice), usecase.ErrCredentialNotFound)
}
