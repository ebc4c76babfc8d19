// Package mongotest provides throwaway databases for Mongo integration tests.
package mongotest

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"

	pvmongo "passvault/internal/platform/mongo"
)

// NewDatabase returns a fresh indexed database on the server named by
// MONGO_TEST_URI and drops it when the test ends. The test is skipped when
// the variable is unset.
func NewDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	client, err := pvmongo.Connect(ctx, uri)
	require.NoError(t, err)

	name := "passvault_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	db := client.Database(name)
	require.NoError(t, pvmongo.EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}
