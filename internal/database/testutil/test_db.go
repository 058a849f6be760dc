package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/eats-api/internal/database"
)

// NewTestDB returns an in-memory SQLite database with the schema applied
func NewTestDB(t *testing.T) *bun.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)

	require.NoError(t, database.CreateSchema(ctx, db))

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}
