package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"recipe-box/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "data", "recipes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db, nil))
	return db
}

func createAccount(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()

	id, err := NewAccountRepository(db).Create(context.Background(), &domain.Account{
		Name:         "Test",
		Email:        email,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return id
}
