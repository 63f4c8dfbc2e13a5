package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-box/internal/domain"
)

func TestAccountRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := &domain.Account{Name: "Alice", Email: "a@x.com", PasswordHash: "hash"}
	id, err := repo.Create(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, id, account.ID)
	assert.False(t, account.CreatedAt.IsZero())

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", byEmail.Name)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)
	assert.True(t, byID.CreatedAt.Equal(account.CreatedAt))
}

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Account{Name: "Alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.Account{Name: "Bob", Email: "A@X.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestAccountRepository_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)

	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountRepository_Count(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	createAccount(t, db, "a@x.com")
	createAccount(t, db, "b@x.com")

	n, err = repo.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
