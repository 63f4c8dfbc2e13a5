package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"recipe-box/internal/domain"
)

func TestAccountService_RegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name, email, password string
	}{
		{"", "a@x.com", "pw"},
		{"   ", "a@x.com", "pw"},
		{"Alice", "", "pw"},
		{"Alice", "not-an-email", "pw"},
		{"Alice", "a@x.com", ""},
		{"Alice", "a@x.com", string(make([]byte, 73))},
	}
	for _, tc := range tests {
		_, err := f.app.Accounts.Register(ctx, tc.name, tc.email, tc.password)
		assert.ErrorIs(t, err, domain.ErrValidation, "register(%q, %q)", tc.name, tc.email)
	}
}

func TestAccountService_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.app.Accounts.Register(ctx, "Alice", "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = f.app.Accounts.Register(ctx, "Bob", "a@x.com", "pw2")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	_, err = f.app.Accounts.Register(ctx, "Bob", "  A@X.COM ", "pw2")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestAccountService_PasswordRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.app.Accounts.Register(ctx, "Alice", "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Empty(t, registered.PasswordHash)

	stored, err := f.accounts.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw1")))

	account, err := f.app.Accounts.Authenticate(ctx, "A@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, account.ID)
	assert.Empty(t, account.PasswordHash)

	for _, pw := range []string{"wrong", "pw1 ", "PW1", ""} {
		_, err = f.app.Accounts.Authenticate(ctx, "a@x.com", pw)
		assert.ErrorIs(t, err, domain.ErrAuthentication, "password %q", pw)
	}

	_, err = f.app.Accounts.Authenticate(ctx, "nobody@x.com", "pw1")
	assert.ErrorIs(t, err, domain.ErrAuthentication)
}

func TestAccountService_SaltedHashes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.app.Accounts.Register(ctx, "Alice", "a@x.com", "same")
	require.NoError(t, err)
	_, err = f.app.Accounts.Register(ctx, "Bob", "b@x.com", "same")
	require.NoError(t, err)

	a, err := f.accounts.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	b, err := f.accounts.GetByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, a.PasswordHash, b.PasswordHash)
}

func TestAccountService_GetByIDAndHasAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	has, err := f.app.Accounts.HasAccounts(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	id := f.register(t, "Alice", "a@x.com")

	account, err := f.app.Accounts.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", account.Name)
	assert.Empty(t, account.PasswordHash)

	_, err = f.app.Accounts.GetByID(ctx, id+100)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	has, err = f.app.Accounts.HasAccounts(ctx)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestCheckPasswordConfirmation(t *testing.T) {
	assert.NoError(t, CheckPasswordConfirmation("pw1", "pw1"))
	assert.ErrorIs(t, CheckPasswordConfirmation("pw1", "pw2"), domain.ErrValidation)
	assert.ErrorIs(t, CheckPasswordConfirmation("pw1", ""), domain.ErrValidation)
}
