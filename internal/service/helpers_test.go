package service

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"recipe-box/internal/repository/sqlite"
)

type fixture struct {
	app      *App
	sessions *sessionService
	recipes  *recipeService
	accounts *sqlite.AccountRepository
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "recipes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(context.Background(), db, nil))

	accounts := sqlite.NewAccountRepository(db)
	app := NewApp(accounts, sqlite.NewRecipeRepository(db), sqlite.NewSessionRepository(db), Options{
		BcryptCost: bcrypt.MinCost,
		Session: SessionConfig{
			Secret:      []byte("test-secret"),
			TTL:         time.Hour,
			RememberTTL: 24 * time.Hour,
		},
		Logger: quietLogger(),
	})

	return &fixture{
		app:      app,
		sessions: app.Sessions.(*sessionService),
		recipes:  app.Recipes.(*recipeService),
		accounts: accounts.(*sqlite.AccountRepository),
	}
}

func (f *fixture) register(t *testing.T, name, email string) int64 {
	t.Helper()

	account, err := f.app.Accounts.Register(context.Background(), name, email, "pw-"+name)
	require.NoError(t, err)
	return account.ID
}

func (f *fixture) principal(t *testing.T, accountID int64) Principal {
	t.Helper()

	token, _, err := f.app.Sessions.Login(context.Background(), accountID, false)
	require.NoError(t, err)
	p, err := f.app.Guard.Authenticate(context.Background(), token)
	require.NoError(t, err)
	return p
}

// steppedClock returns a clock that advances by step on every call.
func steppedClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}
