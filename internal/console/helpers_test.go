package console

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"recipe-box/internal/repository/sqlite"
	"recipe-box/internal/service"
)

func newTestApp(t *testing.T) *service.App {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "recipes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(context.Background(), db, nil))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return service.NewApp(sqlite.NewAccountRepository(db), sqlite.NewRecipeRepository(db), sqlite.NewSessionRepository(db), service.Options{
		BcryptCost: bcrypt.MinCost,
		Session: service.SessionConfig{
			Secret:      []byte("console-test"),
			TTL:         time.Hour,
			RememberTTL: 24 * time.Hour,
		},
		Logger: logger,
	})
}

// run feeds lines to a fresh console and returns everything it printed.
func run(t *testing.T, app *service.App, lines ...string) string {
	t.Helper()

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, New(app, in, &out).Run(context.Background()))
	return out.String()
}
