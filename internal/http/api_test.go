package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"recipe-box/internal/repository/sqlite"
	"recipe-box/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "recipes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(context.Background(), db, nil))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app := service.NewApp(sqlite.NewAccountRepository(db), sqlite.NewRecipeRepository(db), sqlite.NewSessionRepository(db), service.Options{
		BcryptCost: bcrypt.MinCost,
		Session: service.SessionConfig{
			Secret:      []byte("test-secret"),
			TTL:         time.Hour,
			RememberTTL: 48 * time.Hour,
		},
		Logger: logger,
	})

	router := gin.New()
	NewHandler(app, CookieConfig{}).RegisterRoutes(router)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func registerAndLogin(t *testing.T, router *gin.Engine, name, email string) string {
	t.Helper()

	rec := do(t, router, http.MethodPost, "/api/register", "", gin.H{
		"name": name, "email": email, "password": "pw1", "confirm_password": "pw1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/login", "", gin.H{"email": email, "password": "pw1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[LoginResponse](t, rec).Token
}

func TestRegister(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/register", "", gin.H{
		"name": "Alice", "email": "a@x.com", "password": "pw1", "confirm_password": "pw1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	account := decode[AccountResponse](t, rec)
	assert.Equal(t, "Alice", account.Name)
	assert.NotContains(t, rec.Body.String(), "pw1")

	rec = do(t, router, http.MethodPost, "/api/register", "", gin.H{
		"name": "Bob", "email": "a@x.com", "password": "pw2", "confirm_password": "pw2",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/register", "", gin.H{
		"name": "Carol", "email": "c@x.com", "password": "pw1", "confirm_password": "pw2",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "passwords do not match")

	rec = do(t, router, http.MethodPost, "/api/register", "", gin.H{
		"name": "", "email": "d@x.com", "password": "pw1", "confirm_password": "pw1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")
}

func TestLoginAndLogout(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "Alice", "a@x.com")

	rec := do(t, router, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", decode[AccountResponse](t, rec).Email)

	rec = do(t, router, http.MethodPost, "/api/login", token, gin.H{"email": "a@x.com", "password": "pw1"})
	assert.Equal(t, http.StatusConflict, rec.Code, "already authenticated")

	rec = do(t, router, http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// logging out again is harmless
	rec = do(t, router, http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLoginFailures(t *testing.T) {
	router := newTestRouter(t)
	registerAndLogin(t, router, "Alice", "a@x.com")

	rec := do(t, router, http.MethodPost, "/api/login", "", gin.H{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/login", "", gin.H{"email": "nobody@x.com", "password": "pw1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, rec.Body.String(), do(t, router, http.MethodPost, "/api/login", "", gin.H{"email": "a@x.com", "password": "bad"}).Body.String())
}

func TestLoginCookie(t *testing.T) {
	router := newTestRouter(t)
	registerAndLogin(t, router, "Alice", "a@x.com")

	rec := do(t, router, http.MethodPost, "/api/login", "", gin.H{"email": "a@x.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Zero(t, cookies[0].MaxAge, "session cookie without remember")

	rec = do(t, router, http.MethodPost, "/api/login", "", gin.H{"email": "a@x.com", "password": "pw1", "remember": true})
	require.Equal(t, http.StatusOK, rec.Code)
	remembered := rec.Result().Cookies()[0]
	assert.Greater(t, remembered.MaxAge, int(time.Hour.Seconds()))

	// the cookie alone authenticates
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(remembered)
	out := httptest.NewRecorder()
	router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusOK, out.Code)
}

func TestRecipesRequireSession(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/recipes", "/api/recipes/1", "/api/me"} {
		rec := do(t, router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)

		rec = do(t, router, http.MethodGet, path, "forged", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRecipeCRUD(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "Alice", "a@x.com")

	rec := do(t, router, http.MethodPost, "/api/recipes", token, gin.H{"name": "Soup", "ingredients": "Water,Salt", "instructions": "Boil"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	soup := decode[RecipeResponse](t, rec)
	assert.Equal(t, soup.CreatedAt, soup.UpdatedAt)

	rec = do(t, router, http.MethodPost, "/api/recipes", token, gin.H{"name": "Salad", "ingredients": "", "instructions": "Toss"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/recipes", token, gin.H{"name": "Bread", "ingredients": "Flour", "instructions": "Bake"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/recipes", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]RecipeResponse](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "Bread", list[0].Name)

	rec = do(t, router, http.MethodPatch, "/api/recipes/"+itoa(soup.ID), token, gin.H{"name": "Broth"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	broth := decode[RecipeResponse](t, rec)
	assert.Equal(t, "Broth", broth.Name)
	assert.Equal(t, "Water,Salt", broth.Ingredients)
	assert.NotEqual(t, soup.UpdatedAt, broth.UpdatedAt)

	rec = do(t, router, http.MethodGet, "/api/recipes", token, nil)
	assert.Equal(t, "Broth", decode[[]RecipeResponse](t, rec)[0].Name)

	rec = do(t, router, http.MethodGet, "/api/recipes/"+itoa(soup.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/recipes/"+itoa(soup.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/recipes/"+itoa(soup.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/recipes/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmptyListIsArray(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "Alice", "a@x.com")

	rec := do(t, router, http.MethodGet, "/api/recipes", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestForeignRecipeLooksMissing(t *testing.T) {
	router := newTestRouter(t)
	alice := registerAndLogin(t, router, "Alice", "a@x.com")
	bob := registerAndLogin(t, router, "Bob", "b@x.com")

	rec := do(t, router, http.MethodPost, "/api/recipes", alice, gin.H{"name": "Soup", "ingredients": "Water", "instructions": "Boil"})
	require.Equal(t, http.StatusCreated, rec.Code)
	soup := decode[RecipeResponse](t, rec)

	missing := do(t, router, http.MethodGet, "/api/recipes/999", bob, nil)
	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		rec = do(t, router, method, "/api/recipes/"+itoa(soup.ID), bob, gin.H{"name": "Stolen"})
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
		assert.Equal(t, missing.Body.String(), rec.Body.String(), method)
		assert.NotContains(t, rec.Body.String(), "Soup")
	}

	rec = do(t, router, http.MethodGet, "/api/recipes/"+itoa(soup.ID), alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Soup", decode[RecipeResponse](t, rec).Name)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
