package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"recipe-box/internal/domain"
	"recipe-box/internal/service"
)

// DefaultCookieName carries the session token for browser clients.
const DefaultCookieName = "recipe_session"

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	app    *service.App
	logger logrus.FieldLogger
	cookie CookieConfig
}

func NewHandler(app *service.App, cookie CookieConfig) *Handler {
	if cookie.Name == "" {
		cookie.Name = DefaultCookieName
	}
	return &Handler{
		app:    app,
		logger: app.Logger.WithField("component", "http"),
		cookie: cookie,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		api.POST("/register", h.register)
		api.POST("/login", h.login)
		api.POST("/logout", h.logout)

		authed := api.Group("", h.requireSession())
		authed.GET("/me", h.me)
		authed.GET("/recipes", h.listRecipes)
		authed.POST("/recipes", h.createRecipe)
		authed.GET("/recipes/:id", h.getRecipe)
		authed.PATCH("/recipes/:id", h.updateRecipe)
		authed.DELETE("/recipes/:id", h.deleteRecipe)
	}
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type recipeRequest struct {
	Name         string `json:"name"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
}

type recipePatchRequest struct {
	Name         *string `json:"name"`
	Ingredients  *string `json:"ingredients"`
	Instructions *string `json:"instructions"`
}

func (h *Handler) register(c *gin.Context) {
	if h.alreadyAuthenticated(c) {
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	if err := service.CheckPasswordConfirmation(req.Password, req.ConfirmPassword); err != nil {
		h.writeError(c, err)
		return
	}

	account, err := h.app.Accounts.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, accountToResponse(*account))
}

func (h *Handler) login(c *gin.Context) {
	if h.alreadyAuthenticated(c) {
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	ctx := c.Request.Context()
	account, err := h.app.Accounts.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	token, session, err := h.app.Sessions.Login(ctx, account.ID, req.Remember)
	if err != nil {
		h.writeError(c, err)
		return
	}

	// a remembered session outlives the browser; otherwise it is a session cookie
	maxAge := 0
	if session.Remember {
		maxAge = int(time.Until(session.ExpiresAt).Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, maxAge, "/", "", h.cookie.Secure, true)

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		Account:   accountToResponse(*account),
	})
}

func (h *Handler) logout(c *gin.Context) {
	if token := tokenFromRequest(c, h.cookie.Name); token != "" {
		if err := h.app.Sessions.Logout(c.Request.Context(), token); err != nil {
			h.writeError(c, err)
			return
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	account, err := h.app.Accounts.GetByID(c.Request.Context(), principalFrom(c).AccountID())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountToResponse(*account))
}

func (h *Handler) listRecipes(c *gin.Context) {
	seq, err := h.app.Guard.List(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]RecipeResponse, 0)
	for recipe, err := range seq {
		if err != nil {
			h.writeError(c, err)
			return
		}
		resp = append(resp, recipeToResponse(recipe))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createRecipe(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	recipe, err := h.app.Guard.Add(c.Request.Context(), principalFrom(c), req.Name, req.Ingredients, req.Instructions)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipeToResponse(*recipe))
}

func (h *Handler) getRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.app.Guard.View(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipeToResponse(*recipe))
}

func (h *Handler) updateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	var req recipePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	recipe, err := h.app.Guard.Edit(c.Request.Context(), principalFrom(c), id, domain.RecipePatch{
		Name:         req.Name,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipeToResponse(*recipe))
}

func (h *Handler) deleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.app.Guard.Delete(c.Request.Context(), principalFrom(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// alreadyAuthenticated rejects register/login for callers holding a live session.
func (h *Handler) alreadyAuthenticated(c *gin.Context) bool {
	token := tokenFromRequest(c, h.cookie.Name)
	if token == "" {
		return false
	}
	_, err := h.app.Guard.Authenticate(c.Request.Context(), token)
	if errors.Is(err, domain.ErrUnauthenticated) {
		return false
	}
	if err != nil {
		h.writeError(c, err)
		return true
	}
	c.JSON(http.StatusConflict, gin.H{"error": "already authenticated"})
	return true
}

func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return 0, false
	}
	return id, true
}

type AccountResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt string          `json:"expires_at"`
	Account   AccountResponse `json:"account"`
}

type RecipeResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func accountToResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		CreatedAt: account.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func recipeToResponse(recipe domain.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:           recipe.ID,
		Name:         recipe.Name,
		Ingredients:  recipe.Ingredients,
		Instructions: recipe.Instructions,
		CreatedAt:    recipe.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    recipe.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
