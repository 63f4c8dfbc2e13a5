package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"recipe-box/internal/domain"
	"recipe-box/internal/service"
)

const principalKey = "recipe-box.principal"

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		entry := logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request")
			return
		}
		entry.Debug("request")
	}
}

// requireSession resolves the caller before any handler touches the stores.
func (h *Handler) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := h.app.Guard.Authenticate(c.Request.Context(), tokenFromRequest(c, h.cookie.Name))
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

func principalFrom(c *gin.Context) service.Principal {
	v, _ := c.Get(principalKey)
	p, _ := v.(service.Principal)
	return p
}

// tokenFromRequest prefers an Authorization bearer token over the cookie.
func tokenFromRequest(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

// writeError maps core errors onto status codes. A recipe owned by someone
// else is reported exactly like a missing one.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
	case errors.Is(err, domain.ErrDuplicateEmail):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, domain.ErrAuthentication):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "please check your login details and try again"})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrPermissionDenied):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
	default:
		h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
