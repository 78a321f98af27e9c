package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paulokalleby/api-vendas/internal/apperr"
	"github.com/paulokalleby/api-vendas/internal/models"
	"github.com/paulokalleby/api-vendas/internal/permission"
)

const sessionKey = "session"

// Session is the authenticated request context: who is calling, which
// tenant they belong to, which token they presented and what they may
// do. It is attached to the gin context by Auth.
type Session struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	TokenID  uuid.UUID
	Owner    bool
	User     *models.User
	Perms    permission.Set
}

type TokenValidator interface {
	Validate(ctx context.Context, plaintext string) (*models.AccessToken, error)
}

type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type PermissionResolver interface {
	Resolve(ctx context.Context, user *models.User) (permission.Set, error)
}

// Auth validates the bearer token, loads the user and resolves the
// effective permission set. Permissions are resolved fresh on every
// request so role edits apply immediately.
func Auth(tokens TokenValidator, users UserLoader, perms PermissionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		plaintext, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || plaintext == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			c.Abort()
			return
		}

		t, err := tokens.Validate(c.Request.Context(), plaintext)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), t.UserID)
		if err != nil {
			// A token for a vanished user is an auth failure; anything
			// else is ours.
			if errors.Is(err, apperr.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			c.Abort()
			return
		}

		if !user.Active {
			c.JSON(http.StatusForbidden, gin.H{"error": "account is inactive"})
			c.Abort()
			return
		}

		set, err := perms.Resolve(c.Request.Context(), user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			c.Abort()
			return
		}

		c.Set(sessionKey, &Session{
			UserID:   user.ID,
			TenantID: user.TenantID,
			TokenID:  t.ID,
			Owner:    user.Owner,
			User:     user,
			Perms:    set,
		})

		c.Next()
	}
}

// SessionFrom returns the session attached by Auth. It panics when
// called outside an authenticated route group; that is a routing bug,
// not a runtime condition.
func SessionFrom(c *gin.Context) *Session {
	s, exists := c.Get(sessionKey)
	if !exists {
		panic("middleware: session missing, route not behind Auth")
	}
	return s.(*Session)
}
