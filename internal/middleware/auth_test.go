package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paulokalleby/api-vendas/internal/apperr"
	"github.com/paulokalleby/api-vendas/internal/models"
	"github.com/paulokalleby/api-vendas/internal/permission"
)

type fakeTokenValidator struct {
	token *models.AccessToken
	valid string
}

func (f *fakeTokenValidator) Validate(ctx context.Context, plaintext string) (*models.AccessToken, error) {
	if plaintext != f.valid {
		return nil, apperr.Unauthenticated("invalid or expired token")
	}
	return f.token, nil
}

type fakeUserLoader struct {
	user *models.User
	err  error
}

func (f *fakeUserLoader) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user == nil || f.user.ID != id {
		return nil, apperr.ErrNotFound
	}
	return f.user, nil
}

type fakeResolver struct{}

func (fakeResolver) Resolve(ctx context.Context, user *models.User) (permission.Set, error) {
	return permission.AllGranted(), nil
}

func newAuthRouter(tokens TokenValidator, users UserLoader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", Auth(tokens, users, fakeResolver{}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": SessionFrom(c).UserID})
	})
	return router
}

func TestAuth(t *testing.T) {
	user := &models.User{ID: uuid.New(), TenantID: uuid.New(), Active: true}
	token := &models.AccessToken{ID: uuid.New(), UserID: user.ID}
	const plaintext = "good-token"

	tests := []struct {
		name   string
		header string
		users  *fakeUserLoader
		want   int
	}{
		{"valid bearer token", "Bearer " + plaintext, &fakeUserLoader{user: user}, http.StatusOK},
		{"missing header", "", &fakeUserLoader{user: user}, http.StatusUnauthorized},
		{"no bearer prefix", plaintext, &fakeUserLoader{user: user}, http.StatusUnauthorized},
		{"wrong scheme", "Basic " + plaintext, &fakeUserLoader{user: user}, http.StatusUnauthorized},
		{"empty credentials", "Bearer ", &fakeUserLoader{user: user}, http.StatusUnauthorized},
		{"unknown token", "Bearer wrong-token", &fakeUserLoader{user: user}, http.StatusUnauthorized},
		{"token for vanished user", "Bearer " + plaintext, &fakeUserLoader{}, http.StatusUnauthorized},
		{"user lookup failure", "Bearer " + plaintext, &fakeUserLoader{err: errors.New("connection refused")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthRouter(&fakeTokenValidator{token: token, valid: plaintext}, tt.users)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAuthInactiveUser(t *testing.T) {
	user := &models.User{ID: uuid.New(), TenantID: uuid.New(), Active: false}
	token := &models.AccessToken{ID: uuid.New(), UserID: user.ID}

	router := newAuthRouter(
		&fakeTokenValidator{token: token, valid: "good-token"},
		&fakeUserLoader{user: user},
	)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
