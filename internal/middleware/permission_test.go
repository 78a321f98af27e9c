package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paulokalleby/api-vendas/internal/permission"
)

func newTestRouter(set permission.Set, resource string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Stand-in for Auth: plants a session directly.
	router.Use(func(c *gin.Context) {
		c.Set(sessionKey, &Session{
			UserID:   uuid.New(),
			TenantID: uuid.New(),
			Perms:    set,
		})
	})

	group := router.Group("/"+resource, RequirePermission(resource))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	group.GET("", ok)
	group.POST("", ok)
	group.PUT("/:id", ok)
	group.DELETE("/:id", ok)

	return router
}

func TestRequirePermission(t *testing.T) {
	viewOnly := permission.Explicit([]permission.Grant{
		{Resource: "products", Action: permission.ActionView},
	})

	tests := []struct {
		name   string
		set    permission.Set
		method string
		path   string
		want   int
	}{
		{"view allowed", viewOnly, http.MethodGet, "/products", http.StatusOK},
		{"create denied", viewOnly, http.MethodPost, "/products", http.StatusForbidden},
		{"update denied", viewOnly, http.MethodPut, "/products/1", http.StatusForbidden},
		{"delete denied", viewOnly, http.MethodDelete, "/products/1", http.StatusForbidden},
		{"owner view", permission.AllGranted(), http.MethodGet, "/products", http.StatusOK},
		{"owner delete", permission.AllGranted(), http.MethodDelete, "/products/1", http.StatusOK},
		{"empty set denies view", permission.Explicit(nil), http.MethodGet, "/products", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(tt.set, "products")

			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestRequirePermissionIsPerResource(t *testing.T) {
	ordersOnly := permission.Explicit([]permission.Grant{
		{Resource: "orders", Action: permission.ActionView},
	})

	router := newTestRouter(ordersOnly, "products")

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("orders grant leaked into products: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}
