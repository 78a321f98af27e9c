package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", Unauthenticated("bad token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), http.StatusForbidden},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"validation", Validation("bad input"), http.StatusUnprocessableEntity},
		{"conflict", Conflict("duplicate"), http.StatusConflict},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("loading: %w", ErrNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation message passes through", Validation("email already taken"), "email already taken"},
		{"not found message passes through", ErrNotFound, "resource not found"},
		{"plain error is masked", errors.New("pq: connection refused"), "internal server error"},
		{"internal kind is masked", Wrap(KindInternal, "db exploded", errors.New("detail")), "internal server error"},
		{"wrapped taxonomy error passes through", fmt.Errorf("ctx: %w", Forbidden("permission denied")), "permission denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PublicMessage(tt.err); got != tt.want {
				t.Errorf("PublicMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("row missing")
	err := Wrap(KindNotFound, "loading role", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() does not see the wrapped cause")
	}
	if KindOf(err) != KindNotFound {
		t.Errorf("KindOf() = %v, want KindNotFound", KindOf(err))
	}
}
