package token

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/paulokalleby/api-vendas/internal/apperr"
	"github.com/paulokalleby/api-vendas/internal/models"
)

type fakeStore struct {
	tokens map[uuid.UUID]*models.AccessToken
}

func newFakeStore() *fakeStore {
	return &fakeStore{tokens: make(map[uuid.UUID]*models.AccessToken)}
}

func (s *fakeStore) Create(ctx context.Context, t *models.AccessToken) error {
	cp := *t
	s.tokens[t.ID] = &cp
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.AccessToken, error) {
	t, ok := s.tokens[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.tokens[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.tokens, id)
	return nil
}

func (s *fakeStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	for id, t := range s.tokens {
		if t.UserID == userID {
			delete(s.tokens, id)
		}
	}
	return nil
}

func (s *fakeStore) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	if t, ok := s.tokens[id]; ok {
		t.LastUsedAt = &at
	}
	return nil
}

func TestIssueAndValidate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	userID := uuid.New()

	plaintext, issued, err := svc.Issue(context.Background(), userID, "iphone")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	idPart, secret, found := strings.Cut(plaintext, "|")
	if !found {
		t.Fatalf("plaintext %q missing separator", plaintext)
	}
	if idPart != issued.ID.String() {
		t.Errorf("plaintext id = %q, want %q", idPart, issued.ID)
	}
	if len(secret) != secretLength {
		t.Errorf("secret length = %d, want %d", len(secret), secretLength)
	}
	if issued.TokenHash == secret {
		t.Error("stored hash equals plaintext secret")
	}

	got, err := svc.Validate(context.Background(), plaintext)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if got.UserID != userID {
		t.Errorf("Validate() user = %v, want %v", got.UserID, userID)
	}
	if got.Name != "iphone" {
		t.Errorf("Validate() device = %q, want %q", got.Name, "iphone")
	}
}

func TestValidateRejections(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	plaintext, issued, err := svc.Issue(context.Background(), uuid.New(), "cli")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", "notatoken"},
		{"bad id", "not-a-uuid|SECRET"},
		{"unknown id", uuid.NewString() + "|AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"},
		{"wrong secret", issued.ID.String() + "|AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"},
		{"empty secret", issued.ID.String() + "|"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(context.Background(), tt.token)
			if err == nil {
				t.Fatal("Validate() accepted a bad token")
			}
			if apperr.KindOf(err) != apperr.KindUnauthenticated {
				t.Errorf("Validate() kind = %v, want KindUnauthenticated", apperr.KindOf(err))
			}
		})
	}

	// The valid token still works after rejected attempts.
	if _, err := svc.Validate(context.Background(), plaintext); err != nil {
		t.Errorf("Validate() of the good token failed: %v", err)
	}
}

func TestRevokeByID(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	userID := uuid.New()

	plaintext1, issued1, _ := svc.Issue(context.Background(), userID, "phone")
	plaintext2, _, _ := svc.Issue(context.Background(), userID, "laptop")

	if err := svc.RevokeByID(context.Background(), issued1.ID); err != nil {
		t.Fatalf("RevokeByID() error: %v", err)
	}

	if _, err := svc.Validate(context.Background(), plaintext1); err == nil {
		t.Error("revoked token still validates")
	}
	if _, err := svc.Validate(context.Background(), plaintext2); err != nil {
		t.Errorf("other device token rejected: %v", err)
	}
}

func TestRevokeAllForUser(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	userID := uuid.New()
	otherID := uuid.New()

	plaintext1, _, _ := svc.Issue(context.Background(), userID, "phone")
	plaintext2, _, _ := svc.Issue(context.Background(), userID, "laptop")
	plaintextOther, _, _ := svc.Issue(context.Background(), otherID, "phone")

	if err := svc.RevokeAllForUser(context.Background(), userID); err != nil {
		t.Fatalf("RevokeAllForUser() error: %v", err)
	}

	for _, plaintext := range []string{plaintext1, plaintext2} {
		if _, err := svc.Validate(context.Background(), plaintext); err == nil {
			t.Error("revoked token still validates")
		}
	}
	if _, err := svc.Validate(context.Background(), plaintextOther); err != nil {
		t.Errorf("unrelated user's token rejected: %v", err)
	}
}

func TestSecretCharset(t *testing.T) {
	for i := 0; i < 20; i++ {
		secret, err := generateSecret()
		if err != nil {
			t.Fatalf("generateSecret() error: %v", err)
		}
		if len(secret) != secretLength {
			t.Fatalf("secret length = %d, want %d", len(secret), secretLength)
		}
		for _, c := range secret {
			if !strings.ContainsRune(secretChars, c) {
				t.Fatalf("secret contains %q outside the charset", c)
			}
		}
	}
}
