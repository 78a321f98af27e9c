// Package token issues and validates the opaque bearer tokens used
// for authentication. One token is issued per device at login; the
// plaintext is returned exactly once and only its SHA-256 is stored.
package token

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paulokalleby/api-vendas/internal/apperr"
	"github.com/paulokalleby/api-vendas/internal/models"
)

const (
	secretChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	secretLength = 40
)

// Store persists access tokens.
type Store interface {
	Create(ctx context.Context, token *models.AccessToken) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AccessToken, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Issue creates a token for a device and returns its plaintext in the
// form "<id>|<secret>". Existing tokens for the user are left alone:
// each device keeps its own session.
func (s *Service) Issue(ctx context.Context, userID uuid.UUID, device string) (string, *models.AccessToken, error) {
	secret, err := generateSecret()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token secret: %w", err)
	}

	t := &models.AccessToken{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      device,
		TokenHash: hashSecret(secret),
		CreatedAt: s.now(),
	}

	if err := s.store.Create(ctx, t); err != nil {
		return "", nil, fmt.Errorf("failed to store token: %w", err)
	}

	return fmt.Sprintf("%s|%s", t.ID, secret), t, nil
}

// Validate checks a presented plaintext token and returns the stored
// record. Every failure collapses to Unauthenticated so callers leak
// nothing about why a credential was rejected.
func (s *Service) Validate(ctx context.Context, plaintext string) (*models.AccessToken, error) {
	id, secret, err := parse(plaintext)
	if err != nil {
		return nil, apperr.Unauthenticated("invalid or expired token")
	}

	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Unauthenticated("invalid or expired token")
	}

	if subtle.ConstantTimeCompare([]byte(t.TokenHash), []byte(hashSecret(secret))) != 1 {
		return nil, apperr.Unauthenticated("invalid or expired token")
	}

	// Best-effort bookkeeping only.
	_ = s.store.TouchLastUsed(ctx, t.ID, s.now())

	return t, nil
}

// RevokeByID deletes a single device session.
func (s *Service) RevokeByID(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// RevokeAllForUser logs the user out everywhere.
func (s *Service) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return nil
}

func parse(plaintext string) (uuid.UUID, string, error) {
	idPart, secret, found := strings.Cut(plaintext, "|")
	if !found || secret == "" {
		return uuid.Nil, "", fmt.Errorf("malformed token")
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("malformed token id")
	}
	return id, secret, nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func generateSecret() (string, error) {
	result := make([]byte, secretLength)
	charsetLen := big.NewInt(int64(len(secretChars)))

	for i := 0; i < secretLength; i++ {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		result[i] = secretChars[n.Int64()]
	}

	return string(result), nil
}
