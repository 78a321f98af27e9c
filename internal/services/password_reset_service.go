package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/paulokalleby/api-vendas/internal/apperr"
	"github.com/paulokalleby/api-vendas/internal/mail"
	"github.com/paulokalleby/api-vendas/internal/models"
)

const resetCodeTTL = 15 * time.Minute

type ResetUserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error
}

type ResetCodeStore interface {
	Upsert(ctx context.Context, email, code string, createdAt time.Time) error
	Get(ctx context.Context, email string) (*models.PasswordReset, error)
	Delete(ctx context.Context, email string) error
}

type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

// PasswordResetService runs the forgot-password flow: a six digit
// code is mailed to the user, verified, and consumed on reset. A code
// is valid for fifteen minutes and only the latest issued one counts.
type PasswordResetService struct {
	users  ResetUserStore
	codes  ResetCodeStore
	tokens SessionRevoker
	mailer mail.Mailer
	logger *zap.Logger
	now    func() time.Time
}

func NewPasswordResetService(users ResetUserStore, codes ResetCodeStore, tokens SessionRevoker, mailer mail.Mailer, logger *zap.Logger) *PasswordResetService {
	return &PasswordResetService{
		users:  users,
		codes:  codes,
		tokens: tokens,
		mailer: mailer,
		logger: logger,
		now:    time.Now,
	}
}

// SendCode issues a reset code for the email, or ErrNotFound when no
// account uses it.
func (s *PasswordResetService) SendCode(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	if err := s.codes.Upsert(ctx, email, code, s.now()); err != nil {
		return err
	}

	// Delivery happens after the code is persisted and off the request
	// path. A mail failure is logged, not surfaced: the user can ask
	// for a new code.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		body := fmt.Sprintf("Your password recovery code is %s. It expires in 15 minutes.", code)
		if err := s.mailer.Send(sendCtx, email, "Password recovery code", body); err != nil {
			s.logger.Error("failed to send reset code email",
				zap.String("email", email),
				zap.Error(err),
			)
		}
	}()

	return nil
}

// VerifyCode checks a code without consuming it.
func (s *PasswordResetService) VerifyCode(ctx context.Context, email, code string) error {
	return s.checkCode(ctx, email, code)
}

// Reset sets a new password after a final code check. The code is
// consumed and every session of the user is revoked, so stolen tokens
// die with the old password.
func (s *PasswordResetService) Reset(ctx context.Context, email, code, password string) error {
	if err := s.checkCode(ctx, email, code); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation("invalid or expired code")
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePasswordByEmail(ctx, email, string(hash)); err != nil {
		return err
	}

	if err := s.codes.Delete(ctx, email); err != nil {
		return err
	}

	if err := s.tokens.RevokeAllForUser(ctx, user.ID); err != nil {
		s.logger.Error("failed to revoke sessions after password reset",
			zap.String("email", email),
			zap.Error(err),
		)
	}

	return nil
}

func (s *PasswordResetService) checkCode(ctx context.Context, email, code string) error {
	reset, err := s.codes.Get(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation("invalid or expired code")
		}
		return err
	}

	if s.now().Sub(reset.CreatedAt) > resetCodeTTL {
		return apperr.Validation("invalid or expired code")
	}

	if subtle.ConstantTimeCompare([]byte(reset.Token), []byte(code)) != 1 {
		return apperr.Validation("invalid or expired code")
	}

	return nil
}

func generateCode() (string, error) {
	// Six digits, never with a leading zero.
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
