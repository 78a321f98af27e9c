package services

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/paulokalleby/api-vendas/internal/apperr"
	"github.com/paulokalleby/api-vendas/internal/models"
)

type fakeResetUserStore struct {
	mu     sync.Mutex
	users  map[string]*models.User
	hashes map[string]string
}

func (s *fakeResetUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}

func (s *fakeResetUserStore) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; !ok {
		return apperr.ErrNotFound
	}
	s.hashes[email] = passwordHash
	return nil
}

type fakeResetCodeStore struct {
	mu    sync.Mutex
	codes map[string]*models.PasswordReset
}

func (s *fakeResetCodeStore) Upsert(ctx context.Context, email, code string, createdAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = &models.PasswordReset{Email: email, Token: code, CreatedAt: createdAt}
	return nil
}

func (s *fakeResetCodeStore) Get(ctx context.Context, email string) (*models.PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.codes[email]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return r, nil
}

func (s *fakeResetCodeStore) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, email)
	return nil
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked []uuid.UUID
}

func (f *fakeRevoker) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, userID)
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	done chan struct{}
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	m.sent = append(m.sent, to)
	m.mu.Unlock()
	if m.done != nil {
		close(m.done)
	}
	return nil
}

type resetFixture struct {
	service *PasswordResetService
	users   *fakeResetUserStore
	codes   *fakeResetCodeStore
	revoker *fakeRevoker
	mailer  *recordingMailer
	user    *models.User
}

func newResetFixture() *resetFixture {
	user := &models.User{ID: uuid.New(), Email: "alice@example.com", Active: true}

	users := &fakeResetUserStore{
		users:  map[string]*models.User{user.Email: user},
		hashes: map[string]string{},
	}
	codes := &fakeResetCodeStore{codes: map[string]*models.PasswordReset{}}
	revoker := &fakeRevoker{}
	mailer := &recordingMailer{done: make(chan struct{})}

	service := NewPasswordResetService(users, codes, revoker, mailer, zap.NewNop())

	return &resetFixture{
		service: service,
		users:   users,
		codes:   codes,
		revoker: revoker,
		mailer:  mailer,
		user:    user,
	}
}

func (f *resetFixture) issuedCode(t *testing.T) string {
	t.Helper()
	f.codes.mu.Lock()
	defer f.codes.mu.Unlock()
	r, ok := f.codes.codes[f.user.Email]
	if !ok {
		t.Fatal("no code stored")
	}
	return r.Token
}

func TestSendCodeStoresAndMails(t *testing.T) {
	f := newResetFixture()

	if err := f.service.SendCode(context.Background(), f.user.Email); err != nil {
		t.Fatalf("SendCode() error: %v", err)
	}

	code := f.issuedCode(t)
	if len(code) != 6 {
		t.Errorf("code %q is not six digits", code)
	}
	n, err := strconv.Atoi(code)
	if err != nil || n < 100000 || n > 999999 {
		t.Errorf("code %q outside [100000, 999999]", code)
	}

	select {
	case <-f.mailer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("mail was never sent")
	}

	f.mailer.mu.Lock()
	defer f.mailer.mu.Unlock()
	if len(f.mailer.sent) != 1 || f.mailer.sent[0] != f.user.Email {
		t.Errorf("mail sent to %v, want [%s]", f.mailer.sent, f.user.Email)
	}
}

func TestSendCodeUnknownEmail(t *testing.T) {
	f := newResetFixture()
	f.mailer.done = nil

	err := f.service.SendCode(context.Background(), "nobody@example.com")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("SendCode() = %v, want a not-found error", err)
	}

	f.codes.mu.Lock()
	defer f.codes.mu.Unlock()
	if len(f.codes.codes) != 0 {
		t.Error("a code was stored for an unknown email")
	}
}

func TestSendCodeReissueReplacesPrevious(t *testing.T) {
	f := newResetFixture()
	f.mailer.done = nil

	if err := f.service.SendCode(context.Background(), f.user.Email); err != nil {
		t.Fatalf("SendCode() error: %v", err)
	}
	first := f.issuedCode(t)

	if err := f.service.VerifyCode(context.Background(), f.user.Email, first); err != nil {
		t.Fatalf("VerifyCode() rejected the first code: %v", err)
	}

	// Codes are random, so reissue until the second one differs.
	second := first
	for i := 0; i < 5 && second == first; i++ {
		if err := f.service.SendCode(context.Background(), f.user.Email); err != nil {
			t.Fatalf("SendCode() error: %v", err)
		}
		second = f.issuedCode(t)
	}
	if second == first {
		t.Fatal("could not obtain a distinct second code")
	}

	if err := f.service.VerifyCode(context.Background(), f.user.Email, first); err == nil {
		t.Error("VerifyCode() accepted a replaced code")
	}
	if err := f.service.VerifyCode(context.Background(), f.user.Email, second); err != nil {
		t.Errorf("VerifyCode() rejected the latest code: %v", err)
	}
}

func TestVerifyCode(t *testing.T) {
	f := newResetFixture()
	if err := f.service.SendCode(context.Background(), f.user.Email); err != nil {
		t.Fatalf("SendCode() error: %v", err)
	}
	code := f.issuedCode(t)

	if err := f.service.VerifyCode(context.Background(), f.user.Email, code); err != nil {
		t.Errorf("VerifyCode() rejected the live code: %v", err)
	}

	// Verification does not consume the code.
	if err := f.service.VerifyCode(context.Background(), f.user.Email, code); err != nil {
		t.Errorf("VerifyCode() second check failed: %v", err)
	}

	if err := f.service.VerifyCode(context.Background(), f.user.Email, "000000"); err == nil {
		t.Error("VerifyCode() accepted a wrong code")
	}
	if err := f.service.VerifyCode(context.Background(), "nobody@example.com", code); err == nil {
		t.Error("VerifyCode() accepted a code for the wrong email")
	}
}

func TestVerifyCodeExpiry(t *testing.T) {
	f := newResetFixture()
	if err := f.service.SendCode(context.Background(), f.user.Email); err != nil {
		t.Fatalf("SendCode() error: %v", err)
	}
	code := f.issuedCode(t)

	f.service.now = func() time.Time { return time.Now().Add(resetCodeTTL + time.Minute) }

	err := f.service.VerifyCode(context.Background(), f.user.Email, code)
	if err == nil {
		t.Fatal("VerifyCode() accepted an expired code")
	}
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %v, want KindValidation", apperr.KindOf(err))
	}
}

func TestResetConsumesCodeAndRevokesSessions(t *testing.T) {
	f := newResetFixture()
	if err := f.service.SendCode(context.Background(), f.user.Email); err != nil {
		t.Fatalf("SendCode() error: %v", err)
	}
	code := f.issuedCode(t)

	if err := f.service.Reset(context.Background(), f.user.Email, code, "newsecret"); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}

	f.users.mu.Lock()
	hash := f.users.hashes[f.user.Email]
	f.users.mu.Unlock()
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("newsecret")) != nil {
		t.Error("stored hash does not match the new password")
	}

	f.revoker.mu.Lock()
	revoked := len(f.revoker.revoked)
	f.revoker.mu.Unlock()
	if revoked != 1 {
		t.Errorf("revoked %d users, want 1", revoked)
	}

	// The code is single use.
	if err := f.service.Reset(context.Background(), f.user.Email, code, "again"); err == nil {
		t.Error("Reset() accepted a consumed code")
	}
}
