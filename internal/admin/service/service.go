// Package service implements admin authentication: credential checks,
// token issuance and login lockout.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"parishbook/internal/admin/lockout"
	"parishbook/internal/admin/models"
	"parishbook/internal/admin/store"
	"parishbook/internal/audit"
	dErrors "parishbook/pkg/domain-errors"
	"parishbook/pkg/platform/sentinel"
	"parishbook/pkg/secrets"
)

// TokenIssuer signs access tokens for authenticated admins.
type TokenIssuer interface {
	Issue(adminID uuid.UUID, username string) (string, error)
}

// Metrics counts login outcomes. Nil-safe.
type Metrics interface {
	IncrementLogin(outcome string)
}

type Service struct {
	admins  store.Store
	tokens  TokenIssuer
	lockout lockout.Lockout
	logger  *slog.Logger
	metrics Metrics
	audit   audit.Recorder
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(metrics Metrics) Option {
	return func(s *Service) { s.metrics = metrics }
}

func WithAuditRecorder(recorder audit.Recorder) Option {
	return func(s *Service) { s.audit = recorder }
}

func WithLockout(l lockout.Lockout) Option {
	return func(s *Service) { s.lockout = l }
}

func New(admins store.Store, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		admins:  admins,
		tokens:  tokens,
		lockout: lockout.NewMemory(lockout.DefaultPolicy()),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult carries the issued token back to the handler.
type LoginResult struct {
	Token    string
	AdminID  uuid.UUID
	Username string
}

// Login verifies credentials and issues an access token. Failed attempts
// count toward the lockout; a locked account is refused before the
// password is checked.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	locked, err := s.lockout.IsLocked(ctx, username)
	if err != nil {
		// Lockout storage being down must not take logins with it.
		s.logger.Error("lockout check failed", "error", err)
	}
	if locked {
		s.countLogin("locked")
		s.recordSecurity(ctx, "login_locked", uuid.Nil)
		return LoginResult{}, dErrors.New(dErrors.CodeForbidden, "account is temporarily locked")
	}

	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return LoginResult{}, s.deny(ctx, username)
		}
		s.countLogin("error")
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up admin")
	}

	if err := secrets.Verify(password, admin.PasswordHash); err != nil {
		return LoginResult{}, s.deny(ctx, username)
	}

	if err := s.lockout.Clear(ctx, username); err != nil {
		s.logger.Error("lockout clear failed", "error", err)
	}

	tok, err := s.tokens.Issue(admin.ID, admin.Username)
	if err != nil {
		s.countLogin("error")
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.countLogin("ok")
	s.recordSecurity(ctx, "login", admin.ID)
	return LoginResult{Token: tok, AdminID: admin.ID, Username: admin.Username}, nil
}

// deny records a failed attempt and returns the uniform credential error.
// The message does not reveal whether the username exists.
func (s *Service) deny(ctx context.Context, username string) error {
	locked, err := s.lockout.Fail(ctx, username)
	if err != nil {
		s.logger.Error("lockout update failed", "error", err)
	}
	s.countLogin("denied")
	s.recordSecurity(ctx, "login_denied", uuid.Nil)
	if locked {
		s.recordSecurity(ctx, "login_lockout_triggered", uuid.Nil)
		return dErrors.New(dErrors.CodeForbidden, "account is temporarily locked")
	}
	return dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
}

// EnsureAdmin creates the bootstrap account when it does not exist yet.
// Called once on startup; a conflict from a concurrent instance is fine.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if password == "" {
		return nil
	}
	if _, err := s.admins.FindByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up admin")
	}

	hash, err := secrets.Hash(password)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	admin := models.Admin{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create admin")
	}
	s.logger.Info("bootstrap admin created", "username", username)
	return nil
}

func (s *Service) countLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementLogin(outcome)
	}
}

func (s *Service) recordSecurity(ctx context.Context, action string, adminID uuid.UUID) {
	if s.audit == nil {
		return
	}
	event := audit.NewEvent(ctx, audit.CategorySecurity, action, uuid.Nil)
	if adminID != uuid.Nil {
		event.ActorID = adminID
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Error("audit record failed", "action", action, "error", err)
	}
}
