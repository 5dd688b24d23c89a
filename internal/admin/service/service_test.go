package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"parishbook/internal/admin/lockout"
	"parishbook/internal/admin/store"
	"parishbook/internal/admin/token"
	"parishbook/internal/audit"
	dErrors "parishbook/pkg/domain-errors"
)

type AdminServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	tokens  *token.Manager
	audit   *audit.InMemoryStore
	service *Service
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceSuite))
}

func (s *AdminServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.tokens = token.NewManager("test-signing-key", time.Hour)
	s.audit = audit.NewInMemoryStore()
	s.service = New(s.store, s.tokens,
		WithAuditRecorder(s.audit),
		WithLockout(lockout.NewMemory(lockout.Policy{Threshold: 3, Window: time.Minute, Duration: time.Minute})),
	)
	s.Require().NoError(s.service.EnsureAdmin(context.Background(), "keeper", "correct-horse"))
}

func (s *AdminServiceSuite) TestLogin() {
	ctx := context.Background()

	s.Run("issues a verifiable token", func() {
		result, err := s.service.Login(ctx, "keeper", "correct-horse")
		s.Require().NoError(err)
		s.NotEmpty(result.Token)
		s.Equal("keeper", result.Username)

		adminID, username, err := s.tokens.Validate(result.Token)
		s.Require().NoError(err)
		s.Equal(result.AdminID, adminID)
		s.Equal("keeper", username)
	})

	s.Run("wrong password is unauthorized", func() {
		_, err := s.service.Login(ctx, "keeper", "wrong")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Contains(err.Error(), "invalid username or password")
	})

	s.Run("unknown username gets the same message", func() {
		_, err := s.service.Login(ctx, "nobody", "whatever")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Contains(err.Error(), "invalid username or password")
	})
}

func (s *AdminServiceSuite) TestLockout() {
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.service.Login(ctx, "keeper", "wrong")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	}

	// Third failure trips the lock.
	_, err := s.service.Login(ctx, "keeper", "wrong")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Contains(err.Error(), "temporarily locked")

	// Even the correct password is refused while locked.
	_, err = s.service.Login(ctx, "keeper", "correct-horse")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *AdminServiceSuite) TestLockoutClearsOnSuccess() {
	ctx := context.Background()

	_, err := s.service.Login(ctx, "keeper", "wrong")
	s.Require().Error(err)
	_, err = s.service.Login(ctx, "keeper", "correct-horse")
	s.Require().NoError(err)

	// The failure counter restarted; two more failures stay below the limit.
	for i := 0; i < 2; i++ {
		_, err = s.service.Login(ctx, "keeper", "wrong")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	}
}

func (s *AdminServiceSuite) TestEnsureAdmin() {
	ctx := context.Background()

	s.Run("is idempotent", func() {
		s.Require().NoError(s.service.EnsureAdmin(ctx, "keeper", "another-password"))
		// The original password still works.
		_, err := s.service.Login(ctx, "keeper", "correct-horse")
		s.NoError(err)
	})

	s.Run("skips an empty password", func() {
		s.Require().NoError(s.service.EnsureAdmin(ctx, "ghost", ""))
		_, err := s.store.FindByUsername(ctx, "ghost")
		s.Error(err)
	})
}

func (s *AdminServiceSuite) TestSecurityAudit() {
	ctx := context.Background()

	_, err := s.service.Login(ctx, "keeper", "wrong")
	s.Require().Error(err)
	_, err = s.service.Login(ctx, "keeper", "correct-horse")
	s.Require().NoError(err)

	var actions []string
	for _, event := range s.audit.All() {
		s.Equal(audit.CategorySecurity, event.Category)
		actions = append(actions, event.Action)
	}
	s.Contains(actions, "login_denied")
	s.Contains(actions, "login")
}
