package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/internal/query"
	"github.com/jwalitptl/chronosync/internal/repository"
	"github.com/jwalitptl/chronosync/pkg/auth"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
	"github.com/jwalitptl/chronosync/pkg/metrics"
	"github.com/jwalitptl/chronosync/pkg/security"
)

const (
	ReasonInvalidCredentials = "Invalid credentials."
	ReasonTokenRevoked       = "Token is no longer active."
)

type AuthServicer interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
	Logout(ctx context.Context, actor principal.Principal) error
	Validate(ctx context.Context, actor principal.Principal, claims *auth.Claims) model.TokenStatus
}

type Service struct {
	users   repository.UserRepository
	tokens  repository.TokenStore
	jwtSvc  auth.JWTService
	hasher  security.PasswordHasher
	metrics *metrics.Metrics
}

var _ AuthServicer = (*Service)(nil)

// NewService creates the auth service. m may be nil.
func NewService(users repository.UserRepository, tokens repository.TokenStore, jwtSvc auth.JWTService, hasher security.PasswordHasher, m *metrics.Metrics) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		jwtSvc:  jwtSvc,
		hasher:  hasher,
		metrics: m,
	}
}

// Login checks the credentials and issues a token. Issuing a token
// replaces any token the user held before.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.users.FindOne(ctx, query.UsernameExact(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.record("invalid")
			return nil, apperrors.UnauthorizedMessage(ReasonInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		s.record("invalid")
		if !errors.Is(err, security.ErrPasswordMismatch) {
			log.Error().Err(err).Int64("user_id", user.ID).Msg("stored password hash is unreadable")
		}
		return nil, apperrors.UnauthorizedMessage(ReasonInvalidCredentials)
	}
	if !user.Enabled {
		s.record("disabled")
		return nil, apperrors.Forbidden(principal.ReasonNotEnabled)
	}
	if user.Locked {
		s.record("locked")
		return nil, apperrors.Forbidden(principal.ReasonLocked)
	}

	token, err := s.jwtSvc.Issue(auth.Identity{
		UserID:   user.ID,
		FirmID:   user.FirmID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.tokens.Store(ctx, user.ID, token.ID, token.ExpiresAt.Sub(token.IssuedAt)); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	s.record("success")
	log.Info().Int64("user_id", user.ID).Int64("firm_id", user.FirmID).Msg("user logged in")
	return &model.LoginResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      model.NewUserResponse(user),
	}, nil
}

// Authenticate verifies a bearer token and checks that it is the user's
// active token.
func (s *Service) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtSvc.Parse(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	active, err := s.tokens.Active(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.UnauthorizedMessage(ReasonTokenRevoked)
		}
		return nil, fmt.Errorf("failed to read active token: %w", err)
	}
	if active != claims.ID {
		return nil, apperrors.UnauthorizedMessage(ReasonTokenRevoked)
	}
	return claims, nil
}

func (s *Service) Logout(ctx context.Context, actor principal.Principal) error {
	if err := s.tokens.Revoke(ctx, actor.UserID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	log.Info().Int64("user_id", actor.UserID).Msg("user logged out")
	return nil
}

// Validate describes the token the request was authenticated with.
func (s *Service) Validate(_ context.Context, actor principal.Principal, claims *auth.Claims) model.TokenStatus {
	status := model.TokenStatus{
		Valid:    true,
		UserID:   actor.UserID,
		FirmID:   actor.FirmID,
		Role:     actor.Role,
		Username: actor.Username,
	}
	if claims != nil && claims.ExpiresAt != nil {
		status.ExpiresAt = claims.ExpiresAt.Time
	}
	return status
}

func (s *Service) record(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}
