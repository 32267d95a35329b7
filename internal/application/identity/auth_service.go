// Package identity implements login, session lookup and user management.
package identity

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password
var ErrInvalidCredentials = shared.NewKindError(shared.KindUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")

// AuthService handles authentication operations
type AuthService struct {
	runner    *uow.Runner
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(runner *uow.Runner, jwt *auth.JWTService, blacklist auth.TokenBlacklist, logger *zap.Logger) *AuthService {
	return &AuthService{runner: runner, jwt: jwt, blacklist: blacklist, logger: logger}
}

// Login verifies the credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user *identity.User
	err := s.runner.Write(ctx, nil, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		var err error
		user, err = repos.Users().FindByEmail(ctx, email)
		if err != nil {
			if shared.KindOf(err) == shared.KindNotFound {
				return nil, ErrInvalidCredentials
			}
			return nil, err
		}
		if !user.VerifyPassword(req.Password) {
			return nil, ErrInvalidCredentials
		}
		if !user.IsActive {
			return nil, shared.NewKindError(shared.KindForbidden, "ACCOUNT_DEACTIVATED", "Account has been deactivated")
		}
		user.RecordLogin()
		return nil, repos.Users().Save(ctx, user)
	})
	if err != nil {
		if shared.KindOf(err) != shared.KindInternal {
			s.logger.Warn("Login rejected", zap.String("email", email), zap.String("reason", string(shared.KindOf(err))))
		}
		return nil, err
	}

	token, err := s.jwt.Issue(user)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		return nil, shared.NewKindError(shared.KindInternal, "TOKEN_ERROR", "Failed to generate authentication token")
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()), zap.String("role", user.Role.String()))
	return &LoginResponse{
		User:      ToUserResponse(user),
		Token:     token.Value,
		TokenType: "Bearer",
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// Me returns the account behind the session. A user deactivated after the
// token was issued is rejected.
func (s *AuthService) Me(ctx context.Context, actor identity.Actor) (*UserResponse, error) {
	if actor.IsZero() {
		return nil, shared.ErrUnauthorized
	}
	var user *identity.User
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		user, err = repos.Users().FindByID(ctx, actor.UserID)
		return err
	})
	if err != nil {
		if shared.KindOf(err) == shared.KindNotFound {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.NewKindError(shared.KindForbidden, "ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Authenticate validates a bearer token and returns the caller it names.
// Revoked tokens are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (identity.Actor, *auth.Claims, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return identity.Actor{}, nil, err
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return identity.Actor{}, nil, err
	}
	if revoked {
		return identity.Actor{}, nil, auth.ErrTokenRevoked
	}
	actor, err := claims.Actor()
	if err != nil {
		return identity.Actor{}, nil, err
	}
	return actor, claims, nil
}

// Logout revokes the token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return shared.ErrUnauthorized
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL(shared.Now())); err != nil {
		s.logger.Error("Failed to revoke token", zap.Error(err))
		return shared.NewKindError(shared.KindInternal, "LOGOUT_FAILED", "Failed to revoke session")
	}
	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}
