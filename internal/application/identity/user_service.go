package identity

import (
	"context"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const usersLockKey = "user:registry"

// UserService manages operator accounts
type UserService struct {
	runner *uow.Runner
	policy *identity.Policy
	logger *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(runner *uow.Runner, policy *identity.Policy, logger *zap.Logger) *UserService {
	return &UserService{runner: runner, policy: policy, logger: logger}
}

// Create adds an account. Emails are unique ignoring case.
func (s *UserService) Create(ctx context.Context, actor identity.Actor, req CreateUserRequest) (*UserResponse, error) {
	if err := s.policy.Authorize(actor, identity.ActionUserManage); err != nil {
		return nil, err
	}
	user, err := identity.NewUser(req.Name, req.Email, req.Password, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}

	err = s.runner.Write(ctx, []string{usersLockKey}, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		return nil, createUnique(ctx, repos, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()),
		zap.String("created_by", actor.UserID.String()),
	)
	resp := ToUserResponse(user)
	return &resp, nil
}

// List returns every account
func (s *UserService) List(ctx context.Context, actor identity.Actor) ([]UserResponse, error) {
	if err := s.policy.Authorize(actor, identity.ActionUserManage); err != nil {
		return nil, err
	}
	var users []identity.User
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		users, err = repos.Users().FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out, nil
}

// Deactivate blocks an account from logging in. The Boss cannot lock
// themselves out.
func (s *UserService) Deactivate(ctx context.Context, actor identity.Actor, id uuid.UUID) (*UserResponse, error) {
	if err := s.policy.Authorize(actor, identity.ActionUserManage); err != nil {
		return nil, err
	}
	if id == actor.UserID {
		return nil, shared.NewValidationError("SELF_DEACTIVATION", "You cannot deactivate your own account")
	}
	var user *identity.User
	err := s.runner.Write(ctx, []string{usersLockKey}, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		var err error
		if user, err = repos.Users().FindByID(ctx, id); err != nil {
			return nil, err
		}
		user.Deactivate()
		return nil, repos.Users().Save(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("User deactivated", zap.String("user_id", id.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// BootstrapBoss creates the first Boss account when the user table is
// empty. It reports whether an account was created.
func (s *UserService) BootstrapBoss(ctx context.Context, name, email, password string) (bool, error) {
	created := false
	err := s.runner.Write(ctx, []string{usersLockKey}, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		count, err := repos.Users().Count(ctx)
		if err != nil || count > 0 {
			return nil, err
		}
		boss, err := identity.NewUser(name, email, password, identity.RoleBoss)
		if err != nil {
			return nil, err
		}
		if err := repos.Users().Save(ctx, boss); err != nil {
			return nil, err
		}
		created = true
		return nil, nil
	})
	if err != nil {
		return false, err
	}
	if created {
		s.logger.Info("Bootstrap Boss account created", zap.String("email", email))
	}
	return created, nil
}

func createUnique(ctx context.Context, repos uow.Repositories, user *identity.User) error {
	_, err := repos.Users().FindByEmail(ctx, user.Email)
	switch {
	case err == nil:
		return shared.NewKindError(shared.KindConflict, "EMAIL_TAKEN", "A user with this email already exists").
			WithDetail("email", user.Email)
	case shared.KindOf(err) != shared.KindNotFound:
		return err
	}
	return repos.Users().Save(ctx, user)
}
