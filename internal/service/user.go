package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/aidar/team-management-service/internal/domain"
	"github.com/aidar/team-management-service/internal/repository"
)

// UserService handles business logic for users
type UserService struct {
	store    repository.Store
	activity *ActivityService
}

// NewUserService creates a new UserService
func NewUserService(store repository.Store, activity *ActivityService) *UserService {
	return &UserService{
		store:    store,
		activity: activity,
	}
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.store.Repos().Users.GetByID(ctx, userID)
}

// SetRole changes a user's global role. Only admin-level actors may change
// roles, and only an owner may change another owner's role.
func (s *UserService) SetRole(ctx context.Context, actor *domain.User, userID uuid.UUID, role domain.GlobalRole) (*domain.User, error) {
	if !actor.Role.IsAdmin() {
		return nil, domain.ErrNotAuthorized
	}

	var user *domain.User

	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		var err error
		user, err = r.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if user.Role == domain.RoleOwner && actor.Role != domain.RoleOwner {
			return domain.ErrNotAuthorized
		}

		if err := r.Users.SetRole(ctx, userID, role); err != nil {
			return err
		}
		user.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(actor.ID, "user.set_role", "user", userID)
	return user, nil
}
