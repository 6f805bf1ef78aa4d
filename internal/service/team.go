package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/aidar/team-management-service/internal/domain"
	"github.com/aidar/team-management-service/internal/repository"
)

// TeamService handles business logic for teams and their membership
type TeamService struct {
	store    repository.Store
	activity *ActivityService
}

// NewTeamService creates a new TeamService
func NewTeamService(store repository.Store, activity *ActivityService) *TeamService {
	return &TeamService{
		store:    store,
		activity: activity,
	}
}

// CreateTeam creates a team with the given leader. Admin only.
func (s *TeamService) CreateTeam(ctx context.Context, actor *domain.User, name string, leaderID uuid.UUID) (*domain.Team, error) {
	if !actor.Role.IsAdmin() {
		return nil, domain.ErrNotAuthorized
	}

	team := &domain.Team{
		ID:       uuid.New(),
		Name:     name,
		LeaderID: leaderID,
	}

	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		exists, err := r.Users.Exists(ctx, leaderID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrUserNotFound
		}

		return r.Teams.Create(ctx, team)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(actor.ID, "team.create", "team", team.ID)
	return team, nil
}

// GetTeam retrieves a team with all members
func (s *TeamService) GetTeam(ctx context.Context, teamID uuid.UUID) (*domain.Team, error) {
	return s.store.Repos().Teams.GetByID(ctx, teamID)
}

// ListTeams returns all teams
func (s *TeamService) ListTeams(ctx context.Context) ([]*domain.Team, error) {
	return s.store.Repos().Teams.List(ctx)
}

// DeleteTeam deletes a team and everything hanging off it. Admin only.
// The delete graph runs in one transaction: assignments referencing the team
// as assignee first (no FK covers the polymorphic assignee), then the team,
// which cascades to its membership rows.
func (s *TeamService) DeleteTeam(ctx context.Context, actor *domain.User, teamID uuid.UUID) error {
	if !actor.Role.IsAdmin() {
		return domain.ErrNotAuthorized
	}

	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		if _, err := r.Teams.GetByID(ctx, teamID); err != nil {
			return err
		}

		if err := r.Assignments.DeleteByTeamAssignee(ctx, teamID); err != nil {
			return err
		}

		return r.Teams.Delete(ctx, teamID)
	})
	if err != nil {
		return err
	}

	s.activity.Record(actor.ID, "team.delete", "team", teamID)
	return nil
}

// AddMember adds a user to a team. Allowed for admins and the team's leader.
// The leader may add themself as a member: leadership and membership rows
// are tracked independently.
func (s *TeamService) AddMember(ctx context.Context, actor *domain.User, teamID, userID uuid.UUID) error {
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		if _, err := r.Teams.GetByID(ctx, teamID); err != nil {
			return err
		}

		if err := s.requireTeamLeader(ctx, r, actor, teamID); err != nil {
			return err
		}

		exists, err := r.Users.Exists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrUserNotFound
		}

		return r.Teams.AddMember(ctx, teamID, userID)
	})
	if err != nil {
		return err
	}

	s.activity.Record(actor.ID, "team.add_member", "team", teamID)
	return nil
}

// RemoveMember removes a user from a team. Allowed for admins and the team's
// leader. The leader can never be removed through this path: leadership is
// replaced via SetLeader, never removed.
func (s *TeamService) RemoveMember(ctx context.Context, actor *domain.User, teamID, userID uuid.UUID) error {
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		team, err := r.Teams.GetByID(ctx, teamID)
		if err != nil {
			return err
		}

		if err := s.requireTeamLeader(ctx, r, actor, teamID); err != nil {
			return err
		}

		if team.LeaderID == userID {
			return domain.ErrLeaderRemoval
		}

		return r.Teams.RemoveMember(ctx, teamID, userID)
	})
	if err != nil {
		return err
	}

	s.activity.Record(actor.ID, "team.remove_member", "team", teamID)
	return nil
}

// SetLeader replaces the team's leader. Admin only.
func (s *TeamService) SetLeader(ctx context.Context, actor *domain.User, teamID, leaderID uuid.UUID) error {
	if !actor.Role.IsAdmin() {
		return domain.ErrNotAuthorized
	}

	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		exists, err := r.Users.Exists(ctx, leaderID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrUserNotFound
		}

		return r.Teams.SetLeader(ctx, teamID, leaderID)
	})
	if err != nil {
		return err
	}

	s.activity.Record(actor.ID, "team.set_leader", "team", teamID)
	return nil
}

// requireTeamLeader enforces the admin-or-that-team's-leader floor
func (s *TeamService) requireTeamLeader(ctx context.Context, r repository.Repositories, actor *domain.User, teamID uuid.UUID) error {
	perm, err := NewPermissions(r).GetTeamPermission(ctx, actor, teamID)
	if err != nil {
		return err
	}
	if !perm.AtLeast(domain.PermissionTeamLeader) {
		return domain.ErrNotAuthorized
	}
	return nil
}
