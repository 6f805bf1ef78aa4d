package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/aidar/team-management-service/internal/domain"
	"github.com/aidar/team-management-service/internal/repository"
)

// Permissions evaluates the hierarchical access-control model.
// A permission level is derived from the global role, team leadership,
// team membership and assignment records, in that order of precedence.
//
// Permissions is cheap to construct; resource services build one per call
// over whatever repositories they are working with, so that inside a
// transaction the evaluation reads the same snapshot the mutation writes to.
type Permissions struct {
	r repository.Repositories
}

// NewPermissions creates a Permissions evaluator over the given repositories
func NewPermissions(r repository.Repositories) *Permissions {
	return &Permissions{r: r}
}

// IsOwnerOrAdmin reports whether the user holds a global admin-level role
func (p *Permissions) IsOwnerOrAdmin(user *domain.User) bool {
	return user.Role.IsAdmin()
}

// GetTeamPermission computes the user's permission level for a team:
// global admin > leader > member > none. A missing team yields none.
func (p *Permissions) GetTeamPermission(ctx context.Context, user *domain.User, teamID uuid.UUID) (domain.PermissionLevel, error) {
	if user.Role.IsAdmin() {
		return domain.PermissionAdmin, nil
	}

	isLeader, err := p.r.Teams.IsLeader(ctx, teamID, user.ID)
	if err != nil {
		return domain.PermissionNone, err
	}
	if isLeader {
		return domain.PermissionTeamLeader, nil
	}

	// Leadership and membership are tracked independently: a leader without
	// a membership row resolves above, never here.
	isMember, err := p.r.Teams.IsMember(ctx, teamID, user.ID)
	if err != nil {
		return domain.PermissionNone, err
	}
	if isMember {
		return domain.PermissionMember, nil
	}

	return domain.PermissionNone, nil
}

// GetProjectPermission computes the user's permission level for a project.
//
// Leading any team assigned to the project grants team_leader. Otherwise a
// direct user assignment, or a team assignment to any team the user belongs
// to (member or leader), grants member. A missing project yields none.
func (p *Permissions) GetProjectPermission(ctx context.Context, user *domain.User, projectID uuid.UUID) (domain.PermissionLevel, error) {
	if user.Role.IsAdmin() {
		return domain.PermissionAdmin, nil
	}

	assignments, err := p.r.Assignments.ListByResource(ctx, domain.ResourceProject, projectID)
	if err != nil {
		return domain.PermissionNone, err
	}

	var assignedTeams []uuid.UUID
	for _, a := range assignments {
		if a.Assignee.Type == domain.AssigneeTeam {
			assignedTeams = append(assignedTeams, a.Assignee.ID)
		}
	}

	if len(assignedTeams) > 0 {
		ledIDs, err := p.r.Teams.GetLedTeamIDs(ctx, user.ID)
		if err != nil {
			return domain.PermissionNone, err
		}
		led := make(map[uuid.UUID]bool, len(ledIDs))
		for _, id := range ledIDs {
			led[id] = true
		}
		for _, teamID := range assignedTeams {
			if led[teamID] {
				return domain.PermissionTeamLeader, nil
			}
		}
	}

	direct, err := p.r.Assignments.HasDirectUserAssignment(ctx, domain.ResourceProject, projectID, user.ID)
	if err != nil {
		return domain.PermissionNone, err
	}
	if direct {
		return domain.PermissionMember, nil
	}

	// The member fallback uses the broad team set (member or leader), unlike
	// the leadership check above which only considers led teams.
	teamIDs, err := p.r.Teams.GetUserTeamIDs(ctx, user.ID)
	if err != nil {
		return domain.PermissionNone, err
	}
	viaTeam, err := p.r.Assignments.HasTeamAssignment(ctx, domain.ResourceProject, projectID, teamIDs)
	if err != nil {
		return domain.PermissionNone, err
	}
	if viaTeam {
		return domain.PermissionMember, nil
	}

	return domain.PermissionNone, nil
}

// GetTaskPermission computes the user's permission level for a task.
//
// Project-level team_leader cascades down to every task in the project.
// Otherwise a direct task assignment, a task assignment to one of the user's
// teams, or any project-level access at all, grants member.
func (p *Permissions) GetTaskPermission(ctx context.Context, user *domain.User, task *domain.Task) (domain.PermissionLevel, error) {
	if user.Role.IsAdmin() {
		return domain.PermissionAdmin, nil
	}

	projectPerm, err := p.GetProjectPermission(ctx, user, task.ProjectID)
	if err != nil {
		return domain.PermissionNone, err
	}
	if projectPerm == domain.PermissionTeamLeader {
		return domain.PermissionTeamLeader, nil
	}

	direct, err := p.r.Assignments.HasDirectUserAssignment(ctx, domain.ResourceTask, task.ID, user.ID)
	if err != nil {
		return domain.PermissionNone, err
	}
	if direct {
		return domain.PermissionMember, nil
	}

	teamIDs, err := p.r.Teams.GetUserTeamIDs(ctx, user.ID)
	if err != nil {
		return domain.PermissionNone, err
	}
	viaTeam, err := p.r.Assignments.HasTeamAssignment(ctx, domain.ResourceTask, task.ID, teamIDs)
	if err != nil {
		return domain.PermissionNone, err
	}
	if viaTeam {
		return domain.PermissionMember, nil
	}

	if projectPerm != domain.PermissionNone {
		return domain.PermissionMember, nil
	}

	return domain.PermissionNone, nil
}

// HasProjectAccess reports whether the user has any access to the project
func (p *Permissions) HasProjectAccess(ctx context.Context, user *domain.User, projectID uuid.UUID) (bool, error) {
	perm, err := p.GetProjectPermission(ctx, user, projectID)
	if err != nil {
		return false, err
	}
	return perm != domain.PermissionNone, nil
}

// HasTaskAccess reports whether the user has any access to the task
func (p *Permissions) HasTaskAccess(ctx context.Context, user *domain.User, task *domain.Task) (bool, error) {
	perm, err := p.GetTaskPermission(ctx, user, task)
	if err != nil {
		return false, err
	}
	return perm != domain.PermissionNone, nil
}

// CanCreateProject reports whether the user may create projects:
// global admins and leaders of at least one team (any team) may.
func (p *Permissions) CanCreateProject(ctx context.Context, user *domain.User) (bool, error) {
	if user.Role.IsAdmin() {
		return true, nil
	}

	ledIDs, err := p.r.Teams.GetLedTeamIDs(ctx, user.ID)
	if err != nil {
		return false, err
	}
	return len(ledIDs) > 0, nil
}
