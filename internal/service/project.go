package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/aidar/team-management-service/internal/domain"
	"github.com/aidar/team-management-service/internal/repository"
)

// ProjectService handles business logic for projects and their assignments.
// Every mutation evaluates the actor's permission inside the same transaction
// as the write it gates.
type ProjectService struct {
	store    repository.Store
	activity *ActivityService
}

// NewProjectService creates a new ProjectService
func NewProjectService(store repository.Store, activity *ActivityService) *ProjectService {
	return &ProjectService{
		store:    store,
		activity: activity,
	}
}

// CreateProject creates a project. Allowed for global admins and for leaders
// of at least one team -- any team, not necessarily one assigned anywhere.
func (s *ProjectService) CreateProject(ctx context.Context, actor *domain.User, name, description string) (*domain.Project, error) {
	project := &domain.Project{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedBy:   actor.ID,
	}

	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		allowed, err := NewPermissions(r).CanCreateProject(ctx, actor)
		if err != nil {
			return err
		}
		if !allowed {
			return domain.ErrNotAuthorized
		}

		return r.Projects.Create(ctx, project)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(actor.ID, "project.create", "project", project.ID)
	return project, nil
}

// GetProject retrieves a project. A single-resource fetch enforces the hard
// authorization contract: no access means an explicit error, not an empty
// result.
func (s *ProjectService) GetProject(ctx context.Context, actor *domain.User, projectID uuid.UUID) (*domain.Project, error) {
	r := s.store.Repos()

	project, err := r.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ok, err := NewPermissions(r).HasProjectAccess(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotAuthorized
	}

	return project, nil
}

// ListProjects returns the projects the actor can access. Listing is not a
// privileged act: inaccessible rows are filtered silently instead of erroring.
func (s *ProjectService) ListProjects(ctx context.Context, actor *domain.User) ([]*domain.Project, error) {
	r := s.store.Repos()

	projects, err := r.Projects.List(ctx)
	if err != nil {
		return nil, err
	}

	if actor.Role.IsAdmin() {
		return projects, nil
	}

	perms := NewPermissions(r)
	accessible := make([]*domain.Project, 0, len(projects))
	for _, project := range projects {
		ok, err := perms.HasProjectAccess(ctx, actor, project.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			accessible = append(accessible, project)
		}
	}

	return accessible, nil
}

// UpdateProject updates the project's name and description.
// Requires team_leader or better on this specific project.
func (s *ProjectService) UpdateProject(ctx context.Context, actor *domain.User, projectID uuid.UUID, name, description string) (*domain.Project, error) {
	var project *domain.Project

	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		var err error
		project, err = r.Projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}

		if err := requireProjectLevel(ctx, r, actor, projectID, domain.PermissionTeamLeader); err != nil {
			return err
		}

		project.Name = name
		project.Description = description
		return r.Projects.Update(ctx, project)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(actor.ID, "project.update", "project", projectID)
	return project, nil
}

// DeleteProject deletes the project graph in one transaction: the FK chain
// removes its tasks and both assignment kinds with it.
// Requires team_leader or better on this specific project.
func (s *ProjectService) DeleteProject(ctx context.Context, actor *domain.User, projectID uuid.UUID) error {
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		if _, err := r.Projects.GetByID(ctx, projectID); err != nil {
			return err
		}

		if err := requireProjectLevel(ctx, r, actor, projectID, domain.PermissionTeamLeader); err != nil {
			return err
		}

		return r.Projects.Delete(ctx, projectID)
	})
	if err != nil {
		return err
	}

	s.activity.Record(actor.ID, "project.delete", "project", projectID)
	return nil
}

// ListAssignments returns the project's assignments. Requires any access.
func (s *ProjectService) ListAssignments(ctx context.Context, actor *domain.User, projectID uuid.UUID) ([]*domain.Assignment, error) {
	r := s.store.Repos()

	if _, err := r.Projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	if err := requireProjectLevel(ctx, r, actor, projectID, domain.PermissionMember); err != nil {
		return nil, err
	}

	return r.Assignments.ListByResource(ctx, domain.ResourceProject, projectID)
}

// Assign assigns a team or a user to the project.
// Requires team_leader or better on this specific project.
func (s *ProjectService) Assign(ctx context.Context, actor *domain.User, projectID uuid.UUID, assignee domain.Assignee) (*domain.Assignment, error) {
	assignment := &domain.Assignment{
		ID:         uuid.New(),
		ResourceID: projectID,
		Assignee:   assignee,
	}

	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		if _, err := r.Projects.GetByID(ctx, projectID); err != nil {
			return err
		}

		if err := requireProjectLevel(ctx, r, actor, projectID, domain.PermissionTeamLeader); err != nil {
			return err
		}

		if err := ensureAssigneeExists(ctx, r, assignee); err != nil {
			return err
		}

		return r.Assignments.Assign(ctx, domain.ResourceProject, assignment)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(actor.ID, "project.assign", "project", projectID)
	return assignment, nil
}

// Unassign removes an assignment from the project.
// Requires team_leader or better on this specific project.
func (s *ProjectService) Unassign(ctx context.Context, actor *domain.User, projectID, assignmentID uuid.UUID) error {
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		if _, err := r.Projects.GetByID(ctx, projectID); err != nil {
			return err
		}

		if err := requireProjectLevel(ctx, r, actor, projectID, domain.PermissionTeamLeader); err != nil {
			return err
		}

		return r.Assignments.Unassign(ctx, domain.ResourceProject, assignmentID)
	})
	if err != nil {
		return err
	}

	s.activity.Record(actor.ID, "project.unassign", "project", projectID)
	return nil
}

// requireProjectLevel enforces a permission floor on a project
func requireProjectLevel(ctx context.Context, r repository.Repositories, actor *domain.User, projectID uuid.UUID, floor domain.PermissionLevel) error {
	perm, err := NewPermissions(r).GetProjectPermission(ctx, actor, projectID)
	if err != nil {
		return err
	}
	if !perm.AtLeast(floor) {
		return domain.ErrNotAuthorized
	}
	return nil
}

// ensureAssigneeExists checks referential integrity of the polymorphic
// assignee. Both union variants are handled explicitly.
func ensureAssigneeExists(ctx context.Context, r repository.Repositories, assignee domain.Assignee) error {
	switch assignee.Type {
	case domain.AssigneeTeam:
		if _, err := r.Teams.GetByID(ctx, assignee.ID); err != nil {
			return err
		}
		return nil
	case domain.AssigneeUser:
		exists, err := r.Users.Exists(ctx, assignee.ID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrUserNotFound
		}
		return nil
	default:
		return domain.ErrNotFound
	}
}
