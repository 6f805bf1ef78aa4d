package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aidar/team-management-service/internal/domain"
	"github.com/aidar/team-management-service/internal/repository"
)

const defaultTaskPageSize = 50

// TaskService handles business logic for tasks and their assignments
type TaskService struct {
	store    repository.Store
	activity *ActivityService
}

// NewTaskService creates a new TaskService
func NewTaskService(store repository.Store, activity *ActivityService) *TaskService {
	return &TaskService{
		store:    store,
		activity: activity,
	}
}

// CreateTask creates a task in a project. Any project access at all
// (member or better) is sufficient.
func (s *TaskService) CreateTask(ctx context.Context, actor *domain.User, projectID uuid.UUID, name, description string) (*domain.Task, error) {
	task := &domain.Task{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Name:        name,
		Description: description,
		Status:      domain.TaskBacklog,
		CreatedBy:   actor.ID,
	}

	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		if _, err := r.Projects.GetByID(ctx, projectID); err != nil {
			return err
		}

		if err := requireProjectLevel(ctx, r, actor, projectID, domain.PermissionMember); err != nil {
			return err
		}

		return r.Tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(actor.ID, "task.create", "task", task.ID)
	return task, nil
}

// GetTask retrieves a task. A single-resource fetch enforces the hard
// authorization contract.
func (s *TaskService) GetTask(ctx context.Context, actor *domain.User, taskID uuid.UUID) (*domain.Task, error) {
	r := s.store.Repos()

	task, err := r.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	ok, err := NewPermissions(r).HasTaskAccess(ctx, actor, task)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotAuthorized
	}

	return task, nil
}

// ListTasksByProject returns one page of the project's tasks after the
// cursor. Listing has no hard authorization requirement: without project
// access (or for a deleted project) the page is simply empty.
func (s *TaskService) ListTasksByProject(ctx context.Context, actor *domain.User, projectID uuid.UUID, after *repository.TaskCursor, limit int) ([]*domain.Task, error) {
	if limit <= 0 || limit > defaultTaskPageSize {
		limit = defaultTaskPageSize
	}

	r := s.store.Repos()

	ok, err := NewPermissions(r).HasProjectAccess(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*domain.Task{}, nil
	}

	return r.Tasks.ListByProject(ctx, projectID, after, limit)
}

// UpdateTask updates the task's name and description. Members may only
// mutate status, so this path requires team_leader or better.
func (s *TaskService) UpdateTask(ctx context.Context, actor *domain.User, taskID uuid.UUID, name, description string) (*domain.Task, error) {
	var task *domain.Task

	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		var err error
		task, err = r.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}

		perm, err := NewPermissions(r).GetTaskPermission(ctx, actor, task)
		if err != nil {
			return err
		}
		if perm == domain.PermissionMember {
			return fmt.Errorf("members can only update task status: %w", domain.ErrNotAuthorized)
		}
		if !perm.AtLeast(domain.PermissionTeamLeader) {
			return domain.ErrNotAuthorized
		}

		task.Name = name
		task.Description = description
		return r.Tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(actor.ID, "task.update", "task", taskID)
	return task, nil
}

// UpdateTaskStatus updates only the task's status. Member or better.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, actor *domain.User, taskID uuid.UUID, status domain.TaskStatus) (*domain.Task, error) {
	var task *domain.Task

	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		var err error
		task, err = r.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}

		perm, err := NewPermissions(r).GetTaskPermission(ctx, actor, task)
		if err != nil {
			return err
		}
		if !perm.AtLeast(domain.PermissionMember) {
			return domain.ErrNotAuthorized
		}

		if err := r.Tasks.UpdateStatus(ctx, taskID, status); err != nil {
			return err
		}
		task.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(actor.ID, "task.update_status", "task", taskID)
	return task, nil
}

// DeleteTask deletes a task and its assignments. Requires team_leader or
// better at the project level: task-level member is insufficient even for
// a member assigned to that exact task.
func (s *TaskService) DeleteTask(ctx context.Context, actor *domain.User, taskID uuid.UUID) error {
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		task, err := r.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}

		if err := requireProjectLevel(ctx, r, actor, task.ProjectID, domain.PermissionTeamLeader); err != nil {
			return err
		}

		return r.Tasks.Delete(ctx, taskID)
	})
	if err != nil {
		return err
	}

	s.activity.Record(actor.ID, "task.delete", "task", taskID)
	return nil
}

// ListAssignments returns the task's assignments. Requires any task access.
func (s *TaskService) ListAssignments(ctx context.Context, actor *domain.User, taskID uuid.UUID) ([]*domain.Assignment, error) {
	r := s.store.Repos()

	task, err := r.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	ok, err := NewPermissions(r).HasTaskAccess(ctx, actor, task)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotAuthorized
	}

	return r.Assignments.ListByResource(ctx, domain.ResourceTask, taskID)
}

// Assign assigns a team or a user to the task. Requires team_leader or
// better at the project level.
func (s *TaskService) Assign(ctx context.Context, actor *domain.User, taskID uuid.UUID, assignee domain.Assignee) (*domain.Assignment, error) {
	assignment := &domain.Assignment{
		ID:         uuid.New(),
		ResourceID: taskID,
		Assignee:   assignee,
	}

	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		task, err := r.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}

		if err := requireProjectLevel(ctx, r, actor, task.ProjectID, domain.PermissionTeamLeader); err != nil {
			return err
		}

		if err := ensureAssigneeExists(ctx, r, assignee); err != nil {
			return err
		}

		return r.Assignments.Assign(ctx, domain.ResourceTask, assignment)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(actor.ID, "task.assign", "task", taskID)
	return assignment, nil
}

// Unassign removes an assignment from the task. Requires team_leader or
// better at the project level.
func (s *TaskService) Unassign(ctx context.Context, actor *domain.User, taskID, assignmentID uuid.UUID) error {
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		task, err := r.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}

		if err := requireProjectLevel(ctx, r, actor, task.ProjectID, domain.PermissionTeamLeader); err != nil {
			return err
		}

		return r.Assignments.Unassign(ctx, domain.ResourceTask, assignmentID)
	})
	if err != nil {
		return err
	}

	s.activity.Record(actor.ID, "task.unassign", "task", taskID)
	return nil
}
