package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aidar/team-management-service/internal/domain"
	"github.com/aidar/team-management-service/internal/repository"
)

// memDB is a shared in-memory backing store for the fake repositories.
// It mirrors the error behavior of the postgres implementations closely
// enough for service-level tests.
type memDB struct {
	users       map[uuid.UUID]*domain.User
	byExternal  map[string]uuid.UUID
	teams       map[uuid.UUID]*domain.Team
	members     map[uuid.UUID]map[uuid.UUID]bool // teamID -> set of userIDs
	projects    map[uuid.UUID]*domain.Project
	tasks       map[uuid.UUID]*domain.Task
	assignments map[domain.ResourceKind][]*domain.Assignment

	activityMu sync.Mutex
	activity   []string // activity writes happen on their own goroutines
}

func newMemDB() *memDB {
	return &memDB{
		users:      map[uuid.UUID]*domain.User{},
		byExternal: map[string]uuid.UUID{},
		teams:      map[uuid.UUID]*domain.Team{},
		members:    map[uuid.UUID]map[uuid.UUID]bool{},
		projects:   map[uuid.UUID]*domain.Project{},
		tasks:      map[uuid.UUID]*domain.Task{},
		assignments: map[domain.ResourceKind][]*domain.Assignment{
			domain.ResourceProject: {},
			domain.ResourceTask:    {},
		},
	}
}

// fakeStore implements repository.Store over memDB. InTx simply runs the
// callback against the same repositories: the in-memory store has no
// transaction semantics to emulate.
type fakeStore struct {
	db *memDB
}

func newFakeStore() *fakeStore {
	return &fakeStore{db: newMemDB()}
}

func (s *fakeStore) Repos() repository.Repositories {
	return repository.Repositories{
		Users:       &fakeUserRepo{db: s.db},
		Teams:       &fakeTeamRepo{db: s.db},
		Projects:    &fakeProjectRepo{db: s.db},
		Tasks:       &fakeTaskRepo{db: s.db},
		Assignments: &fakeAssignmentRepo{db: s.db},
		Activity:    &fakeActivityRepo{db: s.db},
	}
}

func (s *fakeStore) InTx(ctx context.Context, fn func(r repository.Repositories) error) error {
	return fn(s.Repos())
}

type fakeUserRepo struct{ db *memDB }

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if _, ok := r.db.byExternal[user.ExternalID]; ok {
		return domain.ErrUserExists
	}
	user.CreatedAt = time.Now()
	r.db.users[user.ID] = user
	r.db.byExternal[user.ExternalID] = user.ID
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, ok := r.db.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	id, ok := r.db.byExternal[externalID]
	if !ok {
		return nil, nil
	}
	return r.db.users[id], nil
}

func (r *fakeUserRepo) SetRole(ctx context.Context, userID uuid.UUID, role domain.GlobalRole) error {
	user, ok := r.db.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Role = role
	return nil
}

func (r *fakeUserRepo) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, ok := r.db.users[userID]
	return ok, nil
}

type fakeTeamRepo struct{ db *memDB }

func (r *fakeTeamRepo) Create(ctx context.Context, team *domain.Team) error {
	for _, existing := range r.db.teams {
		if existing.Name == team.Name {
			return domain.ErrTeamExists
		}
	}
	team.CreatedAt = time.Now()
	r.db.teams[team.ID] = team
	r.db.members[team.ID] = map[uuid.UUID]bool{}
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, teamID uuid.UUID) (*domain.Team, error) {
	team, ok := r.db.teams[teamID]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	return team, nil
}

func (r *fakeTeamRepo) List(ctx context.Context) ([]*domain.Team, error) {
	var teams []*domain.Team
	for _, team := range r.db.teams {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, teamID uuid.UUID) error {
	if _, ok := r.db.teams[teamID]; !ok {
		return domain.ErrTeamNotFound
	}
	delete(r.db.teams, teamID)
	delete(r.db.members, teamID)
	return nil
}

func (r *fakeTeamRepo) SetLeader(ctx context.Context, teamID, leaderID uuid.UUID) error {
	team, ok := r.db.teams[teamID]
	if !ok {
		return domain.ErrTeamNotFound
	}
	team.LeaderID = leaderID
	return nil
}

func (r *fakeTeamRepo) AddMember(ctx context.Context, teamID, userID uuid.UUID) error {
	members, ok := r.db.members[teamID]
	if !ok {
		return domain.ErrNotFound
	}
	if members[userID] {
		return domain.ErrDuplicateMember
	}
	members[userID] = true
	return nil
}

func (r *fakeTeamRepo) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	members, ok := r.db.members[teamID]
	if !ok || !members[userID] {
		return domain.ErrNotFound
	}
	delete(members, userID)
	return nil
}

func (r *fakeTeamRepo) IsLeader(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	team, ok := r.db.teams[teamID]
	return ok && team.LeaderID == userID, nil
}

func (r *fakeTeamRepo) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	return r.db.members[teamID][userID], nil
}

func (r *fakeTeamRepo) GetLedTeamIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, team := range r.db.teams {
		if team.LeaderID == userID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeTeamRepo) GetUserTeamIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for id, team := range r.db.teams {
		if team.LeaderID == userID && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for teamID, members := range r.db.members {
		if members[userID] && !seen[teamID] {
			seen[teamID] = true
			ids = append(ids, teamID)
		}
	}
	return ids, nil
}

type fakeProjectRepo struct{ db *memDB }

func (r *fakeProjectRepo) Create(ctx context.Context, project *domain.Project) error {
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	r.db.projects[project.ID] = project
	return nil
}

func (r *fakeProjectRepo) GetByID(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	project, ok := r.db.projects[projectID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return project, nil
}

func (r *fakeProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	var projects []*domain.Project
	for _, project := range r.db.projects {
		projects = append(projects, project)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})
	return projects, nil
}

func (r *fakeProjectRepo) Update(ctx context.Context, project *domain.Project) error {
	if _, ok := r.db.projects[project.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	project.UpdatedAt = time.Now()
	r.db.projects[project.ID] = project
	return nil
}

// Delete emulates the FK cascade: tasks and both assignment kinds go with
// the project.
func (r *fakeProjectRepo) Delete(ctx context.Context, projectID uuid.UUID) error {
	if _, ok := r.db.projects[projectID]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.db.projects, projectID)

	for taskID, task := range r.db.tasks {
		if task.ProjectID == projectID {
			delete(r.db.tasks, taskID)
			removeAssignments(r.db, domain.ResourceTask, func(a *domain.Assignment) bool {
				return a.ResourceID == taskID
			})
		}
	}
	removeAssignments(r.db, domain.ResourceProject, func(a *domain.Assignment) bool {
		return a.ResourceID == projectID
	})
	return nil
}

type fakeTaskRepo struct{ db *memDB }

func (r *fakeTaskRepo) Create(ctx context.Context, task *domain.Task) error {
	if _, ok := r.db.projects[task.ProjectID]; !ok {
		return domain.ErrProjectNotFound
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.db.tasks[task.ID] = task
	return nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, ok := r.db.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (r *fakeTaskRepo) ListByProject(ctx context.Context, projectID uuid.UUID, after *repository.TaskCursor, limit int) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for _, task := range r.db.tasks {
		if task.ProjectID == projectID {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID.String() < tasks[j].ID.String()
	})
	if after != nil {
		for i, task := range tasks {
			if task.ID == after.ID {
				tasks = tasks[i+1:]
				break
			}
		}
	}
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *domain.Task) error {
	if _, ok := r.db.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	task.UpdatedAt = time.Now()
	r.db.tasks[task.ID] = task
	return nil
}

func (r *fakeTaskRepo) UpdateStatus(ctx context.Context, taskID uuid.UUID, status domain.TaskStatus) error {
	task, ok := r.db.tasks[taskID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	task.Status = status
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, taskID uuid.UUID) error {
	if _, ok := r.db.tasks[taskID]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.db.tasks, taskID)
	removeAssignments(r.db, domain.ResourceTask, func(a *domain.Assignment) bool {
		return a.ResourceID == taskID
	})
	return nil
}

func (r *fakeTaskRepo) CountByStatus(ctx context.Context, projectID uuid.UUID) (map[domain.TaskStatus]int, error) {
	counts := map[domain.TaskStatus]int{}
	for _, task := range r.db.tasks {
		if task.ProjectID == projectID {
			counts[task.Status]++
		}
	}
	return counts, nil
}

type fakeAssignmentRepo struct{ db *memDB }

func (r *fakeAssignmentRepo) ListByResource(ctx context.Context, kind domain.ResourceKind, resourceID uuid.UUID) ([]*domain.Assignment, error) {
	var result []*domain.Assignment
	for _, a := range r.db.assignments[kind] {
		if a.ResourceID == resourceID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *fakeAssignmentRepo) HasDirectUserAssignment(ctx context.Context, kind domain.ResourceKind, resourceID, userID uuid.UUID) (bool, error) {
	for _, a := range r.db.assignments[kind] {
		if a.ResourceID == resourceID && a.Assignee.Type == domain.AssigneeUser && a.Assignee.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAssignmentRepo) HasTeamAssignment(ctx context.Context, kind domain.ResourceKind, resourceID uuid.UUID, teamIDs []uuid.UUID) (bool, error) {
	set := map[uuid.UUID]bool{}
	for _, id := range teamIDs {
		set[id] = true
	}
	for _, a := range r.db.assignments[kind] {
		if a.ResourceID == resourceID && a.Assignee.Type == domain.AssigneeTeam && set[a.Assignee.ID] {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAssignmentRepo) Assign(ctx context.Context, kind domain.ResourceKind, assignment *domain.Assignment) error {
	for _, a := range r.db.assignments[kind] {
		if a.ResourceID == assignment.ResourceID && a.Assignee == assignment.Assignee {
			return domain.ErrDuplicateAssignment
		}
	}
	assignment.CreatedAt = time.Now()
	r.db.assignments[kind] = append(r.db.assignments[kind], assignment)
	return nil
}

func (r *fakeAssignmentRepo) Unassign(ctx context.Context, kind domain.ResourceKind, assignmentID uuid.UUID) error {
	for i, a := range r.db.assignments[kind] {
		if a.ID == assignmentID {
			r.db.assignments[kind] = append(r.db.assignments[kind][:i], r.db.assignments[kind][i+1:]...)
			return nil
		}
	}
	return domain.ErrAssignmentNotFound
}

func (r *fakeAssignmentRepo) DeleteByTeamAssignee(ctx context.Context, teamID uuid.UUID) error {
	for _, kind := range []domain.ResourceKind{domain.ResourceProject, domain.ResourceTask} {
		removeAssignments(r.db, kind, func(a *domain.Assignment) bool {
			return a.Assignee.Type == domain.AssigneeTeam && a.Assignee.ID == teamID
		})
	}
	return nil
}

type fakeActivityRepo struct{ db *memDB }

func (r *fakeActivityRepo) Record(ctx context.Context, actorID uuid.UUID, action, resourceType string, resourceID uuid.UUID) error {
	r.db.activityMu.Lock()
	defer r.db.activityMu.Unlock()
	r.db.activity = append(r.db.activity, action)
	return nil
}

// removeAssignments drops every assignment of the kind matching the predicate
func removeAssignments(db *memDB, kind domain.ResourceKind, match func(*domain.Assignment) bool) {
	kept := db.assignments[kind][:0]
	for _, a := range db.assignments[kind] {
		if !match(a) {
			kept = append(kept, a)
		}
	}
	db.assignments[kind] = kept
}
