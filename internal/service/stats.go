package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/team-management-service/internal/domain"
	"github.com/aidar/team-management-service/internal/repository"
)

// ProjectStats represents task aggregates for one project
type ProjectStats struct {
	ProjectID   uuid.UUID                 `json:"project_id"`
	TotalTasks  int                       `json:"total_tasks"`
	ByStatus    map[domain.TaskStatus]int `json:"by_status"`
	DonePercent float64                   `json:"done_percent"`
	Assignments int                       `json:"assignments"`
}

// OverallStats represents organization-wide counts
type OverallStats struct {
	Users              int `json:"users"`
	Teams              int `json:"teams"`
	Projects           int `json:"projects"`
	Tasks              int `json:"tasks"`
	ProjectAssignments int `json:"project_assignments"`
	TaskAssignments    int `json:"task_assignments"`
}

// StatsService handles statistics queries
type StatsService struct {
	db    *pgxpool.Pool
	store repository.Store
}

// NewStatsService creates a new StatsService
func NewStatsService(db *pgxpool.Pool, store repository.Store) *StatsService {
	return &StatsService{db: db, store: store}
}

// GetOverallStats returns organization-wide counts. Admin only: the totals
// span resources the actor may not otherwise see.
func (s *StatsService) GetOverallStats(ctx context.Context, actor *domain.User) (*OverallStats, error) {
	if !actor.Role.IsAdmin() {
		return nil, domain.ErrNotAuthorized
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM teams),
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM tasks),
			(SELECT COUNT(*) FROM project_assignments),
			(SELECT COUNT(*) FROM task_assignments)
	`

	var stats OverallStats
	err := s.db.QueryRow(ctx, query).Scan(
		&stats.Users,
		&stats.Teams,
		&stats.Projects,
		&stats.Tasks,
		&stats.ProjectAssignments,
		&stats.TaskAssignments,
	)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// GetProjectStats returns task aggregates for one project.
// Requires any access to the project.
func (s *StatsService) GetProjectStats(ctx context.Context, actor *domain.User, projectID uuid.UUID) (*ProjectStats, error) {
	r := s.store.Repos()

	if _, err := r.Projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	if err := requireProjectLevel(ctx, r, actor, projectID, domain.PermissionMember); err != nil {
		return nil, err
	}

	counts, err := r.Tasks.CountByStatus(ctx, projectID)
	if err != nil {
		return nil, err
	}

	stats := &ProjectStats{
		ProjectID: projectID,
		ByStatus:  counts,
	}
	for _, count := range counts {
		stats.TotalTasks += count
	}
	if stats.TotalTasks > 0 {
		stats.DonePercent = float64(counts[domain.TaskDone]) / float64(stats.TotalTasks) * 100
	}

	assignments, err := r.Assignments.ListByResource(ctx, domain.ResourceProject, projectID)
	if err != nil {
		return nil, err
	}
	stats.Assignments = len(assignments)

	return stats, nil
}
