package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aidar/team-management-service/internal/domain"
)

// AssignmentRepository реализует repository.AssignmentRepository для PostgreSQL.
// Оба вида назначений хранятся в одинаковых по форме таблицах;
// вид ресурса выбирает таблицу и колонку внешнего ключа.
type AssignmentRepository struct {
	db DB
}

// NewAssignmentRepository создает новый экземпляр AssignmentRepository
func NewAssignmentRepository(db DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// tableFor возвращает таблицу и колонку ресурса для вида назначений
func tableFor(kind domain.ResourceKind) (table, fkColumn string, err error) {
	switch kind {
	case domain.ResourceProject:
		return "project_assignments", "project_id", nil
	case domain.ResourceTask:
		return "task_assignments", "task_id", nil
	default:
		return "", "", fmt.Errorf("unknown resource kind: %q", kind)
	}
}

// ListByResource возвращает назначения проекта или задачи
func (r *AssignmentRepository) ListByResource(ctx context.Context, kind domain.ResourceKind, resourceID uuid.UUID) ([]*domain.Assignment, error) {
	table, fkColumn, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, %s, assignee_type, assignee_id, created_at
		FROM %s
		WHERE %s = $1
		ORDER BY created_at, id
	`, fkColumn, table, fkColumn)

	rows, err := r.db.Query(ctx, query, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.ID, &a.ResourceID, &a.Assignee.Type, &a.Assignee.ID, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, &a)
	}

	return assignments, rows.Err()
}

// HasDirectUserAssignment проверяет наличие назначения типа user на ресурс
func (r *AssignmentRepository) HasDirectUserAssignment(ctx context.Context, kind domain.ResourceKind, resourceID, userID uuid.UUID) (bool, error) {
	table, fkColumn, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`
		SELECT EXISTS(
			SELECT 1 FROM %s
			WHERE %s = $1 AND assignee_type = 'user' AND assignee_id = $2
		)
	`, table, fkColumn)

	var exists bool
	if err := r.db.QueryRow(ctx, query, resourceID, userID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// HasTeamAssignment проверяет что хотя бы одна из команд назначена на ресурс
func (r *AssignmentRepository) HasTeamAssignment(ctx context.Context, kind domain.ResourceKind, resourceID uuid.UUID, teamIDs []uuid.UUID) (bool, error) {
	if len(teamIDs) == 0 {
		return false, nil
	}

	table, fkColumn, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`
		SELECT EXISTS(
			SELECT 1 FROM %s
			WHERE %s = $1 AND assignee_type = 'team' AND assignee_id = ANY($2)
		)
	`, table, fkColumn)

	var exists bool
	if err := r.db.QueryRow(ctx, query, resourceID, teamIDs).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// Assign создает назначение
func (r *AssignmentRepository) Assign(ctx context.Context, kind domain.ResourceKind, assignment *domain.Assignment) error {
	table, fkColumn, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, %s, assignee_type, assignee_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, table, fkColumn)

	err = r.db.QueryRow(ctx, query,
		assignment.ID, assignment.ResourceID, assignment.Assignee.Type, assignment.Assignee.ID,
	).Scan(&assignment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation
				return domain.ErrDuplicateAssignment
			case "23503": // foreign_key_violation (проект или задача)
				return domain.ErrNotFound
			}
		}
		return err
	}

	return nil
}

// Unassign удаляет назначение по его ID
func (r *AssignmentRepository) Unassign(ctx context.Context, kind domain.ResourceKind, assignmentID uuid.UUID) error {
	table, _, err := tableFor(kind)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), assignmentID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrAssignmentNotFound
	}

	return nil
}

// DeleteByTeamAssignee удаляет все назначения обоих видов, где assignee -- команда.
// Используется в delete-graph при удалении команды: FK на полиморфный assignee
// отсутствует, поэтому каскад выполняется явно.
func (r *AssignmentRepository) DeleteByTeamAssignee(ctx context.Context, teamID uuid.UUID) error {
	for _, table := range []string{"project_assignments", "task_assignments"} {
		query := fmt.Sprintf(`
			DELETE FROM %s
			WHERE assignee_type = 'team' AND assignee_id = $1
		`, table)

		if _, err := r.db.Exec(ctx, query, teamID); err != nil {
			return err
		}
	}

	return nil
}
