package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aidar/team-management-service/internal/domain"
)

// TeamRepository реализует repository.TeamRepository для PostgreSQL
type TeamRepository struct {
	db DB
}

// NewTeamRepository создает новый экземпляр TeamRepository
func NewTeamRepository(db DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create создает новую команду
func (r *TeamRepository) Create(ctx context.Context, team *domain.Team) error {
	query := `
		INSERT INTO teams (id, name, leader_id)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query, team.ID, team.Name, team.LeaderID).Scan(&team.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation
				return domain.ErrTeamExists
			case "23503": // foreign_key_violation (leader_id)
				return domain.ErrUserNotFound
			}
		}
		return err
	}

	return nil
}

// GetByID получает команду со всеми участниками
func (r *TeamRepository) GetByID(ctx context.Context, teamID uuid.UUID) (*domain.Team, error) {
	query := `
		SELECT id, name, leader_id, created_at
		FROM teams
		WHERE id = $1
	`

	var team domain.Team
	err := r.db.QueryRow(ctx, query, teamID).Scan(
		&team.ID,
		&team.Name,
		&team.LeaderID,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, err
	}

	membersQuery := `
		SELECT u.id, u.username
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.team_id = $1
		ORDER BY u.username, u.id
	`

	rows, err := r.db.Query(ctx, membersQuery, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var member domain.TeamMember
		if err := rows.Scan(&member.UserID, &member.Username); err != nil {
			return nil, err
		}
		team.Members = append(team.Members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &team, nil
}

// List возвращает все команды без составов
func (r *TeamRepository) List(ctx context.Context) ([]*domain.Team, error) {
	query := `
		SELECT id, name, leader_id, created_at
		FROM teams
		ORDER BY name, id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.LeaderID, &team.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, &team)
	}

	return teams, rows.Err()
}

// Delete удаляет команду. Membership-строки удаляются каскадом по FK.
func (r *TeamRepository) Delete(ctx context.Context, teamID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTeamNotFound
	}

	return nil
}

// SetLeader заменяет лидера команды
func (r *TeamRepository) SetLeader(ctx context.Context, teamID, leaderID uuid.UUID) error {
	query := `UPDATE teams SET leader_id = $1 WHERE id = $2`

	result, err := r.db.Exec(ctx, query, leaderID, teamID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.ErrUserNotFound
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTeamNotFound
	}

	return nil
}

// AddMember добавляет участника в команду
func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID uuid.UUID) error {
	query := `INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)`

	_, err := r.db.Exec(ctx, query, teamID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation
				return domain.ErrDuplicateMember
			case "23503": // foreign_key_violation
				return domain.ErrNotFound
			}
		}
		return err
	}

	return nil
}

// RemoveMember удаляет участника из команды
func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	query := `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`

	result, err := r.db.Exec(ctx, query, teamID, userID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// IsLeader проверяет что пользователь является лидером команды
func (r *TeamRepository) IsLeader(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM teams WHERE id = $1 AND leader_id = $2)`

	var isLeader bool
	if err := r.db.QueryRow(ctx, query, teamID, userID).Scan(&isLeader); err != nil {
		return false, err
	}

	return isLeader, nil
}

// IsMember проверяет наличие membership-строки.
// Лидер без membership-строки здесь получает false.
func (r *TeamRepository) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)`

	var isMember bool
	if err := r.db.QueryRow(ctx, query, teamID, userID).Scan(&isMember); err != nil {
		return false, err
	}

	return isMember, nil
}

// GetLedTeamIDs возвращает команды, которые пользователь возглавляет
func (r *TeamRepository) GetLedTeamIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT id FROM teams WHERE leader_id = $1 ORDER BY id`

	return r.scanIDs(ctx, query, userID)
}

// GetUserTeamIDs возвращает объединение команд по membership и по лидерству
func (r *TeamRepository) GetUserTeamIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT team_id FROM team_members WHERE user_id = $1
		UNION
		SELECT id FROM teams WHERE leader_id = $1
		ORDER BY 1
	`

	return r.scanIDs(ctx, query, userID)
}

// scanIDs выполняет запрос, возвращающий одну колонку UUID
func (r *TeamRepository) scanIDs(ctx context.Context, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
