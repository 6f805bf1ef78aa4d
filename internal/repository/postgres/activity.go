package postgres

import (
	"context"

	"github.com/google/uuid"
)

// ActivityRepository реализует repository.ActivityRepository для PostgreSQL
type ActivityRepository struct {
	db DB
}

// NewActivityRepository создает новый экземпляр ActivityRepository
func NewActivityRepository(db DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Record добавляет запись о выполненной мутации
func (r *ActivityRepository) Record(ctx context.Context, actorID uuid.UUID, action, resourceType string, resourceID uuid.UUID) error {
	query := `
		INSERT INTO activity (actor_id, action, resource_type, resource_id)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query, actorID, action, resourceType, resourceID)
	return err
}
