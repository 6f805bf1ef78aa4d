package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aidar/team-management-service/internal/repository"
)

const activityWriteTimeout = 5 * time.Second

// ActivityService records audit events for completed mutations.
// Writes are fired after the primary mutation commits and are best-effort:
// a failed write is logged and never propagated to the caller.
type ActivityService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewActivityService creates a new ActivityService
func NewActivityService(store repository.Store, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		store:  store,
		logger: logger,
	}
}

// Record schedules an activity write describing what changed and by whom.
// It returns immediately; the write runs on its own goroutine with a fresh
// context so that it outlives the request that triggered it.
func (s *ActivityService) Record(actorID uuid.UUID, action, resourceType string, resourceID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), activityWriteTimeout)
		defer cancel()

		if err := s.store.Repos().Activity.Record(ctx, actorID, action, resourceType, resourceID); err != nil {
			s.logger.Warn("failed to record activity",
				"action", action,
				"resource_type", resourceType,
				"resource_id", resourceID,
				"error", err,
			)
		}
	}()
}
