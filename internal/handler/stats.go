package handler

import (
	"net/http"

	"github.com/aidar/team-management-service/internal/service"
)

// StatsHandler обрабатывает эндпоинты статистики
type StatsHandler struct {
	statsService *service.StatsService
	authService  *service.AuthService
}

// NewStatsHandler создает новый StatsHandler
func NewStatsHandler(statsService *service.StatsService, authService *service.AuthService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		authService:  authService,
	}
}

// GetStats обрабатывает GET /stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	stats, err := h.statsService.GetOverallStats(r.Context(), actor)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, stats)
}

// GetProjectStats обрабатывает GET /stats/project?project_id=...
func (h *StatsHandler) GetProjectStats(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	projectID, ok := parseUUIDParam(w, r, "project_id")
	if !ok {
		return
	}

	stats, err := h.statsService.GetProjectStats(r.Context(), actor, projectID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, stats)
}
