package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/aidar/team-management-service/internal/domain"
	"github.com/aidar/team-management-service/internal/service"
)

// TeamHandler обрабатывает эндпоинты команд
type TeamHandler struct {
	teamService *service.TeamService
	authService *service.AuthService
}

// NewTeamHandler создает новый TeamHandler
func NewTeamHandler(teamService *service.TeamService, authService *service.AuthService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
		authService: authService,
	}
}

// AddTeamRequest представляет тело запроса на создание команды
type AddTeamRequest struct {
	Name     string    `json:"name"`
	LeaderID uuid.UUID `json:"leader_id"`
}

// AddTeamResponse представляет ответ на создание команды
type AddTeamResponse struct {
	Team *domain.Team `json:"team"`
}

// AddTeam обрабатывает POST /team/add
func (h *TeamHandler) AddTeam(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req AddTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "invalid request body")
		return
	}

	if req.Name == "" || req.LeaderID == uuid.Nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "name and leader_id are required")
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), actor, req.Name, req.LeaderID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, AddTeamResponse{Team: team})
}

// GetTeam обрабатывает GET /team/get?team_id=...
func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	if _, err := resolveActor(r, h.authService); err != nil {
		HandleError(w, r, err)
		return
	}

	teamID, ok := parseUUIDParam(w, r, "team_id")
	if !ok {
		return
	}

	team, err := h.teamService.GetTeam(r.Context(), teamID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, team)
}

// ListTeams обрабатывает GET /team/list
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	if _, err := resolveActor(r, h.authService); err != nil {
		HandleError(w, r, err)
		return
	}

	teams, err := h.teamService.ListTeams(r.Context())
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, teams)
}

// DeleteTeamRequest представляет тело запроса на удаление команды
type DeleteTeamRequest struct {
	TeamID uuid.UUID `json:"team_id"`
}

// DeleteTeam обрабатывает POST /team/delete
func (h *TeamHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req DeleteTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TeamID == uuid.Nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "team_id is required")
		return
	}

	if err := h.teamService.DeleteTeam(r.Context(), actor, req.TeamID); err != nil {
		HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MemberRequest представляет тело запроса на добавление/удаление участника
type MemberRequest struct {
	TeamID uuid.UUID `json:"team_id"`
	UserID uuid.UUID `json:"user_id"`
}

// AddMember обрабатывает POST /team/addMember
func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TeamID == uuid.Nil || req.UserID == uuid.Nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "team_id and user_id are required")
		return
	}

	if err := h.teamService.AddMember(r.Context(), actor, req.TeamID, req.UserID); err != nil {
		HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveMember обрабатывает POST /team/removeMember
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TeamID == uuid.Nil || req.UserID == uuid.Nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "team_id and user_id are required")
		return
	}

	if err := h.teamService.RemoveMember(r.Context(), actor, req.TeamID, req.UserID); err != nil {
		HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetLeaderRequest представляет тело запроса на смену лидера
type SetLeaderRequest struct {
	TeamID   uuid.UUID `json:"team_id"`
	LeaderID uuid.UUID `json:"leader_id"`
}

// SetLeader обрабатывает POST /team/setLeader
func (h *TeamHandler) SetLeader(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req SetLeaderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TeamID == uuid.Nil || req.LeaderID == uuid.Nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "team_id and leader_id are required")
		return
	}

	if err := h.teamService.SetLeader(r.Context(), actor, req.TeamID, req.LeaderID); err != nil {
		HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseUUIDParam извлекает UUID из query-параметра
func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), name+" query parameter is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), name+" must be a valid UUID")
		return uuid.Nil, false
	}

	return id, true
}
