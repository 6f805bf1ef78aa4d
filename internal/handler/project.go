package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/aidar/team-management-service/internal/domain"
	"github.com/aidar/team-management-service/internal/service"
)

// ProjectHandler обрабатывает эндпоинты проектов
type ProjectHandler struct {
	projectService *service.ProjectService
	authService    *service.AuthService
}

// NewProjectHandler создает новый ProjectHandler
func NewProjectHandler(projectService *service.ProjectService, authService *service.AuthService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		authService:    authService,
	}
}

// CreateProjectRequest представляет тело запроса на создание проекта
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProjectResponse представляет ответ с проектом
type ProjectResponse struct {
	Project *domain.Project `json:"project"`
}

// CreateProject обрабатывает POST /project/create
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "invalid request body")
		return
	}

	if req.Name == "" {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "name is required")
		return
	}

	project, err := h.projectService.CreateProject(r.Context(), actor, req.Name, req.Description)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, ProjectResponse{Project: project})
}

// GetProject обрабатывает GET /project/get?project_id=...
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	projectID, ok := parseUUIDParam(w, r, "project_id")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(r.Context(), actor, projectID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, ProjectResponse{Project: project})
}

// ListProjects обрабатывает GET /project/list
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	projects, err := h.projectService.ListProjects(r.Context(), actor)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, projects)
}

// UpdateProjectRequest представляет тело запроса на обновление проекта
type UpdateProjectRequest struct {
	ProjectID   uuid.UUID `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// UpdateProject обрабатывает POST /project/update
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "invalid request body")
		return
	}

	if req.ProjectID == uuid.Nil || req.Name == "" {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "project_id and name are required")
		return
	}

	project, err := h.projectService.UpdateProject(r.Context(), actor, req.ProjectID, req.Name, req.Description)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, ProjectResponse{Project: project})
}

// DeleteProjectRequest представляет тело запроса на удаление проекта
type DeleteProjectRequest struct {
	ProjectID uuid.UUID `json:"project_id"`
}

// DeleteProject обрабатывает POST /project/delete
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req DeleteProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProjectID == uuid.Nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "project_id is required")
		return
	}

	if err := h.projectService.DeleteProject(r.Context(), actor, req.ProjectID); err != nil {
		HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignRequest представляет тело запроса на назначение
type AssignRequest struct {
	ProjectID uuid.UUID       `json:"project_id"`
	Assignee  domain.Assignee `json:"assignee"`
}

// AssignResponse представляет ответ с созданным назначением
type AssignResponse struct {
	Assignment *domain.Assignment `json:"assignment"`
}

// Assign обрабатывает POST /project/assign
func (h *ProjectHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "invalid request body")
		return
	}

	if req.ProjectID == uuid.Nil || !req.Assignee.Type.Valid() || req.Assignee.ID == uuid.Nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "project_id and assignee are required")
		return
	}

	assignment, err := h.projectService.Assign(r.Context(), actor, req.ProjectID, req.Assignee)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, AssignResponse{Assignment: assignment})
}

// UnassignRequest представляет тело запроса на снятие назначения
type UnassignRequest struct {
	ProjectID    uuid.UUID `json:"project_id"`
	AssignmentID uuid.UUID `json:"assignment_id"`
}

// Unassign обрабатывает POST /project/unassign
func (h *ProjectHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req UnassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProjectID == uuid.Nil || req.AssignmentID == uuid.Nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "project_id and assignment_id are required")
		return
	}

	if err := h.projectService.Unassign(r.Context(), actor, req.ProjectID, req.AssignmentID); err != nil {
		HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAssignments обрабатывает GET /project/assignments?project_id=...
func (h *ProjectHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	projectID, ok := parseUUIDParam(w, r, "project_id")
	if !ok {
		return
	}

	assignments, err := h.projectService.ListAssignments(r.Context(), actor, projectID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, assignments)
}
