package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aidar/team-management-service/internal/domain"
	"github.com/aidar/team-management-service/internal/repository"
	"github.com/aidar/team-management-service/internal/service"
)

// taskCursorTimeLayout формат временной части курсора пагинации
const taskCursorTimeLayout = time.RFC3339Nano

var errInvalidCursor = errors.New("invalid cursor")

// TaskHandler обрабатывает эндпоинты задач
type TaskHandler struct {
	taskService *service.TaskService
	authService *service.AuthService
}

// NewTaskHandler создает новый TaskHandler
func NewTaskHandler(taskService *service.TaskService, authService *service.AuthService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		authService: authService,
	}
}

// CreateTaskRequest представляет тело запроса на создание задачи
type CreateTaskRequest struct {
	ProjectID   uuid.UUID `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// TaskResponse представляет ответ с задачей
type TaskResponse struct {
	Task *domain.Task `json:"task"`
}

// CreateTask обрабатывает POST /task/create
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "invalid request body")
		return
	}

	if req.ProjectID == uuid.Nil || req.Name == "" {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "project_id and name are required")
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), actor, req.ProjectID, req.Name, req.Description)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, TaskResponse{Task: task})
}

// GetTask обрабатывает GET /task/get?task_id=...
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	taskID, ok := parseUUIDParam(w, r, "task_id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), actor, taskID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TaskResponse{Task: task})
}

// ListTasksResponse представляет страницу задач с курсором продолжения
type ListTasksResponse struct {
	Tasks      []*domain.Task `json:"tasks"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ListByProject обрабатывает GET /task/listByProject?project_id=...&cursor=...&limit=...
func (h *TaskHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	projectID, ok := parseUUIDParam(w, r, "project_id")
	if !ok {
		return
	}

	after, err := decodeTaskCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "invalid cursor")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "limit must be an integer")
			return
		}
	}

	tasks, err := h.taskService.ListTasksByProject(r.Context(), actor, projectID, after, limit)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	resp := ListTasksResponse{Tasks: tasks}
	if len(tasks) > 0 {
		last := tasks[len(tasks)-1]
		resp.NextCursor = encodeTaskCursor(last)
	}

	RespondWithJSON(w, r, http.StatusOK, resp)
}

// UpdateTaskRequest представляет тело запроса на обновление задачи
type UpdateTaskRequest struct {
	TaskID      uuid.UUID `json:"task_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// UpdateTask обрабатывает POST /task/update
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "invalid request body")
		return
	}

	if req.TaskID == uuid.Nil || req.Name == "" {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "task_id and name are required")
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), actor, req.TaskID, req.Name, req.Description)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TaskResponse{Task: task})
}

// UpdateTaskStatusRequest представляет тело запроса на смену статуса задачи
type UpdateTaskStatusRequest struct {
	TaskID uuid.UUID         `json:"task_id"`
	Status domain.TaskStatus `json:"status"`
}

// UpdateTaskStatus обрабатывает POST /task/updateStatus
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "invalid request body")
		return
	}

	if req.TaskID == uuid.Nil || !req.Status.Valid() {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "task_id and a valid status are required")
		return
	}

	task, err := h.taskService.UpdateTaskStatus(r.Context(), actor, req.TaskID, req.Status)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TaskResponse{Task: task})
}

// DeleteTaskRequest представляет тело запроса на удаление задачи
type DeleteTaskRequest struct {
	TaskID uuid.UUID `json:"task_id"`
}

// DeleteTask обрабатывает POST /task/delete
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req DeleteTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TaskID == uuid.Nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "task_id is required")
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), actor, req.TaskID); err != nil {
		HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignTaskRequest представляет тело запроса на назначение задачи
type AssignTaskRequest struct {
	TaskID   uuid.UUID       `json:"task_id"`
	Assignee domain.Assignee `json:"assignee"`
}

// Assign обрабатывает POST /task/assign
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req AssignTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "invalid request body")
		return
	}

	if req.TaskID == uuid.Nil || !req.Assignee.Type.Valid() || req.Assignee.ID == uuid.Nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "task_id and assignee are required")
		return
	}

	assignment, err := h.taskService.Assign(r.Context(), actor, req.TaskID, req.Assignee)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, AssignResponse{Assignment: assignment})
}

// UnassignTaskRequest представляет тело запроса на снятие назначения задачи
type UnassignTaskRequest struct {
	TaskID       uuid.UUID `json:"task_id"`
	AssignmentID uuid.UUID `json:"assignment_id"`
}

// Unassign обрабатывает POST /task/unassign
func (h *TaskHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req UnassignTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TaskID == uuid.Nil || req.AssignmentID == uuid.Nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "task_id and assignment_id are required")
		return
	}

	if err := h.taskService.Unassign(r.Context(), actor, req.TaskID, req.AssignmentID); err != nil {
		HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAssignments обрабатывает GET /task/assignments?task_id=...
func (h *TaskHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	taskID, ok := parseUUIDParam(w, r, "task_id")
	if !ok {
		return
	}

	assignments, err := h.taskService.ListAssignments(r.Context(), actor, taskID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, assignments)
}

// encodeTaskCursor кодирует позицию пагинации в непрозрачную строку
func encodeTaskCursor(task *domain.Task) string {
	raw := task.CreatedAt.Format(taskCursorTimeLayout) + "|" + task.ID.String()
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// decodeTaskCursor разбирает курсор; пустая строка означает первую страницу
func decodeTaskCursor(encoded string) (*repository.TaskCursor, error) {
	if encoded == "" {
		return nil, nil
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return nil, errInvalidCursor
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, err
	}

	return &repository.TaskCursor{CreatedAt: parts[0], ID: id}, nil
}
