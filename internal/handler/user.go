package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/aidar/team-management-service/internal/domain"
	"github.com/aidar/team-management-service/internal/service"
)

// UserHandler обрабатывает эндпоинты пользователей
type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

// NewUserHandler создает новый UserHandler
func NewUserHandler(userService *service.UserService, authService *service.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
	}
}

// Me обрабатывает GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, actor)
}

// SetRoleRequest представляет тело запроса на смену глобальной роли
type SetRoleRequest struct {
	UserID uuid.UUID         `json:"user_id"`
	Role   domain.GlobalRole `json:"role"`
}

// SetRoleResponse представляет ответ на смену роли
type SetRoleResponse struct {
	User *domain.User `json:"user"`
}

// SetRole обрабатывает POST /users/setRole
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authService)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "invalid request body")
		return
	}

	if req.UserID == uuid.Nil || !req.Role.Valid() {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "user_id and a valid role are required")
		return
	}

	user, err := h.userService.SetRole(r.Context(), actor, req.UserID, req.Role)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, SetRoleResponse{User: user})
}
