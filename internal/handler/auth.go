package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aidar/team-management-service/internal/domain"
	"github.com/aidar/team-management-service/internal/service"
)

// AuthHandler обрабатывает эндпоинты аутентификации
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler создает новый AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRequest представляет тело запроса на регистрацию
type RegisterRequest struct {
	ExternalID string `json:"external_id"`
	Username   string `json:"username"`
}

// RegisterResponse представляет ответ на регистрацию
type RegisterResponse struct {
	User *domain.User `json:"user"`
}

// Register обрабатывает POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "invalid request body")
		return
	}

	if req.ExternalID == "" || req.Username == "" {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "external_id and username are required")
		return
	}

	user, err := h.authService.Register(r.Context(), req.ExternalID, req.Username)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, RegisterResponse{User: user})
}

// LoginRequest представляет тело запроса на логин
type LoginRequest struct {
	ExternalID string `json:"external_id"`
}

// LoginResponse представляет тело ответа на логин
type LoginResponse struct {
	Token string `json:"token"`
}

// Login обрабатывает POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "invalid request body")
		return
	}

	if req.ExternalID == "" {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeBadRequest), "external_id is required")
		return
	}

	token, err := h.authService.Login(r.Context(), req.ExternalID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, LoginResponse{Token: token})
}
