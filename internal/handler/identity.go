package handler

import (
	"net/http"

	"github.com/aidar/team-management-service/internal/domain"
	"github.com/aidar/team-management-service/internal/middleware"
	"github.com/aidar/team-management-service/internal/service"
)

// resolveActor разрешает текущего пользователя из контекста запроса.
// Отсутствие токена и токен без привязанного пользователя дают разные
// ошибки, но обе трактуются как "не аутентифицирован".
func resolveActor(r *http.Request, auth *service.AuthService) (*domain.User, error) {
	externalID := middleware.GetExternalIDFromContext(r.Context())
	return auth.ResolveUser(r.Context(), externalID)
}
