package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/aidar/team-management-service/internal/service"
)

// ContextKey это кастомный тип для ключей контекста
type ContextKey string

// ExternalIDKey ключ контекста для идентификатора внешнего identity provider
const ExternalIDKey ContextKey = "external_id"

// AuthMiddleware создает middleware для валидации JWT токенов.
// Middleware только проверяет токен и кладет внешний идентификатор в контекст;
// привязку к внутреннему пользователю выполняет identity resolver
// (AuthService.ResolveUser) уже внутри обработчика.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Получаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":{"code":"NOT_AUTHENTICATED","message":"missing authorization header"}}`, http.StatusUnauthorized)
				return
			}

			// Проверяем формат Bearer
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, `{"error":{"code":"NOT_AUTHENTICATED","message":"invalid authorization header format"}}`, http.StatusUnauthorized)
				return
			}

			token := parts[1]

			// Валидируем токен
			claims, err := authService.ValidateToken(token)
			if err != nil {
				http.Error(w, `{"error":{"code":"NOT_AUTHENTICATED","message":"invalid or expired token"}}`, http.StatusUnauthorized)
				return
			}

			// Добавляем внешний идентификатор в контекст
			ctx := context.WithValue(r.Context(), ExternalIDKey, claims.ExternalID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetExternalIDFromContext извлекает внешний идентификатор из контекста.
// Пустая строка означает что principal не был разрешен.
func GetExternalIDFromContext(ctx context.Context) string {
	externalID, ok := ctx.Value(ExternalIDKey).(string)
	if !ok {
		return ""
	}
	return externalID
}
