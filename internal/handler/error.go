package handler

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/aidar/team-management-service/internal/domain"
)

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail содержит код и описание ошибки
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondWithError отправляет ответ с ошибкой
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// HandleError преобразует доменные ошибки в HTTP ответы
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.MapErrorToCode(err)

	switch code {
	case domain.CodeNotAuthenticated:
		RespondWithError(w, r, http.StatusUnauthorized, string(code), "not authenticated")
	case domain.CodeNotAuthorized:
		// Сообщение берется из ошибки: сервисы уточняют причину отказа
		// (например "members can only update task status")
		RespondWithError(w, r, http.StatusForbidden, string(code), err.Error())
	case domain.CodeNotFound:
		RespondWithError(w, r, http.StatusNotFound, string(code), "resource not found")
	case domain.CodeUserExists:
		RespondWithError(w, r, http.StatusConflict, string(code), "user already exists")
	case domain.CodeTeamExists:
		RespondWithError(w, r, http.StatusConflict, string(code), "team already exists")
	case domain.CodeDuplicateMember:
		RespondWithError(w, r, http.StatusConflict, string(code), "user is already a team member")
	case domain.CodeDuplicateAssignment:
		RespondWithError(w, r, http.StatusConflict, string(code), "assignment already exists")
	case domain.CodeInvariantViolation:
		RespondWithError(w, r, http.StatusConflict, string(code), "team leader cannot be removed as a member")
	default:
		RespondWithError(w, r, http.StatusInternalServerError, string(domain.CodeInternal), "internal server error")
	}
}
