package domain

import "errors"

// Доменные ошибки сервиса
var (
	// ErrNotAuthenticated возвращается когда principal не разрешен (нет токена)
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrIdentityNotLinked возвращается когда токен валиден, но внешняя
	// учетная запись не привязана к пользователю сервиса
	ErrIdentityNotLinked = errors.New("identity is not linked to a user")

	// ErrInvalidToken возвращается когда JWT токен невалиден
	ErrInvalidToken = errors.New("invalid token")

	// ErrNotAuthorized возвращается когда уровень доступа ниже требуемого
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotFound возвращается когда ресурс не найден
	ErrNotFound = errors.New("resource not found")

	// ErrUserNotFound возвращается когда пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrTeamNotFound возвращается когда команда не найдена
	ErrTeamNotFound = errors.New("team not found")

	// ErrProjectNotFound возвращается когда проект не найден
	ErrProjectNotFound = errors.New("project not found")

	// ErrTaskNotFound возвращается когда задача не найдена
	ErrTaskNotFound = errors.New("task not found")

	// ErrAssignmentNotFound возвращается когда назначение не найдено
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrUserExists возвращается при повторной регистрации внешней учетной записи
	ErrUserExists = errors.New("user already exists")

	// ErrTeamExists возвращается при попытке создать команду с занятым именем
	ErrTeamExists = errors.New("team already exists")

	// ErrDuplicateMember возвращается при повторном добавлении участника в команду
	ErrDuplicateMember = errors.New("user is already a team member")

	// ErrDuplicateAssignment возвращается при повторном назначении той же пары (ресурс, assignee)
	ErrDuplicateAssignment = errors.New("assignment already exists")

	// ErrLeaderRemoval возвращается при попытке удалить лидера через путь удаления участника
	ErrLeaderRemoval = errors.New("team leader cannot be removed as a member")
)

// ErrorCode представляет коды ошибок API
type ErrorCode string

// Коды ошибок, возвращаемые в теле ответа
const (
	CodeNotAuthenticated     ErrorCode = "NOT_AUTHENTICATED"
	CodeNotAuthorized        ErrorCode = "NOT_AUTHORIZED"
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeUserExists           ErrorCode = "USER_EXISTS"
	CodeTeamExists           ErrorCode = "TEAM_EXISTS"
	CodeDuplicateMember      ErrorCode = "DUPLICATE_MEMBER"
	CodeDuplicateAssignment  ErrorCode = "DUPLICATE_ASSIGNMENT"
	CodeInvariantViolation   ErrorCode = "INVARIANT_VIOLATION"
	CodeBadRequest           ErrorCode = "BAD_REQUEST"
	CodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// MapErrorToCode преобразует доменные ошибки в коды ошибок API
func MapErrorToCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrIdentityNotLinked),
		errors.Is(err, ErrInvalidToken):
		return CodeNotAuthenticated
	case errors.Is(err, ErrNotAuthorized):
		return CodeNotAuthorized
	case errors.Is(err, ErrUserExists):
		return CodeUserExists
	case errors.Is(err, ErrTeamExists):
		return CodeTeamExists
	case errors.Is(err, ErrDuplicateMember):
		return CodeDuplicateMember
	case errors.Is(err, ErrDuplicateAssignment):
		return CodeDuplicateAssignment
	case errors.Is(err, ErrLeaderRemoval):
		return CodeInvariantViolation
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrTeamNotFound), errors.Is(err, ErrProjectNotFound),
		errors.Is(err, ErrTaskNotFound), errors.Is(err, ErrAssignmentNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}
