package domain

import (
	"time"

	"github.com/google/uuid"
)

// GlobalRole представляет глобальную роль пользователя в организации
type GlobalRole string

// Глобальные роли, не зависящие от конкретных команд и проектов
const (
	RoleOwner  GlobalRole = "owner"
	RoleAdmin  GlobalRole = "admin"
	RoleMember GlobalRole = "member"
)

// IsAdmin возвращает true для ролей с полным доступом ко всем ресурсам
func (r GlobalRole) IsAdmin() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Valid проверяет что роль входит в допустимый набор
func (r GlobalRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// User представляет одобренного участника организации
type User struct {
	ID         uuid.UUID  `json:"id"`
	ExternalID string     `json:"external_id"` // Идентификатор во внешнем identity provider
	Username   string     `json:"username"`
	Role       GlobalRole `json:"role"`
	CreatedAt  time.Time  `json:"created_at"`
}
