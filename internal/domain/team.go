package domain

import (
	"time"

	"github.com/google/uuid"
)

// Team представляет группу пользователей с ровно одним лидером
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	LeaderID  uuid.UUID `json:"leader_id"`
	CreatedAt time.Time `json:"created_at"`

	// Members заполняется только при выборке команды целиком.
	// Лидер входит в команду через LeaderID, а не через строку membership.
	Members []TeamMember `json:"members,omitempty"`
}

// TeamMember представляет пользователя в составе команды (используется в Team.Members)
type TeamMember struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}
