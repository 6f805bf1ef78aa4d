package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssigneeType различает два варианта полиморфного assignee
type AssigneeType string

// Варианты assignee: команда или отдельный пользователь
const (
	AssigneeTeam AssigneeType = "team"
	AssigneeUser AssigneeType = "user"
)

// Valid проверяет что тип assignee входит в допустимый набор
func (t AssigneeType) Valid() bool {
	return t == AssigneeTeam || t == AssigneeUser
}

// Assignee представляет tagged union "команда или пользователь".
// Потребители обязаны обрабатывать оба варианта явно (switch по Type).
type Assignee struct {
	Type AssigneeType `json:"type"`
	ID   uuid.UUID    `json:"id"`
}

// ResourceKind различает ресурсы, к которым привязываются назначения
type ResourceKind string

// Виды ресурсов с назначениями
const (
	ResourceProject ResourceKind = "project"
	ResourceTask    ResourceKind = "task"
)

// Assignment связывает проект или задачу с assignee.
// Пара (ресурс, assignee) уникальна.
type Assignment struct {
	ID         uuid.UUID `json:"id"`
	ResourceID uuid.UUID `json:"resource_id"`
	Assignee   Assignee  `json:"assignee"`
	CreatedAt  time.Time `json:"created_at"`
}
