package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/aidar/team-management-service/internal/domain"
)

// Store предоставляет доступ к репозиториям и транзакциям.
// Каждая точка входа сервиса выполняется либо одним запросом через Repos(),
// либо целиком внутри одной транзакции через InTx (проверка прав и мутация
// коммитятся атомарно).
type Store interface {
	// Repos возвращает репозитории, привязанные к пулу соединений
	Repos() Repositories

	// InTx выполняет fn внутри одной транзакции; репозитории в fn привязаны к ней
	InTx(ctx context.Context, fn func(r Repositories) error) error
}

// Repositories объединяет все репозитории сервиса
type Repositories struct {
	Users       UserRepository
	Teams       TeamRepository
	Projects    ProjectRepository
	Tasks       TaskRepository
	Assignments AssignmentRepository
	Activity    ActivityRepository
}

// UserRepository определяет методы для работы с данными пользователей
type UserRepository interface {
	// Create создает нового пользователя
	Create(ctx context.Context, user *domain.User) error

	// GetByID получает пользователя по ID
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetByExternalID получает пользователя по идентификатору внешнего identity provider.
	// Возвращает (nil, nil) если внешняя учетная запись не привязана.
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)

	// SetRole обновляет глобальную роль пользователя
	SetRole(ctx context.Context, userID uuid.UUID, role domain.GlobalRole) error

	// Exists проверяет существование пользователя
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// TeamRepository определяет методы для работы с командами и их составом
type TeamRepository interface {
	// Create создает новую команду
	Create(ctx context.Context, team *domain.Team) error

	// GetByID получает команду со всеми участниками
	GetByID(ctx context.Context, teamID uuid.UUID) (*domain.Team, error)

	// List возвращает все команды (без составов)
	List(ctx context.Context) ([]*domain.Team, error)

	// Delete удаляет команду вместе с её membership-строками
	Delete(ctx context.Context, teamID uuid.UUID) error

	// SetLeader заменяет лидера команды
	SetLeader(ctx context.Context, teamID, leaderID uuid.UUID) error

	// AddMember добавляет участника в команду
	AddMember(ctx context.Context, teamID, userID uuid.UUID) error

	// RemoveMember удаляет участника из команды
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error

	// IsLeader проверяет что пользователь является лидером команды
	IsLeader(ctx context.Context, teamID, userID uuid.UUID) (bool, error)

	// IsMember проверяет наличие membership-строки для пары (команда, пользователь).
	// Лидерство учитывается отдельно и здесь НЕ дает true.
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)

	// GetLedTeamIDs возвращает команды, которые пользователь возглавляет
	GetLedTeamIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// GetUserTeamIDs возвращает объединение команд, где пользователь состоит
	// по membership-строке, и команд, которые он возглавляет
	GetUserTeamIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// ProjectRepository определяет методы для работы с проектами
type ProjectRepository interface {
	// Create создает новый проект
	Create(ctx context.Context, project *domain.Project) error

	// GetByID получает проект по ID
	GetByID(ctx context.Context, projectID uuid.UUID) (*domain.Project, error)

	// List возвращает все проекты
	List(ctx context.Context) ([]*domain.Project, error)

	// Update обновляет имя и описание проекта
	Update(ctx context.Context, project *domain.Project) error

	// Delete удаляет проект вместе с задачами и назначениями обоих видов
	Delete(ctx context.Context, projectID uuid.UUID) error
}

// TaskCursor задает позицию keyset-пагинации списка задач
type TaskCursor struct {
	CreatedAt string    // RFC3339Nano
	ID        uuid.UUID
}

// TaskRepository определяет методы для работы с задачами
type TaskRepository interface {
	// Create создает новую задачу
	Create(ctx context.Context, task *domain.Task) error

	// GetByID получает задачу по ID
	GetByID(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// ListByProject возвращает страницу задач проекта после курсора
	ListByProject(ctx context.Context, projectID uuid.UUID, after *TaskCursor, limit int) ([]*domain.Task, error)

	// Update обновляет имя и описание задачи
	Update(ctx context.Context, task *domain.Task) error

	// UpdateStatus обновляет только статус задачи
	UpdateStatus(ctx context.Context, taskID uuid.UUID, status domain.TaskStatus) error

	// Delete удаляет задачу вместе с её назначениями
	Delete(ctx context.Context, taskID uuid.UUID) error

	// CountByStatus возвращает количество задач проекта по статусам
	CountByStatus(ctx context.Context, projectID uuid.UUID) (map[domain.TaskStatus]int, error)
}

// AssignmentRepository определяет методы assignment store для обоих видов ресурсов
type AssignmentRepository interface {
	// ListByResource возвращает назначения проекта или задачи
	ListByResource(ctx context.Context, kind domain.ResourceKind, resourceID uuid.UUID) ([]*domain.Assignment, error)

	// HasDirectUserAssignment проверяет наличие назначения типа user на ресурс
	HasDirectUserAssignment(ctx context.Context, kind domain.ResourceKind, resourceID, userID uuid.UUID) (bool, error)

	// HasTeamAssignment проверяет что хотя бы одна из команд назначена на ресурс
	HasTeamAssignment(ctx context.Context, kind domain.ResourceKind, resourceID uuid.UUID, teamIDs []uuid.UUID) (bool, error)

	// Assign создает назначение; дубликат пары (ресурс, assignee) отклоняется
	Assign(ctx context.Context, kind domain.ResourceKind, assignment *domain.Assignment) error

	// Unassign удаляет назначение по его ID
	Unassign(ctx context.Context, kind domain.ResourceKind, assignmentID uuid.UUID) error

	// DeleteByTeamAssignee удаляет все назначения обоих видов, где assignee -- команда
	DeleteByTeamAssignee(ctx context.Context, teamID uuid.UUID) error
}

// ActivityRepository определяет методы журнала активности
type ActivityRepository interface {
	// Record добавляет запись о выполненной мутации
	Record(ctx context.Context, actorID uuid.UUID, action, resourceType string, resourceID uuid.UUID) error
}
