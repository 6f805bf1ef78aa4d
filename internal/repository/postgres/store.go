package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/team-management-service/internal/repository"
)

// DB объединяет методы, общие для *pgxpool.Pool и pgx.Tx.
// Репозитории работают через этот интерфейс и потому одинаково
// выполняются на пуле и внутри транзакции.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store реализует repository.Store для PostgreSQL
type Store struct {
	pool *pgxpool.Pool
}

// NewStore создает новый Store поверх пула соединений
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Repos возвращает репозитории, привязанные к пулу
func (s *Store) Repos() repository.Repositories {
	return newRepositories(s.pool)
}

// InTx выполняет fn внутри одной транзакции.
// Откат при ошибке и коммит при успехе выполняет pgx.BeginFunc.
func (s *Store) InTx(ctx context.Context, fn func(r repository.Repositories) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(newRepositories(tx))
	})
}

// newRepositories собирает все репозитории поверх одного DB
func newRepositories(db DB) repository.Repositories {
	return repository.Repositories{
		Users:       NewUserRepository(db),
		Teams:       NewTeamRepository(db),
		Projects:    NewProjectRepository(db),
		Tasks:       NewTaskRepository(db),
		Assignments: NewAssignmentRepository(db),
		Activity:    NewActivityRepository(db),
	}
}
