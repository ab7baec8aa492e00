// repository/repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/untibullet/hours-ledger/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrHasDependents = errors.New("resource is referenced by hour logs")

	// ErrRegistrationClosed в системе уже есть учетные записи
	ErrRegistrationClosed = errors.New("registration is closed")
)

// Коды ошибок PostgreSQL, которые различаются репозиторием
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

// registrationLockKey ключ advisory-блокировки первичной регистрации
const registrationLockKey = 7211001

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// translatePgError приводит ошибки ограничений PostgreSQL к sentinel-ошибкам
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrAlreadyExists
		case pgForeignKeyViolation:
			return ErrHasDependents
		}
	}
	return err
}

// isNoRows считает ненайденной и строку с некорректным UUID в ключе
func isNoRows(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidText
}

// queryBuilder собирает WHERE с позиционными параметрами
type queryBuilder struct {
	conds []string
	args  []interface{}
}

func (b *queryBuilder) add(cond string, arg interface{}) {
	b.args = append(b.args, arg)
	b.conds = append(b.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(b.args))))
}

func (b *queryBuilder) where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// limit добавляет LIMIT/OFFSET, если задан размер страницы
func (b *queryBuilder) limit(p models.Page) string {
	if p.Limit <= 0 {
		return ""
	}
	b.args = append(b.args, p.Limit, p.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(b.args)-1, len(b.args))
}

// GetRefs возвращает краткие ссылки на пользователей, проекты и задачи по их ID
func (r *Repository) GetRefs(ctx context.Context, ids []string) (map[string]models.Ref, error) {
	refs := make(map[string]models.Ref, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	query := `
        SELECT id::text, name, email, COALESCE(hourly_rate, 0) FROM users WHERE id = ANY($1::text[]::uuid[])
        UNION ALL
        SELECT id::text, name, '', 0 FROM projects WHERE id = ANY($1::text[]::uuid[])
        UNION ALL
        SELECT id::text, title, '', 0 FROM tasks WHERE id = ANY($1::text[]::uuid[])
    `
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get refs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref models.Ref
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Email, &ref.HourlyRate); err != nil {
			return nil, fmt.Errorf("failed to scan ref: %w", err)
		}
		refs[ref.ID] = ref
	}

	return refs, rows.Err()
}
