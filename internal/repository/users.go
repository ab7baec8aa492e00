package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/untibullet/hours-ledger/internal/models"
)

const (
	clientColumns    = `id::text, name, email, password_hash, role, billing_type, status, created_by::text, created_at, updated_at`
	developerColumns = `id::text, name, email, password_hash, role, hourly_rate, developer_role, status, created_by::text, created_at, updated_at`
)

func scanClient(row pgx.Row) (*models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.Role,
		&c.BillingType, &c.Status, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanDeveloper(row pgx.Row) (*models.Developer, error) {
	var d models.Developer
	err := row.Scan(&d.ID, &d.Name, &d.Email, &d.PasswordHash, &d.Role,
		&d.HourlyRate, &d.DeveloperRole, &d.Status, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CountActiveUsers возвращает число активных пользователей роли
func (r *Repository) CountActiveUsers(ctx context.Context, role models.Role) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM users WHERE role = $1 AND status = $2`
	if err := r.pool.QueryRow(ctx, query, role, models.StatusActive).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return n, nil
}

// EmailExists проверяет занятость email среди всех ролей
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// CreateFirstBA создает администратора, только если в системе нет ни одной
// учетной записи. Проверка и вставка выполняются под advisory-блокировкой.
func (r *Repository) CreateFirstBA(ctx context.Context, u *models.BAUser) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, registrationLockKey); err != nil {
		return fmt.Errorf("failed to acquire registration lock: %w", err)
	}

	query := `
        INSERT INTO users (id, name, email, password_hash, role)
        SELECT $1, $2, $3, $4, $5
        WHERE NOT EXISTS (SELECT 1 FROM users)
        RETURNING created_at, updated_at
    `
	err = tx.QueryRow(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, models.RoleBA).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if isNoRows(err) {
		return ErrRegistrationClosed
	}
	if err != nil {
		if errors.Is(translatePgError(err), ErrAlreadyExists) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create BA user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.Role = models.RoleBA
	return nil
}

// CreateClient создает клиента
func (r *Repository) CreateClient(ctx context.Context, c *models.Client) error {
	query := `
        INSERT INTO users (id, name, email, password_hash, role, billing_type, status, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, updated_at
    `
	err := r.pool.QueryRow(ctx, query, c.ID, c.Name, c.Email, c.PasswordHash, models.RoleClient,
		c.BillingType, c.Status, c.CreatedBy).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(translatePgError(err), ErrAlreadyExists) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// CreateDeveloper создает разработчика
func (r *Repository) CreateDeveloper(ctx context.Context, d *models.Developer) error {
	query := `
        INSERT INTO users (id, name, email, password_hash, role, hourly_rate, developer_role, status, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, updated_at
    `
	err := r.pool.QueryRow(ctx, query, d.ID, d.Name, d.Email, d.PasswordHash, models.RoleDeveloper,
		d.HourlyRate, d.DeveloperRole, d.Status, d.CreatedBy).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(translatePgError(err), ErrAlreadyExists) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create developer: %w", err)
	}
	return nil
}

// GetIdentity получает общую часть учетной записи по ID
func (r *Repository) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	return r.getIdentity(ctx, `id = $1`, id)
}

// GetIdentityByEmail получает учетную запись по email (для входа)
func (r *Repository) GetIdentityByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return r.getIdentity(ctx, `email = $1`, email)
}

func (r *Repository) getIdentity(ctx context.Context, cond string, arg interface{}) (*models.Identity, error) {
	query := `SELECT id::text, name, email, password_hash, role, created_at, updated_at FROM users WHERE ` + cond
	var u models.Identity
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetClient получает клиента по ID; пользователи других ролей не находятся
func (r *Repository) GetClient(ctx context.Context, id string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM users WHERE id = $1 AND role = $2`
	c, err := scanClient(r.pool.QueryRow(ctx, query, id, models.RoleClient))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// GetDeveloper получает разработчика по ID
func (r *Repository) GetDeveloper(ctx context.Context, id string) (*models.Developer, error) {
	query := `SELECT ` + developerColumns + ` FROM users WHERE id = $1 AND role = $2`
	d, err := scanDeveloper(r.pool.QueryRow(ctx, query, id, models.RoleDeveloper))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get developer: %w", err)
	}
	return d, nil
}

// FindClientByName ищет клиента по точному совпадению имени
func (r *Repository) FindClientByName(ctx context.Context, name string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM users WHERE role = $1 AND name = $2 ORDER BY created_at LIMIT 1`
	c, err := scanClient(r.pool.QueryRow(ctx, query, models.RoleClient, name))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client by name: %w", err)
	}
	return c, nil
}

// FindDeveloperByName ищет разработчика по точному совпадению имени
func (r *Repository) FindDeveloperByName(ctx context.Context, name string) (*models.Developer, error) {
	query := `SELECT ` + developerColumns + ` FROM users WHERE role = $1 AND name = $2 ORDER BY created_at LIMIT 1`
	d, err := scanDeveloper(r.pool.QueryRow(ctx, query, models.RoleDeveloper, name))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find developer by name: %w", err)
	}
	return d, nil
}

func userListConditions(role models.Role, f models.UserFilter) *queryBuilder {
	b := &queryBuilder{}
	b.add("role = ?", role)
	if f.Status != "" {
		b.add("status = ?", f.Status)
	}
	if f.Search != "" {
		b.add("name ILIKE '%' || ? || '%'", f.Search)
	}
	return b
}

// ListClients получает страницу клиентов и общее количество
func (r *Repository) ListClients(ctx context.Context, f models.UserFilter) ([]models.Client, int, error) {
	b := userListConditions(models.RoleClient, f)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	query := `SELECT ` + clientColumns + ` FROM users` + b.where() + ` ORDER BY created_at DESC` + b.limit(f.Page)
	rows, err := r.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	return clients, total, rows.Err()
}

// ListDevelopers получает страницу разработчиков и общее количество
func (r *Repository) ListDevelopers(ctx context.Context, f models.UserFilter) ([]models.Developer, int, error) {
	b := userListConditions(models.RoleDeveloper, f)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count developers: %w", err)
	}

	query := `SELECT ` + developerColumns + ` FROM users` + b.where() + ` ORDER BY created_at DESC` + b.limit(f.Page)
	rows, err := r.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list developers: %w", err)
	}
	defer rows.Close()

	developers := []models.Developer{}
	for rows.Next() {
		d, err := scanDeveloper(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan developer: %w", err)
		}
		developers = append(developers, *d)
	}
	return developers, total, rows.Err()
}

// UpdateClient сохраняет изменяемые поля клиента
func (r *Repository) UpdateClient(ctx context.Context, c *models.Client) error {
	query := `
        UPDATE users SET name = $1, email = $2, billing_type = $3, status = $4, updated_at = NOW()
        WHERE id = $5 AND role = $6
        RETURNING updated_at
    `
	err := r.pool.QueryRow(ctx, query, c.Name, c.Email, c.BillingType, c.Status, c.ID, models.RoleClient).Scan(&c.UpdatedAt)
	if isNoRows(err) {
		return ErrNotFound
	}
	if err != nil {
		if errors.Is(translatePgError(err), ErrAlreadyExists) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

// UpdateDeveloper сохраняет изменяемые поля разработчика
func (r *Repository) UpdateDeveloper(ctx context.Context, d *models.Developer) error {
	query := `
        UPDATE users SET name = $1, email = $2, hourly_rate = $3, developer_role = $4, status = $5, updated_at = NOW()
        WHERE id = $6 AND role = $7
        RETURNING updated_at
    `
	err := r.pool.QueryRow(ctx, query, d.Name, d.Email, d.HourlyRate, d.DeveloperRole, d.Status, d.ID, models.RoleDeveloper).
		Scan(&d.UpdatedAt)
	if isNoRows(err) {
		return ErrNotFound
	}
	if err != nil {
		if errors.Is(translatePgError(err), ErrAlreadyExists) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to update developer: %w", err)
	}
	return nil
}

// SetUserStatus меняет статус клиента или разработчика (мягкое удаление)
func (r *Repository) SetUserStatus(ctx context.Context, id string, role models.Role, status models.UserStatus) error {
	query := `UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2 AND role = $3`
	tag, err := r.pool.Exec(ctx, query, status, id, role)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
