package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/untibullet/hours-ledger/internal/models"
)

const projectColumns = `
    p.id::text, p.name, p.description, p.client_id::text, p.status, p.start_date, p.end_date,
    p.estimated_hours, p.actual_hours, p.hourly_rate, p.billing_type, p.created_by::text,
    p.created_at, p.updated_at,
    ARRAY(SELECT pd.developer_id::text FROM project_developers pd WHERE pd.project_id = p.id ORDER BY pd.developer_id)
`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.ClientID, &p.Status, &p.StartDate, &p.EndDate,
		&p.EstimatedHours, &p.ActualHours, &p.HourlyRate, &p.BillingType, &p.CreatedBy,
		&p.CreatedAt, &p.UpdatedAt, &p.DeveloperIDs)
	if err != nil {
		return nil, err
	}
	if p.DeveloperIDs == nil {
		p.DeveloperIDs = []string{}
	}
	return &p, nil
}

func setProjectDevelopers(ctx context.Context, tx pgx.Tx, projectID string, developerIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM project_developers WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to clear project developers: %w", err)
	}
	return addProjectDevelopers(ctx, tx, projectID, developerIDs)
}

// pruneTaskAssignees снимает с задач проекта разработчиков, которых больше нет в его составе
func pruneTaskAssignees(ctx context.Context, tx pgx.Tx, projectID string) error {
	query := `
        DELETE FROM task_assignees ta
        USING tasks t
        WHERE ta.task_id = t.id AND t.project_id = $1
            AND NOT EXISTS (
                SELECT 1 FROM project_developers pd
                WHERE pd.project_id = $1 AND pd.developer_id = ta.developer_id
            )
    `
	if _, err := tx.Exec(ctx, query, projectID); err != nil {
		return fmt.Errorf("failed to prune task assignees: %w", err)
	}
	return nil
}

func addProjectDevelopers(ctx context.Context, tx pgx.Tx, projectID string, developerIDs []string) error {
	if len(developerIDs) == 0 {
		return nil
	}
	query := `
        INSERT INTO project_developers (project_id, developer_id)
        SELECT $1, unnest($2::text[])::uuid
        ON CONFLICT DO NOTHING
    `
	if _, err := tx.Exec(ctx, query, projectID, developerIDs); err != nil {
		return fmt.Errorf("failed to add project developers: %w", err)
	}
	return nil
}

// CreateProject создает проект вместе с составом разработчиков
func (r *Repository) CreateProject(ctx context.Context, p *models.Project) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO projects (id, name, description, client_id, status, start_date, end_date,
            estimated_hours, hourly_rate, billing_type, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING actual_hours, created_at, updated_at
    `
	err = tx.QueryRow(ctx, query, p.ID, p.Name, p.Description, p.ClientID, p.Status, p.StartDate, p.EndDate,
		p.EstimatedHours, p.HourlyRate, p.BillingType, p.CreatedBy).Scan(&p.ActualHours, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(translatePgError(err), ErrAlreadyExists) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	if err := addProjectDevelopers(ctx, tx, p.ID, p.DeveloperIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetProject получает проект по ID
func (r *Repository) GetProject(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p WHERE p.id = $1`
	p, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func projectConditions(f models.ProjectFilter) *queryBuilder {
	b := &queryBuilder{}
	if f.ClientID != "" {
		b.add("p.client_id::text = ?", f.ClientID)
	}
	if f.DeveloperID != "" {
		b.add("EXISTS (SELECT 1 FROM project_developers pd WHERE pd.project_id = p.id AND pd.developer_id::text = ?)", f.DeveloperID)
	}
	if f.Status != "" {
		b.add("p.status = ?", f.Status)
	}
	return b
}

// ListProjects получает страницу проектов и общее количество
func (r *Repository) ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, int, error) {
	b := projectConditions(f)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects p`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	query := `SELECT ` + projectColumns + ` FROM projects p` + b.where() + ` ORDER BY p.created_at DESC` + b.limit(f.Page)
	rows, err := r.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, total, rows.Err()
}

// UpdateProject сохраняет изменяемые поля и заменяет состав разработчиков
func (r *Repository) UpdateProject(ctx context.Context, p *models.Project) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        UPDATE projects SET name = $1, description = $2, client_id = $3, status = $4, start_date = $5,
            end_date = $6, estimated_hours = $7, hourly_rate = $8, billing_type = $9, updated_at = NOW()
        WHERE id = $10
        RETURNING actual_hours, updated_at
    `
	err = tx.QueryRow(ctx, query, p.Name, p.Description, p.ClientID, p.Status, p.StartDate, p.EndDate,
		p.EstimatedHours, p.HourlyRate, p.BillingType, p.ID).Scan(&p.ActualHours, &p.UpdatedAt)
	if isNoRows(err) {
		return ErrNotFound
	}
	if err != nil {
		if errors.Is(translatePgError(err), ErrAlreadyExists) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to update project: %w", err)
	}

	if err := setProjectDevelopers(ctx, tx, p.ID, p.DeveloperIDs); err != nil {
		return err
	}
	if err := pruneTaskAssignees(ctx, tx, p.ID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteProject удаляет проект; проекты с записями о часах не удаляются
func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		if errors.Is(translatePgError(err), ErrHasDependents) {
			return ErrHasDependents
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ProjectStats агрегирует проекты по статусам
func (r *Repository) ProjectStats(ctx context.Context, f models.ProjectFilter) ([]models.ProjectStatusStat, error) {
	b := projectConditions(f)
	query := `
        SELECT p.status, COUNT(*), COALESCE(SUM(p.estimated_hours), 0), COALESCE(SUM(p.actual_hours), 0)
        FROM projects p` + b.where() + `
        GROUP BY p.status
        ORDER BY p.status
    `
	rows, err := r.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get project stats: %w", err)
	}
	defer rows.Close()

	stats := []models.ProjectStatusStat{}
	for rows.Next() {
		var s models.ProjectStatusStat
		if err := rows.Scan(&s.Status, &s.Count, &s.TotalEstimated, &s.TotalActual); err != nil {
			return nil, fmt.Errorf("failed to scan project stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// UpsertImportProject находит или создает проект по (name, client_id)
// и добавляет разработчика в состав. created сообщает, был ли проект создан.
func (r *Repository) UpsertImportProject(ctx context.Context, u models.ProjectUpsert) (*models.Project, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO projects (id, name, client_id, status, billing_type, created_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (name, client_id) DO UPDATE SET updated_at = NOW()
        RETURNING id::text, (xmax = 0)
    `
	var (
		projectID string
		created   bool
	)
	err = tx.QueryRow(ctx, query, u.ID, u.Name, u.ClientID, models.ProjectActive, models.BillingHourly, u.CreatedBy).
		Scan(&projectID, &created)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert project: %w", err)
	}

	if err := addProjectDevelopers(ctx, tx, projectID, []string{u.DeveloperID}); err != nil {
		return nil, false, err
	}

	p, err := scanProject(tx.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, projectID))
	if err != nil {
		return nil, false, fmt.Errorf("failed to get project: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return p, created, nil
}

// ProjectLogTotals пересчитывает часы и число записей по проектам
func (r *Repository) ProjectLogTotals(ctx context.Context, ids []string) (map[string]models.LogTotal, error) {
	return r.logTotals(ctx, "project_id", ids)
}

func (r *Repository) logTotals(ctx context.Context, column string, ids []string) (map[string]models.LogTotal, error) {
	totals := make(map[string]models.LogTotal, len(ids))
	if len(ids) == 0 {
		return totals, nil
	}

	query := fmt.Sprintf(`
        SELECT %[1]s::text, COALESCE(SUM(hours), 0), COUNT(*)
        FROM hour_logs
        WHERE %[1]s = ANY($1::text[]::uuid[])
        GROUP BY %[1]s
    `, column)
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get log totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			t  models.LogTotal
		)
		if err := rows.Scan(&id, &t.Hours, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan log totals: %w", err)
		}
		totals[id] = t
	}
	return totals, rows.Err()
}
