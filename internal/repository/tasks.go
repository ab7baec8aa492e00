package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/untibullet/hours-ledger/internal/models"
)

const taskColumns = `
    t.id::text, t.title, t.description, t.project_id::text, t.status, t.priority,
    t.estimated_hours, t.actual_hours, t.start_date, t.due_date, t.created_by::text,
    t.created_at, t.updated_at,
    ARRAY(SELECT ta.developer_id::text FROM task_assignees ta WHERE ta.task_id = t.id ORDER BY ta.developer_id)
`

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.ProjectID, &t.Status, &t.Priority,
		&t.EstimatedHours, &t.ActualHours, &t.StartDate, &t.DueDate, &t.CreatedBy,
		&t.CreatedAt, &t.UpdatedAt, &t.AssignedTo)
	if err != nil {
		return nil, err
	}
	if t.AssignedTo == nil {
		t.AssignedTo = []string{}
	}
	return &t, nil
}

func setTaskAssignees(ctx context.Context, tx pgx.Tx, taskID string, developerIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM task_assignees WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("failed to clear task assignees: %w", err)
	}
	if len(developerIDs) == 0 {
		return nil
	}
	query := `
        INSERT INTO task_assignees (task_id, developer_id)
        SELECT $1, unnest($2::text[])::uuid
        ON CONFLICT DO NOTHING
    `
	if _, err := tx.Exec(ctx, query, taskID, developerIDs); err != nil {
		return fmt.Errorf("failed to set task assignees: %w", err)
	}
	return nil
}

// CreateTask создает задачу вместе с назначенными разработчиками
func (r *Repository) CreateTask(ctx context.Context, t *models.Task) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO tasks (id, title, description, project_id, status, priority, estimated_hours,
            start_date, due_date, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING actual_hours, created_at, updated_at
    `
	err = tx.QueryRow(ctx, query, t.ID, t.Title, t.Description, t.ProjectID, t.Status, t.Priority,
		t.EstimatedHours, t.StartDate, t.DueDate, t.CreatedBy).Scan(&t.ActualHours, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := setTaskAssignees(ctx, tx, t.ID, t.AssignedTo); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTask получает задачу по ID
func (r *Repository) GetTask(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1`
	t, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// ListTasks получает страницу задач; фильтр по клиенту идет через проект
func (r *Repository) ListTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, int, error) {
	b := &queryBuilder{}
	if f.ClientID != "" {
		b.add("p.client_id::text = ?", f.ClientID)
	}
	if f.DeveloperID != "" {
		b.add("EXISTS (SELECT 1 FROM task_assignees ta WHERE ta.task_id = t.id AND ta.developer_id::text = ?)", f.DeveloperID)
	}
	if f.ProjectID != "" {
		b.add("t.project_id::text = ?", f.ProjectID)
	}
	if f.Status != "" {
		b.add("t.status = ?", f.Status)
	}
	if f.Priority != "" {
		b.add("t.priority = ?", f.Priority)
	}

	from := ` FROM tasks t JOIN projects p ON p.id = t.project_id`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+from+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + from + b.where() + ` ORDER BY t.created_at DESC` + b.limit(f.Page)
	rows, err := r.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, total, rows.Err()
}

// UpdateTask сохраняет все изменяемые поля задачи
func (r *Repository) UpdateTask(ctx context.Context, t *models.Task) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        UPDATE tasks SET title = $1, description = $2, status = $3, priority = $4, estimated_hours = $5,
            start_date = $6, due_date = $7, updated_at = NOW()
        WHERE id = $8
        RETURNING actual_hours, updated_at
    `
	err = tx.QueryRow(ctx, query, t.Title, t.Description, t.Status, t.Priority, t.EstimatedHours,
		t.StartDate, t.DueDate, t.ID).Scan(&t.ActualHours, &t.UpdatedAt)
	if isNoRows(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if err := setTaskAssignees(ctx, tx, t.ID, t.AssignedTo); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateTaskStatus меняет только статус задачи
func (r *Repository) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE tasks SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask удаляет задачу; задачи с записями о часах не удаляются
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		if errors.Is(translatePgError(err), ErrHasDependents) {
			return ErrHasDependents
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TaskLogTotals пересчитывает часы и число записей по задачам
func (r *Repository) TaskLogTotals(ctx context.Context, ids []string) (map[string]models.LogTotal, error) {
	return r.logTotals(ctx, "task_id", ids)
}
