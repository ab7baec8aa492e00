package repository

import (
	"context"
	"fmt"

	"github.com/untibullet/hours-ledger/internal/models"
)

// CreateHourLog сохраняет запись о часах и в той же транзакции
// увеличивает actual_hours проекта и задачи
func (r *Repository) CreateHourLog(ctx context.Context, l *models.HourLog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var taskID *string
	if l.TaskID != "" {
		taskID = &l.TaskID
	}

	query := `
        INSERT INTO hour_logs (id, client_id, developer_id, project_id, task_id, date, hours, description, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at
    `
	err = tx.QueryRow(ctx, query, l.ID, l.ClientID, l.DeveloperID, l.ProjectID, taskID,
		l.Date, l.Hours, l.Description, l.CreatedBy).Scan(&l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create hour log: %w", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE projects SET actual_hours = actual_hours + $1, updated_at = NOW() WHERE id = $2`,
		l.Hours, l.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to increment project hours: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if taskID != nil {
		tag, err := tx.Exec(ctx, `UPDATE tasks SET actual_hours = actual_hours + $1, updated_at = NOW() WHERE id = $2`,
			l.Hours, l.TaskID)
		if err != nil {
			return fmt.Errorf("failed to increment task hours: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListHourLogs получает записи о часах по фильтру, новые первыми.
// Без размера страницы возвращает все подходящие записи.
func (r *Repository) ListHourLogs(ctx context.Context, f models.HourLogFilter) ([]models.HourLog, int, error) {
	b := &queryBuilder{}
	if f.ClientID != "" {
		b.add("client_id::text = ?", f.ClientID)
	}
	if f.DeveloperID != "" {
		b.add("developer_id::text = ?", f.DeveloperID)
	}
	if f.ProjectID != "" {
		b.add("project_id::text = ?", f.ProjectID)
	}
	if f.TaskID != "" {
		b.add("task_id::text = ?", f.TaskID)
	}
	if f.From != nil {
		b.add("date >= ?", *f.From)
	}
	if f.To != nil {
		b.add("date <= ?", *f.To)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM hour_logs`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count hour logs: %w", err)
	}

	query := `
        SELECT id::text, client_id::text, developer_id::text, project_id::text, COALESCE(task_id::text, ''),
            date, hours, description, created_by::text, created_at
        FROM hour_logs` + b.where() + `
        ORDER BY date DESC, created_at DESC` + b.limit(f.Page)
	rows, err := r.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list hour logs: %w", err)
	}
	defer rows.Close()

	logs := []models.HourLog{}
	for rows.Next() {
		var l models.HourLog
		if err := rows.Scan(&l.ID, &l.ClientID, &l.DeveloperID, &l.ProjectID, &l.TaskID,
			&l.Date, &l.Hours, &l.Description, &l.CreatedBy, &l.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan hour log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}
