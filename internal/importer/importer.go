// Package importer загружает плоские строки часов, сопоставляя клиентов и
// разработчиков по имени и создавая проекты при первом упоминании.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/repository"
	"github.com/untibullet/hours-ledger/internal/validator"
	"go.uber.org/zap"
)

// DefaultDescription подставляется для строк без описания
const DefaultDescription = "Imported"

const maxNameLength = 200

// Store операции хранилища, нужные импорту
type Store interface {
	FindClientByName(ctx context.Context, name string) (*models.Client, error)
	FindDeveloperByName(ctx context.Context, name string) (*models.Developer, error)
	UpsertImportProject(ctx context.Context, u models.ProjectUpsert) (*models.Project, bool, error)
	CreateHourLog(ctx context.Context, l *models.HourLog) error
}

// Row плоская строка импорта
type Row struct {
	Project       string  `json:"project"`
	ClientName    string  `json:"clientName"`
	DeveloperName string  `json:"developerName"`
	Hours         float64 `json:"hours"`
	Date          string  `json:"date"`
	Description   string  `json:"description"`
}

// RowError ошибка одной строки; номера строк с единицы
type RowError struct {
	Row     int    `json:"row"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result итог пакетного импорта
type Result struct {
	Imported        int        `json:"imported"`
	Failed          int        `json:"failed"`
	CreatedProjects int        `json:"createdProjects"`
	Errors          []RowError `json:"errors"`
}

type Reconciler struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func New(store Store, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger, now: time.Now}
}

func (r *Reconciler) validateRow(row *Row) (time.Time, error) {
	row.Project = strings.TrimSpace(row.Project)
	row.ClientName = strings.TrimSpace(row.ClientName)
	row.DeveloperName = strings.TrimSpace(row.DeveloperName)
	row.Description = strings.TrimSpace(row.Description)

	switch {
	case row.Project == "":
		return time.Time{}, apperr.Validation("", "Project name is required")
	case row.ClientName == "":
		return time.Time{}, apperr.Validation("", "Client name is required")
	case row.DeveloperName == "":
		return time.Time{}, apperr.Validation("", "Developer name is required")
	case len([]rune(row.Project)) > maxNameLength:
		return time.Time{}, apperr.Validation("", "Project name cannot exceed 200 characters")
	}

	date, err := models.ParseDate(row.Date)
	if err != nil {
		return time.Time{}, apperr.Validation("", "Valid date is required (YYYY-MM-DD format)")
	}
	if row.Description == "" {
		row.Description = DefaultDescription
	}
	if err := validator.ValidateHourLogFields(row.Hours, date, row.Description, r.now()); err != nil {
		return time.Time{}, err
	}
	return date, nil
}

// ImportRow импортирует одну строку от имени администратора actorID.
// created сообщает, что проект был создан этой строкой.
func (r *Reconciler) ImportRow(ctx context.Context, row Row, actorID string) (*models.HourLog, bool, error) {
	date, err := r.validateRow(&row)
	if err != nil {
		return nil, false, err
	}

	client, err := r.store.FindClientByName(ctx, row.ClientName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, apperr.Validation(apperr.CodeClientNotFound, fmt.Sprintf("Client %q not found", row.ClientName))
		}
		return nil, false, apperr.Internal("failed to resolve client", err)
	}
	developer, err := r.store.FindDeveloperByName(ctx, row.DeveloperName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, apperr.Validation(apperr.CodeDeveloperNotFound, fmt.Sprintf("Developer %q not found", row.DeveloperName))
		}
		return nil, false, apperr.Internal("failed to resolve developer", err)
	}

	project, created, err := r.store.UpsertImportProject(ctx, models.ProjectUpsert{
		ID:          uuid.NewString(),
		Name:        row.Project,
		ClientID:    client.ID,
		DeveloperID: developer.ID,
		CreatedBy:   actorID,
	})
	if err != nil {
		return nil, false, apperr.Internal("failed to resolve project", err)
	}

	log := &models.HourLog{
		ID:          uuid.NewString(),
		ClientID:    client.ID,
		DeveloperID: developer.ID,
		ProjectID:   project.ID,
		Date:        date,
		Hours:       row.Hours,
		Description: row.Description,
		CreatedBy:   actorID,
	}
	if err := r.store.CreateHourLog(ctx, log); err != nil {
		return nil, created, apperr.Internal("failed to create hour log", err)
	}
	return log, created, nil
}

// ImportRows обрабатывает строки по порядку; ошибка строки не отменяет
// уже импортированные строки и не прерывает пакет
func (r *Reconciler) ImportRows(ctx context.Context, rows []Row, actorID string) Result {
	res := Result{Errors: []RowError{}}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			res.Failed += len(rows) - i
			res.Errors = append(res.Errors, RowError{Row: i + 1, Code: apperr.CodeInternal, Message: err.Error()})
			break
		}

		_, created, err := r.ImportRow(ctx, row, actorID)
		if err != nil {
			appErr := apperr.From(err)
			res.Failed++
			res.Errors = append(res.Errors, RowError{Row: i + 1, Code: appErr.Code, Message: appErr.Message})
			r.logger.Warn("import row failed", zap.Int("row", i+1), zap.String("code", appErr.Code), zap.Error(err))
			continue
		}
		res.Imported++
		if created {
			res.CreatedProjects++
		}
	}
	return res
}
