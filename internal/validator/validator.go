// Package validator проверяет ссылки между сущностями до любой записи в хранилище.
package validator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/repository"
)

// Lookup чтение сущностей по ID
type Lookup interface {
	GetClient(ctx context.Context, id string) (*models.Client, error)
	GetDeveloper(ctx context.Context, id string) (*models.Developer, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
}

// HourLogRefs разрешенные сущности записи о часах
type HourLogRefs struct {
	Client    *models.Client
	Developer *models.Developer
	Project   *models.Project
	Task      *models.Task
}

type Validator struct {
	lookup Lookup
}

func New(lookup Lookup) *Validator {
	return &Validator{lookup: lookup}
}

// resolve превращает ErrNotFound в ошибку валидации с кодом, остальное во внутреннюю
func resolve(err error, code, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Validation(code, message)
	}
	return apperr.Internal("failed to validate references", err)
}

// ValidateHourLogRefs проверяет ссылки записи о часах. Проверки идут по порядку
// и прерываются на первой ошибке: клиент, разработчик, проект, членство в проекте,
// затем для задачи: существование, принадлежность проекту, назначение.
func (v *Validator) ValidateHourLogRefs(ctx context.Context, clientID, developerID, projectID, taskID string) (*HourLogRefs, error) {
	client, err := v.lookup.GetClient(ctx, clientID)
	if err != nil {
		return nil, resolve(err, apperr.CodeInvalidClient, "Invalid client ID")
	}
	developer, err := v.lookup.GetDeveloper(ctx, developerID)
	if err != nil {
		return nil, resolve(err, apperr.CodeInvalidDeveloper, "Invalid developer ID")
	}
	project, err := v.lookup.GetProject(ctx, projectID)
	if err != nil {
		return nil, resolve(err, apperr.CodeInvalidProject, "Invalid project ID")
	}
	if project.ClientID != client.ID {
		return nil, apperr.Validation(apperr.CodeProjectClientMismatch, "Project does not belong to the client")
	}
	if !project.HasDeveloper(developer.ID) {
		return nil, apperr.Validation(apperr.CodeDeveloperNotOnProject, "Developer is not assigned to this project")
	}

	refs := &HourLogRefs{Client: client, Developer: developer, Project: project}
	if taskID == "" {
		return refs, nil
	}

	task, err := v.lookup.GetTask(ctx, taskID)
	if err != nil {
		return nil, resolve(err, apperr.CodeInvalidTask, "Invalid task ID")
	}
	if task.ProjectID != project.ID {
		return nil, apperr.Validation(apperr.CodeTaskProjectMismatch, "Task does not belong to the project")
	}
	if !task.IsAssigned(developer.ID) {
		return nil, apperr.Validation(apperr.CodeDeveloperNotOnTask, "Developer is not assigned to this task")
	}
	refs.Task = task
	return refs, nil
}

// ValidateProjectRefs проверяет, что клиент имеет роль Client, а все разработчики роль Developer
func (v *Validator) ValidateProjectRefs(ctx context.Context, clientID string, developerIDs []string) error {
	if _, err := v.lookup.GetClient(ctx, clientID); err != nil {
		return resolve(err, apperr.CodeInvalidClient, "Invalid client selected")
	}
	for _, id := range developerIDs {
		if _, err := v.lookup.GetDeveloper(ctx, id); err != nil {
			return resolve(err, apperr.CodeInvalidDeveloper, "Invalid developer(s) selected")
		}
	}
	return nil
}

// ValidateTaskAssignees проверяет, что исполнители входят в состав проекта
func (v *Validator) ValidateTaskAssignees(project *models.Project, assignees []string) error {
	for _, id := range assignees {
		if !project.HasDeveloper(id) {
			return apperr.Validation(apperr.CodeAssigneeNotOnProject, "Assigned developer is not part of the project")
		}
	}
	return nil
}

// ValidateHourLogFields проверяет форму полей записи о часах
func ValidateHourLogFields(hours float64, date time.Time, description string, now time.Time) error {
	if hours < models.MinHours {
		return apperr.Validation("", "Hours must be at least 0.5")
	}
	if hours > models.MaxHours {
		return apperr.Validation("", "Hours cannot exceed 24")
	}
	if !models.ValidHours(hours) {
		return apperr.Validation("", "Hours must be in 0.5 hour increments")
	}
	if date.IsZero() {
		return apperr.Validation("", "Date is required")
	}
	if !models.NotInFuture(date, now) {
		return apperr.Validation("", "Date cannot be in the future")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return apperr.Validation("", "Description is required")
	}
	if len([]rune(description)) > models.MaxDescriptionLength {
		return apperr.Validation("", "Description cannot exceed 500 characters")
	}
	return nil
}
