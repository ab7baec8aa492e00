package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/authz"
	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/reporting"
	"github.com/untibullet/hours-ledger/internal/validator"
)

// HourLogInput тело запроса на запись часов
type HourLogInput struct {
	ClientID    string  `json:"client"`
	DeveloperID string  `json:"developer"`
	ProjectID   string  `json:"project"`
	TaskID      string  `json:"task"`
	Date        string  `json:"date"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
}

// ReportType выбирает часть ответа эндпоинта отчетов по часам
type ReportType string

const (
	ReportAll          ReportType = ""
	ReportClients      ReportType = "clients"
	ReportDevelopers   ReportType = "developers"
	ReportCurrentMonth ReportType = "current-month"
	ReportDaily        ReportType = "daily"
)

func (in *HourLogInput) trim() {
	in.ClientID = strings.TrimSpace(in.ClientID)
	in.DeveloperID = strings.TrimSpace(in.DeveloperID)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.TaskID = strings.TrimSpace(in.TaskID)
	in.Description = strings.TrimSpace(in.Description)
}

// hourLogViews разворачивает ссылки записей о часах
func (s *Service) hourLogViews(ctx context.Context, logs []models.HourLog) ([]models.HourLogView, error) {
	ids := make([]string, 0, len(logs)*5)
	for _, l := range logs {
		ids = append(ids, l.ClientID, l.DeveloperID, l.ProjectID, l.TaskID, l.CreatedBy)
	}
	refs, err := s.resolveRefs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.HourLogView, 0, len(logs))
	for _, l := range logs {
		v := models.HourLogView{
			HourLog:   l,
			Client:    ref(refs, l.ClientID),
			Developer: ref(refs, l.DeveloperID),
			Project:   ref(refs, l.ProjectID),
			Author:    ref(refs, l.CreatedBy),
		}
		if l.TaskID != "" {
			task := ref(refs, l.TaskID)
			v.Task = &task
		}
		views = append(views, v)
	}
	return views, nil
}

// CreateHourLog проверяет права, форму и ссылки, затем добавляет запись.
// Счетчики часов проекта и задачи увеличивает хранилище в той же операции.
func (s *Service) CreateHourLog(ctx context.Context, actor authz.Actor, in HourLogInput) (*models.HourLogView, error) {
	in.trim()
	if _, err := s.engine.AuthorizeHourLogCreate(actor, in.DeveloperID, in.TaskID); err != nil {
		return nil, err
	}
	if in.ClientID == "" || in.DeveloperID == "" || in.ProjectID == "" {
		return nil, apperr.Validation("", "Client, developer and project are required")
	}
	date, err := models.ParseDate(in.Date)
	if err != nil {
		return nil, apperr.Validation("", "Valid date is required (YYYY-MM-DD format)")
	}
	if err := validator.ValidateHourLogFields(in.Hours, date, in.Description, s.now()); err != nil {
		return nil, err
	}
	if _, err := s.validator.ValidateHourLogRefs(ctx, in.ClientID, in.DeveloperID, in.ProjectID, in.TaskID); err != nil {
		return nil, err
	}

	l := &models.HourLog{
		ID:          uuid.NewString(),
		ClientID:    in.ClientID,
		DeveloperID: in.DeveloperID,
		ProjectID:   in.ProjectID,
		TaskID:      in.TaskID,
		Date:        date,
		Hours:       in.Hours,
		Description: in.Description,
		CreatedBy:   actor.ID,
	}
	if err := s.store.CreateHourLog(ctx, l); err != nil {
		return nil, fromStore(err, "Project or task not found", "create hour log")
	}

	views, err := s.hourLogViews(ctx, []models.HourLog{*l})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// scopedHourLogs применяет область видимости к фильтру и возвращает записи
func (s *Service) scopedHourLogs(ctx context.Context, scope authz.Scope, f models.HourLogFilter) ([]models.HourLogView, int, error) {
	scope.ApplyToHourLogs(&f)
	logs, total, err := s.store.ListHourLogs(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list hour logs", err)
	}
	views, err := s.hourLogViews(ctx, logs)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ListHourLogs возвращает страницу записей, новые сначала
func (s *Service) ListHourLogs(ctx context.Context, actor authz.Actor, f models.HourLogFilter) ([]models.HourLogView, models.Pagination, error) {
	grant, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceHourLog)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	views, total, err := s.scopedHourLogs(ctx, grant.Scope, f)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return views, models.NewPagination(f.Page, total), nil
}

// HourLogReport считает разбивки по клиентам, разработчикам и дням.
// reportType выбирает одну часть; пустое или неизвестное значение дает все.
func (s *Service) HourLogReport(ctx context.Context, actor authz.Actor, f models.HourLogFilter, reportType ReportType) (any, error) {
	grant, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceHourLog)
	if err != nil {
		return nil, err
	}
	now := s.now()
	f.Page = models.Page{}

	logs, _, err := s.scopedHourLogs(ctx, grant.Scope, f)
	if err != nil {
		return nil, err
	}

	switch reportType {
	case ReportClients:
		return reporting.ClientBreakdown(logs), nil
	case ReportDevelopers:
		return reporting.DeveloperBreakdown(logs), nil
	case ReportDaily:
		return reporting.DailyBreakdown(logs), nil
	}

	month := reporting.CurrentMonth(now)
	monthFilter := models.HourLogFilter{ClientID: f.ClientID, DeveloperID: f.DeveloperID, From: &month.From, To: &month.To}
	monthLogs, _, err := s.scopedHourLogs(ctx, grant.Scope, monthFilter)
	if err != nil {
		return nil, err
	}
	if reportType == ReportCurrentMonth {
		return reporting.CurrentMonthSummary(monthLogs, now), nil
	}
	return reporting.Build(logs, monthLogs, now), nil
}
