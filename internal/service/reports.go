package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/authz"
	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/reporting"
	"github.com/untibullet/hours-ledger/internal/reports"
)

const maxReportTitle = 200

// ReportInput запрос на генерацию отчета
type ReportInput struct {
	Title     string            `json:"title"`
	Type      models.ReportType `json:"type"`
	StartDate string            `json:"startDate"`
	EndDate   string            `json:"endDate"`
}

// reportRange разбирает границы отчета; конец включает весь день
func reportRange(start, end string) (reporting.Range, error) {
	from, err := models.ParseDate(start)
	if err != nil {
		return reporting.Range{}, apperr.Validation("", "Valid start date is required")
	}
	to, err := models.ParseDate(end)
	if err != nil {
		return reporting.Range{}, apperr.Validation("", "Valid end date is required")
	}
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	if to.Before(from) {
		return reporting.Range{}, apperr.Validation("", "End date cannot be before start date")
	}
	return reporting.Range{From: from, To: to}, nil
}

// GenerateReport сохраняет отчет в статусе generating и ставит расчет в очередь.
// Канал получает итоговое состояние отчета, ошибки расчета в запрос не попадают.
func (s *Service) GenerateReport(ctx context.Context, actor authz.Actor, in ReportInput) (*models.Report, <-chan models.Report, error) {
	grant, err := s.engine.Authorize(actor, authz.ActionCreate, authz.ResourceReport)
	if err != nil {
		return nil, nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" || in.StartDate == "" || in.EndDate == "" {
		return nil, nil, apperr.Validation("", "Title, start date, and end date are required")
	}
	if len([]rune(title)) > maxReportTitle {
		return nil, nil, apperr.Validation("", "Title cannot exceed 200 characters")
	}
	if in.Type == "" {
		in.Type = models.ReportCustom
	}
	if !in.Type.Valid() {
		return nil, nil, apperr.Validation("", "Report type must be weekly, monthly, yearly or custom")
	}
	r, err := reportRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, nil, err
	}

	report := &models.Report{
		ID:    uuid.NewString(),
		Title: title,
		Type:  in.Type,
		DateRange: models.DateRange{
			StartDate: r.From.Format(models.DateLayout),
			EndDate:   r.To.Format(models.DateLayout),
		},
		CreatedBy: actor.ID,
	}
	done, err := s.generator.Submit(ctx, report, reports.Job{Range: r, Params: grant.Scope})
	if err != nil {
		if errors.Is(err, reports.ErrGeneratorStopped) {
			return nil, nil, apperr.Internal("report generator is not running", err)
		}
		return nil, nil, apperr.Internal("failed to submit report", err)
	}
	return report, done, nil
}

// computeReport считает содержимое отчета по записям в области видимости автора
func (s *Service) computeReport(ctx context.Context, job reports.Job) (*models.ReportData, reporting.ReportTotals, error) {
	scope, ok := job.Params.(authz.Scope)
	if !ok {
		return nil, reporting.ReportTotals{}, fmt.Errorf("unexpected report params %T", job.Params)
	}
	f := models.HourLogFilter{From: &job.Range.From, To: &job.Range.To}
	logs, _, err := s.scopedHourLogs(ctx, scope, f)
	if err != nil {
		return nil, reporting.ReportTotals{}, err
	}
	data, totals := reporting.BuildReportData(logs)
	return data, totals, nil
}

// reportOwner возвращает автора, которым ограничен доступ; пусто для администратора
func reportOwner(grant authz.Grant) string {
	if grant.Scope.Unrestricted() {
		return ""
	}
	return grant.Actor.ID
}

func (s *Service) ListReports(ctx context.Context, actor authz.Actor, f models.ReportFilter) ([]models.Report, models.Pagination, error) {
	grant, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceReport)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	f.CreatedBy = reportOwner(grant)
	list, total, err := s.reports.List(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, apperr.Internal("failed to list reports", err)
	}
	return list, models.NewPagination(f.Page, total), nil
}

func (s *Service) visibleReport(ctx context.Context, grant authz.Grant, id string) (*models.Report, error) {
	r, err := s.reports.Get(ctx, id)
	if err != nil {
		if errors.Is(err, reports.ErrNotFound) {
			return nil, apperr.NotFound("Report not found")
		}
		return nil, apperr.Internal("failed to get report", err)
	}
	if owner := reportOwner(grant); owner != "" && r.CreatedBy != owner {
		return nil, apperr.NotFound("Report not found")
	}
	return r, nil
}

func (s *Service) GetReport(ctx context.Context, actor authz.Actor, id string) (*models.Report, error) {
	grant, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceReport)
	if err != nil {
		return nil, err
	}
	return s.visibleReport(ctx, grant, id)
}

func (s *Service) DeleteReport(ctx context.Context, actor authz.Actor, id string) error {
	grant, err := s.engine.Authorize(actor, authz.ActionDelete, authz.ResourceReport)
	if err != nil {
		return err
	}
	if _, err := s.visibleReport(ctx, grant, id); err != nil {
		return err
	}
	if err := s.reports.Delete(ctx, id); err != nil {
		if errors.Is(err, reports.ErrNotFound) {
			return apperr.NotFound("Report not found")
		}
		return apperr.Internal("failed to delete report", err)
	}
	return nil
}

func (s *Service) ReportStats(ctx context.Context, actor authz.Actor) (models.ReportStats, error) {
	grant, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceReport)
	if err != nil {
		return models.ReportStats{}, err
	}
	stats, err := s.reports.Stats(ctx, reportOwner(grant), s.now())
	if err != nil {
		return models.ReportStats{}, apperr.Internal("failed to get report stats", err)
	}
	return stats, nil
}

// periodLogs возвращает записи периода в области видимости отчетов
func (s *Service) periodLogs(ctx context.Context, actor authz.Actor, f models.HourLogFilter) ([]models.HourLogView, authz.Grant, error) {
	grant, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceReport)
	if err != nil {
		return nil, authz.Grant{}, err
	}
	logs, _, err := s.scopedHourLogs(ctx, grant.Scope, f)
	if err != nil {
		return nil, authz.Grant{}, err
	}
	return logs, grant, nil
}

// ClientHours группирует часы периода по клиентам. Если задан clientID,
// к каждой строке прикладываются проекты этого клиента.
func (s *Service) ClientHours(ctx context.Context, actor authz.Actor, period reporting.Period, clientID string) ([]reporting.ClientHours, error) {
	r := reporting.ResolveRange(period, nil, nil, s.now())
	logs, grant, err := s.periodLogs(ctx, actor, models.HourLogFilter{ClientID: clientID, From: &r.From, To: &r.To})
	if err != nil {
		return nil, err
	}
	out := reporting.ClientPeriodHours(period, logs)
	if clientID == "" || len(out) == 0 {
		return out, nil
	}

	f := models.ProjectFilter{ClientID: clientID}
	grant.Scope.ApplyToProjects(&f)
	projects, _, err := s.store.ListProjects(ctx, f)
	if err != nil {
		return nil, apperr.Internal("failed to list projects", err)
	}
	views, err := s.projectViews(ctx, projects)
	if err != nil {
		return nil, err
	}
	list := make([]reporting.ProjectHours, 0, len(views))
	for _, v := range views {
		list = append(list, reporting.ProjectHours{
			ID:             v.ID,
			Name:           v.Name,
			EstimatedHours: v.EstimatedHours,
			Developers:     v.Developers,
			LogTotal:       v.LogTotal,
		})
	}
	for i := range out {
		out[i].TotalProjects = list
	}
	return out, nil
}

// DeveloperHours группирует часы периода по разработчикам
func (s *Service) DeveloperHours(ctx context.Context, actor authz.Actor, period reporting.Period, developerID string) ([]reporting.DeveloperHours, error) {
	r := reporting.ResolveRange(period, nil, nil, s.now())
	logs, _, err := s.periodLogs(ctx, actor, models.HourLogFilter{DeveloperID: developerID, From: &r.From, To: &r.To})
	if err != nil {
		return nil, err
	}
	return reporting.DeveloperPeriodHours(period, logs), nil
}

// HoursSummary сводка за период; явные start и end имеют приоритет над period
func (s *Service) HoursSummary(ctx context.Context, actor authz.Actor, period reporting.Period, start, end *time.Time) (*reporting.HoursSummary, error) {
	r := reporting.ResolveRange(period, start, end, s.now())
	logs, _, err := s.periodLogs(ctx, actor, models.HourLogFilter{From: &r.From, To: &r.To})
	if err != nil {
		return nil, err
	}
	summary := reporting.SummarizeHours(r, logs)
	return &summary, nil
}

// ClientProjects часы клиента по проектам за необязательный интервал
func (s *Service) ClientProjects(ctx context.Context, actor authz.Actor, clientID string, start, end *time.Time) ([]reporting.ClientProject, error) {
	if clientID == "" {
		return nil, apperr.Validation("", "Client ID is required")
	}
	logs, _, err := s.periodLogs(ctx, actor, models.HourLogFilter{ClientID: clientID, From: start, To: end})
	if err != nil {
		return nil, err
	}
	return reporting.ClientProjectHours(logs), nil
}
