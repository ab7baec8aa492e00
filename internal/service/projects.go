package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/authz"
	"github.com/untibullet/hours-ledger/internal/models"
)

const (
	maxProjectName        = 100
	maxProjectDescription = 500
)

// ProjectInput поля проекта; при обновлении nil означает "не менять"
type ProjectInput struct {
	Name           *string               `json:"name"`
	Description    *string               `json:"description"`
	ClientID       *string               `json:"client"`
	DeveloperIDs   *[]string             `json:"developers"`
	Status         *models.ProjectStatus `json:"status"`
	StartDate      *string               `json:"startDate"`
	EndDate        *string               `json:"endDate"`
	EstimatedHours *float64              `json:"estimatedHours"`
	HourlyRate     *float64              `json:"hourlyRate"`
	BillingType    *models.BillingType   `json:"billingType"`
}

// ProjectStats сводка проектов по статусам
type ProjectStats struct {
	Stats         []models.ProjectStatusStat `json:"stats"`
	TotalProjects int                        `json:"totalProjects"`
}

// parseOptionalDate разбирает дату; пустая строка сбрасывает значение
func parseOptionalDate(v *string, field string) (*time.Time, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	t, err := models.ParseDate(*v)
	if err != nil {
		return nil, apperr.Validation("", field+" must be a valid date")
	}
	return &t, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// applyProject проверяет форму полей и переносит их в проект
func applyProject(in ProjectInput, p *models.Project) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return apperr.Validation("", "Project name is required")
		}
		if len([]rune(name)) > maxProjectName {
			return apperr.Validation("", "Project name cannot exceed 100 characters")
		}
		p.Name = name
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if len([]rune(description)) > maxProjectDescription {
			return apperr.Validation("", "Description cannot exceed 500 characters")
		}
		p.Description = description
	}
	if in.ClientID != nil {
		p.ClientID = strings.TrimSpace(*in.ClientID)
	}
	if in.DeveloperIDs != nil {
		p.DeveloperIDs = uniqueIDs(*in.DeveloperIDs)
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return apperr.Validation("", "Invalid project status")
		}
		p.Status = *in.Status
	}
	if in.StartDate != nil {
		start, err := parseOptionalDate(in.StartDate, "Start date")
		if err != nil {
			return err
		}
		p.StartDate = start
	}
	if in.EndDate != nil {
		end, err := parseOptionalDate(in.EndDate, "End date")
		if err != nil {
			return err
		}
		p.EndDate = end
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return apperr.Validation("", "End date cannot be before start date")
	}
	if in.EstimatedHours != nil {
		if *in.EstimatedHours < 0 {
			return apperr.Validation("", "Estimated hours cannot be negative")
		}
		p.EstimatedHours = *in.EstimatedHours
	}
	if in.HourlyRate != nil {
		if *in.HourlyRate < 0 {
			return apperr.Validation("", "Hourly rate cannot be negative")
		}
		p.HourlyRate = *in.HourlyRate
	}
	if in.BillingType != nil {
		if !in.BillingType.Valid() {
			return apperr.Validation("", "Billing type must be Hourly or Fixed")
		}
		p.BillingType = *in.BillingType
	}
	return nil
}

// projectViews разворачивает ссылки и считает залогированные часы
func (s *Service) projectViews(ctx context.Context, projects []models.Project) ([]models.ProjectView, error) {
	ids := make([]string, 0, len(projects))
	refIDs := []string{}
	for _, p := range projects {
		ids = append(ids, p.ID)
		refIDs = append(refIDs, p.ClientID)
		refIDs = append(refIDs, p.DeveloperIDs...)
	}
	refs, err := s.resolveRefs(ctx, refIDs)
	if err != nil {
		return nil, err
	}
	totals, err := s.store.ProjectLogTotals(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("failed to count project hours", err)
	}

	views := make([]models.ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, models.ProjectView{
			Project:    p,
			Client:     ref(refs, p.ClientID),
			Developers: refList(refs, p.DeveloperIDs),
			LogTotal:   totals[p.ID],
		})
	}
	return views, nil
}

func (s *Service) projectView(ctx context.Context, p *models.Project) (*models.ProjectView, error) {
	views, err := s.projectViews(ctx, []models.Project{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) CreateProject(ctx context.Context, actor authz.Actor, in ProjectInput) (*models.ProjectView, error) {
	if _, err := s.engine.Authorize(actor, authz.ActionCreate, authz.ResourceProject); err != nil {
		return nil, err
	}
	if in.Name == nil {
		return nil, apperr.Validation("", "Project name is required")
	}
	if in.ClientID == nil {
		return nil, apperr.Validation("", "Client is required")
	}

	p := &models.Project{
		ID:           uuid.NewString(),
		DeveloperIDs: []string{},
		Status:       models.ProjectPlanning,
		BillingType:  models.BillingHourly,
		CreatedBy:    actor.ID,
	}
	if err := applyProject(in, p); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateProjectRefs(ctx, p.ClientID, p.DeveloperIDs); err != nil {
		return nil, err
	}

	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, fromStore(err, "Project not found", "create project")
	}
	return s.projectView(ctx, p)
}

// ListProjects возвращает проекты в области видимости действующего лица
func (s *Service) ListProjects(ctx context.Context, actor authz.Actor, f models.ProjectFilter) ([]models.ProjectView, models.Pagination, error) {
	grant, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceProject)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, models.Pagination{}, apperr.Validation("", "Invalid project status")
	}
	grant.Scope.ApplyToProjects(&f)

	projects, total, err := s.store.ListProjects(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, apperr.Internal("failed to list projects", err)
	}
	views, err := s.projectViews(ctx, projects)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return views, models.NewPagination(f.Page, total), nil
}

// scopedProject загружает проект; вне области видимости он считается ненайденным
func (s *Service) scopedProject(ctx context.Context, scope authz.Scope, id string) (*models.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Project not found", "get project")
	}
	if !scope.PermitsProject(p) {
		return nil, apperr.NotFound("Project not found")
	}
	return p, nil
}

func (s *Service) GetProject(ctx context.Context, actor authz.Actor, id string) (*models.ProjectView, error) {
	grant, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceProject)
	if err != nil {
		return nil, err
	}
	p, err := s.scopedProject(ctx, grant.Scope, id)
	if err != nil {
		return nil, err
	}
	return s.projectView(ctx, p)
}

func (s *Service) UpdateProject(ctx context.Context, actor authz.Actor, id string, in ProjectInput) (*models.ProjectView, error) {
	if _, err := s.engine.Authorize(actor, authz.ActionUpdate, authz.ResourceProject); err != nil {
		return nil, err
	}
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Project not found", "get project")
	}
	if err := applyProject(in, p); err != nil {
		return nil, err
	}
	if in.ClientID != nil || in.DeveloperIDs != nil {
		if err := s.validator.ValidateProjectRefs(ctx, p.ClientID, p.DeveloperIDs); err != nil {
			return nil, err
		}
	}

	if err := s.store.UpdateProject(ctx, p); err != nil {
		return nil, fromStore(err, "Project not found", "update project")
	}
	return s.projectView(ctx, p)
}

// DeleteProject удаляет проект вместе с задачами, если по нему нет часов
func (s *Service) DeleteProject(ctx context.Context, actor authz.Actor, id string) error {
	if _, err := s.engine.Authorize(actor, authz.ActionDelete, authz.ResourceProject); err != nil {
		return err
	}
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return fromStore(err, "Project not found", "delete project")
	}
	return nil
}

// ProjectStats считает проекты по статусам в области видимости
func (s *Service) ProjectStats(ctx context.Context, actor authz.Actor) (*ProjectStats, error) {
	grant, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceProject)
	if err != nil {
		return nil, err
	}
	var f models.ProjectFilter
	grant.Scope.ApplyToProjects(&f)

	stats, err := s.store.ProjectStats(ctx, f)
	if err != nil {
		return nil, apperr.Internal("failed to get project stats", err)
	}
	out := &ProjectStats{Stats: stats}
	for _, st := range stats {
		out.TotalProjects += st.Count
	}
	return out, nil
}
