package service

import (
	"context"

	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/authz"
	"github.com/untibullet/hours-ledger/internal/importer"
	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/reporting"
)

// Dashboard собирает сводку главной страницы. Счетчики активных клиентов и
// разработчиков общие, часовые показатели ограничены областью видимости.
func (s *Service) Dashboard(ctx context.Context, actor authz.Actor) (*reporting.Dashboard, error) {
	grant, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceDashboard)
	if err != nil {
		return nil, err
	}
	logs, _, err := s.scopedHourLogs(ctx, grant.Scope, models.HourLogFilter{})
	if err != nil {
		return nil, err
	}
	d := reporting.BuildDashboard(logs, s.now())

	if d.TotalClients, err = s.store.CountActiveUsers(ctx, models.RoleClient); err != nil {
		return nil, apperr.Internal("failed to count clients", err)
	}
	if d.TotalDevelopers, err = s.store.CountActiveUsers(ctx, models.RoleDeveloper); err != nil {
		return nil, apperr.Internal("failed to count developers", err)
	}
	return &d, nil
}

// ImportHourLogs импортирует строки от имени администратора; ошибки строк
// собираются в результат и не прерывают пакет
func (s *Service) ImportHourLogs(ctx context.Context, actor authz.Actor, rows []importer.Row) (*importer.Result, error) {
	if _, err := s.engine.Authorize(actor, authz.ActionCreate, authz.ResourceImport); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.Validation("", "At least one row is required")
	}
	res := s.importer.ImportRows(ctx, rows, actor.ID)
	return &res, nil
}

// ActorByEmail находит администратора по email для запуска импорта вне HTTP
func (s *Service) ActorByEmail(ctx context.Context, email string) (authz.Actor, error) {
	user, err := s.store.GetIdentityByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return authz.Actor{}, fromStore(err, "User not found", "find user")
	}
	return authz.Actor{ID: user.ID, Role: user.Role}, nil
}
