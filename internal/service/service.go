// Package service связывает авторизацию, проверку ссылок, хранилище и агрегацию
// в операции API. Каждая операция идет по цепочке authorize → validate → store.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/auth"
	"github.com/untibullet/hours-ledger/internal/authz"
	"github.com/untibullet/hours-ledger/internal/importer"
	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/reports"
	"github.com/untibullet/hours-ledger/internal/repository"
	"github.com/untibullet/hours-ledger/internal/validator"
	"go.uber.org/zap"
)

const defaultInitialPassword = "dev123"

// Config параметры сервисного слоя
type Config struct {
	ClientPassword    string
	DeveloperPassword string
	ReportWorkers     int
	ReportDelay       time.Duration
}

type Service struct {
	store     Store
	engine    *authz.Engine
	validator *validator.Validator
	tokens    *auth.TokenManager
	reports   reports.Store
	generator *reports.Generator
	importer  *importer.Reconciler
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

// New собирает сервис; генератор отчетов нужно запустить через Start
func New(store Store, tokens *auth.TokenManager, reportStore reports.Store, cfg Config, logger *zap.Logger) *Service {
	if cfg.ClientPassword == "" {
		cfg.ClientPassword = defaultInitialPassword
	}
	if cfg.DeveloperPassword == "" {
		cfg.DeveloperPassword = defaultInitialPassword
	}

	s := &Service{
		store:     store,
		engine:    authz.NewEngine(),
		validator: validator.New(store),
		tokens:    tokens,
		reports:   reportStore,
		importer:  importer.New(store, logger),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
	s.generator = reports.NewGenerator(reportStore, s.computeReport, reports.Options{
		Workers: cfg.ReportWorkers,
		Delay:   cfg.ReportDelay,
	}, logger)
	return s
}

// Start запускает воркеры генерации отчетов
func (s *Service) Start(ctx context.Context) {
	s.generator.Start(ctx)
}

// Wait ждет остановки воркеров после отмены контекста Start
func (s *Service) Wait() {
	s.generator.Wait()
}

// fromStore переводит sentinel-ошибки хранилища в ошибки API
func fromStore(err error, notFound, op string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, repository.ErrAlreadyExists):
		return apperr.Conflict("", "Resource already exists")
	case errors.Is(err, repository.ErrHasDependents):
		return apperr.Conflict("", "Resource has logged hours and cannot be deleted")
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Internal("failed to "+op, err)
}

// resolveRefs загружает краткие ссылки по набору ID без повторов
func (s *Service) resolveRefs(ctx context.Context, ids ...[]string) (map[string]models.Ref, error) {
	seen := map[string]struct{}{}
	var unique []string
	for _, list := range ids {
		for _, id := range list {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	refs, err := s.store.GetRefs(ctx, unique)
	if err != nil {
		return nil, apperr.Internal("failed to resolve references", err)
	}
	return refs, nil
}

// ref возвращает ссылку или заглушку с именем Unknown для удаленных сущностей
func ref(refs map[string]models.Ref, id string) models.Ref {
	if r, ok := refs[id]; ok {
		return r
	}
	return models.Ref{ID: id, Name: "Unknown"}
}

func refList(refs map[string]models.Ref, ids []string) []models.Ref {
	out := make([]models.Ref, 0, len(ids))
	for _, id := range ids {
		out = append(out, ref(refs, id))
	}
	return out
}
