package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/auth"
	"github.com/untibullet/hours-ledger/internal/authz"
	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/repository"
)

const (
	maxClientName    = 100
	maxDeveloperName = 50
	maxHourlyRate    = 9999
)

// ClientInput поля клиента; при обновлении nil означает "не менять"
type ClientInput struct {
	Name        *string             `json:"name"`
	Email       *string             `json:"companyEmail"`
	BillingType *models.BillingType `json:"billingType"`
	Status      *models.UserStatus  `json:"status"`
	Password    *string             `json:"password"`
}

// DeveloperInput поля разработчика; при обновлении nil означает "не менять"
type DeveloperInput struct {
	Name          *string            `json:"name"`
	Email         *string            `json:"email"`
	HourlyRate    *float64           `json:"hourlyRate"`
	DeveloperRole *string            `json:"role"`
	Status        *models.UserStatus `json:"status"`
	Password      *string            `json:"password"`
}

func emailConflict(err error) error {
	if errors.Is(err, repository.ErrAlreadyExists) {
		return apperr.Conflict(apperr.CodeEmailExists, "User with this email already exists")
	}
	return nil
}

func (s *Service) initialPassword(supplied *string, fallback string) (string, error) {
	password := fallback
	if supplied != nil && *supplied != "" {
		if len(*supplied) < minPasswordLength {
			return "", apperr.Validation("", "Password must be at least 6 characters long")
		}
		password = *supplied
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", apperr.Internal("failed to hash password", err)
	}
	return hash, nil
}

func normalizeEmailField(email *string) (string, error) {
	if email == nil {
		return "", apperr.Validation("", "Email is required")
	}
	v := models.NormalizeEmail(*email)
	if !validEmail(v) {
		return "", apperr.Validation("", "Please provide a valid email")
	}
	return v, nil
}

func applyStatus(status *models.UserStatus, dst *models.UserStatus) error {
	if status == nil {
		return nil
	}
	if !status.Valid() {
		return apperr.Validation("", "Status must be Active or Inactive")
	}
	*dst = *status
	return nil
}

// applyClient переносит заданные поля во входную запись клиента
func applyClient(in ClientInput, c *models.Client) error {
	if in.Name != nil {
		name, err := validateName(*in.Name, maxClientName)
		if err != nil {
			return err
		}
		c.Name = name
	}
	if in.Email != nil {
		email, err := normalizeEmailField(in.Email)
		if err != nil {
			return err
		}
		c.Email = email
	}
	if in.BillingType != nil {
		if !in.BillingType.Valid() {
			return apperr.Validation("", "Billing type must be Hourly or Fixed")
		}
		c.BillingType = *in.BillingType
	}
	return applyStatus(in.Status, &c.Status)
}

// CreateClient заводит клиента с начальным паролем из конфигурации
func (s *Service) CreateClient(ctx context.Context, actor authz.Actor, in ClientInput) (*models.Client, error) {
	if _, err := s.engine.Authorize(actor, authz.ActionCreate, authz.ResourceClient); err != nil {
		return nil, err
	}
	if in.Name == nil {
		return nil, apperr.Validation("", "Name is required")
	}
	if in.Email == nil {
		return nil, apperr.Validation("", "Company email is required")
	}
	if in.BillingType == nil {
		return nil, apperr.Validation("", "Billing type is required")
	}

	c := &models.Client{
		Identity:  models.Identity{ID: uuid.NewString(), Role: models.RoleClient},
		Status:    models.StatusActive,
		CreatedBy: actor.ID,
	}
	if err := applyClient(in, c); err != nil {
		return nil, err
	}
	hash, err := s.initialPassword(in.Password, s.cfg.ClientPassword)
	if err != nil {
		return nil, err
	}
	c.PasswordHash = hash

	if err := s.store.CreateClient(ctx, c); err != nil {
		if conflict := emailConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, apperr.Internal("failed to create client", err)
	}
	return c, nil
}

// ListClients возвращает страницу клиентов
func (s *Service) ListClients(ctx context.Context, actor authz.Actor, f models.UserFilter) ([]models.Client, models.Pagination, error) {
	if _, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceClient); err != nil {
		return nil, models.Pagination{}, err
	}
	f.Search = strings.TrimSpace(f.Search)
	clients, total, err := s.store.ListClients(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, apperr.Internal("failed to list clients", err)
	}
	return clients, models.NewPagination(f.Page, total), nil
}

// GetClient возвращает клиента по ID вне зависимости от статуса
func (s *Service) GetClient(ctx context.Context, actor authz.Actor, id string) (*models.Client, error) {
	if _, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceClient); err != nil {
		return nil, err
	}
	c, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Client not found", "get client")
	}
	return c, nil
}

func (s *Service) UpdateClient(ctx context.Context, actor authz.Actor, id string, in ClientInput) (*models.Client, error) {
	if _, err := s.engine.Authorize(actor, authz.ActionUpdate, authz.ResourceClient); err != nil {
		return nil, err
	}
	c, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Client not found", "get client")
	}
	if err := applyClient(in, c); err != nil {
		return nil, err
	}
	if err := s.store.UpdateClient(ctx, c); err != nil {
		if conflict := emailConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, fromStore(err, "Client not found", "update client")
	}
	return c, nil
}

// DeactivateClient мягко удаляет клиента; его проекты и часы не меняются
func (s *Service) DeactivateClient(ctx context.Context, actor authz.Actor, id string) error {
	if _, err := s.engine.Authorize(actor, authz.ActionDelete, authz.ResourceClient); err != nil {
		return err
	}
	if err := s.store.SetUserStatus(ctx, id, models.RoleClient, models.StatusInactive); err != nil {
		return fromStore(err, "Client not found", "deactivate client")
	}
	return nil
}

func applyDeveloper(in DeveloperInput, d *models.Developer) error {
	if in.Name != nil {
		name, err := validateName(*in.Name, maxDeveloperName)
		if err != nil {
			return err
		}
		d.Name = name
	}
	if in.Email != nil {
		email, err := normalizeEmailField(in.Email)
		if err != nil {
			return err
		}
		d.Email = email
	}
	if in.HourlyRate != nil {
		if *in.HourlyRate < 0 || *in.HourlyRate > maxHourlyRate {
			return apperr.Validation("", "Hourly rate must be between 0 and 9999")
		}
		d.HourlyRate = *in.HourlyRate
	}
	if in.DeveloperRole != nil {
		role := strings.TrimSpace(*in.DeveloperRole)
		if n := len([]rune(role)); n < 2 || n > 50 {
			return apperr.Validation("", "Role must be between 2 and 50 characters long")
		}
		d.DeveloperRole = role
	}
	return applyStatus(in.Status, &d.Status)
}

// CreateDeveloper заводит разработчика с переданным или начальным паролем
func (s *Service) CreateDeveloper(ctx context.Context, actor authz.Actor, in DeveloperInput) (*models.Developer, error) {
	if _, err := s.engine.Authorize(actor, authz.ActionCreate, authz.ResourceDeveloper); err != nil {
		return nil, err
	}
	switch {
	case in.Name == nil:
		return nil, apperr.Validation("", "Name is required")
	case in.Email == nil:
		return nil, apperr.Validation("", "Email is required")
	case in.HourlyRate == nil:
		return nil, apperr.Validation("", "Hourly rate is required")
	case in.DeveloperRole == nil:
		return nil, apperr.Validation("", "Role is required")
	}

	d := &models.Developer{
		Identity:  models.Identity{ID: uuid.NewString(), Role: models.RoleDeveloper},
		Status:    models.StatusActive,
		CreatedBy: actor.ID,
	}
	if err := applyDeveloper(in, d); err != nil {
		return nil, err
	}
	hash, err := s.initialPassword(in.Password, s.cfg.DeveloperPassword)
	if err != nil {
		return nil, err
	}
	d.PasswordHash = hash

	if err := s.store.CreateDeveloper(ctx, d); err != nil {
		if conflict := emailConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, apperr.Internal("failed to create developer", err)
	}
	return d, nil
}

func (s *Service) ListDevelopers(ctx context.Context, actor authz.Actor, f models.UserFilter) ([]models.Developer, models.Pagination, error) {
	if _, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceDeveloper); err != nil {
		return nil, models.Pagination{}, err
	}
	f.Search = strings.TrimSpace(f.Search)
	developers, total, err := s.store.ListDevelopers(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, apperr.Internal("failed to list developers", err)
	}
	return developers, models.NewPagination(f.Page, total), nil
}

func (s *Service) GetDeveloper(ctx context.Context, actor authz.Actor, id string) (*models.Developer, error) {
	if _, err := s.engine.Authorize(actor, authz.ActionRead, authz.ResourceDeveloper); err != nil {
		return nil, err
	}
	d, err := s.store.GetDeveloper(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Developer not found", "get developer")
	}
	return d, nil
}

func (s *Service) UpdateDeveloper(ctx context.Context, actor authz.Actor, id string, in DeveloperInput) (*models.Developer, error) {
	if _, err := s.engine.Authorize(actor, authz.ActionUpdate, authz.ResourceDeveloper); err != nil {
		return nil, err
	}
	d, err := s.store.GetDeveloper(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Developer not found", "get developer")
	}
	if err := applyDeveloper(in, d); err != nil {
		return nil, err
	}
	if err := s.store.UpdateDeveloper(ctx, d); err != nil {
		if conflict := emailConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, fromStore(err, "Developer not found", "update developer")
	}
	return d, nil
}

// DeactivateDeveloper мягко удаляет разработчика
func (s *Service) DeactivateDeveloper(ctx context.Context, actor authz.Actor, id string) error {
	if _, err := s.engine.Authorize(actor, authz.ActionDelete, authz.ResourceDeveloper); err != nil {
		return err
	}
	if err := s.store.SetUserStatus(ctx, id, models.RoleDeveloper, models.StatusInactive); err != nil {
		return fromStore(err, "Developer not found", "deactivate developer")
	}
	return nil
}
