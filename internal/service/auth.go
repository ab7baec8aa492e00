package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/auth"
	"github.com/untibullet/hours-ledger/internal/authz"
	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/repository"
)

const minPasswordLength = 6

// RegisterInput данные первичной регистрации администратора
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session выданный токен вместе с профилем
type Session struct {
	Token string           `json:"token"`
	User  *models.Identity `json:"user"`
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// validateName проверяет длину имени после обрезки пробелов
func validateName(name string, max int) (string, error) {
	name = strings.TrimSpace(name)
	n := len([]rune(name))
	if n < 2 {
		return "", apperr.Validation("", "Name must be at least 2 characters long")
	}
	if n > max {
		return "", apperr.Validation("", "Name is too long")
	}
	return name, nil
}

func registrationClosed() error {
	return apperr.New(apperr.KindForbidden, apperr.CodeRegistrationClosed, "Registration is closed. Please contact your administrator.")
}

// Register создает первого администратора. Пока в системе есть хотя бы одна
// учетная запись, регистрация закрыта.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	name, err := validateName(in.Name, 50)
	if err != nil {
		return nil, err
	}
	email := models.NormalizeEmail(in.Email)
	if !validEmail(email) {
		return nil, apperr.Validation("", "Please provide a valid email")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.Validation("", "Password must be at least 6 characters long")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}
	user := &models.BAUser{Identity: models.Identity{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleBA,
	}}
	if err := s.store.CreateFirstBA(ctx, user); err != nil {
		if errors.Is(err, repository.ErrRegistrationClosed) {
			return nil, registrationClosed()
		}
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperr.Conflict(apperr.CodeEmailExists, "User with this email already exists")
		}
		return nil, apperr.Internal("failed to create user", err)
	}
	return s.issue(&user.Identity)
}

// Login проверяет email и пароль и выдает токен
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("", "Please provide an email and password")
	}

	user, err := s.store.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthenticated("Invalid email or password")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.Unauthenticated("Invalid email or password")
	}
	return s.issue(user)
}

func (s *Service) issue(user *models.Identity) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}
	return &Session{Token: token, User: user}, nil
}

// Authenticate разбирает bearer-токен и заново загружает учетную запись,
// чтобы роль бралась из хранилища, а не из токена
func (s *Service) Authenticate(ctx context.Context, token string) (authz.Actor, error) {
	if token == "" {
		return authz.Actor{}, apperr.Unauthenticated("Access denied. No token provided.")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return authz.Actor{}, apperr.Unauthenticated("Token expired.")
		}
		return authz.Actor{}, apperr.Unauthenticated("Invalid token.")
	}

	user, err := s.store.GetIdentity(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return authz.Actor{}, apperr.Unauthenticated("Invalid token. User not found.")
		}
		return authz.Actor{}, apperr.Internal("failed to load user", err)
	}
	return authz.Actor{ID: user.ID, Role: user.Role}, nil
}

// Profile возвращает учетную запись действующего лица
func (s *Service) Profile(ctx context.Context, actor authz.Actor) (*models.Identity, error) {
	if actor.IsZero() {
		return nil, apperr.Unauthenticated("Access denied. User not authenticated.")
	}
	user, err := s.store.GetIdentity(ctx, actor.ID)
	if err != nil {
		return nil, fromStore(err, "User not found", "load profile")
	}
	return user, nil
}
