// models/models.go
package models

import (
	"strings"
	"time"
)

// Role числовой код роли, совпадает с кодом в токене и в ответах API
type Role int

const (
	RoleBA        Role = 0
	RoleClient    Role = 1
	RoleDeveloper Role = 2
)

// String возвращает человекочитаемое имя роли
func (r Role) String() string {
	switch r {
	case RoleBA:
		return "BA"
	case RoleClient:
		return "Client"
	case RoleDeveloper:
		return "Developer"
	default:
		return "Unknown"
	}
}

// Valid проверяет, что роль входит в перечисление
func (r Role) Valid() bool {
	return r == RoleBA || r == RoleClient || r == RoleDeveloper
}

// UserStatus статус клиента или разработчика (мягкое удаление через Inactive)
type UserStatus string

const (
	StatusActive   UserStatus = "Active"
	StatusInactive UserStatus = "Inactive"
)

func (s UserStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// BillingType способ тарификации клиента или проекта
type BillingType string

const (
	BillingHourly BillingType = "Hourly"
	BillingFixed  BillingType = "Fixed"
)

func (b BillingType) Valid() bool {
	return b == BillingHourly || b == BillingFixed
}

// Identity общая часть учетной записи для всех ролей
type Identity struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// BAUser администратор системы
type BAUser struct {
	Identity
}

// Client заказчик, которому выставляются часы
type Client struct {
	Identity
	BillingType BillingType `json:"billingType" db:"billing_type"`
	Status      UserStatus  `json:"status" db:"status"`
	CreatedBy   string      `json:"createdBy" db:"created_by"`
}

// Developer исполнитель, который логирует часы
type Developer struct {
	Identity
	HourlyRate    float64    `json:"hourlyRate" db:"hourly_rate"`
	DeveloperRole string     `json:"developerRole" db:"developer_role"`
	Status        UserStatus `json:"status" db:"status"`
	CreatedBy     string     `json:"createdBy" db:"created_by"`
}

// Ref краткая ссылка на связанную сущность в ответах
type Ref struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email,omitempty"`
	HourlyRate float64 `json:"hourlyRate,omitempty"`
}

// NormalizeEmail приводит email к виду, в котором он хранится
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Page параметры постраничной выборки
type Page struct {
	Page  int
	Limit int
}

// Offset возвращает смещение для SQL/срезов
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Pagination описание страницы в ответе
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination считает количество страниц
func NewPagination(p Page, total int) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, Pages: pages}
}

// UserFilter фильтр списков клиентов и разработчиков
type UserFilter struct {
	Status UserStatus
	Search string
	Page   Page
}
