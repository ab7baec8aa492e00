package models

import (
	"fmt"
	"strings"
	"time"
)

// Ограничения на записи о часах
const (
	MinHours             = 0.5
	MaxHours             = 24.0
	HoursStep            = 0.5
	MaxDescriptionLength = 500
	DateLayout           = "2006-01-02"
)

// HourLog неизменяемый факт отработанных часов
type HourLog struct {
	ID          string    `json:"id" db:"id"`
	ClientID    string    `json:"clientId" db:"client_id"`
	DeveloperID string    `json:"developerId" db:"developer_id"`
	ProjectID   string    `json:"projectId" db:"project_id"`
	TaskID      string    `json:"taskId,omitempty" db:"task_id"`
	Date        time.Time `json:"date" db:"date"`
	Hours       float64   `json:"hours" db:"hours"`
	Description string    `json:"description" db:"description"`
	CreatedBy   string    `json:"createdBy" db:"created_by"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// HourLogView запись о часах вместе с данными связанных сущностей
type HourLogView struct {
	HourLog
	Client    Ref  `json:"client"`
	Developer Ref  `json:"developer"`
	Project   Ref  `json:"project"`
	Task      *Ref `json:"task,omitempty"`
	Author    Ref  `json:"author"`
}

// HourLogFilter фильтр выборки записей о часах
type HourLogFilter struct {
	ClientID    string
	DeveloperID string
	ProjectID   string
	TaskID      string
	From        *time.Time
	To          *time.Time
	Page        Page
}

// ValidHours проверяет диапазон 0.5..24 и кратность получасу
func ValidHours(h float64) bool {
	if h < MinHours || h > MaxHours {
		return false
	}
	steps := h / HoursStep
	return steps == float64(int64(steps))
}

// LogTotal сумма часов и количество записей, пересчитанные при чтении
type LogTotal struct {
	Hours float64 `json:"loggedHours"`
	Count int     `json:"hourLogsCount"`
}

// ParseDate разбирает дату в формате YYYY-MM-DD или RFC3339 и приводит к UTC
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.UTC(), nil
}

// NotInFuture проверяет, что запись не относится к будущему. Дата без времени
// (полночь UTC) сравнивается по дням, полная метка времени сравнивается с now.
func NotInFuture(date, now time.Time) bool {
	date, now = date.UTC(), now.UTC()
	if isDateOnly(date) {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return !date.After(today)
	}
	return !date.After(now)
}

func isDateOnly(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
