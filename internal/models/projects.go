package models

import "time"

// ProjectStatus статус проекта
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "Planning"
	ProjectActive    ProjectStatus = "Active"
	ProjectOnHold    ProjectStatus = "On Hold"
	ProjectCompleted ProjectStatus = "Completed"
	ProjectCancelled ProjectStatus = "Cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// Project проект клиента с набором разработчиков
type Project struct {
	ID             string        `json:"id" db:"id"`
	Name           string        `json:"name" db:"name"`
	Description    string        `json:"description" db:"description"`
	ClientID       string        `json:"clientId" db:"client_id"`
	DeveloperIDs   []string      `json:"developerIds" db:"-"`
	Status         ProjectStatus `json:"status" db:"status"`
	StartDate      *time.Time    `json:"startDate,omitempty" db:"start_date"`
	EndDate        *time.Time    `json:"endDate,omitempty" db:"end_date"`
	EstimatedHours float64       `json:"estimatedHours" db:"estimated_hours"`
	ActualHours    float64       `json:"actualHours" db:"actual_hours"`
	HourlyRate     float64       `json:"hourlyRate" db:"hourly_rate"`
	BillingType    BillingType   `json:"billingType" db:"billing_type"`
	CreatedBy      string        `json:"createdBy" db:"created_by"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}

// HasDeveloper проверяет членство разработчика в проекте
func (p *Project) HasDeveloper(developerID string) bool {
	return contains(p.DeveloperIDs, developerID)
}

// ProjectView проект с развернутыми ссылками для ответов API
type ProjectView struct {
	Project
	Client     Ref   `json:"client"`
	Developers []Ref `json:"developers"`
	LogTotal
}

// ProjectFilter фильтр списка проектов; ClientID/DeveloperID задают область видимости
type ProjectFilter struct {
	ClientID    string
	DeveloperID string
	Status      ProjectStatus
	Page        Page
}

// ProjectStatusStat агрегат по статусу проекта
type ProjectStatusStat struct {
	Status         ProjectStatus `json:"status"`
	Count          int           `json:"count"`
	TotalEstimated float64       `json:"totalEstimated"`
	TotalActual    float64       `json:"totalActual"`
}

// ProjectUpsert параметры find-or-create проекта при импорте
type ProjectUpsert struct {
	ID          string
	Name        string
	ClientID    string
	DeveloperID string
	CreatedBy   string
}

// TaskStatus статус задачи
type TaskStatus string

const (
	TaskTodo       TaskStatus = "Todo"
	TaskInProgress TaskStatus = "In Progress"
	TaskReview     TaskStatus = "Review"
	TaskCompleted  TaskStatus = "Completed"
	TaskBlocked    TaskStatus = "Blocked"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskReview, TaskCompleted, TaskBlocked:
		return true
	}
	return false
}

// TaskPriority приоритет задачи
type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
	PriorityUrgent TaskPriority = "Urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task задача внутри проекта
type Task struct {
	ID             string       `json:"id" db:"id"`
	Title          string       `json:"title" db:"title"`
	Description    string       `json:"description" db:"description"`
	ProjectID      string       `json:"projectId" db:"project_id"`
	AssignedTo     []string     `json:"assignedTo" db:"-"`
	Status         TaskStatus   `json:"status" db:"status"`
	Priority       TaskPriority `json:"priority" db:"priority"`
	EstimatedHours float64      `json:"estimatedHours" db:"estimated_hours"`
	ActualHours    float64      `json:"actualHours" db:"actual_hours"`
	StartDate      *time.Time   `json:"startDate,omitempty" db:"start_date"`
	DueDate        *time.Time   `json:"dueDate,omitempty" db:"due_date"`
	CreatedBy      string       `json:"createdBy" db:"created_by"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" db:"updated_at"`
}

// IsAssigned проверяет, назначен ли разработчик на задачу
func (t *Task) IsAssigned(developerID string) bool {
	return contains(t.AssignedTo, developerID)
}

// TaskView задача с развернутыми ссылками
type TaskView struct {
	Task
	Project   Ref    `json:"project"`
	ClientID  string `json:"clientId"`
	Assignees []Ref  `json:"assignees"`
	LogTotal
}

// TaskFilter фильтр списка задач; ClientID/DeveloperID задают область видимости
type TaskFilter struct {
	ClientID    string
	DeveloperID string
	ProjectID   string
	Status      TaskStatus
	Priority    TaskPriority
	Page        Page
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
