package service

import (
	"context"

	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/repository"
)

// UserStore учетные записи всех ролей
type UserStore interface {
	CountActiveUsers(ctx context.Context, role models.Role) (int, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateFirstBA(ctx context.Context, u *models.BAUser) error
	CreateClient(ctx context.Context, c *models.Client) error
	CreateDeveloper(ctx context.Context, d *models.Developer) error
	GetIdentity(ctx context.Context, id string) (*models.Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (*models.Identity, error)
	GetClient(ctx context.Context, id string) (*models.Client, error)
	GetDeveloper(ctx context.Context, id string) (*models.Developer, error)
	FindClientByName(ctx context.Context, name string) (*models.Client, error)
	FindDeveloperByName(ctx context.Context, name string) (*models.Developer, error)
	ListClients(ctx context.Context, f models.UserFilter) ([]models.Client, int, error)
	ListDevelopers(ctx context.Context, f models.UserFilter) ([]models.Developer, int, error)
	UpdateClient(ctx context.Context, c *models.Client) error
	UpdateDeveloper(ctx context.Context, d *models.Developer) error
	SetUserStatus(ctx context.Context, id string, role models.Role, status models.UserStatus) error
	GetRefs(ctx context.Context, ids []string) (map[string]models.Ref, error)
}

// ProjectStore проекты и состав разработчиков
type ProjectStore interface {
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, int, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id string) error
	ProjectStats(ctx context.Context, f models.ProjectFilter) ([]models.ProjectStatusStat, error)
	UpsertImportProject(ctx context.Context, u models.ProjectUpsert) (*models.Project, bool, error)
	ProjectLogTotals(ctx context.Context, ids []string) (map[string]models.LogTotal, error)
}

// TaskStore задачи и назначения
type TaskStore interface {
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, int, error)
	UpdateTask(ctx context.Context, t *models.Task) error
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error
	DeleteTask(ctx context.Context, id string) error
	TaskLogTotals(ctx context.Context, ids []string) (map[string]models.LogTotal, error)
}

// HourLogStore записи о часах
type HourLogStore interface {
	CreateHourLog(ctx context.Context, l *models.HourLog) error
	ListHourLogs(ctx context.Context, f models.HourLogFilter) ([]models.HourLog, int, error)
}

// Store полный набор операций хранилища, которым пользуются сервисы
type Store interface {
	UserStore
	ProjectStore
	TaskStore
	HourLogStore
}

var _ Store = (*repository.Repository)(nil)
