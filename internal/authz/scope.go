package authz

import "github.com/untibullet/hours-ledger/internal/models"

// Scope предикат видимости строк. Пустой Scope означает отсутствие ограничений.
// ClientID ограничивает строками клиента (для задач через клиента проекта),
// DeveloperID строками разработчика (члена проекта, исполнителя задачи, автора часов).
type Scope struct {
	ClientID    string
	DeveloperID string
}

// OwnerScope ограничивает клиента и разработчика их собственными строками
func OwnerScope(actor Actor) Scope {
	switch actor.Role {
	case models.RoleClient:
		return Scope{ClientID: actor.ID}
	case models.RoleDeveloper:
		return Scope{DeveloperID: actor.ID}
	default:
		return Scope{}
	}
}

func (s Scope) Unrestricted() bool {
	return s.ClientID == "" && s.DeveloperID == ""
}

func (s Scope) PermitsProject(p *models.Project) bool {
	if s.ClientID != "" && p.ClientID != s.ClientID {
		return false
	}
	if s.DeveloperID != "" && !p.HasDeveloper(s.DeveloperID) {
		return false
	}
	return true
}

// PermitsTask проверяет задачу; projectClientID клиент проекта задачи
func (s Scope) PermitsTask(t *models.Task, projectClientID string) bool {
	if s.ClientID != "" && projectClientID != s.ClientID {
		return false
	}
	if s.DeveloperID != "" && !t.IsAssigned(s.DeveloperID) {
		return false
	}
	return true
}

func (s Scope) PermitsHourLog(l *models.HourLog) bool {
	if s.ClientID != "" && l.ClientID != s.ClientID {
		return false
	}
	if s.DeveloperID != "" && l.DeveloperID != s.DeveloperID {
		return false
	}
	return true
}

// ApplyToProjects накладывает область видимости поверх фильтра вызывающего
func (s Scope) ApplyToProjects(f *models.ProjectFilter) {
	if s.ClientID != "" {
		f.ClientID = s.ClientID
	}
	if s.DeveloperID != "" {
		f.DeveloperID = s.DeveloperID
	}
}

func (s Scope) ApplyToTasks(f *models.TaskFilter) {
	if s.ClientID != "" {
		f.ClientID = s.ClientID
	}
	if s.DeveloperID != "" {
		f.DeveloperID = s.DeveloperID
	}
}

func (s Scope) ApplyToHourLogs(f *models.HourLogFilter) {
	if s.ClientID != "" {
		f.ClientID = s.ClientID
	}
	if s.DeveloperID != "" {
		f.DeveloperID = s.DeveloperID
	}
}
