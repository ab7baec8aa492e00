// Package authz сопоставляет действующее лицо, ресурс и действие с разрешением
// и областью видимости строк. Политики регистрируются по типу ресурса.
package authz

import (
	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/models"
)

// Actor аутентифицированный пользователь, от имени которого выполняется действие
type Actor struct {
	ID   string
	Role models.Role
}

// IsZero сообщает об отсутствии идентичности
func (a Actor) IsZero() bool {
	return a.ID == ""
}

type Action string

const (
	ActionCreate       Action = "create"
	ActionRead         Action = "read"
	ActionUpdate       Action = "update"
	ActionUpdateStatus Action = "update_status"
	ActionDelete       Action = "delete"
)

type Resource string

const (
	ResourceClient    Resource = "client"
	ResourceDeveloper Resource = "developer"
	ResourceProject   Resource = "project"
	ResourceTask      Resource = "task"
	ResourceHourLog   Resource = "hour_log"
	ResourceReport    Resource = "report"
	ResourceDashboard Resource = "dashboard"
	ResourceImport    Resource = "import"
)

// Grant результат успешной авторизации
type Grant struct {
	Actor    Actor
	Resource Resource
	Action   Action
	Scope    Scope
}

// Policy правила доступа к одному типу ресурса
type Policy interface {
	Allows(actor Actor, action Action) bool
	Scope(actor Actor) Scope
}

// ScopeFunc вычисляет область видимости строк для действующего лица
type ScopeFunc func(actor Actor) Scope

// RolePolicy политика на основе списка ролей для каждого действия
type RolePolicy struct {
	rules map[Action][]models.Role
	scope ScopeFunc
}

func NewRolePolicy(rules map[Action][]models.Role, scope ScopeFunc) *RolePolicy {
	return &RolePolicy{rules: rules, scope: scope}
}

func (p *RolePolicy) Allows(actor Actor, action Action) bool {
	for _, role := range p.rules[action] {
		if role == actor.Role {
			return true
		}
	}
	return false
}

func (p *RolePolicy) Scope(actor Actor) Scope {
	if p.scope == nil {
		return Scope{}
	}
	return p.scope(actor)
}

// Engine реестр политик
type Engine struct {
	policies map[Resource]Policy
}

// NewEngine создает движок с политиками по умолчанию
func NewEngine() *Engine {
	e := &Engine{policies: make(map[Resource]Policy)}
	registerDefaults(e)
	return e
}

// Register добавляет или заменяет политику для типа ресурса
func (e *Engine) Register(resource Resource, p Policy) {
	e.policies[resource] = p
}

// Authorize проверяет право роли на действие и возвращает область видимости
func (e *Engine) Authorize(actor Actor, action Action, resource Resource) (Grant, error) {
	if actor.IsZero() || !actor.Role.Valid() {
		return Grant{}, apperr.Unauthenticated("Access denied. User not authenticated.")
	}
	p, ok := e.policies[resource]
	if !ok || !p.Allows(actor, action) {
		return Grant{}, apperr.Forbidden("Access denied. Insufficient permissions.")
	}
	return Grant{Actor: actor, Resource: resource, Action: action, Scope: p.Scope(actor)}, nil
}

// AuthorizeHourLogCreate дополняет ролевую проверку правилами владения:
// разработчик пишет часы только за себя и обязательно указывает задачу.
func (e *Engine) AuthorizeHourLogCreate(actor Actor, developerID, taskID string) (Grant, error) {
	grant, err := e.Authorize(actor, ActionCreate, ResourceHourLog)
	if err != nil {
		return Grant{}, err
	}
	if actor.Role == models.RoleDeveloper {
		if developerID != actor.ID {
			return Grant{}, apperr.Forbidden("Developers can only log hours for themselves")
		}
		if taskID == "" {
			return Grant{}, apperr.Validation(apperr.CodeTaskRequired, "task required for developers")
		}
	}
	return grant, nil
}

var (
	baOnly    = []models.Role{models.RoleBA}
	allRoles  = []models.Role{models.RoleBA, models.RoleClient, models.RoleDeveloper}
	baAndDevs = []models.Role{models.RoleBA, models.RoleDeveloper}
)

func registerDefaults(e *Engine) {
	userAdmin := map[Action][]models.Role{
		ActionCreate: baOnly,
		ActionRead:   baOnly,
		ActionUpdate: baOnly,
		ActionDelete: baOnly,
	}
	e.Register(ResourceClient, NewRolePolicy(userAdmin, nil))
	e.Register(ResourceDeveloper, NewRolePolicy(userAdmin, nil))

	e.Register(ResourceProject, NewRolePolicy(map[Action][]models.Role{
		ActionCreate: baOnly,
		ActionRead:   allRoles,
		ActionUpdate: baOnly,
		ActionDelete: baOnly,
	}, OwnerScope))

	e.Register(ResourceTask, NewRolePolicy(map[Action][]models.Role{
		ActionCreate:       baOnly,
		ActionRead:         allRoles,
		ActionUpdate:       baOnly,
		ActionUpdateStatus: {models.RoleDeveloper},
		ActionDelete:       baOnly,
	}, OwnerScope))

	e.Register(ResourceHourLog, NewRolePolicy(map[Action][]models.Role{
		ActionCreate: baAndDevs,
		ActionRead:   allRoles,
	}, OwnerScope))

	e.Register(ResourceReport, NewRolePolicy(map[Action][]models.Role{
		ActionCreate: allRoles,
		ActionRead:   allRoles,
		ActionDelete: allRoles,
	}, OwnerScope))

	e.Register(ResourceDashboard, NewRolePolicy(map[Action][]models.Role{
		ActionRead: allRoles,
	}, OwnerScope))

	e.Register(ResourceImport, NewRolePolicy(map[Action][]models.Role{
		ActionCreate: baOnly,
	}, nil))
}
