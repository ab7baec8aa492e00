package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/models"
)

var (
	ba        = Actor{ID: "ba-1", Role: models.RoleBA}
	client    = Actor{ID: "client-1", Role: models.RoleClient}
	developer = Actor{ID: "dev-1", Role: models.RoleDeveloper}
)

func TestAuthorizeRoleMatrix(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name     string
		actor    Actor
		action   Action
		resource Resource
		allowed  bool
	}{
		{"ba creates client", ba, ActionCreate, ResourceClient, true},
		{"client cannot list clients", client, ActionRead, ResourceClient, false},
		{"developer cannot deactivate developer", developer, ActionDelete, ResourceDeveloper, false},
		{"ba creates project", ba, ActionCreate, ResourceProject, true},
		{"client reads projects", client, ActionRead, ResourceProject, true},
		{"developer cannot update project", developer, ActionUpdate, ResourceProject, false},
		{"developer updates task status", developer, ActionUpdateStatus, ResourceTask, true},
		{"ba has no status-only path", ba, ActionUpdateStatus, ResourceTask, false},
		{"developer cannot fully update task", developer, ActionUpdate, ResourceTask, false},
		{"client cannot create hour log", client, ActionCreate, ResourceHourLog, false},
		{"developer creates hour log", developer, ActionCreate, ResourceHourLog, true},
		{"client reads hour logs", client, ActionRead, ResourceHourLog, true},
		{"developer reads dashboard", developer, ActionRead, ResourceDashboard, true},
		{"developer cannot import", developer, ActionCreate, ResourceImport, false},
		{"ba imports", ba, ActionCreate, ResourceImport, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Authorize(tc.actor, tc.action, tc.resource)
			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
		})
	}
}

func TestAuthorizeWithoutIdentity(t *testing.T) {
	_, err := NewEngine().Authorize(Actor{}, ActionRead, ResourceProject)
	require.Error(t, err)
	assert.Equal(t, 401, apperr.From(err).Kind.HTTPStatus())
}

func TestScopesFollowRole(t *testing.T) {
	e := NewEngine()

	grant, err := e.Authorize(ba, ActionRead, ResourceHourLog)
	require.NoError(t, err)
	assert.True(t, grant.Scope.Unrestricted())

	grant, err = e.Authorize(client, ActionRead, ResourceHourLog)
	require.NoError(t, err)
	assert.Equal(t, Scope{ClientID: client.ID}, grant.Scope)

	grant, err = e.Authorize(developer, ActionRead, ResourceProject)
	require.NoError(t, err)
	assert.Equal(t, Scope{DeveloperID: developer.ID}, grant.Scope)
}

func TestScopeOverridesCallerFilter(t *testing.T) {
	f := models.HourLogFilter{DeveloperID: "someone-else", ClientID: "c-9"}
	Scope{DeveloperID: "dev-1"}.ApplyToHourLogs(&f)
	assert.Equal(t, "dev-1", f.DeveloperID)
	assert.Equal(t, "c-9", f.ClientID, "unscoped dimension keeps caller filter")
}

func TestScopePermits(t *testing.T) {
	project := &models.Project{ClientID: "client-1", DeveloperIDs: []string{"dev-1"}}
	assert.True(t, OwnerScope(client).PermitsProject(project))
	assert.True(t, OwnerScope(developer).PermitsProject(project))
	assert.False(t, Scope{DeveloperID: "dev-2"}.PermitsProject(project))

	task := &models.Task{AssignedTo: []string{"dev-1"}}
	assert.True(t, OwnerScope(developer).PermitsTask(task, "client-1"))
	assert.False(t, Scope{ClientID: "client-2"}.PermitsTask(task, "client-1"))

	log := &models.HourLog{ClientID: "client-1", DeveloperID: "dev-2"}
	assert.True(t, OwnerScope(client).PermitsHourLog(log))
	assert.False(t, OwnerScope(developer).PermitsHourLog(log))
}

func TestAuthorizeHourLogCreate(t *testing.T) {
	e := NewEngine()

	_, err := e.AuthorizeHourLogCreate(developer, "dev-2", "task-1")
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, err = e.AuthorizeHourLogCreate(developer, developer.ID, "")
	assert.True(t, apperr.HasCode(err, apperr.CodeTaskRequired))

	_, err = e.AuthorizeHourLogCreate(developer, developer.ID, "task-1")
	assert.NoError(t, err)

	_, err = e.AuthorizeHourLogCreate(ba, "dev-2", "")
	assert.NoError(t, err, "BA logs for any developer without a task")

	_, err = e.AuthorizeHourLogCreate(client, client.ID, "task-1")
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}
