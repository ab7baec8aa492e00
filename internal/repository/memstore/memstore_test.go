package memstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/repository"
)

func seed(t *testing.T, s *Store) (*models.Client, *models.Developer, *models.Project, *models.Task) {
	t.Helper()
	ctx := context.Background()

	c := &models.Client{Identity: models.Identity{ID: "c1", Name: "Acme", Email: "acme@x.io"}, BillingType: models.BillingHourly, Status: models.StatusActive}
	require.NoError(t, s.CreateClient(ctx, c))
	d := &models.Developer{Identity: models.Identity{ID: "d1", Name: "Dana", Email: "dana@x.io"}, HourlyRate: 50, Status: models.StatusActive}
	require.NoError(t, s.CreateDeveloper(ctx, d))
	p := &models.Project{ID: "p1", Name: "Site", ClientID: c.ID, DeveloperIDs: []string{d.ID}, Status: models.ProjectActive}
	require.NoError(t, s.CreateProject(ctx, p))
	task := &models.Task{ID: "t1", Title: "Build", ProjectID: p.ID, AssignedTo: []string{d.ID}}
	require.NoError(t, s.CreateTask(ctx, task))
	return c, d, p, task
}

func TestEmailUniqueAcrossRoles(t *testing.T) {
	s := New()
	ctx := context.Background()
	seed(t, s)

	err := s.CreateDeveloper(ctx, &models.Developer{Identity: models.Identity{ID: "d9", Email: "acme@x.io"}})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)

	exists, err := s.EmailExists(ctx, "dana@x.io")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateFirstBAOnlyOnEmptyStore(t *testing.T) {
	s := New()
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	created, closed := 0, 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := &models.BAUser{Identity: models.Identity{ID: fmt.Sprintf("b%d", i), Email: fmt.Sprintf("ba%d@x.io", i)}}
			err := s.CreateFirstBA(ctx, u)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, repository.ErrRegistrationClosed) {
				closed++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, closed)
	assert.Len(t, s.bas, 1)
}

func TestUpdateProjectPrunesTaskAssignees(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, d, p, task := seed(t, s)

	other := &models.Developer{Identity: models.Identity{ID: "d2", Name: "Egor", Email: "egor@x.io"}, HourlyRate: 40, Status: models.StatusActive}
	require.NoError(t, s.CreateDeveloper(ctx, other))

	p.DeveloperIDs = []string{other.ID}
	require.NoError(t, s.UpdateProject(ctx, p))

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.NotContains(t, got.AssignedTo, d.ID)
	assert.Empty(t, got.AssignedTo)
}

func TestConcurrentHourLogsKeepEveryIncrement(t *testing.T) {
	s := New()
	ctx := context.Background()
	c, d, p, task := seed(t, s)

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.CreateHourLog(ctx, &models.HourLog{
				ID: fmt.Sprintf("l%d", i), ClientID: c.ID, DeveloperID: d.ID, ProjectID: p.ID, TaskID: task.ID,
				Date: time.Now(), Hours: 1, Description: "work",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(n), got.ActualHours)

	gotTask, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(n), gotTask.ActualHours)

	totals, err := s.ProjectLogTotals(ctx, []string{p.ID})
	require.NoError(t, err)
	assert.Equal(t, models.LogTotal{Hours: n, Count: n}, totals[p.ID])
}

func TestUpsertImportProjectDeduplicates(t *testing.T) {
	s := New()
	ctx := context.Background()
	c, d, _, _ := seed(t, s)

	p, created, err := s.UpsertImportProject(ctx, models.ProjectUpsert{ID: "np", Name: "Imported", ClientID: c.ID, DeveloperID: d.ID})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.ProjectActive, p.Status)
	assert.Equal(t, models.BillingHourly, p.BillingType)

	again, created, err := s.UpsertImportProject(ctx, models.ProjectUpsert{ID: "np2", Name: "Imported", ClientID: c.ID, DeveloperID: d.ID})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, []string{d.ID}, again.DeveloperIDs)
}

func TestDeleteRejectsProjectsWithLogs(t *testing.T) {
	s := New()
	ctx := context.Background()
	c, d, p, task := seed(t, s)

	require.NoError(t, s.CreateHourLog(ctx, &models.HourLog{ID: "l1", ClientID: c.ID, DeveloperID: d.ID, ProjectID: p.ID, TaskID: task.ID, Date: time.Now(), Hours: 2}))

	assert.ErrorIs(t, s.DeleteProject(ctx, p.ID), repository.ErrHasDependents)
	assert.ErrorIs(t, s.DeleteTask(ctx, task.ID), repository.ErrHasDependents)
	assert.ErrorIs(t, s.DeleteTask(ctx, "missing"), repository.ErrNotFound)
}

func TestSoftDeletedClientLeavesActiveList(t *testing.T) {
	s := New()
	ctx := context.Background()
	c, _, _, _ := seed(t, s)

	require.NoError(t, s.SetUserStatus(ctx, c.ID, models.RoleClient, models.StatusInactive))

	active, total, err := s.ListClients(ctx, models.UserFilter{Status: models.StatusActive})
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Zero(t, total)

	got, err := s.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, got.Status)

	assert.ErrorIs(t, s.SetUserStatus(ctx, c.ID, models.RoleDeveloper, models.StatusInactive), repository.ErrNotFound)
}

func TestListHourLogsNewestFirstWithPaging(t *testing.T) {
	s := New()
	ctx := context.Background()
	c, d, p, _ := seed(t, s)

	base := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateHourLog(ctx, &models.HourLog{
			ID: fmt.Sprintf("l%d", i), ClientID: c.ID, DeveloperID: d.ID, ProjectID: p.ID,
			Date: base.AddDate(0, 0, i), Hours: 1,
		}))
	}

	from := base.AddDate(0, 0, 1)
	logs, total, err := s.ListHourLogs(ctx, models.HourLogFilter{From: &from, Page: models.Page{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, logs, 2)
	assert.Equal(t, "l4", logs[0].ID)
	assert.Equal(t, "l3", logs[1].ID)
}
