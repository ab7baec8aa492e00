package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/auth"
	"github.com/untibullet/hours-ledger/internal/authz"
	"github.com/untibullet/hours-ledger/internal/importer"
	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/reporting"
	"github.com/untibullet/hours-ledger/internal/reports"
	"github.com/untibullet/hours-ledger/internal/repository/memstore"
	"github.com/untibullet/hours-ledger/internal/service"
	"go.uber.org/zap"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	svc     *service.Service
	store   *memstore.Store
	ba      authz.Actor
	client  authz.Actor
	other   authz.Actor
	dev1    authz.Actor
	dev2    authz.Actor
	project *models.ProjectView
	task    *models.TaskView
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	svc := service.New(store, auth.NewTokenManager("test-secret", time.Hour), reports.NewMemoryStore(),
		service.Config{ReportWorkers: 2}, zap.NewNop())

	runCtx, cancel := context.WithCancel(context.Background())
	svc.Start(runCtx)
	t.Cleanup(func() {
		cancel()
		svc.Wait()
	})

	session, err := svc.Register(ctx, service.RegisterInput{Name: "Admin", Email: "Admin@Example.com", Password: "secret1"})
	require.NoError(t, err)
	f := &fixture{svc: svc, store: store, ba: authz.Actor{ID: session.User.ID, Role: models.RoleBA}}

	newClient := func(name, email string) authz.Actor {
		c, err := svc.CreateClient(ctx, f.ba, service.ClientInput{Name: ptr(name), Email: ptr(email), BillingType: ptr(models.BillingHourly)})
		require.NoError(t, err)
		return authz.Actor{ID: c.ID, Role: models.RoleClient}
	}
	newDeveloper := func(name, email string, rate float64) authz.Actor {
		d, err := svc.CreateDeveloper(ctx, f.ba, service.DeveloperInput{Name: ptr(name), Email: ptr(email), HourlyRate: ptr(rate), DeveloperRole: ptr("Backend")})
		require.NoError(t, err)
		return authz.Actor{ID: d.ID, Role: models.RoleDeveloper}
	}
	f.client = newClient("Acme", "acme@example.com")
	f.other = newClient("Globex", "globex@example.com")
	f.dev1 = newDeveloper("Ann", "ann@example.com", 50)
	f.dev2 = newDeveloper("Bob", "bob@example.com", 40)

	f.project, err = svc.CreateProject(ctx, f.ba, service.ProjectInput{
		Name:         ptr("Portal"),
		ClientID:     ptr(f.client.ID),
		DeveloperIDs: ptr([]string{f.dev1.ID}),
	})
	require.NoError(t, err)
	f.task, err = svc.CreateTask(ctx, f.ba, service.TaskInput{
		Title:      ptr("Login page"),
		ProjectID:  ptr(f.project.ID),
		AssignedTo: ptr([]string{f.dev1.ID}),
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) logInput(hours float64) service.HourLogInput {
	return service.HourLogInput{
		ClientID:    f.client.ID,
		DeveloperID: f.dev1.ID,
		ProjectID:   f.project.ID,
		TaskID:      f.task.ID,
		Date:        "2024-01-05",
		Hours:       hours,
		Description: "work",
	}
}

func TestRegisterOnlyWhenEmpty(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), service.RegisterInput{Name: "Second", Email: "second@example.com", Password: "secret1"})
	assert.True(t, apperr.HasCode(err, apperr.CodeRegistrationClosed))
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestConcurrentRegisterCreatesSingleBA(t *testing.T) {
	svc := service.New(memstore.New(), auth.NewTokenManager("test-secret", time.Hour), reports.NewMemoryStore(),
		service.Config{ReportWorkers: 1}, zap.NewNop())
	ctx := context.Background()

	const n = 5
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, service.RegisterInput{
				Name:     "Admin",
				Email:    fmt.Sprintf("admin%d@example.com", i),
				Password: "secret1",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperr.HasCode(err, apperr.CodeRegistrationClosed), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
}

func TestLoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Login(ctx, "admin@example.com", "secret1")
	require.NoError(t, err)
	actor, err := f.svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, f.ba, actor)

	_, err = f.svc.Login(ctx, "admin@example.com", "wrong")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	devSession, err := f.svc.Login(ctx, "ann@example.com", "dev123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleDeveloper, devSession.User.Role)

	_, err = f.svc.Authenticate(ctx, "garbage")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestDuplicateEmailAcrossRoles(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateDeveloper(context.Background(), f.ba, service.DeveloperInput{
		Name: ptr("Copy"), Email: ptr("ACME@example.com"), HourlyRate: ptr(10.0), DeveloperRole: ptr("QA"),
	})
	assert.True(t, apperr.HasCode(err, apperr.CodeEmailExists))
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestUserManagementIsBAOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.ListClients(ctx, f.dev1, models.UserFilter{})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	_, err = f.svc.CreateDeveloper(ctx, f.client, service.DeveloperInput{})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	_, _, err = f.svc.ListDevelopers(ctx, authz.Actor{}, models.UserFilter{})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestConcurrentHourLogsKeepTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 40
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hours := 0.5
			if i%2 == 0 {
				hours = 1.5
			}
			if _, err := f.svc.CreateHourLog(ctx, f.dev1, f.logInput(hours)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	p, err := f.svc.GetProject(ctx, f.ba, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, p.ActualHours)
	assert.Equal(t, 40.0, p.Hours)
	assert.Equal(t, n, p.Count)

	task, err := f.svc.GetTask(ctx, f.ba, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, task.ActualHours)
}

func TestCreateHourLogRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	otherProject, err := f.svc.CreateProject(ctx, f.ba, service.ProjectInput{
		Name: ptr("Mobile"), ClientID: ptr(f.client.ID), DeveloperIDs: ptr([]string{f.dev1.ID}),
	})
	require.NoError(t, err)
	otherTask, err := f.svc.CreateTask(ctx, f.ba, service.TaskInput{
		Title: ptr("Push"), ProjectID: ptr(otherProject.ID), AssignedTo: ptr([]string{f.dev1.ID}),
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		actor  authz.Actor
		mutate func(in *service.HourLogInput)
		kind   apperr.Kind
		code   string
	}{
		{"developer for another developer", f.dev1, func(in *service.HourLogInput) { in.DeveloperID = f.dev2.ID }, apperr.KindForbidden, apperr.CodeForbidden},
		{"developer without task", f.dev1, func(in *service.HourLogInput) { in.TaskID = "" }, apperr.KindValidation, apperr.CodeTaskRequired},
		{"client cannot log", f.client, func(in *service.HourLogInput) {}, apperr.KindForbidden, apperr.CodeForbidden},
		{"developer not on project", f.ba, func(in *service.HourLogInput) { in.DeveloperID = f.dev2.ID }, apperr.KindValidation, apperr.CodeDeveloperNotOnProject},
		{"task of another project", f.dev1, func(in *service.HourLogInput) { in.TaskID = otherTask.ID }, apperr.KindValidation, apperr.CodeTaskProjectMismatch},
		{"future date", f.dev1, func(in *service.HourLogInput) { in.Date = time.Now().AddDate(0, 0, 2).Format("2006-01-02") }, apperr.KindValidation, apperr.CodeValidation},
		{"timestamp later than now", f.dev1, func(in *service.HourLogInput) { in.Date = time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339) }, apperr.KindValidation, apperr.CodeValidation},
		{"project of another client", f.ba, func(in *service.HourLogInput) { in.ClientID = f.other.ID }, apperr.KindValidation, apperr.CodeProjectClientMismatch},
		{"quarter hour", f.dev1, func(in *service.HourLogInput) { in.Hours = 1.25 }, apperr.KindValidation, apperr.CodeValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := f.logInput(2)
			tc.mutate(&in)
			_, err := f.svc.CreateHourLog(ctx, tc.actor, in)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, tc.kind), "got %v", err)
			assert.True(t, apperr.HasCode(err, tc.code), "got %v", err)
		})
	}

	p, err := f.svc.GetProject(ctx, f.ba, f.project.ID)
	require.NoError(t, err)
	assert.Zero(t, p.ActualHours)
}

func TestBACanLogWithoutTask(t *testing.T) {
	f := newFixture(t)
	in := f.logInput(3)
	in.TaskID = ""

	log, err := f.svc.CreateHourLog(context.Background(), f.ba, in)
	require.NoError(t, err)
	assert.Nil(t, log.Task)
	assert.Equal(t, f.ba.ID, log.CreatedBy)
}

func TestCreateThenListRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateHourLog(ctx, f.dev1, f.logInput(2))
	require.NoError(t, err)

	for _, actor := range []authz.Actor{f.dev1, f.client, f.ba} {
		logs, page, err := f.svc.ListHourLogs(ctx, actor, models.HourLogFilter{Page: models.Page{Page: 1, Limit: 10}})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, 1, page.Total)
		l := logs[0]
		assert.Equal(t, created.ID, l.ID)
		assert.Equal(t, "Acme", l.Client.Name)
		assert.Equal(t, "Ann", l.Developer.Name)
		assert.Equal(t, "Portal", l.Project.Name)
		require.NotNil(t, l.Task)
		assert.Equal(t, "Login page", l.Task.Name)
	}

	logs, _, err := f.svc.ListHourLogs(ctx, f.other, models.HourLogFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
	logs, _, err = f.svc.ListHourLogs(ctx, f.dev2, models.HourLogFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestSoftDeletedClientKeepsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateHourLog(ctx, f.dev1, f.logInput(4))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeactivateClient(ctx, f.ba, f.client.ID))

	active, page, err := f.svc.ListClients(ctx, f.ba, models.UserFilter{Status: models.StatusActive, Page: models.Page{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "Globex", active[0].Name)

	c, err := f.svc.GetClient(ctx, f.ba, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, c.Status)

	p, err := f.svc.GetProject(ctx, f.ba, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, f.client.ID, p.ClientID)
	assert.Equal(t, 4.0, p.ActualHours)

	logs, _, err := f.svc.ListHourLogs(ctx, f.ba, models.HourLogFilter{ClientID: f.client.ID})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestProjectVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, page, err := f.svc.ListProjects(ctx, f.other, models.ProjectFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	_, err = f.svc.GetProject(ctx, f.other, f.project.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	_, err = f.svc.GetProject(ctx, f.dev2, f.project.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	p, err := f.svc.GetProject(ctx, f.client, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.Client.Name)
	require.Len(t, p.Developers, 1)
	assert.Equal(t, "Ann", p.Developers[0].Name)

	_, err = f.svc.CreateProject(ctx, f.client, service.ProjectInput{Name: ptr("X"), ClientID: ptr(f.client.ID)})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, err = f.svc.CreateProject(ctx, f.ba, service.ProjectInput{Name: ptr("X"), ClientID: ptr(f.dev1.ID)})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidClient))
	_, err = f.svc.CreateProject(ctx, f.ba, service.ProjectInput{Name: ptr("X"), ClientID: ptr(f.client.ID), DeveloperIDs: ptr([]string{f.other.ID})})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidDeveloper))

	stats, err := f.svc.ProjectStats(ctx, f.client)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalProjects)
}

func TestProjectDeveloperRemovalUnassignsTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateProject(ctx, f.ba, f.project.ID, service.ProjectInput{DeveloperIDs: ptr([]string{f.dev2.ID})})
	require.NoError(t, err)

	task, err := f.svc.GetTask(ctx, f.ba, f.task.ID)
	require.NoError(t, err)
	assert.Empty(t, task.AssignedTo)
	assert.Empty(t, task.Assignees)

	// удаленный из проекта разработчик больше не может писать часы по задаче
	_, err = f.svc.CreateHourLog(ctx, f.dev1, f.logInput(1))
	assert.True(t, apperr.HasCode(err, apperr.CodeDeveloperNotOnProject), "got %v", err)
}

func TestTaskRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateTask(ctx, f.ba, service.TaskInput{Title: ptr("X"), ProjectID: ptr(f.project.ID), AssignedTo: ptr([]string{f.dev2.ID})})
	assert.True(t, apperr.HasCode(err, apperr.CodeAssigneeNotOnProject))

	view, err := f.svc.UpdateTask(ctx, f.dev1, f.task.ID, service.TaskInput{Status: ptr(models.TaskInProgress)})
	require.NoError(t, err)
	assert.Equal(t, models.TaskInProgress, view.Status)

	_, err = f.svc.UpdateTask(ctx, f.dev1, f.task.ID, service.TaskInput{Status: ptr(models.TaskReview), Title: ptr("Renamed")})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, err = f.svc.UpdateTask(ctx, f.dev2, f.task.ID, service.TaskInput{Status: ptr(models.TaskCompleted)})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, err = f.svc.UpdateTask(ctx, f.client, f.task.ID, service.TaskInput{Status: ptr(models.TaskCompleted)})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, err = f.svc.GetTask(ctx, f.dev2, f.task.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	tasks, err := f.svc.TasksByProject(ctx, f.client, f.project.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, f.client.ID, tasks[0].ClientID)

	_, err = f.svc.TasksByProject(ctx, f.other, f.project.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestHourLogReportByType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateHourLog(ctx, f.dev1, f.logInput(5))
	require.NoError(t, err)

	data, err := f.svc.HourLogReport(ctx, f.client, models.HourLogFilter{}, service.ReportClients)
	require.NoError(t, err)
	clients, ok := data.([]reporting.ClientTotal)
	require.True(t, ok)
	require.Len(t, clients, 1)
	assert.Equal(t, 5.0, clients[0].TotalHours)

	data, err = f.svc.HourLogReport(ctx, f.ba, models.HourLogFilter{}, service.ReportAll)
	require.NoError(t, err)
	full, ok := data.(reporting.Breakdown)
	require.True(t, ok)
	require.Len(t, full.DeveloperBreakdown, 1)
	assert.Equal(t, 250.0, full.DeveloperBreakdown[0].TotalEarnings)

	data, err = f.svc.HourLogReport(ctx, f.other, models.HourLogFilter{}, service.ReportDaily)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestGenerateReportCompletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateHourLog(ctx, f.dev1, f.logInput(6))
	require.NoError(t, err)

	report, done, err := f.svc.GenerateReport(ctx, f.ba, service.ReportInput{Title: "January", StartDate: "2024-01-01", EndDate: "2024-01-31"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportGenerating, report.Status)
	assert.Equal(t, models.ReportCustom, report.Type)

	select {
	case final := <-done:
		assert.Equal(t, models.ReportCompleted, final.Status)
		assert.Equal(t, 6.0, final.TotalHours)
		assert.Equal(t, 1, final.TotalClients)
		require.NotNil(t, final.ReportData)
		assert.Len(t, final.ReportData.Activities, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("report was not generated")
	}

	_, err = f.svc.GetReport(ctx, f.dev1, report.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	stats, err := f.svc.ReportStats(ctx, f.ba)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CompletedReports)

	require.NoError(t, f.svc.DeleteReport(ctx, f.ba, report.ID))
	_, err = f.svc.GetReport(ctx, f.ba, report.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestGenerateReportValidation(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.GenerateReport(context.Background(), f.ba, service.ReportInput{Title: "x", StartDate: "2024-02-01", EndDate: "2024-01-01"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	_, _, err = f.svc.GenerateReport(context.Background(), f.ba, service.ReportInput{StartDate: "2024-01-01", EndDate: "2024-01-02"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestClientHoursWithProjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := f.logInput(2)
	in.Date = time.Now().UTC().Format(models.DateLayout)
	_, err := f.svc.CreateHourLog(ctx, f.dev1, in)
	require.NoError(t, err)

	rows, err := f.svc.ClientHours(ctx, f.ba, reporting.PeriodThisMonth, f.client.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2.0, rows[0].TotalHours)
	require.Len(t, rows[0].TotalProjects, 1)
	assert.Equal(t, "Portal", rows[0].TotalProjects[0].Name)

	devRows, err := f.svc.DeveloperHours(ctx, f.dev1, reporting.PeriodThisMonth, "")
	require.NoError(t, err)
	require.Len(t, devRows, 1)
	assert.Equal(t, []string{"Acme"}, devRows[0].Clients)

	summary, err := f.svc.HoursSummary(ctx, f.client, reporting.PeriodMonthly, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.0, summary.TotalHours)
	assert.Len(t, summary.RecentLogs, 1)

	_, err = f.svc.ClientProjects(ctx, f.ba, "", nil, nil)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	projects, err := f.svc.ClientProjects(ctx, f.ba, f.client.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, 2.0, projects[0].TotalHours)
}

func TestDashboardScopesHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := f.logInput(3)
	in.Date = time.Now().UTC().Format(models.DateLayout)
	_, err := f.svc.CreateHourLog(ctx, f.dev1, in)
	require.NoError(t, err)

	d, err := f.svc.Dashboard(ctx, f.ba)
	require.NoError(t, err)
	assert.Equal(t, 2, d.TotalClients)
	assert.Equal(t, 2, d.TotalDevelopers)
	assert.Equal(t, 3.0, d.TotalHoursThisMonth)
	require.Len(t, d.TopClientsThisMonth, 1)

	d, err = f.svc.Dashboard(ctx, f.other)
	require.NoError(t, err)
	assert.Zero(t, d.TotalHoursOverall)
	assert.Empty(t, d.RecentLogs)
}

func TestImportHourLogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rows := []importer.Row{
		{Project: "Migration", ClientName: "Globex", DeveloperName: "Ann", Hours: 2, Date: "2024-03-01"},
		{Project: "Migration", ClientName: "Globex", DeveloperName: "Bob", Hours: 1, Date: "2024-03-02", Description: "sync"},
		{Project: "Migration", ClientName: "Nobody", DeveloperName: "Bob", Hours: 1, Date: "2024-03-02"},
	}

	_, err := f.svc.ImportHourLogs(ctx, f.dev1, rows)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	res, err := f.svc.ImportHourLogs(ctx, f.ba, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.CreatedProjects)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, apperr.CodeClientNotFound, res.Errors[0].Code)

	projects, _, err := f.svc.ListProjects(ctx, f.other, models.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Len(t, projects[0].Developers, 2)
	assert.Equal(t, 3.0, projects[0].ActualHours)

	actor, err := f.svc.ActorByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, f.ba, actor)
}
