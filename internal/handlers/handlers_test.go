package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/auth"
	"github.com/untibullet/hours-ledger/internal/reports"
	"github.com/untibullet/hours-ledger/internal/repository/memstore"
	"github.com/untibullet/hours-ledger/internal/service"
	"go.uber.org/zap"
)

type testAPI struct {
	t *testing.T
	e *echo.Echo
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Total int `json:"total"`
		Pages int `json:"pages"`
	} `json:"pagination"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zap.NewNop()
	svc := service.New(memstore.New(), auth.NewTokenManager("test-secret", time.Hour), reports.NewMemoryStore(), service.Config{}, logger)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	t.Cleanup(func() {
		cancel()
		svc.Wait()
	})

	e := echo.New()
	New(svc, logger, "development").RegisterRoutes(e)
	return &testAPI{t: t, e: e}
}

func (a *testAPI) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var payload string
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		payload = string(raw)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type idOnly struct {
	ID string `json:"id"`
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID   string `json:"id"`
		Role int    `json:"role"`
	} `json:"user"`
}

// seed регистрирует администратора и создает клиента, разработчика, проект и задачу
func (a *testAPI) seed() (baToken, devToken, clientID, devID, projectID, taskID string) {
	t := a.t
	code, env := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Admin", "email": "admin@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	baToken = decode[session](t, env.Data).Token

	code, env = a.do(http.MethodPost, "/api/clients", baToken, map[string]any{
		"name": "Acme", "companyEmail": "acme@example.com", "billingType": "Hourly",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	clientID = decode[idOnly](t, env.Data).ID

	code, env = a.do(http.MethodPost, "/api/developers", baToken, map[string]any{
		"name": "Ann", "email": "ann@example.com", "hourlyRate": 50, "role": "Backend",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	devID = decode[idOnly](t, env.Data).ID

	code, env = a.do(http.MethodPost, "/api/projects", baToken, map[string]any{
		"name": "Portal", "client": clientID, "developers": []string{devID},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	projectID = decode[idOnly](t, env.Data).ID

	code, env = a.do(http.MethodPost, "/api/tasks", baToken, map[string]any{
		"title": "Login page", "project": projectID, "assignedTo": []string{devID},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	taskID = decode[idOnly](t, env.Data).ID

	code, env = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "dev123"})
	require.Equal(t, http.StatusOK, code, env.Message)
	devToken = decode[session](t, env.Data).Token
	return
}

func TestRegisterClosedAfterFirstUser(t *testing.T) {
	api := newTestAPI(t)
	api.seed()

	code, env := api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Other", "email": "other@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, env.Success)
	assert.Equal(t, apperr.CodeRegistrationClosed, env.Code)
}

func TestAuthenticationErrors(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name    string
		token   string
		message string
	}{
		{"no token", "", "Access denied. No token provided."},
		{"garbage token", "not-a-jwt", "Invalid token."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, env := api.do(http.MethodGet, "/api/clients", tc.token, nil)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Equal(t, tc.message, env.Message)
		})
	}

	code, env := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid email or password", env.Message)
}

func TestHourLogFlow(t *testing.T) {
	api := newTestAPI(t)
	baToken, devToken, clientID, devID, projectID, taskID := api.seed()

	code, env := api.do(http.MethodPost, "/api/hour-logs", devToken, map[string]any{
		"client": clientID, "developer": devID, "project": projectID, "task": taskID,
		"date": "2024-01-10", "hours": 2.5, "description": "login form",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = api.do(http.MethodPost, "/api/hour-logs", devToken, map[string]any{
		"client": clientID, "developer": devID, "project": projectID,
		"date": "2024-01-10", "hours": 1, "description": "no task",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperr.CodeTaskRequired, env.Code)

	code, env = api.do(http.MethodGet, "/api/hour-logs?page=1&limit=5", baToken, nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.Total)
	assert.Equal(t, 5, env.Pagination.Limit)

	logs := decode[[]struct {
		Hours  float64 `json:"hours"`
		Client struct {
			Name string `json:"name"`
		} `json:"client"`
		Developer struct {
			Name string `json:"name"`
		} `json:"developer"`
	}](t, env.Data)
	require.Len(t, logs, 1)
	assert.Equal(t, 2.5, logs[0].Hours)
	assert.Equal(t, "Acme", logs[0].Client.Name)
	assert.Equal(t, "Ann", logs[0].Developer.Name)

	code, env = api.do(http.MethodGet, "/api/hour-logs?startDate=2024-02-01", baToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, env.Pagination.Total)

	code, env = api.do(http.MethodGet, "/api/projects/"+projectID, baToken, nil)
	require.Equal(t, http.StatusOK, code)
	project := decode[struct {
		ActualHours float64 `json:"actualHours"`
	}](t, env.Data)
	assert.Equal(t, 2.5, project.ActualHours)

	code, env = api.do(http.MethodGet, "/api/hour-logs/reports?reportType=clients", baToken, nil)
	require.Equal(t, http.StatusOK, code)
	clients := decode[[]struct {
		ClientName string  `json:"clientName"`
		TotalHours float64 `json:"totalHours"`
	}](t, env.Data)
	require.Len(t, clients, 1)
	assert.Equal(t, "Acme", clients[0].ClientName)
}

func TestRoleChecks(t *testing.T) {
	api := newTestAPI(t)
	_, devToken, _, _, _, taskID := api.seed()

	code, _ := api.do(http.MethodGet, "/api/clients", devToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := api.do(http.MethodPut, "/api/tasks/"+taskID, devToken, map[string]string{"status": "In Progress"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = api.do(http.MethodPut, "/api/tasks/"+taskID, devToken, map[string]string{"status": "Review", "title": "x"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestInvalidIDIsNotFound(t *testing.T) {
	api := newTestAPI(t)
	baToken, _, _, _, _, _ := api.seed()

	for _, path := range []string{"/api/projects/abc", "/api/tasks/123", "/api/clients/zzz", "/api/reports/nope"} {
		code, env := api.do(http.MethodGet, path, baToken, nil)
		assert.Equal(t, http.StatusNotFound, code, path)
		assert.False(t, env.Success)
	}
}

func TestReportGenerationEndpoint(t *testing.T) {
	api := newTestAPI(t)
	baToken, _, _, _, _, _ := api.seed()

	code, env := api.do(http.MethodPost, "/api/reports", baToken, map[string]string{
		"title": "Q1", "startDate": "2024-01-01", "endDate": "2024-03-31",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	report := decode[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Type   string `json:"type"`
	}](t, env.Data)
	assert.Equal(t, "generating", report.Status)
	assert.Equal(t, "custom", report.Type)

	require.Eventually(t, func() bool {
		code, env := api.do(http.MethodGet, "/api/reports/"+report.ID, baToken, nil)
		if code != http.StatusOK {
			return false
		}
		return decode[struct {
			Status string `json:"status"`
		}](t, env.Data).Status == "completed"
	}, 5*time.Second, 20*time.Millisecond)

	code, _ = api.do(http.MethodGet, "/api/reports/clients/projects", baToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestImportEndpoint(t *testing.T) {
	api := newTestAPI(t)
	baToken, devToken, _, _, _, _ := api.seed()
	body := map[string]any{"rows": []map[string]any{
		{"project": "Migration", "clientName": "Acme", "developerName": "Ann", "hours": 2, "date": "2024-03-01"},
		{"project": "Migration", "clientName": "Ghost", "developerName": "Ann", "hours": 2, "date": "2024-03-01"},
	}}

	code, _ := api.do(http.MethodPost, "/api/hour-logs/import", devToken, body)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := api.do(http.MethodPost, "/api/hour-logs/import", baToken, body)
	require.Equal(t, http.StatusOK, code)
	res := decode[struct {
		Imported int `json:"imported"`
		Failed   int `json:"failed"`
	}](t, env.Data)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Failed)
}

func TestFailHidesInternalCauseInProduction(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		env       string
		wantError string
	}{
		{"development", "connection refused"},
		{"production", ""},
	}
	for _, tc := range tests {
		t.Run(tc.env, func(t *testing.T) {
			h := &Handler{logger: zap.NewNop(), production: tc.env == envProduction}
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			require.NoError(t, h.fail(c, "Test", apperr.Internal("failed to list", cause)))
			assert.Equal(t, http.StatusInternalServerError, rec.Code)

			var env envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, "Server error", env.Message)
			assert.Equal(t, tc.wantError, env.Error)
		})
	}
}
