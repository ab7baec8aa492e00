package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/authz"
	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/service"
	"go.uber.org/zap"
)

const (
	actorKey = "actor"

	defaultLimit = 10
	maxLimit     = 100

	envProduction = "production"
)

type Handler struct {
	svc        *service.Service
	logger     *zap.Logger
	production bool
}

// New создает новый экземпляр обработчика; env управляет детализацией ошибок
func New(svc *service.Service, logger *zap.Logger, env string) *Handler {
	return &Handler{
		svc:        svc,
		logger:     logger,
		production: env == envProduction,
	}
}

// Response единый конверт ответа API
type Response struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Data       any                `json:"data,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Code       string             `json:"code,omitempty"`
	Error      string             `json:"error,omitempty"`
}

func ok(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func okPage(c echo.Context, data any, p models.Pagination) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: data, Pagination: &p})
}

// fail переводит ошибку в HTTP-ответ; причина внутренних ошибок видна только вне production
func (h *Handler) fail(c echo.Context, method string, err error) error {
	appErr := apperr.From(err)
	resp := Response{Success: false, Message: appErr.Message, Code: appErr.Code}

	if appErr.Kind == apperr.KindInternal {
		h.logger.Error(method+": внутренняя ошибка", zap.Error(err))
		resp.Message = "Server error"
		if !h.production && appErr.Err != nil {
			resp.Error = appErr.Err.Error()
		}
	} else {
		h.logger.Warn(method+": запрос отклонен", zap.String("code", appErr.Code), zap.String("message", appErr.Message))
	}
	return c.JSON(appErr.Kind.HTTPStatus(), resp)
}

// badRequest ответ на нечитаемое тело запроса
func (h *Handler) badRequest(c echo.Context, method string, err error) error {
	h.logger.Warn(method+": ошибка парсинга тела запроса", zap.Error(err))
	return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid request body", Code: apperr.CodeValidation})
}

// Authenticate проверяет bearer-токен и кладет действующее лицо в контекст
func (h *Handler) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == token {
			token = ""
		}

		actor, err := h.svc.Authenticate(c.Request().Context(), token)
		if err != nil {
			return h.fail(c, "Authenticate", err)
		}
		c.Set(actorKey, actor)
		return next(c)
	}
}

func actorFrom(c echo.Context) authz.Actor {
	actor, _ := c.Get(actorKey).(authz.Actor)
	return actor
}

// pathID возвращает параметр пути; невалидный UUID считается несуществующей записью
func pathID(c echo.Context, name, notFound string) (string, error) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.NotFound(notFound)
	}
	return id, nil
}

// parsePage читает page и limit; некорректные значения заменяются значениями по умолчанию
func parsePage(c echo.Context, limit int) models.Page {
	page := 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return models.Page{Page: page, Limit: limit}
}

// queryDate разбирает необязательный параметр даты
func queryDate(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	t, err := models.ParseDate(v)
	if err != nil {
		return nil, apperr.Validation("", "Invalid "+name)
	}
	return &t, nil
}

// queryRange разбирает startDate и endDate; конец интервала включает весь день
func queryRange(c echo.Context) (*time.Time, *time.Time, error) {
	start, err := queryDate(c, "startDate")
	if err != nil {
		return nil, nil, err
	}
	end, err := queryDate(c, "endDate")
	if err != nil {
		return nil, nil, err
	}
	if end != nil {
		e := end.Add(24*time.Hour - time.Nanosecond)
		end = &e
	}
	return start, end, nil
}

// statusParam возвращает фильтр статуса; "all" означает отсутствие фильтра
func statusParam(c echo.Context) string {
	v := c.QueryParam("status")
	if v == "all" {
		return ""
	}
	return v
}

// RegisterRoutes регистрирует все маршруты API
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	// Auth
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/auth/profile", h.Profile, h.Authenticate)

	protected := api.Group("", h.Authenticate)

	// Clients
	protected.POST("/clients", h.CreateClient)
	protected.GET("/clients", h.ListClients)
	protected.GET("/clients/:id", h.GetClient)
	protected.PUT("/clients/:id", h.UpdateClient)
	protected.DELETE("/clients/:id", h.DeleteClient)

	// Developers
	protected.POST("/developers", h.CreateDeveloper)
	protected.GET("/developers", h.ListDevelopers)
	protected.GET("/developers/:id", h.GetDeveloper)
	protected.PUT("/developers/:id", h.UpdateDeveloper)
	protected.DELETE("/developers/:id", h.DeleteDeveloper)

	// Projects
	protected.POST("/projects", h.CreateProject)
	protected.GET("/projects", h.ListProjects)
	protected.GET("/projects/stats", h.ProjectStats)
	protected.GET("/projects/:id", h.GetProject)
	protected.PUT("/projects/:id", h.UpdateProject)
	protected.DELETE("/projects/:id", h.DeleteProject)

	// Tasks
	protected.POST("/tasks", h.CreateTask)
	protected.GET("/tasks", h.ListTasks)
	protected.GET("/tasks/project/:projectId", h.TasksByProject)
	protected.GET("/tasks/:id", h.GetTask)
	protected.PUT("/tasks/:id", h.UpdateTask)
	protected.DELETE("/tasks/:id", h.DeleteTask)

	// Hour logs
	protected.POST("/hour-logs", h.CreateHourLog)
	protected.GET("/hour-logs", h.ListHourLogs)
	protected.GET("/hour-logs/project/:projectId", h.HourLogsByProject)
	protected.GET("/hour-logs/reports", h.HourLogReport)
	protected.POST("/hour-logs/import", h.ImportHourLogs)

	// Reports
	protected.POST("/reports", h.GenerateReport)
	protected.GET("/reports", h.ListReports)
	protected.GET("/reports/stats/summary", h.ReportStats)
	protected.GET("/reports/clients/hours", h.ClientHours)
	protected.GET("/reports/clients/projects", h.ClientProjects)
	protected.GET("/reports/developers/hours", h.DeveloperHours)
	protected.GET("/reports/hours-summary", h.HoursSummary)
	protected.GET("/reports/:id", h.GetReport)
	protected.DELETE("/reports/:id", h.DeleteReport)

	// Dashboard
	protected.GET("/dashboard/summary", h.Dashboard)
}
