package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/untibullet/hours-ledger/internal/apperr"
	"github.com/untibullet/hours-ledger/internal/importer"
	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/service"
	"go.uber.org/zap"
)

// hourLogFilter читает фильтры clientId, developerId, startDate и endDate
func hourLogFilter(c echo.Context) (models.HourLogFilter, error) {
	start, end, err := queryRange(c)
	if err != nil {
		return models.HourLogFilter{}, err
	}
	return models.HourLogFilter{
		ClientID:    c.QueryParam("clientId"),
		DeveloperID: c.QueryParam("developerId"),
		From:        start,
		To:          end,
		Page:        parsePage(c, defaultLimit),
	}, nil
}

// CreateHourLog записывает отработанные часы
func (h *Handler) CreateHourLog(c echo.Context) error {
	h.logger.Info("CreateHourLog: начало обработки запроса")

	var req service.HourLogInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "CreateHourLog", err)
	}

	h.logger.Info("CreateHourLog: запись часов",
		zap.String("developer_id", req.DeveloperID),
		zap.String("project_id", req.ProjectID),
		zap.Float64("hours", req.Hours))

	log, err := h.svc.CreateHourLog(c.Request().Context(), actorFrom(c), req)
	if err != nil {
		return h.fail(c, "CreateHourLog", err)
	}

	h.logger.Info("CreateHourLog: часы записаны", zap.String("hour_log_id", log.ID))
	return ok(c, http.StatusCreated, "Hour log created successfully", log)
}

func (h *Handler) ListHourLogs(c echo.Context) error {
	f, err := hourLogFilter(c)
	if err != nil {
		return h.fail(c, "ListHourLogs", err)
	}
	logs, page, err := h.svc.ListHourLogs(c.Request().Context(), actorFrom(c), f)
	if err != nil {
		return h.fail(c, "ListHourLogs", err)
	}
	return okPage(c, logs, page)
}

func (h *Handler) HourLogsByProject(c echo.Context) error {
	id, err := pathID(c, "projectId", "Project not found")
	if err != nil {
		return h.fail(c, "HourLogsByProject", err)
	}
	f, err := hourLogFilter(c)
	if err != nil {
		return h.fail(c, "HourLogsByProject", err)
	}
	f.ProjectID = id

	logs, page, err := h.svc.ListHourLogs(c.Request().Context(), actorFrom(c), f)
	if err != nil {
		return h.fail(c, "HourLogsByProject", err)
	}
	return okPage(c, logs, page)
}

// HourLogReport разбивки часов; reportType выбирает одну часть ответа
func (h *Handler) HourLogReport(c echo.Context) error {
	f, err := hourLogFilter(c)
	if err != nil {
		return h.fail(c, "HourLogReport", err)
	}
	reportType := service.ReportType(c.QueryParam("reportType"))
	h.logger.Info("HourLogReport: расчет отчета", zap.String("report_type", string(reportType)))

	data, err := h.svc.HourLogReport(c.Request().Context(), actorFrom(c), f, reportType)
	if err != nil {
		return h.fail(c, "HourLogReport", err)
	}
	return ok(c, http.StatusOK, "", data)
}

// ImportHourLogs импортирует пакет строк; ошибки строк возвращаются в результате
func (h *Handler) ImportHourLogs(c echo.Context) error {
	var req struct {
		Rows []importer.Row `json:"rows"`
	}
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "ImportHourLogs", err)
	}
	h.logger.Info("ImportHourLogs: импорт строк", zap.Int("rows_count", len(req.Rows)))

	res, err := h.svc.ImportHourLogs(c.Request().Context(), actorFrom(c), req.Rows)
	if err != nil {
		return h.fail(c, "ImportHourLogs", err)
	}

	h.logger.Info("ImportHourLogs: импорт завершен",
		zap.Int("imported", res.Imported),
		zap.Int("failed", res.Failed),
		zap.Int("created_projects", res.CreatedProjects))
	status := http.StatusOK
	if res.Imported == 0 {
		status = apperr.KindValidation.HTTPStatus()
	}
	return c.JSON(status, Response{Success: res.Imported > 0, Message: "Import finished", Data: res})
}
