package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/reporting"
	"github.com/untibullet/hours-ledger/internal/service"
	"go.uber.org/zap"
)

func periodParam(c echo.Context) reporting.Period {
	if p := c.QueryParam("period"); p != "" {
		return reporting.Period(p)
	}
	return reporting.PeriodMonthly
}

// GenerateReport ставит отчет в очередь и сразу отвечает записью в статусе generating
func (h *Handler) GenerateReport(c echo.Context) error {
	h.logger.Info("GenerateReport: начало обработки запроса")

	var req service.ReportInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "GenerateReport", err)
	}

	report, _, err := h.svc.GenerateReport(c.Request().Context(), actorFrom(c), req)
	if err != nil {
		return h.fail(c, "GenerateReport", err)
	}

	h.logger.Info("GenerateReport: отчет поставлен в очередь", zap.String("report_id", report.ID), zap.String("type", string(report.Type)))
	return ok(c, http.StatusCreated, "Report generation started", report)
}

func (h *Handler) ListReports(c echo.Context) error {
	f := models.ReportFilter{
		Type:   models.ReportType(c.QueryParam("type")),
		Status: models.ReportStatus(c.QueryParam("status")),
		Page:   parsePage(c, defaultLimit),
	}
	list, page, err := h.svc.ListReports(c.Request().Context(), actorFrom(c), f)
	if err != nil {
		return h.fail(c, "ListReports", err)
	}
	return okPage(c, list, page)
}

func (h *Handler) GetReport(c echo.Context) error {
	id, err := pathID(c, "id", "Report not found")
	if err != nil {
		return h.fail(c, "GetReport", err)
	}
	report, err := h.svc.GetReport(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return h.fail(c, "GetReport", err)
	}
	return ok(c, http.StatusOK, "", report)
}

func (h *Handler) DeleteReport(c echo.Context) error {
	id, err := pathID(c, "id", "Report not found")
	if err != nil {
		return h.fail(c, "DeleteReport", err)
	}
	if err := h.svc.DeleteReport(c.Request().Context(), actorFrom(c), id); err != nil {
		return h.fail(c, "DeleteReport", err)
	}

	h.logger.Info("DeleteReport: отчет удален", zap.String("report_id", id))
	return ok(c, http.StatusOK, "Report deleted successfully", nil)
}

func (h *Handler) ReportStats(c echo.Context) error {
	stats, err := h.svc.ReportStats(c.Request().Context(), actorFrom(c))
	if err != nil {
		return h.fail(c, "ReportStats", err)
	}
	return ok(c, http.StatusOK, "", stats)
}

func (h *Handler) ClientHours(c echo.Context) error {
	rows, err := h.svc.ClientHours(c.Request().Context(), actorFrom(c), periodParam(c), c.QueryParam("clientId"))
	if err != nil {
		return h.fail(c, "ClientHours", err)
	}
	return ok(c, http.StatusOK, "", rows)
}

func (h *Handler) DeveloperHours(c echo.Context) error {
	rows, err := h.svc.DeveloperHours(c.Request().Context(), actorFrom(c), periodParam(c), c.QueryParam("developerId"))
	if err != nil {
		return h.fail(c, "DeveloperHours", err)
	}
	return ok(c, http.StatusOK, "", rows)
}

func (h *Handler) HoursSummary(c echo.Context) error {
	start, end, err := queryRange(c)
	if err != nil {
		return h.fail(c, "HoursSummary", err)
	}
	summary, err := h.svc.HoursSummary(c.Request().Context(), actorFrom(c), periodParam(c), start, end)
	if err != nil {
		return h.fail(c, "HoursSummary", err)
	}
	return ok(c, http.StatusOK, "", summary)
}

func (h *Handler) ClientProjects(c echo.Context) error {
	start, end, err := queryRange(c)
	if err != nil {
		return h.fail(c, "ClientProjects", err)
	}
	projects, err := h.svc.ClientProjects(c.Request().Context(), actorFrom(c), c.QueryParam("clientId"), start, end)
	if err != nil {
		return h.fail(c, "ClientProjects", err)
	}
	return ok(c, http.StatusOK, "", projects)
}
