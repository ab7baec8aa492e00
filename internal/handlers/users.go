package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/service"
	"go.uber.org/zap"
)

func userFilter(c echo.Context) models.UserFilter {
	return models.UserFilter{
		Status: models.UserStatus(statusParam(c)),
		Search: c.QueryParam("search"),
		Page:   parsePage(c, defaultLimit),
	}
}

// CreateClient создает клиента
func (h *Handler) CreateClient(c echo.Context) error {
	h.logger.Info("CreateClient: начало обработки запроса")

	var req service.ClientInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "CreateClient", err)
	}

	client, err := h.svc.CreateClient(c.Request().Context(), actorFrom(c), req)
	if err != nil {
		return h.fail(c, "CreateClient", err)
	}

	h.logger.Info("CreateClient: клиент создан", zap.String("client_id", client.ID))
	return ok(c, http.StatusCreated, "Client created successfully", client)
}

func (h *Handler) ListClients(c echo.Context) error {
	clients, page, err := h.svc.ListClients(c.Request().Context(), actorFrom(c), userFilter(c))
	if err != nil {
		return h.fail(c, "ListClients", err)
	}
	return okPage(c, clients, page)
}

func (h *Handler) GetClient(c echo.Context) error {
	id, err := pathID(c, "id", "Client not found")
	if err != nil {
		return h.fail(c, "GetClient", err)
	}
	client, err := h.svc.GetClient(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return h.fail(c, "GetClient", err)
	}
	return ok(c, http.StatusOK, "", client)
}

func (h *Handler) UpdateClient(c echo.Context) error {
	id, err := pathID(c, "id", "Client not found")
	if err != nil {
		return h.fail(c, "UpdateClient", err)
	}
	var req service.ClientInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "UpdateClient", err)
	}

	client, err := h.svc.UpdateClient(c.Request().Context(), actorFrom(c), id, req)
	if err != nil {
		return h.fail(c, "UpdateClient", err)
	}

	h.logger.Info("UpdateClient: клиент обновлен", zap.String("client_id", id))
	return ok(c, http.StatusOK, "Client updated successfully", client)
}

// DeleteClient деактивирует клиента, история часов сохраняется
func (h *Handler) DeleteClient(c echo.Context) error {
	id, err := pathID(c, "id", "Client not found")
	if err != nil {
		return h.fail(c, "DeleteClient", err)
	}
	if err := h.svc.DeactivateClient(c.Request().Context(), actorFrom(c), id); err != nil {
		return h.fail(c, "DeleteClient", err)
	}

	h.logger.Info("DeleteClient: клиент деактивирован", zap.String("client_id", id))
	return ok(c, http.StatusOK, "Client deactivated successfully", nil)
}

// CreateDeveloper создает разработчика
func (h *Handler) CreateDeveloper(c echo.Context) error {
	h.logger.Info("CreateDeveloper: начало обработки запроса")

	var req service.DeveloperInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "CreateDeveloper", err)
	}

	dev, err := h.svc.CreateDeveloper(c.Request().Context(), actorFrom(c), req)
	if err != nil {
		return h.fail(c, "CreateDeveloper", err)
	}

	h.logger.Info("CreateDeveloper: разработчик создан", zap.String("developer_id", dev.ID))
	return ok(c, http.StatusCreated, "Developer created successfully", dev)
}

func (h *Handler) ListDevelopers(c echo.Context) error {
	devs, page, err := h.svc.ListDevelopers(c.Request().Context(), actorFrom(c), userFilter(c))
	if err != nil {
		return h.fail(c, "ListDevelopers", err)
	}
	return okPage(c, devs, page)
}

func (h *Handler) GetDeveloper(c echo.Context) error {
	id, err := pathID(c, "id", "Developer not found")
	if err != nil {
		return h.fail(c, "GetDeveloper", err)
	}
	dev, err := h.svc.GetDeveloper(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return h.fail(c, "GetDeveloper", err)
	}
	return ok(c, http.StatusOK, "", dev)
}

func (h *Handler) UpdateDeveloper(c echo.Context) error {
	id, err := pathID(c, "id", "Developer not found")
	if err != nil {
		return h.fail(c, "UpdateDeveloper", err)
	}
	var req service.DeveloperInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "UpdateDeveloper", err)
	}

	dev, err := h.svc.UpdateDeveloper(c.Request().Context(), actorFrom(c), id, req)
	if err != nil {
		return h.fail(c, "UpdateDeveloper", err)
	}

	h.logger.Info("UpdateDeveloper: разработчик обновлен", zap.String("developer_id", id))
	return ok(c, http.StatusOK, "Developer updated successfully", dev)
}

// DeleteDeveloper деактивирует разработчика
func (h *Handler) DeleteDeveloper(c echo.Context) error {
	id, err := pathID(c, "id", "Developer not found")
	if err != nil {
		return h.fail(c, "DeleteDeveloper", err)
	}
	if err := h.svc.DeactivateDeveloper(c.Request().Context(), actorFrom(c), id); err != nil {
		return h.fail(c, "DeleteDeveloper", err)
	}

	h.logger.Info("DeleteDeveloper: разработчик деактивирован", zap.String("developer_id", id))
	return ok(c, http.StatusOK, "Developer deactivated successfully", nil)
}
