package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/untibullet/hours-ledger/internal/models"
	"github.com/untibullet/hours-ledger/internal/service"
	"go.uber.org/zap"
)

const defaultTaskLimit = 50

// CreateProject создает проект клиента
func (h *Handler) CreateProject(c echo.Context) error {
	h.logger.Info("CreateProject: начало обработки запроса")

	var req service.ProjectInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "CreateProject", err)
	}

	project, err := h.svc.CreateProject(c.Request().Context(), actorFrom(c), req)
	if err != nil {
		return h.fail(c, "CreateProject", err)
	}

	h.logger.Info("CreateProject: проект создан",
		zap.String("project_id", project.ID),
		zap.String("client_id", project.ClientID),
		zap.Int("developers_count", len(project.DeveloperIDs)))
	return ok(c, http.StatusCreated, "Project created successfully", project)
}

func (h *Handler) ListProjects(c echo.Context) error {
	f := models.ProjectFilter{
		ClientID: c.QueryParam("client"),
		Status:   models.ProjectStatus(statusParam(c)),
		Page:     parsePage(c, defaultLimit),
	}
	projects, page, err := h.svc.ListProjects(c.Request().Context(), actorFrom(c), f)
	if err != nil {
		return h.fail(c, "ListProjects", err)
	}
	return okPage(c, projects, page)
}

func (h *Handler) ProjectStats(c echo.Context) error {
	stats, err := h.svc.ProjectStats(c.Request().Context(), actorFrom(c))
	if err != nil {
		return h.fail(c, "ProjectStats", err)
	}
	return ok(c, http.StatusOK, "", stats)
}

func (h *Handler) GetProject(c echo.Context) error {
	id, err := pathID(c, "id", "Project not found")
	if err != nil {
		return h.fail(c, "GetProject", err)
	}
	project, err := h.svc.GetProject(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return h.fail(c, "GetProject", err)
	}
	return ok(c, http.StatusOK, "", project)
}

func (h *Handler) UpdateProject(c echo.Context) error {
	id, err := pathID(c, "id", "Project not found")
	if err != nil {
		return h.fail(c, "UpdateProject", err)
	}
	var req service.ProjectInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "UpdateProject", err)
	}

	project, err := h.svc.UpdateProject(c.Request().Context(), actorFrom(c), id, req)
	if err != nil {
		return h.fail(c, "UpdateProject", err)
	}

	h.logger.Info("UpdateProject: проект обновлен", zap.String("project_id", id))
	return ok(c, http.StatusOK, "Project updated successfully", project)
}

func (h *Handler) DeleteProject(c echo.Context) error {
	id, err := pathID(c, "id", "Project not found")
	if err != nil {
		return h.fail(c, "DeleteProject", err)
	}
	if err := h.svc.DeleteProject(c.Request().Context(), actorFrom(c), id); err != nil {
		return h.fail(c, "DeleteProject", err)
	}

	h.logger.Info("DeleteProject: проект удален", zap.String("project_id", id))
	return ok(c, http.StatusOK, "Project deleted successfully", nil)
}

// CreateTask создает задачу в проекте
func (h *Handler) CreateTask(c echo.Context) error {
	h.logger.Info("CreateTask: начало обработки запроса")

	var req service.TaskInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "CreateTask", err)
	}

	task, err := h.svc.CreateTask(c.Request().Context(), actorFrom(c), req)
	if err != nil {
		return h.fail(c, "CreateTask", err)
	}

	h.logger.Info("CreateTask: задача создана", zap.String("task_id", task.ID), zap.String("project_id", task.ProjectID))
	return ok(c, http.StatusCreated, "Task created successfully", task)
}

func (h *Handler) ListTasks(c echo.Context) error {
	f := models.TaskFilter{
		ProjectID: c.QueryParam("project"),
		Status:    models.TaskStatus(statusParam(c)),
		Priority:  models.TaskPriority(c.QueryParam("priority")),
		Page:      parsePage(c, defaultTaskLimit),
	}
	tasks, page, err := h.svc.ListTasks(c.Request().Context(), actorFrom(c), f)
	if err != nil {
		return h.fail(c, "ListTasks", err)
	}
	return okPage(c, tasks, page)
}

func (h *Handler) TasksByProject(c echo.Context) error {
	id, err := pathID(c, "projectId", "Project not found")
	if err != nil {
		return h.fail(c, "TasksByProject", err)
	}
	tasks, err := h.svc.TasksByProject(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return h.fail(c, "TasksByProject", err)
	}
	return ok(c, http.StatusOK, "", tasks)
}

func (h *Handler) GetTask(c echo.Context) error {
	id, err := pathID(c, "id", "Task not found")
	if err != nil {
		return h.fail(c, "GetTask", err)
	}
	task, err := h.svc.GetTask(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return h.fail(c, "GetTask", err)
	}
	return ok(c, http.StatusOK, "", task)
}

// UpdateTask обновляет задачу; разработчику доступен только статус
func (h *Handler) UpdateTask(c echo.Context) error {
	id, err := pathID(c, "id", "Task not found")
	if err != nil {
		return h.fail(c, "UpdateTask", err)
	}
	var req service.TaskInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "UpdateTask", err)
	}

	task, err := h.svc.UpdateTask(c.Request().Context(), actorFrom(c), id, req)
	if err != nil {
		return h.fail(c, "UpdateTask", err)
	}

	h.logger.Info("UpdateTask: задача обновлена", zap.String("task_id", id), zap.String("status", string(task.Status)))
	return ok(c, http.StatusOK, "Task updated successfully", task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	id, err := pathID(c, "id", "Task not found")
	if err != nil {
		return h.fail(c, "DeleteTask", err)
	}
	if err := h.svc.DeleteTask(c.Request().Context(), actorFrom(c), id); err != nil {
		return h.fail(c, "DeleteTask", err)
	}

	h.logger.Info("DeleteTask: задача удалена", zap.String("task_id", id))
	return ok(c, http.StatusOK, "Task deleted successfully", nil)
}
