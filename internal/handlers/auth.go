package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/untibullet/hours-ledger/internal/service"
	"go.uber.org/zap"
)

// Register создает первого администратора
func (h *Handler) Register(c echo.Context) error {
	h.logger.Info("Register: начало обработки запроса")

	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "Register", err)
	}

	session, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "Register", err)
	}

	h.logger.Info("Register: администратор зарегистрирован", zap.String("user_id", session.User.ID))
	return ok(c, http.StatusCreated, "User registered successfully", session)
}

// Login выдает токен по email и паролю
func (h *Handler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "Login", err)
	}
	h.logger.Info("Login: попытка входа", zap.String("email", req.Email))

	session, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, "Login", err)
	}

	h.logger.Info("Login: вход выполнен", zap.String("user_id", session.User.ID), zap.String("role", session.User.Role.String()))
	return ok(c, http.StatusOK, "Login successful", session)
}

// Profile возвращает текущего пользователя
func (h *Handler) Profile(c echo.Context) error {
	user, err := h.svc.Profile(c.Request().Context(), actorFrom(c))
	if err != nil {
		return h.fail(c, "Profile", err)
	}
	return ok(c, http.StatusOK, "", map[string]any{"user": user})
}

// Dashboard сводка главной страницы
func (h *Handler) Dashboard(c echo.Context) error {
	actor := actorFrom(c)
	h.logger.Info("Dashboard: построение сводки", zap.String("user_id", actor.ID))

	d, err := h.svc.Dashboard(c.Request().Context(), actor)
	if err != nil {
		return h.fail(c, "Dashboard", err)
	}
	return ok(c, http.StatusOK, "", d)
}
