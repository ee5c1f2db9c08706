package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/interview-scheduler/internal/middleware"
	"github.com/iliyamo/interview-scheduler/internal/service"
)

// UserHandler exposes the user directory and the identity provider's
// sync webhook.
type UserHandler struct {
	Svc *service.Service
}

func NewUserHandler(svc *service.Service) *UserHandler {
	if svc == nil {
		panic("nil service passed to NewUserHandler")
	}
	return &UserHandler{Svc: svc}
}

// List handles GET /v1/users.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Svc.ListUsers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// Me handles GET /v1/me and returns the caller's synced record.
func (h *UserHandler) Me(c echo.Context) error {
	u, err := h.Svc.GetUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Sync handles POST /v1/webhooks/identity.  It answers 201 when the user
// was created and 200 when an existing profile was refreshed.
func (h *UserHandler) Sync(c echo.Context) error {
	var in service.SyncInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	u, created, err := h.Svc.SyncUser(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"user": u, "created": created})
}
