package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/interview-scheduler/internal/middleware"
	"github.com/iliyamo/interview-scheduler/internal/model"
	"github.com/iliyamo/interview-scheduler/internal/service"
)

// InterviewHandler serves the interview dashboard, scheduling and status
// endpoints.  Every method assumes JWTAuth has run; interviewer-only
// routes are guarded by RequireRole in the router.
type InterviewHandler struct {
	Svc *service.Service
}

// NewInterviewHandler panics on a nil service.
func NewInterviewHandler(svc *service.Service) *InterviewHandler {
	if svc == nil {
		panic("nil service passed to NewInterviewHandler")
	}
	return &InterviewHandler{Svc: svc}
}

// List handles GET /v1/interviews.
func (h *InterviewHandler) List(c echo.Context) error {
	views, err := h.Svc.ListInterviews(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"interviews": views})
}

// Mine handles GET /v1/interviews/mine: the caller's interviews as
// candidate or interviewer.
func (h *InterviewHandler) Mine(c echo.Context) error {
	views, err := h.Svc.ListMyInterviews(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"interviews": views})
}

// Grouped handles GET /v1/interviews/grouped.  The response carries the
// full category list so dashboards can render empty tabs too.
func (h *InterviewHandler) Grouped(c echo.Context) error {
	groups, err := h.Svc.GroupedInterviews(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"categories": service.Categories,
		"groups":     groups,
	})
}

// Get handles GET /v1/interviews/:id.
func (h *InterviewHandler) Get(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return badRequest(c, "invalid interview id")
	}
	view, err := h.Svc.GetInterview(c.Request().Context(), id,
		middleware.UserID(c), model.Role(middleware.Role(c)))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// Create handles POST /v1/interviews.  The caller is the scheduling
// interviewer and must be listed in interviewer_ids.
func (h *InterviewHandler) Create(c echo.Context) error {
	var in service.ScheduleInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	in.SchedulerID = middleware.UserID(c)
	iv, err := h.Svc.CreateInterview(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": iv.ID, "interview": iv})
}

// UpdateStatus handles PATCH /v1/interviews/:id/status with body
// {"status": "..."}.
func (h *InterviewHandler) UpdateStatus(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return badRequest(c, "invalid interview id")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	next := model.Status(strings.ToLower(strings.TrimSpace(body.Status)))
	iv, err := h.Svc.UpdateStatus(c.Request().Context(), id, next, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, iv)
}

// EndSession handles POST /v1/sessions/:ref/end, the "end call" action of
// an assigned interviewer.
func (h *InterviewHandler) EndSession(c echo.Context) error {
	ref := strings.TrimSpace(c.Param("ref"))
	if ref == "" {
		return badRequest(c, "invalid session ref")
	}
	iv, err := h.Svc.EndSession(c.Request().Context(), ref, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, iv)
}
