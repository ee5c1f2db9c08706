package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/interview-scheduler/internal/middleware"
	"github.com/iliyamo/interview-scheduler/internal/service"
)

// CommentHandler serves interviewer feedback.
type CommentHandler struct {
	Svc *service.Service
}

func NewCommentHandler(svc *service.Service) *CommentHandler {
	if svc == nil {
		panic("nil service passed to NewCommentHandler")
	}
	return &CommentHandler{Svc: svc}
}

// Add handles POST /v1/interviews/:id/comments.  The author is the
// caller, who must be assigned to the interview.
func (h *CommentHandler) Add(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return badRequest(c, "invalid interview id")
	}
	var in service.CommentInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	cm, err := h.Svc.AddComment(c.Request().Context(), id, middleware.UserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, cm)
}

// List handles GET /v1/interviews/:id/comments, oldest first.
func (h *CommentHandler) List(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return badRequest(c, "invalid interview id")
	}
	comments, err := h.Svc.ListComments(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments})
}
