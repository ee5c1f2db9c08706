package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/interview-scheduler/internal/service"
)

// respondError maps a service error onto its HTTP status.  Unknown errors
// are logged and reported as 500 without their text.
func respondError(c echo.Context, err error) error {
	var (
		ve *service.ValidationError
		ae *service.AuthorizationError
		nf *service.NotFoundError
		te *service.InvalidTransitionError
		pe *service.SessionProvisioningError
	)
	switch {
	case errors.As(err, &ve):
		body := echo.Map{"error": ve.Reason}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		return c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &ae):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.As(err, &nf):
		return c.JSON(http.StatusNotFound, echo.Map{"error": nf.Entity + " not found"})
	case errors.As(err, &te):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "invalid status transition",
			"from":  te.From,
			"to":    te.To,
		})
	case errors.As(err, &pe):
		log.Printf("handler: %v", pe)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "could not create the interview session"})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "request timed out"})
	default:
		log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
