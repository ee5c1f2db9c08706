package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/interview-scheduler/internal/config"
)

// ScheduleHandler serves the configured start-time slots.
type ScheduleHandler struct {
	Cfg config.ScheduleConfig
}

func NewScheduleHandler(cfg config.ScheduleConfig) *ScheduleHandler {
	return &ScheduleHandler{Cfg: cfg}
}

// Slots handles GET /v1/schedule/slots.  With ?date=YYYY-MM-DD the
// response also lists each slot's start on that day as epoch ms, ready to
// submit as start_time.
func (h *ScheduleHandler) Slots(c echo.Context) error {
	loc := h.Cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	slots := h.Cfg.Slots
	if slots == nil {
		slots = []string{}
	}
	resp := echo.Map{"slots": slots, "timezone": loc.String()}

	if raw := strings.TrimSpace(c.QueryParam("date")); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD", "field": "date"})
		}
		starts := h.Cfg.StartsOn(day)
		ms := make([]int64, 0, len(starts))
		for _, t := range starts {
			ms = append(ms, t.UnixMilli())
		}
		resp["date"] = raw
		resp["starts"] = ms
	}
	return c.JSON(http.StatusOK, resp)
}
