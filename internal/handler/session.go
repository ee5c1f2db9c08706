package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/interview-scheduler/internal/config"
	"github.com/iliyamo/interview-scheduler/internal/middleware"
	"github.com/iliyamo/interview-scheduler/internal/utils"
)

// SessionHandler issues client tokens for the hosted video provider.
type SessionHandler struct {
	Stream config.StreamConfig
	TTL    time.Duration
}

func NewSessionHandler(stream config.StreamConfig, ttl time.Duration) *SessionHandler {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionHandler{Stream: stream, TTL: ttl}
}

// Token handles GET /v1/sessions/token.  It answers 503 when no provider
// credentials are configured, since the in-process provider has no
// client side to join.
func (h *SessionHandler) Token(c echo.Context) error {
	if !h.Stream.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "video provider not configured"})
	}
	userID := middleware.UserID(c)
	tok, err := utils.NewSessionUserToken(h.Stream.APISecret, userID, h.TTL)
	if err != nil {
		log.Printf("handler: session token for %s: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"api_key":    h.Stream.APIKey,
		"token":      tok.Token,
		"user_id":    userID,
		"expires_at": tok.Exp.Unix(),
	})
}
