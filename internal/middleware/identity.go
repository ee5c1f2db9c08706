package middleware

// identity.go exposes the caller identity JWTAuth stored in the Echo
// context, and the shared-secret guard used by the identity provider's
// webhook.

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/interview-scheduler/internal/utils"
)

// WebhookSecretHeader carries the identity provider's shared secret.
const WebhookSecretHeader = "X-Webhook-Secret"

// UserID returns the authenticated user id, or "" when there is none.
func UserID(c echo.Context) string {
	if v, ok := c.Get(ContextUserID).(string); ok {
		return v
	}
	return ""
}

// Role returns the authenticated user's role claim, or "".
func Role(c echo.Context) string {
	if v, ok := c.Get(ContextRole).(string); ok {
		return v
	}
	return ""
}

// userKey is the identity used in rate-limit and cache keys.
func userKey(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}

// RequireWebhookSecret admits requests whose WebhookSecretHeader matches
// the configured bcrypt hash.  With no hash configured every request is
// refused, so the webhook is closed until an operator sets one.
func RequireWebhookSecret(hash string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if hash == "" {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "webhook not configured"})
			}
			if !utils.VerifySecret(hash, c.Request().Header.Get(WebhookSecretHeader)) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid webhook secret"})
			}
			return next(c)
		}
	}
}
