package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"log"
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/iliyamo/interview-scheduler/internal/model"
)

// RequireRole returns a middleware that admits only callers whose role
// is one of roles.  It relies on JWTAuth (and StoredRole, when mounted)
// having stored the role in the context; a missing or foreign role gets
// 403 Forbidden.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !allowed[model.Role(Role(c))] {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RoleLookup returns the stored role of a user, or "" when the user has
// never been synced.
type RoleLookup func(ctx context.Context, userID string) (model.Role, error)

// StoredRole replaces the token's role claim with the role on record, so
// RequireRole and the handlers authorize against the user table.  It
// must run after JWTAuth.
func StoredRole(lookup RoleLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, err := lookup(c.Request().Context(), UserID(c))
			if err != nil {
				log.Printf("role lookup for %q failed: %v", UserID(c), err)
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "user directory unavailable"})
			}
			c.Set(ContextRole, string(role))
			return next(c)
		}
	}
}
