package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/interview-scheduler/internal/config"
	"github.com/iliyamo/interview-scheduler/internal/handler"
	"github.com/iliyamo/interview-scheduler/internal/middleware"
	"github.com/iliyamo/interview-scheduler/internal/model"
)

// Handlers bundles the endpoint implementations.
type Handlers struct {
	Health     *handler.HealthHandler
	Interviews *handler.InterviewHandler
	Comments   *handler.CommentHandler
	Users      *handler.UserHandler
	Schedule   *handler.ScheduleHandler
	Sessions   *handler.SessionHandler
}

// Options carries the security and Redis settings shared by the routes.
// A nil Redis client turns rate limiting and caching into pass-throughs.
type Options struct {
	JWTSecret         string
	WebhookSecretHash string
	RateLimit         config.RateLimitConfig
	Cache             config.CacheConfig
	Redis             *redis.Client
}

// RegisterRoutes registers the health probe, the identity webhook and the
// authenticated /v1 API.
func RegisterRoutes(e *echo.Echo, h Handlers, opts Options) {
	e.GET("/healthz", h.Health.Health)

	limit := middleware.NewTokenBucket(opts.RateLimit, opts.Redis)
	cache := middleware.NewRedisCache(opts.Cache, opts.Redis)

	// The identity provider authenticates with a shared secret, not a JWT.
	// A successful sync drops cached listings so profile edits show at once.
	e.POST("/v1/webhooks/identity", h.Users.Sync, limit,
		middleware.RequireWebhookSecret(opts.WebhookSecretHash),
		middleware.PurgeCacheOnSuccess(opts.Cache, opts.Redis))

	// Rate limiting runs after JWTAuth so user-based keys see the caller.
	// Roles come from the user table, not from the token's claim.
	api := e.Group("/v1", middleware.JWTAuth(opts.JWTSecret), limit,
		middleware.StoredRole(h.Users.Svc.StoredRole))
	interviewer := middleware.RequireRole(model.RoleInterviewer)

	api.GET("/me", h.Users.Me)
	api.GET("/users", h.Users.List, cache)
	api.GET("/schedule/slots", h.Schedule.Slots, cache)
	api.GET("/sessions/token", h.Sessions.Token)

	api.GET("/interviews/mine", h.Interviews.Mine)
	api.GET("/interviews/:id", h.Interviews.Get)
	api.GET("/interviews", h.Interviews.List, interviewer)
	api.GET("/interviews/grouped", h.Interviews.Grouped, interviewer)
	api.POST("/interviews", h.Interviews.Create, interviewer)
	api.PATCH("/interviews/:id/status", h.Interviews.UpdateStatus, interviewer)
	api.POST("/sessions/:ref/end", h.Interviews.EndSession, interviewer)

	api.GET("/interviews/:id/comments", h.Comments.List, interviewer)
	api.POST("/interviews/:id/comments", h.Comments.Add, interviewer)
}
