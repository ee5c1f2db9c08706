package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/interview-scheduler/internal/config"
	"github.com/iliyamo/interview-scheduler/internal/database"
	"github.com/iliyamo/interview-scheduler/internal/handler"
	"github.com/iliyamo/interview-scheduler/internal/middleware"
	"github.com/iliyamo/interview-scheduler/internal/model"
	"github.com/iliyamo/interview-scheduler/internal/repository"
	"github.com/iliyamo/interview-scheduler/internal/service"
	"github.com/iliyamo/interview-scheduler/internal/session"
	"github.com/iliyamo/interview-scheduler/internal/utils"
)

const (
	jwtSecret  = "router-test-secret"
	hookSecret = "identity-hook"
)

type api struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, database.SQLite))

	users := repository.NewUserRepo(db)
	for _, u := range []model.User{
		{ID: "cand", Role: model.RoleCandidate, DisplayName: "Casey Candidate"},
		{ID: "int1", Role: model.RoleInterviewer, DisplayName: "Iris Interviewer"},
		{ID: "int2", Role: model.RoleInterviewer, DisplayName: "Ivan Second"},
	} {
		u := u
		require.NoError(t, users.Create(context.Background(), &u))
	}

	svc := service.New(users, repository.NewInterviewRepo(db), repository.NewCommentRepo(db),
		session.NewLocalProvider(), nil, service.Options{})
	hash, err := utils.HashSecret(hookSecret, 4)
	require.NoError(t, err)

	e := echo.New()
	RegisterRoutes(e, Handlers{
		Health:     handler.NewHealthHandler(db),
		Interviews: handler.NewInterviewHandler(svc),
		Comments:   handler.NewCommentHandler(svc),
		Users:      handler.NewUserHandler(svc),
		Schedule:   handler.NewScheduleHandler(config.ScheduleConfig{Slots: config.DefaultSlots()}),
		Sessions:   handler.NewSessionHandler(config.StreamConfig{}, time.Hour),
	}, Options{JWTSecret: jwtSecret, WebhookSecretHash: hash})
	return &api{t: t, e: e}
}

func (a *api) do(method, path, userID, role, body string) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != "" {
		tok, err := utils.NewAccessToken(jwtSecret, userID, role, time.Hour)
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+tok.Token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func scheduleBody(start time.Time, interviewers ...string) string {
	b, _ := json.Marshal(map[string]any{
		"title":           "System Design",
		"description":     "45 minutes",
		"start_time":      start.UnixMilli(),
		"candidate_id":    "cand",
		"interviewer_ids": interviewers,
	})
	return string(b)
}

func TestHealthz(t *testing.T) {
	a := newAPI(t)
	rec, _ := a.do(http.MethodGet, "/healthz", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	a := newAPI(t)
	rec, _ := a.do(http.MethodGet, "/v1/users", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInterviewLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)
	start := time.Now().Add(2 * time.Hour)

	rec, body := a.do(http.MethodPost, "/v1/interviews", "int1", "interviewer", scheduleBody(start, "int1", "int2"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := body["id"].(string)
	iv := body["interview"].(map[string]any)
	ref := iv["session_ref"].(string)
	assert.Equal(t, "upcoming", iv["status"])

	rec, body = a.do(http.MethodGet, "/v1/interviews/"+id, "cand", "candidate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "upcoming", body["display_state"])
	assert.Equal(t, "Casey Candidate", body["candidate"].(map[string]any)["display_name"])

	rec, body = a.do(http.MethodGet, "/v1/interviews/mine", "cand", "candidate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["interviews"], 1)

	// skipping completed is not a valid move
	rec, body = a.do(http.MethodPatch, "/v1/interviews/"+id+"/status", "int1", "interviewer", `{"status":"succeeded"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "upcoming", body["from"])

	rec, _ = a.do(http.MethodPost, "/v1/sessions/"+ref+"/end", "int2", "interviewer", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = a.do(http.MethodPatch, "/v1/interviews/"+id+"/status", "int1", "interviewer", `{"status":"succeeded"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "succeeded", body["status"])

	rec, body = a.do(http.MethodGet, "/v1/interviews/grouped", "int1", "interviewer", "")
	require.Equal(t, http.StatusOK, rec.Code)
	groups := body["groups"].([]any)
	require.Len(t, groups, 1)
	assert.Equal(t, "succeeded", groups[0].(map[string]any)["id"])
	assert.Equal(t, "Passed", groups[0].(map[string]any)["title"])
	assert.Len(t, body["categories"], 4)
}

func TestCreateInterviewErrors(t *testing.T) {
	a := newAPI(t)
	start := time.Now().Add(time.Hour)

	rec, _ := a.do(http.MethodPost, "/v1/interviews", "cand", "candidate", scheduleBody(start, "int1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body := a.do(http.MethodPost, "/v1/interviews", "int1", "interviewer", scheduleBody(start, "int2"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "interviewer_ids", body["field"])

	rec, body = a.do(http.MethodPost, "/v1/interviews", "int1", "interviewer", scheduleBody(time.Now().Add(-time.Hour), "int1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "start_time", body["field"])

	rec, _ = a.do(http.MethodPost, "/v1/interviews", "int1", "interviewer", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRolesComeFromUserRecord(t *testing.T) {
	a := newAPI(t)
	rec, body := a.do(http.MethodPost, "/v1/interviews", "int1", "interviewer", scheduleBody(time.Now().Add(time.Hour), "int1"))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := body["id"].(string)

	// a candidate presenting an interviewer claim stays a candidate
	rec, _ = a.do(http.MethodPatch, "/v1/interviews/"+id+"/status", "cand", "interviewer", `{"status":"completed"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = a.do(http.MethodGet, "/v1/interviews/"+id+"/comments", "cand", "interviewer", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = a.do(http.MethodGet, "/v1/interviews", "ghost", "interviewer", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// the stored interviewer role holds even with a stale candidate claim
	rec, _ = a.do(http.MethodGet, "/v1/interviews", "int2", "candidate", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCommentsOverHTTP(t *testing.T) {
	a := newAPI(t)
	rec, body := a.do(http.MethodPost, "/v1/interviews", "int1", "interviewer", scheduleBody(time.Now().Add(time.Hour), "int1"))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := body["id"].(string)

	rec, _ = a.do(http.MethodPost, "/v1/interviews/"+id+"/comments", "int2", "interviewer", `{"content":"good","rating":4}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = a.do(http.MethodPost, "/v1/interviews/"+id+"/comments", "int1", "interviewer", `{"content":"  ","rating":4}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "content", body["field"])

	rec, _ = a.do(http.MethodPost, "/v1/interviews/"+id+"/comments", "int1", "interviewer", `{"content":"Clear communicator","rating":5}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body = a.do(http.MethodGet, "/v1/interviews/"+id+"/comments", "int2", "interviewer", "")
	require.Equal(t, http.StatusOK, rec.Code)
	comments := body["comments"].([]any)
	require.Len(t, comments, 1)
	first := comments[0].(map[string]any)
	assert.Equal(t, "Clear communicator", first["content"])
	assert.Equal(t, "Iris Interviewer", first["interviewer"].(map[string]any)["display_name"])

	rec, _ = a.do(http.MethodGet, "/v1/interviews/"+id+"/comments", "cand", "candidate", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = a.do(http.MethodGet, "/v1/interviews/missing/comments", "int1", "interviewer", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIdentityWebhook(t *testing.T) {
	a := newAPI(t)
	post := func(secret, body string) (*httptest.ResponseRecorder, map[string]any) {
		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/identity", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if secret != "" {
			req.Header.Set(middleware.WebhookSecretHeader, secret)
		}
		rec := httptest.NewRecorder()
		a.e.ServeHTTP(rec, req)
		var out map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
		return rec, out
	}

	rec, _ := post("", `{"id":"new_user"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := post(hookSecret, `{"id":"new_user","role":"interviewer","display_name":"Nora New"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["created"])

	rec, body = post(hookSecret, `{"id":"new_user","role":"candidate","display_name":"Nora N."}`)
	require.Equal(t, http.StatusOK, rec.Code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "interviewer", user["role"])
	assert.Equal(t, "Nora N.", user["display_name"])

	rec, body = a.do(http.MethodGet, "/v1/me", "new_user", "interviewer", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Nora N.", body["display_name"])

	rec, body = a.do(http.MethodGet, "/v1/users", "cand", "candidate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["users"], 4)
}

func TestSlotsAndSessionToken(t *testing.T) {
	a := newAPI(t)
	rec, body := a.do(http.MethodGet, "/v1/schedule/slots", "cand", "candidate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["slots"], 17)

	rec, _ = a.do(http.MethodGet, "/v1/sessions/token", "cand", "candidate", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
