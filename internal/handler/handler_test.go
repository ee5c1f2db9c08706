package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/interview-scheduler/internal/config"
	"github.com/iliyamo/interview-scheduler/internal/middleware"
	"github.com/iliyamo/interview-scheduler/internal/model"
	"github.com/iliyamo/interview-scheduler/internal/service"
)

func call(h echo.HandlerFunc, req *http.Request, setup func(c echo.Context)) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	_ = h(c)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		field  string
	}{
		{"validation", &service.ValidationError{Field: "title", Reason: "cannot be blank"}, http.StatusBadRequest, "title"},
		{"authorization", &service.AuthorizationError{Actor: "u", Action: "comment"}, http.StatusForbidden, ""},
		{"not found", &service.NotFoundError{Entity: "interview", ID: "x"}, http.StatusNotFound, ""},
		{"transition", &service.InvalidTransitionError{From: model.StatusUpcoming, To: model.StatusFailed}, http.StatusConflict, ""},
		{"provisioning", &service.SessionProvisioningError{SessionRef: "r", Err: errors.New("down")}, http.StatusBadGateway, ""},
		{"wrapped not found", fmt.Errorf("load: %w", &service.NotFoundError{Entity: "session", ID: "r"}), http.StatusNotFound, ""},
		{"timeout", context.DeadlineExceeded, http.StatusServiceUnavailable, ""},
		{"other", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := call(func(c echo.Context) error { return respondError(c, tc.err) },
				httptest.NewRequest(http.MethodGet, "/", nil), nil)
			assert.Equal(t, tc.status, rec.Code)
			body := decode(t, rec)
			assert.NotEmpty(t, body["error"])
			if tc.field != "" {
				assert.Equal(t, tc.field, body["field"])
			}
		})
	}

	rec := call(func(c echo.Context) error { return respondError(c, errors.New("secret detail")) },
		httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestScheduleSlots(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	h := NewScheduleHandler(config.ScheduleConfig{Slots: []string{"09:00", "09:30"}, Location: loc})

	rec := call(h.Slots, httptest.NewRequest(http.MethodGet, "/v1/schedule/slots", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []any{"09:00", "09:30"}, body["slots"])
	assert.Equal(t, "Europe/Berlin", body["timezone"])
	assert.NotContains(t, body, "starts")

	rec = call(h.Slots, httptest.NewRequest(http.MethodGet, "/v1/schedule/slots?date=2026-07-01", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	want := time.Date(2026, 7, 1, 7, 0, 0, 0, time.UTC).UnixMilli() // 09:00 CEST
	starts := body["starts"].([]any)
	require.Len(t, starts, 2)
	assert.EqualValues(t, want, starts[0])
	assert.EqualValues(t, want+30*60*1000, starts[1])

	rec = call(h.Slots, httptest.NewRequest(http.MethodGet, "/v1/schedule/slots?date=07/01/2026", nil), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "date", decode(t, rec)["field"])
}

func TestSessionToken(t *testing.T) {
	asUser := func(c echo.Context) { c.Set(middleware.ContextUserID, "int_7") }

	off := NewSessionHandler(config.StreamConfig{}, time.Hour)
	rec := call(off.Token, httptest.NewRequest(http.MethodGet, "/v1/sessions/token", nil), asUser)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	on := NewSessionHandler(config.StreamConfig{APIKey: "key", APISecret: "stream-secret"}, 0)
	rec = call(on.Token, httptest.NewRequest(http.MethodGet, "/v1/sessions/token", nil), asUser)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "key", body["api_key"])
	assert.Equal(t, "int_7", body["user_id"])

	tok, err := jwt.Parse(body["token"].(string), func(*jwt.Token) (interface{}, error) {
		return []byte("stream-secret"), nil
	})
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "int_7", claims["user_id"])
}

func TestHealthWithoutStore(t *testing.T) {
	rec := call(NewHealthHandler(nil).Health, httptest.NewRequest(http.MethodGet, "/healthz", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
