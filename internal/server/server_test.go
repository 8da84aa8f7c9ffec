package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
	"github.com/DjordjeVuckovic/apikit/pkg/jsonconv"
	pkgserver "github.com/DjordjeVuckovic/apikit/pkg/server"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(health pkgserver.HealthChecker) *Server {
	return New(&Config{Port: "0", CorsOrigins: []string{"*"}}, health).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupValidator(jsonconv.New()).
		SetupHealthChecks()
}

func serve(s *Server, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealthChecks(t *testing.T) {
	hc := pkgserver.NewCompositeHealthChecker().
		Add("postgres", pkgserver.HealthFunc(func(context.Context) bool { return true }))
	s := newTestServer(hc)

	rec := serve(s, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, map[string]bool{"postgres": true}, body.Checks)

	hc.Add("redis", pkgserver.HealthFunc(func(context.Context) bool { return false }))
	rec = serve(s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestErrorHandler_Envelopes(t *testing.T) {
	s := newTestServer(nil)
	s.Echo.GET("/forbidden", func(c echo.Context) error { return apperr.Forbidden("") })
	s.Echo.GET("/boom", func(c echo.Context) error { return errors.New("boom") })
	s.Echo.GET("/panic", func(c echo.Context) error { panic("boom") })

	tests := []struct {
		target string
		code   int
	}{
		{target: "/forbidden", code: http.StatusForbidden},
		{target: "/boom", code: http.StatusInternalServerError},
		{target: "/panic", code: http.StatusInternalServerError},
		{target: "/missing", code: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(s, http.MethodGet, tt.target)
			assert.Equal(t, tt.code, rec.Code)

			var body map[string]map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.EqualValues(t, tt.code, body["error"]["code"])
		})
	}
}

func TestValidator(t *testing.T) {
	s := newTestServer(nil)
	type input struct {
		Title string `json:"title" validate:"required"`
	}
	s.Echo.GET("/v", func(c echo.Context) error {
		return c.Validate(input{})
	})

	rec := serve(s, http.MethodGet, "/v")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "http://a, ,http://b")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.CorsOrigins)
	assert.Equal(t, "DEBUG", cfg.LogLevel.String())
	assert.Equal(t, "3s", cfg.ShutdownTimeout.String())

	t.Setenv("PORT", "70000")
	_, err = LoadConfig()
	assert.Error(t, err)
}
