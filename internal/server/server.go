package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
	mw "github.com/DjordjeVuckovic/apikit/pkg/middleware"
	pkgserver "github.com/DjordjeVuckovic/apikit/pkg/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const (
	GracefulShutdownTimeout = 10 * time.Second
	DefaultHealthPath       = "/health"
	DefaultOpenApiPath      = "/swagger/*"
)

type Server struct {
	Echo *echo.Echo

	cfg    *Config
	health pkgserver.HealthChecker
	ctx    context.Context
	stop   context.CancelFunc
}

func New(cfg *Config, health pkgserver.HealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.DisableHTTP2 = !cfg.UseHttp2

	if health == nil {
		health = pkgserver.NewOkHealthChecker()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &Server{
		Echo:   e,
		cfg:    cfg,
		health: health,
		ctx:    ctx,
		stop:   stop,
	}
}

func (s *Server) SetupMiddlewares() *Server {
	s.Echo.Use(mw.RequestID())
	s.Echo.Use(mw.Logger(mw.WithSkipper(func(c echo.Context) bool {
		return c.Path() == DefaultHealthPath
	})))
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.cfg.CorsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodPatch, http.MethodDelete},
	}))
	return s
}

// SetupErrorHandler renders handler errors as failure envelopes.
func (s *Server) SetupErrorHandler(opts ...apperr.HandlerOpt) *Server {
	s.Echo.HTTPErrorHandler = apperr.GlobalErrorHandler(opts...)
	return s
}

// SetupValidator makes c.Validate use v.
func (s *Server) SetupValidator(v echo.Validator) *Server {
	s.Echo.Validator = v
	return s
}

func (s *Server) SetupHealthChecks(path ...string) *Server {
	p := DefaultHealthPath
	if len(path) > 0 && path[0] != "" {
		p = path[0]
	}
	s.Echo.GET(p, s.healthHandler)
	return s
}

func (s *Server) SetupOpenApi(path ...string) *Server {
	p := DefaultOpenApiPath
	if len(path) > 0 && path[0] != "" {
		p = path[0]
	}
	s.Echo.GET(p, echoSwagger.WrapHandler)
	return s
}

// Context is cancelled when the process receives SIGINT or SIGTERM.
func (s *Server) Context() context.Context {
	return s.ctx
}

func (s *Server) ShutdownSignal() <-chan struct{} {
	return s.ctx.Done()
}

// Start serves until the shutdown signal, then drains in-flight requests.
func (s *Server) Start() error {
	defer s.stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.Echo.Start(":" + s.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-s.ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = GracefulShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	slog.Info("Shutting down server", "timeout", timeout)
	return s.Echo.Shutdown(ctx)
}

type healthResponse struct {
	Status string          `json:"status"`
	Checks map[string]bool `json:"checks,omitempty"`
}

func (s *Server) healthHandler(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	var resp healthResponse
	healthy := s.health.Healthy(ctx)
	if r, ok := s.health.(interface {
		Report(ctx context.Context) map[string]bool
	}); ok {
		resp.Checks = r.Report(ctx)
	}

	if !healthy {
		resp.Status = "unhealthy"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	resp.Status = "ok"
	return c.JSON(http.StatusOK, resp)
}
