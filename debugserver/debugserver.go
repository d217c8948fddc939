// Package debugserver is a minimal echo-based introspection surface for
// a running scan: health check plus live coordinator progress. It is
// not part of the public pgscan API — callers mount it only for local
// development or integration-test harnesses.
package debugserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"

	"github.com/danthegoodman1/pgscan/gologger"
	"github.com/danthegoodman1/pgscan/utils"
)

var logger = gologger.NewLogger()

type Server struct {
	Echo     *echo.Echo
	Registry *Registry
}

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Start binds a listener on DEBUGSERVER_PORT (default 8090) and serves
// the introspection routes against reg. Passing nil uses Default.
func Start(reg *Registry) (*Server, error) {
	if reg == nil {
		reg = Default
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", utils.GetEnvOrDefault("DEBUGSERVER_PORT", "8090")))
	if err != nil {
		return nil, fmt.Errorf("error in debugserver.Start creating listener: %w", err)
	}

	s := &Server{Echo: echo.New(), Registry: reg}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true

	s.Echo.Use(CreateReqContext)
	s.Echo.Use(LoggerMiddleware)
	s.Echo.Use(middleware.CORS())
	s.Echo.Validator = &CustomValidator{validator: validator.New()}

	s.Echo.GET("/hc", ccHandler(s.HealthCheck))
	s.Echo.GET("/scans", ccHandler(s.ListScans))
	s.Echo.GET("/scans/:id/workers", ccHandler(s.ScanWorkers))

	s.Echo.Listener = listener
	go func() {
		logger.Info().Msg("starting h2c debug server on " + listener.Addr().String())
		if err := s.Echo.StartH2CServer("", &http2.Server{}); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("debug server exited")
		}
	}()

	return s, nil
}

func (s *Server) HealthCheck(c *CustomContext) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) ListScans(c *CustomContext) error {
	return c.JSON(http.StatusOK, s.Registry.ListScans())
}

func (s *Server) ScanWorkers(c *CustomContext) error {
	id := c.Param("id")
	workers, ok := s.Registry.Workers(id)
	if !ok {
		return c.String(http.StatusNotFound, "scan not found")
	}
	return c.JSON(http.StatusOK, workers)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}
		stop := time.Since(start)
		req := c.Request()
		res := c.Response()
		zerolog.Ctx(req.Context()).Debug().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", res.Status).
			Int64("latency_ns", int64(stop)).
			Msg("debugserver request")
		return nil
	}
}
