package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/timetext/internal/profile"
	"github.com/hrygo/timetext/plugin/timetext"
	ratelimit "github.com/hrygo/timetext/server/middleware"
	apiv1 "github.com/hrygo/timetext/server/router/api/v1"
)

// Server wraps the echo instance serving the timetext API.
type Server struct {
	Profile *profile.Profile

	echoServer *echo.Echo
	apiV1      *apiv1.APIV1Service
	logger     *slog.Logger
}

// NewServer wires the middleware chain and the API routes.
func NewServer(profile *profile.Profile, service timetext.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Profile: profile,
		logger:  logger,
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Server.ReadHeaderTimeout = 10 * time.Second
	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.BodyLimit("1M"))
	echoServer.Use(ratelimit.NewRateLimiter(profile.RateLimit, profile.RateBurst).Middleware())
	s.echoServer = echoServer

	s.apiV1 = apiv1.NewAPIV1Service(profile, service, logger)
	s.apiV1.RegisterRoutes(echoServer)
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start listens on the profile address and serves until the listener closes.
func (s *Server) Start(ctx context.Context) error {
	address := net.JoinHostPort(s.Profile.Addr, fmt.Sprintf("%d", s.Profile.Port))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}
	s.echoServer.Listener = listener
	s.logger.Info("timetext server started",
		slog.String("addr", listener.Addr().String()),
		slog.String("mode", s.Profile.Mode),
		slog.String("version", s.Profile.Version))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.Shutdown(shutdownCtx)
	}()

	if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "failed to start server")
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) {
	if err := s.echoServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	s.logger.Info("timetext server stopped")
}
