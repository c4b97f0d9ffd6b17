package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/timetext/internal/observability"
	"github.com/hrygo/timetext/internal/profile"
	"github.com/hrygo/timetext/plugin/timetext"
)

// APIV1Service serves the timetext HTTP API.
type APIV1Service struct {
	Profile *profile.Profile
	Service timetext.Service
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

func NewAPIV1Service(profile *profile.Profile, service timetext.Service, logger *slog.Logger) *APIV1Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIV1Service{
		Profile: profile,
		Service: service,
		Metrics: observability.NewMetrics(0),
		Logger:  logger,
	}
}

// RegisterRoutes registers the API routes with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	group := echoServer.Group("/api/v1")
	group.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
	}))
	group.GET("/format", s.handle("format", s.Format))
	group.GET("/relative", s.handle("relative", s.Relative))
	group.GET("/smart", s.handle("smart", s.Smart))
	group.GET("/parse", s.handle("parse", s.Parse))
	group.GET("/metrics", s.GetMetrics)
}

type operationFunc func(c echo.Context, reqCtx *observability.RequestContext) error

// handle wraps an operation with a request context, access logging and metrics.
func (s *APIV1Service) handle(operation string, fn operationFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(echo.HeaderXRequestID)
		var reqCtx *observability.RequestContext
		if requestID != "" {
			reqCtx = observability.NewRequestContextWithID(s.Logger, requestID, operation)
		} else {
			reqCtx = observability.NewRequestContext(s.Logger, operation)
		}
		c.Response().Header().Set(echo.HeaderXRequestID, reqCtx.RequestID)
		c.SetRequest(c.Request().WithContext(observability.WithRequestContext(c.Request().Context(), reqCtx)))

		err := fn(c, reqCtx)
		s.Metrics.RecordRequest(operation, reqCtx.Duration())
		reqCtx.Debug("request served",
			slog.Int(observability.LogFieldStatus, c.Response().Status),
			slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
		)
		return err
	}
}
