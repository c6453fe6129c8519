package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"daily-todo/internal/wire"
)

const (
	tracerName = "daily-todo/api"
	ctxKeyErr  = "handler_error"
)

// originGuard rejects browser requests whose Origin is not allow-listed.
// Requests without an Origin header come from non-browser clients and pass.
func originGuard(allowed []string) echo.MiddlewareFunc {
	set := make(map[string]struct{}, len(allowed))
	wildcard := false
	for _, o := range allowed {
		if o == "*" {
			wildcard = true
		}
		set[o] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if origin == "" || wildcard {
				return next(c)
			}
			if _, ok := set[origin]; !ok {
				return c.JSON(http.StatusForbidden, wire.ErrorResponse{Error: "origin not allowed"})
			}
			return next(c)
		}
	}
}

// requestLogger wraps each request in a server span and emits one structured
// log line when it completes.
func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route := c.Path()
			ctx, span := otel.Tracer(tracerName).Start(req.Context(), req.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()
			c.SetRequest(req.WithContext(ctx))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			status := c.Response().Status
			if herr, ok := c.Get(ctxKeyErr).(error); ok && err == nil {
				err = herr
			}

			span.SetAttributes(
				attribute.String("http.method", req.Method),
				attribute.String("http.route", route),
				attribute.Int("http.status_code", status),
			)
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
				if err != nil {
					span.RecordError(err)
				}
			}

			fields := log.Fields{
				"method":     req.Method,
				"path":       req.URL.Path,
				"route":      route,
				"status":     status,
				"latency_ms": float64(time.Since(start)) / float64(time.Millisecond),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}
			entry := logger.WithFields(fields)
			if err != nil {
				entry = entry.WithError(err)
			}
			switch {
			case status >= http.StatusInternalServerError:
				entry.Error("http.request")
			case status >= http.StatusBadRequest:
				entry.Warn("http.request")
			default:
				entry.Info("http.request")
			}
			return nil
		}
	}
}
