package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/go-posts/internal/server"
)

// TracingMiddleware owns the New Relic Echo middleware.
//
// NewRelicMiddleware starts a transaction per request; EnhanceTracing adds
// custom attributes and notices returned errors.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

// NewTracingMiddleware constructs TracingMiddleware. nrApp may be nil.
func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware returns nrecho's middleware, or a pass-through when
// New Relic is disabled.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing adds client and request attributes to the current transaction
// and records handler errors with their pkg/errors stack.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			for key, value := range tm.requestAttributes(c) {
				txn.AddAttribute(key, value)
			}

			err := next(c)
			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}

			txn.AddAttribute("http.status_code", c.Response().Status)

			return err
		}
	}
}

// requestAttributes collects the custom attributes recorded on each transaction.
// It expects RequestID to have run already.
func (tm *TracingMiddleware) requestAttributes(c echo.Context) map[string]interface{} {
	attrs := map[string]interface{}{
		"http.real_ip":        c.RealIP(),
		"http.user_agent":     c.Request().UserAgent(),
		"service.environment": tm.server.Config.Primary.Env,
	}

	if requestID := GetRequestID(c); requestID != "" {
		attrs["request.id"] = requestID
	}

	return attrs
}
