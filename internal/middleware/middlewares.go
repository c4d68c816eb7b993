package middleware

import (
	"github.com/deppfellow/go-posts/internal/server"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Middlewares groups all middleware components used by the HTTP server so
// the router builds them once and reuses them for every route group.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers and the
	// global error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer attaches a request-scoped logger to every request.
	ContextEnhancer *ContextEnhancer

	// Tracing installs the New Relic transaction middleware.
	Tracing *TracingMiddleware

	// RateLimit enforces the per-client request allowance backed by Redis.
	RateLimit *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components from the application container.
//
// When New Relic is not configured nrApp is nil and tracing degrades to a no-op.
func NewMiddlewares(s *server.Server) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
