// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers.
package router

import (
	"github.com/deppfellow/go-posts/internal/handler"
	"github.com/deppfellow/go-posts/internal/middleware"
	"github.com/deppfellow/go-posts/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance with the global middleware chain, the
// global error handler, and every route.
//
// Order matters: the New Relic transaction must exist before the request
// logger is enhanced with trace ids, and the request id must be set before
// the transaction is annotated or anything logs.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler
	// Trust X-Forwarded-For only from private ranges so clients cannot pick
	// their own rate limit key.
	router.IPExtractor = echo.ExtractIPFromXFFHeader()

	router.Use(
		middlewares.Tracing.NewRelicMiddleware(),
		middleware.RequestID(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	registerPostRoutes(router, h, middlewares)

	return router
}
