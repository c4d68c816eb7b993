package handler

import (
	"time"

	"github.com/deppfellow/go-posts/internal/middleware"
	"github.com/deppfellow/go-posts/internal/model/post"
	"github.com/deppfellow/go-posts/internal/server"
	"github.com/deppfellow/go-posts/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler is the base handler type that holds shared application dependencies.
// Concrete handlers embed it.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint function receiving a bound and validated
// payload. Req is a pointer type so echo can bind into it.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// ResponseHandler writes a successful result and names the operation for logs.
type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error
	GetOperation() string
	AddAttributes(txn *newrelic.Transaction, result interface{})
}

// JSONResponseHandler writes JSON responses with a given status code.
type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if txn == nil {
		return
	}
	if posts, ok := result.([]post.Post); ok {
		txn.AddAttribute("response.count", len(posts))
	}
}

// recordPhase stamps "<name>.status" and "<name>.duration_ms" on the
// transaction and returns the phase duration. Errors themselves are noticed
// once, by the tracing middleware.
func recordPhase(txn *newrelic.Transaction, name string, started time.Time, err error) time.Duration {
	elapsed := time.Since(started)
	if txn == nil {
		return elapsed
	}

	status := "success"
	if err != nil {
		status = "failed"
	}
	txn.AddAttribute(name+".status", status)
	txn.AddAttribute(name+".duration_ms", elapsed.Milliseconds())

	return elapsed
}

// handleRequest binds and validates req, runs handler, and writes the result
// through responseHandler. Each phase is timed on the request logger and the
// New Relic transaction; failures are returned for the global error handler.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", c.Path())
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Logger()

	bindStart := time.Now()
	err := validation.BindAndValidate(c, req)
	validationDuration := recordPhase(txn, "validation", bindStart, err)
	if err != nil {
		logger.Warn().Err(err).Dur("validation_duration", validationDuration).Msg("rejected request payload")
		return err
	}

	runStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := recordPhase(txn, "handler", runStart, err)
	if txn != nil {
		txn.AddAttribute("total.duration_ms", time.Since(start).Milliseconds())
	}

	if err != nil {
		logger.Error().Err(err).Dur("handler_duration", handlerDuration).Msg("handler returned an error")
		return err
	}

	if txn != nil {
		responseHandler.AddAttributes(txn, result)
	}

	logger.Debug().
		Dur("validation_duration", validationDuration).
		Dur("handler_duration", handlerDuration).
		Dur("total_duration", time.Since(start)).
		Msg("handler finished")

	return responseHandler.Handle(c, result)
}

// Handle wraps a typed handler with binding, validation, logging and tracing.
//
// req is bound in place, so callers must pass a fresh payload per request:
//
//	return Handle(h.Handler, h.createPost, http.StatusCreated, &post.CreatePostPayload{})(c)
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
	req Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, req, func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}
