// Package handler is the first layer after the router.
//
// It binds and validates requests using the validation package, calls
// the appropriate service, and writes the response. Errors are returned
// to the global error handler rather than written here.
package handler

import (
	"github.com/deppfellow/go-posts/internal/server"
	"github.com/deppfellow/go-posts/internal/service"
)

// Handlers groups all HTTP handlers so the router receives a single value.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Post    *PostHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Post:    NewPostHandler(s, services.Post),
	}
}
