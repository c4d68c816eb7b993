package router

import (
	"github.com/deppfellow/go-posts/internal/handler"
	"github.com/deppfellow/go-posts/internal/middleware"
	"github.com/labstack/echo/v4"
)

func registerPostRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	posts := r.Group("/posts", m.RateLimit.Limit())

	posts.POST("", h.Post.CreatePost)
	posts.GET("", h.Post.GetPosts)
	posts.GET("/:id", h.Post.GetPostByID)
	posts.PUT("/:id", h.Post.UpdatePost)
	posts.DELETE("/:id", h.Post.DeletePost)
}
