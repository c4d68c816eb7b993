package handler

import (
	"net/http"

	"github.com/deppfellow/go-posts/internal/model/post"
	"github.com/deppfellow/go-posts/internal/server"
	"github.com/deppfellow/go-posts/internal/service"
	"github.com/labstack/echo/v4"
)

type PostHandler struct {
	Handler
	postService *service.PostService
}

func NewPostHandler(s *server.Server, postService *service.PostService) *PostHandler {
	return &PostHandler{
		Handler:     NewHandler(s),
		postService: postService,
	}
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, payload *post.CreatePostPayload) (*post.Post, error) {
		return h.postService.CreatePost(c.Request().Context(), payload)
	}, http.StatusCreated, &post.CreatePostPayload{})(c)
}

func (h *PostHandler) GetPostByID(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, payload *post.GetPostByIDPayload) (*post.Post, error) {
		return h.postService.GetPostByID(c.Request().Context(), payload.ID)
	}, http.StatusOK, &post.GetPostByIDPayload{})(c)
}

// GetPosts lists posts, filtered by the optional ?term= query parameter.
func (h *PostHandler) GetPosts(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, query *post.ListPostsQuery) ([]post.Post, error) {
		return h.postService.GetPosts(c.Request().Context(), query.Term)
	}, http.StatusOK, &post.ListPostsQuery{})(c)
}

func (h *PostHandler) UpdatePost(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, payload *post.UpdatePostPayload) (*post.Post, error) {
		return h.postService.UpdatePost(c.Request().Context(), payload)
	}, http.StatusOK, &post.UpdatePostPayload{})(c)
}

func (h *PostHandler) DeletePost(c echo.Context) error {
	return Handle(h.Handler, func(c echo.Context, payload *post.DeletePostPayload) (*post.DeletedResponse, error) {
		return h.postService.DeletePost(c.Request().Context(), payload.ID)
	}, http.StatusOK, &post.DeletePostPayload{})(c)
}
