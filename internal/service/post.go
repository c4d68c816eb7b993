package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/go-posts/internal/errs"
	"github.com/deppfellow/go-posts/internal/model/post"
	"github.com/deppfellow/go-posts/internal/repository"
	"github.com/deppfellow/go-posts/internal/server"
	"github.com/rs/zerolog"
)

// PostStore is the data access capability the post service depends on.
// *repository.PostRepository is the production implementation.
type PostStore interface {
	CreatePost(ctx context.Context, payload *post.CreatePostPayload) (*post.Post, error)
	GetPostByID(ctx context.Context, id int64) (*post.Post, error)
	ListPosts(ctx context.Context, term string) ([]post.Post, error)
	UpdatePost(ctx context.Context, payload *post.UpdatePostPayload) (*post.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

type PostService struct {
	server *server.Server
	store  PostStore
}

func NewPostService(s *server.Server, store PostStore) *PostService {
	return &PostService{
		server: s,
		store:  store,
	}
}

var postNotFoundCode = "POST_NOT_FOUND"

// NewPostNotFoundError is the 404 returned for a missing post id.
func NewPostNotFoundError(id int64) *errs.HTTPError {
	return errs.NewNotFoundError(fmt.Sprintf("Post with ID %d not found", id), true, &postNotFoundCode)
}

// DeletedMessage is the acknowledgment returned after a delete.
func DeletedMessage(id int64) string {
	return fmt.Sprintf("Post with ID %d deleted successfully", id)
}

func (s *PostService) CreatePost(ctx context.Context, payload *post.CreatePostPayload) (*post.Post, error) {
	created, err := s.store.CreatePost(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.logger(ctx).Info().
		Str("event", "post_created").
		Int64("post_id", created.ID).
		Str("category", created.Category).
		Msg("post created")

	return created, nil
}

func (s *PostService) GetPostByID(ctx context.Context, id int64) (*post.Post, error) {
	found, err := s.store.GetPostByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(id, err)
	}
	return found, nil
}

// GetPosts lists every post, or only those matching term when it is non-empty.
func (s *PostService) GetPosts(ctx context.Context, term string) ([]post.Post, error) {
	posts, err := s.store.ListPosts(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if posts == nil {
		posts = []post.Post{}
	}
	return posts, nil
}

// UpdatePost checks the post exists, then applies the partial update.
//
// The update itself is conditional on the row still existing, so a delete
// that lands between the check and the update surfaces as NotFound.
func (s *PostService) UpdatePost(ctx context.Context, payload *post.UpdatePostPayload) (*post.Post, error) {
	if _, err := s.GetPostByID(ctx, payload.ID); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdatePost(ctx, payload)
	if err != nil {
		return nil, s.mapNotFound(payload.ID, err)
	}

	s.logger(ctx).Info().
		Str("event", "post_updated").
		Int64("post_id", updated.ID).
		Msg("post updated")

	return updated, nil
}

// DeletePost checks the post exists, then removes it permanently.
func (s *PostService) DeletePost(ctx context.Context, id int64) (*post.DeletedResponse, error) {
	if _, err := s.GetPostByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.store.DeletePost(ctx, id); err != nil {
		return nil, s.mapNotFound(id, err)
	}

	s.logger(ctx).Info().
		Str("event", "post_deleted").
		Int64("post_id", id).
		Msg("post deleted")

	return &post.DeletedResponse{Message: DeletedMessage(id)}, nil
}

// logger returns the request-scoped logger when one is attached to ctx.
func (s *PostService) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.server.Logger
}

func (s *PostService) mapNotFound(id int64, err error) error {
	if errors.Is(err, repository.ErrPostNotFound) {
		return NewPostNotFoundError(id)
	}
	return fmt.Errorf("failed to access post_id=%d: %w", id, err)
}
