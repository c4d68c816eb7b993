package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/go-posts/internal/model/post"
	"github.com/jackc/pgx/v5"
)

// ErrPostNotFound is returned when no row matches the requested id.
var ErrPostNotFound = errors.New("post not found")

const postColumns = `id, title, content, category, tags, created_at, updated_at`

// likeEscaper makes LIKE wildcards in a search term match literally.
// Backslash is the default LIKE escape character in Postgres.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type PostRepository struct {
	db DBTX
}

func NewPostRepository(db DBTX) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) CreatePost(ctx context.Context, payload *post.CreatePostPayload) (*post.Post, error) {
	stmt := `
		INSERT INTO posts (title, content, category, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + postColumns

	rows, err := r.db.Query(ctx, stmt, payload.Title, payload.Content, payload.Category, payload.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to execute create post query: %w", err)
	}

	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[post.Post])
	if err != nil {
		return nil, fmt.Errorf("failed to collect row from table:posts: %w", err)
	}

	return &created, nil
}

func (r *PostRepository) GetPostByID(ctx context.Context, id int64) (*post.Post, error) {
	stmt := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	rows, err := r.db.Query(ctx, stmt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to execute get post by id query for post_id=%d: %w", id, err)
	}

	found, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[post.Post])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("post_id=%d: %w", id, ErrPostNotFound)
		}
		return nil, fmt.Errorf("failed to collect row from table:posts for post_id=%d: %w", id, err)
	}

	return &found, nil
}

// ListPosts returns every post ordered by id. A non-empty term keeps only
// posts whose title, content or category contains it, ignoring case.
func (r *PostRepository) ListPosts(ctx context.Context, term string) ([]post.Post, error) {
	stmt := `SELECT ` + postColumns + ` FROM posts`

	var args []any
	if term != "" {
		stmt += ` WHERE title ILIKE $1 OR content ILIKE $1 OR category ILIKE $1`
		args = append(args, "%"+likeEscaper.Replace(term)+"%")
	}
	stmt += ` ORDER BY id ASC`

	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute list posts query: %w", err)
	}

	posts, err := pgx.CollectRows(rows, pgx.RowToStructByName[post.Post])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:posts: %w", err)
	}

	if posts == nil {
		posts = []post.Post{}
	}
	return posts, nil
}

// UpdatePost overwrites the supplied fields and refreshes updated_at.
// Nil payload fields are sent as NULL and keep the stored value.
func (r *PostRepository) UpdatePost(ctx context.Context, payload *post.UpdatePostPayload) (*post.Post, error) {
	stmt := `
		UPDATE posts
		SET
			title = COALESCE($2::text, title),
			content = COALESCE($3::text, content),
			category = COALESCE($4::text, category),
			tags = COALESCE($5::text[], tags),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + postColumns

	var tags []string
	if payload.Tags != nil {
		tags = *payload.Tags
	}

	rows, err := r.db.Query(ctx, stmt, payload.ID, payload.Title, payload.Content, payload.Category, tags)
	if err != nil {
		return nil, fmt.Errorf("failed to execute update post query for post_id=%d: %w", payload.ID, err)
	}

	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[post.Post])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("post_id=%d: %w", payload.ID, ErrPostNotFound)
		}
		return nil, fmt.Errorf("failed to collect row from table:posts for post_id=%d: %w", payload.ID, err)
	}

	return &updated, nil
}

func (r *PostRepository) DeletePost(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to execute delete post query for post_id=%d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("post_id=%d: %w", id, ErrPostNotFound)
	}

	return nil
}
