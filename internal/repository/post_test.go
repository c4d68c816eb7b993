package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/go-posts/internal/model/post"
	"github.com/pashagolub/pgxmock/v4"
)

var postColumnNames = []string{"id", "title", "content", "category", "tags", "created_at", "updated_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("creating pgxmock pool: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})
	return mock
}

func strPtr(s string) *string { return &s }

func TestPostRepository_CreatePost(t *testing.T) {
	mock := newMock(t)
	repo := NewPostRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO posts \(title, content, category, tags\)`).
		WithArgs("A", "B", "C", []string{"t"}).
		WillReturnRows(pgxmock.NewRows(postColumnNames).
			AddRow(int64(1), "A", "B", "C", []string{"t"}, now, now))

	created, err := repo.CreatePost(context.Background(), &post.CreatePostPayload{
		Title: "A", Content: "B", Category: "C", Tags: []string{"t"},
	})
	if err != nil {
		t.Fatalf("CreatePost() error: %v", err)
	}
	if created.ID != 1 || created.Title != "A" || created.Tags[0] != "t" {
		t.Errorf("unexpected post %+v", created)
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Errorf("unexpected timestamps %+v", created.Base)
	}
}

func TestPostRepository_GetPostByID(t *testing.T) {
	mock := newMock(t)
	repo := NewPostRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM posts WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(postColumnNames).
			AddRow(int64(7), "Title", "Content", "Category", []string{"a", "b"}, now, now))

	found, err := repo.GetPostByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetPostByID() error: %v", err)
	}
	if found.ID != 7 || len(found.Tags) != 2 {
		t.Errorf("unexpected post %+v", found)
	}
}

func TestPostRepository_GetPostByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewPostRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM posts WHERE id = \$1`).
		WithArgs(int64(999999)).
		WillReturnRows(pgxmock.NewRows(postColumnNames))

	_, err := repo.GetPostByID(context.Background(), 999999)
	if !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPostRepository_ListPosts_All(t *testing.T) {
	mock := newMock(t)
	repo := NewPostRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM posts ORDER BY id ASC`).
		WithArgs().
		WillReturnRows(pgxmock.NewRows(postColumnNames).
			AddRow(int64(1), "one", "c", "x", []string{"t"}, now, now).
			AddRow(int64(2), "two", "c", "x", []string{"t"}, now, now))

	posts, err := repo.ListPosts(context.Background(), "")
	if err != nil {
		t.Fatalf("ListPosts() error: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != 1 || posts[1].ID != 2 {
		t.Errorf("unexpected posts %+v", posts)
	}
}

func TestPostRepository_ListPosts_Term(t *testing.T) {
	mock := newMock(t)
	repo := NewPostRepository(mock)

	mock.ExpectQuery(`WHERE title ILIKE \$1 OR content ILIKE \$1 OR category ILIKE \$1 ORDER BY id ASC`).
		WithArgs(`%50\%\_off%`).
		WillReturnRows(pgxmock.NewRows(postColumnNames))

	posts, err := repo.ListPosts(context.Background(), "50%_off")
	if err != nil {
		t.Fatalf("ListPosts() error: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("expected an empty, non-nil slice, got %#v", posts)
	}
}

func TestPostRepository_UpdatePost(t *testing.T) {
	mock := newMock(t)
	repo := NewPostRepository(mock)
	created := time.Now().Add(-time.Hour).UTC()
	now := time.Now().UTC()

	title := strPtr("New")
	mock.ExpectQuery(`UPDATE posts`).
		WithArgs(int64(3), title, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(postColumnNames).
			AddRow(int64(3), "New", "old content", "old category", []string{"t"}, created, now))

	updated, err := repo.UpdatePost(context.Background(), &post.UpdatePostPayload{ID: 3, Title: title})
	if err != nil {
		t.Fatalf("UpdatePost() error: %v", err)
	}
	if updated.Title != "New" || updated.Content != "old content" {
		t.Errorf("unexpected post %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Errorf("expected updated_at to move forward: %+v", updated.Base)
	}
}

func TestPostRepository_UpdatePost_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewPostRepository(mock)

	mock.ExpectQuery(`UPDATE posts`).
		WithArgs(int64(4), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(postColumnNames))

	_, err := repo.UpdatePost(context.Background(), &post.UpdatePostPayload{ID: 4, Content: strPtr("x")})
	if !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPostRepository_DeletePost(t *testing.T) {
	mock := newMock(t)
	repo := NewPostRepository(mock)

	mock.ExpectExec(`DELETE FROM posts WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM posts WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.DeletePost(context.Background(), 5); err != nil {
		t.Fatalf("DeletePost() error: %v", err)
	}
	if err := repo.DeletePost(context.Background(), 5); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound on second delete, got %v", err)
	}
}

func TestPostRepository_QueryError(t *testing.T) {
	mock := newMock(t)
	repo := NewPostRepository(mock)
	boom := errors.New("connection refused")

	mock.ExpectQuery(`SELECT .+ FROM posts`).WillReturnError(boom)

	if _, err := repo.ListPosts(context.Background(), ""); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}
