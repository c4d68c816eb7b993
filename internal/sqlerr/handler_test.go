package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/go-posts/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func asHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *errs.HTTPError, got %T (%v)", err, err)
	}
	return httpErr
}

func TestHandleError_CheckViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23514",
		Message:        `new row for relation "posts" violates check constraint "posts_tags_check"`,
		TableName:      "posts",
		ConstraintName: "posts_tags_check",
	}

	httpErr := asHTTPError(t, HandleError(fmt.Errorf("insert post: %w", pgErr)))

	if httpErr.Status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Status)
	}
	if httpErr.Code != "POST_INVALID" {
		t.Errorf("expected POST_INVALID, got %q", httpErr.Code)
	}
	if httpErr.Message != "The Tags value does not meet required conditions" {
		t.Errorf("unexpected message %q", httpErr.Message)
	}
	if len(httpErr.Errors) != 1 || httpErr.Errors[0].Field != "tags" {
		t.Errorf("unexpected field errors %+v", httpErr.Errors)
	}
}

func TestHandleError_NotNullViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23502", TableName: "posts", ColumnName: "title"}

	httpErr := asHTTPError(t, HandleError(pgErr))

	if httpErr.Code != "POST_REQUIRED" {
		t.Errorf("expected POST_REQUIRED, got %q", httpErr.Code)
	}
	if len(httpErr.Errors) != 1 || httpErr.Errors[0].Field != "title" {
		t.Errorf("unexpected field errors %+v", httpErr.Errors)
	}
}

func TestHandleError_UnmappedConstraintIsInternal(t *testing.T) {
	// posts has no unique or foreign key constraints, so these are unexpected.
	for _, code := range []string{"23505", "23503"} {
		httpErr := asHTTPError(t, HandleError(&pgconn.PgError{Code: code, TableName: "posts"}))

		if httpErr.Status != http.StatusInternalServerError {
			t.Errorf("SQLSTATE %s: expected 500, got %d", code, httpErr.Status)
		}
		if httpErr.Message != http.StatusText(http.StatusInternalServerError) {
			t.Errorf("SQLSTATE %s: unexpected message %q", code, httpErr.Message)
		}
	}
}

func TestHandleError_NoRows(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(fmt.Errorf("table:posts: %w", pgx.ErrNoRows)))

	if httpErr.Status != http.StatusNotFound || httpErr.Message != "Post not found" {
		t.Errorf("unexpected error %+v", httpErr)
	}

	generic := asHTTPError(t, HandleError(pgx.ErrNoRows))
	if generic.Message != "Resource not found" {
		t.Errorf("unexpected generic message %q", generic.Message)
	}
}

func TestHandleError_PassThroughAndFallback(t *testing.T) {
	original := errs.NewNotFoundError("Post with ID 3 not found", true, nil)
	if got := HandleError(original); got != error(original) {
		t.Errorf("expected HTTPError to pass through unchanged, got %v", got)
	}

	httpErr := asHTTPError(t, HandleError(errors.New("connection reset")))
	if httpErr.Status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Status)
	}
}
