package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/go-posts/internal/config"
	"github.com/deppfellow/go-posts/internal/errs"
	"github.com/deppfellow/go-posts/internal/handler"
	"github.com/deppfellow/go-posts/internal/model/post"
	"github.com/deppfellow/go-posts/internal/server"
	"github.com/deppfellow/go-posts/internal/service"
	"github.com/deppfellow/go-posts/internal/service/servicetest"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()

	logger := zerolog.Nop()
	s := &server.Server{Config: config.DefaultConfig(), Logger: &logger}
	services := &service.Services{Post: service.NewPostService(s, servicetest.NewMemoryPostStore())}

	return NewRouter(s, handler.NewHandlers(s, services))
}

func do(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func createPost(t *testing.T, e *echo.Echo, title, content, category string) post.Post {
	t.Helper()

	body := fmt.Sprintf(`{"title":%q,"content":%q,"category":%q,"tags":["x"]}`, title, content, category)
	rec := do(t, e, http.MethodPost, "/posts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode[post.Post](t, rec)
}

func TestPosts_EndToEnd(t *testing.T) {
	e := newTestRouter(t)

	created := createPost(t, e, "A", "B", "C")

	rec := do(t, e, http.MethodGet, fmt.Sprintf("/posts/%d", created.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decode[post.Post](t, rec); got.Title != "A" || got.ID != created.ID {
		t.Errorf("unexpected post %+v", got)
	}

	rec = do(t, e, http.MethodDelete, fmt.Sprintf("/posts/%d", created.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", rec.Code)
	}
	want := fmt.Sprintf("Post with ID %d deleted successfully", created.ID)
	if got := decode[post.DeletedResponse](t, rec); got.Message != want {
		t.Errorf("expected %q, got %q", want, got.Message)
	}

	rec = do(t, e, http.MethodGet, fmt.Sprintf("/posts/%d", created.ID), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
	body := decode[errs.HTTPError](t, rec)
	if body.Code != "POST_NOT_FOUND" || body.Message != fmt.Sprintf("Post with ID %d not found", created.ID) {
		t.Errorf("unexpected error body %+v", body)
	}
}

func TestPosts_CreateValidation(t *testing.T) {
	e := newTestRouter(t)

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"empty tags", `{"title":"A","content":"B","category":"C","tags":[]}`, "tags"},
		{"missing tags", `{"title":"A","content":"B","category":"C"}`, "tags"},
		{"empty title", `{"title":"","content":"B","category":"C","tags":["x"]}`, "title"},
		{"missing content", `{"title":"A","category":"C","tags":["x"]}`, "content"},
		{"empty tag element", `{"title":"A","content":"B","category":"C","tags":[""]}`, "tags[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, http.MethodPost, "/posts", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}

			body := decode[errs.HTTPError](t, rec)
			found := false
			for _, fe := range body.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected a field error for %q, got %+v", tt.wantField, body.Errors)
			}
		})
	}

	rec := do(t, e, http.MethodPost, "/posts", `{"title":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed JSON, got %d", rec.Code)
	}

	createPost(t, e, "A", "B", "C")
}

func TestPosts_InvalidID(t *testing.T) {
	e := newTestRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := do(t, e, method, "/posts/abc", `{"title":"x"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s /posts/abc: expected 400, got %d", method, rec.Code)
		}
	}
}

func TestPosts_UnknownIDIsNotFound(t *testing.T) {
	e := newTestRouter(t)
	createPost(t, e, "A", "B", "C")

	tests := []struct {
		method string
		id     string
		body   string
	}{
		{http.MethodGet, "0", ""},
		{http.MethodGet, "-3", ""},
		{http.MethodGet, "999999", ""},
		{http.MethodPut, "0", `{"title":"New"}`},
		{http.MethodDelete, "-1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.id, func(t *testing.T) {
			rec := do(t, e, tt.method, "/posts/"+tt.id, tt.body)
			if rec.Code != http.StatusNotFound {
				t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
			}

			body := decode[errs.HTTPError](t, rec)
			want := fmt.Sprintf("Post with ID %s not found", tt.id)
			if body.Code != "POST_NOT_FOUND" || body.Message != want {
				t.Errorf("unexpected error body %+v", body)
			}
		})
	}
}

func TestPosts_Search(t *testing.T) {
	e := newTestRouter(t)

	tech := createPost(t, e, "Tech Post", "Content about things", "News")
	createPost(t, e, "Another Post", "Random content", "Lifestyle")
	gadgets := createPost(t, e, "Gadgets", "Reviews", "Technology")

	rec := do(t, e, http.MethodGet, "/posts?term=tech", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	got := decode[[]post.Post](t, rec)
	if len(got) != 2 || got[0].ID != tech.ID || got[1].ID != gadgets.ID {
		t.Errorf("unexpected search result %+v", got)
	}

	rec = do(t, e, http.MethodGet, "/posts", "")
	if all := decode[[]post.Post](t, rec); len(all) != 3 {
		t.Errorf("expected 3 posts, got %d", len(all))
	}

	rec = do(t, e, http.MethodGet, "/posts?term=zzz", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected an empty JSON array, got %s", rec.Body.String())
	}
}

func TestPosts_Update(t *testing.T) {
	e := newTestRouter(t)
	created := createPost(t, e, "Old", "Body", "Cat")
	target := fmt.Sprintf("/posts/%d", created.ID)

	rec := do(t, e, http.MethodPut, target, `{"title":"New"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decode[post.Post](t, rec)
	if updated.ID != created.ID || updated.Title != "New" || updated.Content != "Body" || updated.Category != "Cat" {
		t.Errorf("unexpected update result %+v", updated)
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Errorf("updatedAt went backwards: %s < %s", updated.UpdatedAt, created.UpdatedAt)
	}

	if rec := do(t, e, http.MethodPut, target, `{"tags":[]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty tags, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodPut, target, `{"category":""}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty category, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodPut, "/posts/424242", `{"title":"x"}`); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	e := newTestRouter(t)

	rec := do(t, e, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body := decode[errs.HTTPError](t, rec); body.Message != "Route not found" {
		t.Errorf("unexpected body %+v", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id on every response")
	}
}
