// Package servicetest provides test doubles for the service layer.
package servicetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deppfellow/go-posts/internal/model/post"
	"github.com/deppfellow/go-posts/internal/repository"
)

// MemoryPostStore is an in-memory PostStore with the same observable
// behavior as the SQL repository: sequential ids, id ordering,
// case-insensitive term matching and repository.ErrPostNotFound.
type MemoryPostStore struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]post.Post

	// Now supplies timestamps; tests replace it to control time.
	Now func() time.Time

	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryPostStore() *MemoryPostStore {
	return &MemoryPostStore{
		nextID: 1,
		posts:  make(map[int64]post.Post),
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Remove deletes a post behind the service's back, as a concurrent request would.
func (m *MemoryPostStore) Remove(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, id)
}

func (m *MemoryPostStore) CreatePost(_ context.Context, payload *post.CreatePostPayload) (*post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	now := m.Now()
	p := post.Post{
		Title:    payload.Title,
		Content:  payload.Content,
		Category: payload.Category,
		Tags:     append([]string(nil), payload.Tags...),
	}
	p.ID = m.nextID
	p.CreatedAt = now
	p.UpdatedAt = now

	m.posts[p.ID] = p
	m.nextID++

	return clonePost(p), nil
}

func (m *MemoryPostStore) GetPostByID(_ context.Context, id int64) (*post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	p, ok := m.posts[id]
	if !ok {
		return nil, fmt.Errorf("post_id=%d: %w", id, repository.ErrPostNotFound)
	}
	return clonePost(p), nil
}

func (m *MemoryPostStore) ListPosts(_ context.Context, term string) ([]post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	needle := strings.ToLower(term)
	result := make([]post.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Content), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle) {
			result = append(result, *clonePost(p))
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MemoryPostStore) UpdatePost(_ context.Context, payload *post.UpdatePostPayload) (*post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	p, ok := m.posts[payload.ID]
	if !ok {
		return nil, fmt.Errorf("post_id=%d: %w", payload.ID, repository.ErrPostNotFound)
	}

	if payload.Title != nil {
		p.Title = *payload.Title
	}
	if payload.Content != nil {
		p.Content = *payload.Content
	}
	if payload.Category != nil {
		p.Category = *payload.Category
	}
	if payload.Tags != nil {
		p.Tags = append([]string(nil), (*payload.Tags)...)
	}
	p.UpdatedAt = m.Now()

	m.posts[p.ID] = p
	return clonePost(p), nil
}

func (m *MemoryPostStore) DeletePost(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	if _, ok := m.posts[id]; !ok {
		return fmt.Errorf("post_id=%d: %w", id, repository.ErrPostNotFound)
	}
	delete(m.posts, id)
	return nil
}

func clonePost(p post.Post) *post.Post {
	p.Tags = append([]string(nil), p.Tags...)
	return &p
}
