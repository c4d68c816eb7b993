// Package post defines the Post entity and its request payloads.
package post

import "github.com/deppfellow/go-posts/internal/model"

// Post is a titled, categorized, tagged piece of content.
type Post struct {
	model.Base
	Title    string   `json:"title" db:"title"`
	Content  string   `json:"content" db:"content"`
	Category string   `json:"category" db:"category"`
	Tags     []string `json:"tags" db:"tags"`
}

// DeletedResponse acknowledges a successful delete.
type DeletedResponse struct {
	Message string `json:"message"`
}
