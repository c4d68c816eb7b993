package post

import (
	"fmt"

	"github.com/deppfellow/go-posts/internal/validation"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ------------------------------------------------------------

type CreatePostPayload struct {
	Title    string   `json:"title" validate:"required"`
	Content  string   `json:"content" validate:"required"`
	Category string   `json:"category" validate:"required"`
	Tags     []string `json:"tags" validate:"required,min=1,dive,required"`
}

func (p *CreatePostPayload) Validate() error {
	return validate.Struct(p)
}

// ------------------------------------------------------------

// GetPostByIDPayload accepts any integer id; ids that match no row are a 404.
// Non-integer ids fail binding.
type GetPostByIDPayload struct {
	ID int64 `param:"id"`
}

func (p *GetPostByIDPayload) Validate() error {
	return nil
}

// ------------------------------------------------------------

// ListPostsQuery filters the listing. An empty Term returns every post.
type ListPostsQuery struct {
	Term string `query:"term"`
}

func (q *ListPostsQuery) Validate() error {
	return nil
}

// ------------------------------------------------------------

// UpdatePostPayload is a partial update: nil fields are left unchanged.
type UpdatePostPayload struct {
	ID       int64     `param:"id" json:"-"`
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
}

// Validate applies the create rules to every field that was supplied.
func (p *UpdatePostPayload) Validate() error {
	var errs validation.CustomValidationErrors

	for _, field := range []struct {
		name  string
		value *string
	}{
		{"title", p.Title},
		{"content", p.Content},
		{"category", p.Category},
	} {
		if field.value != nil && *field.value == "" {
			errs = append(errs, validation.CustomValidationError{Field: field.name, Message: "must not be empty"})
		}
	}

	if p.Tags != nil {
		if len(*p.Tags) == 0 {
			errs = append(errs, validation.CustomValidationError{Field: "tags", Message: "must contain at least 1 item"})
		}
		for i, tag := range *p.Tags {
			if tag == "" {
				errs = append(errs, validation.CustomValidationError{
					Field:   fmt.Sprintf("tags[%d]", i),
					Message: "must not be empty",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ------------------------------------------------------------

type DeletePostPayload struct {
	ID int64 `param:"id"`
}

func (p *DeletePostPayload) Validate() error {
	return nil
}
