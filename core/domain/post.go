// ABOUTME: Post domain model mirrors the blog payloads served by the Quill backend
// ABOUTME: Provides the page envelope returned by the paginated listing and input validation

package domain

import (
	"errors"
	"strings"
)

// Post is a blog post as returned by the backend
type Post struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Desc   string `json:"desc"`
	Image  string `json:"image"`
	UserID uint   `json:"user_id"`
	User   User   `json:"user"`
}

// PostInput carries the writable fields of a post
type PostInput struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
	Image string `json:"image,omitempty"`
}

// Validate checks the fields the backend cannot accept empty
func (p PostInput) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("title cannot be empty")
	}
	return nil
}

// PageMeta describes where a page sits in the full listing
type PageMeta struct {
	Page     int   `json:"page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// PostPage is one page of the public listing
type PostPage struct {
	Data []Post   `json:"data"`
	Meta PageMeta `json:"meta"`
}

// HasNext reports whether another page follows this one
func (p *PostPage) HasNext() bool {
	return p.Meta.Page < p.Meta.LastPage
}

// PostEnvelope wraps a single post in the detail response
type PostEnvelope struct {
	Data Post `json:"data"`
}

// CreatePostResponse is returned after a post is created
type CreatePostResponse struct {
	Message string `json:"message"`
	Post    Post   `json:"post"`
}

// MessageResponse is the generic acknowledgement body
type MessageResponse struct {
	Message string `json:"message"`
}

// UploadResult holds the public URL of an uploaded image
type UploadResult struct {
	URL string `json:"url"`
}
