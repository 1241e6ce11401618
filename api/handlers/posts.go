// ABOUTME: Post handlers for the Huma gateway API
// ABOUTME: Serves the public listing and the authenticated post operations

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/richochetclementine1315/Quill/core/domain"
	"github.com/richochetclementine1315/Quill/quill"
)

// PostsHandler handles post endpoints
type PostsHandler struct {
	backend Backend
}

// NewPostsHandler creates a new posts handler
func NewPostsHandler(backend Backend) *PostsHandler {
	return &PostsHandler{backend: backend}
}

// RegisterRoutes registers the post routes under the backend's paths
func (h *PostsHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listPosts",
		Method:      http.MethodGet,
		Path:        "/api/allpost",
		Summary:     "List posts",
		Description: "Returns one page of the public post listing",
		Tags:        []string{"Posts"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "getPost",
		Method:      http.MethodGet,
		Path:        "/api/allpost/{id}",
		Summary:     "Get a post",
		Tags:        []string{"Posts"},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "createPost",
		Method:      http.MethodPost,
		Path:        "/api/post",
		Summary:     "Create a post",
		Description: "Publishes a post for the signed-in user. Only retried when an Idempotency-Key is sent.",
		Tags:        []string{"Posts"},
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "updatePost",
		Method:      http.MethodPut,
		Path:        "/api/updatepost/{id}",
		Summary:     "Update a post",
		Tags:        []string{"Posts"},
	}, h.Update)

	huma.Register(api, huma.Operation{
		OperationID: "deletePost",
		Method:      http.MethodDelete,
		Path:        "/api/deletepost/{id}",
		Summary:     "Delete a post",
		Tags:        []string{"Posts"},
	}, h.Delete)

	huma.Register(api, huma.Operation{
		OperationID: "listMyPosts",
		Method:      http.MethodGet,
		Path:        "/api/uniquepost",
		Summary:     "List the signed-in user's posts",
		Tags:        []string{"Posts"},
	}, h.Mine)
}

// ListPostsInput defines the input for the List operation
type ListPostsInput struct {
	Page int `query:"page" default:"1" minimum:"1" doc:"Page number, starting at 1"`
}

// PostIDInput identifies a single post
type PostIDInput struct {
	ID             int    `path:"id" minimum:"1" doc:"Post id"`
	IdempotencyKey string `header:"Idempotency-Key"`
}

// CreatePostInput defines the input for the Create operation
type CreatePostInput struct {
	IdempotencyKey string `header:"Idempotency-Key"`
	Body           domain.PostInput
}

// UpdatePostInput defines the input for the Update operation
type UpdatePostInput struct {
	ID             int    `path:"id" minimum:"1" doc:"Post id"`
	IdempotencyKey string `header:"Idempotency-Key"`
	Body           domain.PostInput
}

// List returns one page of posts
func (h *PostsHandler) List(ctx context.Context, input *ListPostsInput) (*ResultOutput[domain.PostPage], error) {
	var info quill.ResultInfo
	page, err := h.backend.ListPosts(ctx, input.Page, callOptions("", &info)...)
	if err != nil {
		return nil, toHumaError(err)
	}
	return newResult(info, *page), nil
}

// Get returns a single post in the backend's envelope
func (h *PostsHandler) Get(ctx context.Context, input *PostIDInput) (*ResultOutput[domain.PostEnvelope], error) {
	var info quill.ResultInfo
	post, err := h.backend.GetPost(ctx, uint(input.ID), callOptions("", &info)...)
	if err != nil {
		return nil, toHumaError(err)
	}
	return newResult(info, domain.PostEnvelope{Data: *post}), nil
}

// Create publishes a post. Browsers that send an Idempotency-Key get retries.
func (h *PostsHandler) Create(ctx context.Context, input *CreatePostInput) (*ResultOutput[domain.CreatePostResponse], error) {
	var info quill.ResultInfo
	resp, err := h.backend.CreatePost(ctx, input.Body, callOptions(input.IdempotencyKey, &info)...)
	if err != nil {
		return nil, toHumaError(err)
	}
	return newResult(info, *resp), nil
}

// Update replaces a post's fields
func (h *PostsHandler) Update(ctx context.Context, input *UpdatePostInput) (*ResultOutput[domain.Post], error) {
	var info quill.ResultInfo
	post, err := h.backend.UpdatePost(ctx, uint(input.ID), input.Body, callOptions(input.IdempotencyKey, &info)...)
	if err != nil {
		return nil, toHumaError(err)
	}
	return newResult(info, *post), nil
}

// Delete removes a post
func (h *PostsHandler) Delete(ctx context.Context, input *PostIDInput) (*ResultOutput[domain.MessageResponse], error) {
	var info quill.ResultInfo
	resp, err := h.backend.DeletePost(ctx, uint(input.ID), callOptions(input.IdempotencyKey, &info)...)
	if err != nil {
		return nil, toHumaError(err)
	}
	return newResult(info, *resp), nil
}

// Mine returns the posts of the signed-in user
func (h *PostsHandler) Mine(ctx context.Context, input *struct{}) (*ResultOutput[[]domain.Post], error) {
	var info quill.ResultInfo
	posts, err := h.backend.ListMyPosts(ctx, callOptions("", &info)...)
	if err != nil {
		return nil, toHumaError(err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return newResult(info, posts), nil
}
