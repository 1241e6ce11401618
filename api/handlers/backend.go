package handlers

import (
	"context"
	"io"

	"github.com/richochetclementine1315/Quill/core/domain"
	"github.com/richochetclementine1315/Quill/quill"
)

// Backend is the part of the Quill client the gateway serves
type Backend interface {
	Register(ctx context.Context, req domain.RegisterRequest, opts ...quill.CallOption) (*domain.AuthResponse, error)
	Login(ctx context.Context, req domain.LoginRequest, opts ...quill.CallOption) (*domain.AuthResponse, error)
	ListPosts(ctx context.Context, page int, opts ...quill.CallOption) (*domain.PostPage, error)
	GetPost(ctx context.Context, id uint, opts ...quill.CallOption) (*domain.Post, error)
	CreatePost(ctx context.Context, input domain.PostInput, opts ...quill.CallOption) (*domain.CreatePostResponse, error)
	UpdatePost(ctx context.Context, id uint, input domain.PostInput, opts ...quill.CallOption) (*domain.Post, error)
	DeletePost(ctx context.Context, id uint, opts ...quill.CallOption) (*domain.MessageResponse, error)
	ListMyPosts(ctx context.Context, opts ...quill.CallOption) ([]domain.Post, error)
	UploadImage(ctx context.Context, filename string, r io.Reader, opts ...quill.CallOption) (*domain.UploadResult, error)
	Probe(ctx context.Context) bool
	Awake() (awake, resolved bool)
	ResetProbe()
}

var _ Backend = (*quill.Client)(nil)
