package handlers

import (
	"context"
	"io"

	"github.com/richochetclementine1315/Quill/core/domain"
	"github.com/richochetclementine1315/Quill/quill"
)

// mockBackend implements Backend with overridable functions
type mockBackend struct {
	RegisterFunc    func(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error)
	LoginFunc       func(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error)
	ListPostsFunc   func(ctx context.Context, page int) (*domain.PostPage, error)
	GetPostFunc     func(ctx context.Context, id uint) (*domain.Post, error)
	CreatePostFunc  func(ctx context.Context, input domain.PostInput) (*domain.CreatePostResponse, error)
	UpdatePostFunc  func(ctx context.Context, id uint, input domain.PostInput) (*domain.Post, error)
	DeletePostFunc  func(ctx context.Context, id uint) (*domain.MessageResponse, error)
	ListMyPostsFunc func(ctx context.Context) ([]domain.Post, error)
	UploadImageFunc func(ctx context.Context, filename string, r io.Reader) (*domain.UploadResult, error)
	ProbeFunc       func(ctx context.Context) bool

	awake, resolved bool
	resets          int
	lastOpts        []quill.CallOption
}

func (m *mockBackend) Register(ctx context.Context, req domain.RegisterRequest, opts ...quill.CallOption) (*domain.AuthResponse, error) {
	m.lastOpts = opts
	return m.RegisterFunc(ctx, req)
}

func (m *mockBackend) Login(ctx context.Context, req domain.LoginRequest, opts ...quill.CallOption) (*domain.AuthResponse, error) {
	m.lastOpts = opts
	return m.LoginFunc(ctx, req)
}

func (m *mockBackend) ListPosts(ctx context.Context, page int, opts ...quill.CallOption) (*domain.PostPage, error) {
	m.lastOpts = opts
	return m.ListPostsFunc(ctx, page)
}

func (m *mockBackend) GetPost(ctx context.Context, id uint, opts ...quill.CallOption) (*domain.Post, error) {
	m.lastOpts = opts
	return m.GetPostFunc(ctx, id)
}

func (m *mockBackend) CreatePost(ctx context.Context, input domain.PostInput, opts ...quill.CallOption) (*domain.CreatePostResponse, error) {
	m.lastOpts = opts
	return m.CreatePostFunc(ctx, input)
}

func (m *mockBackend) UpdatePost(ctx context.Context, id uint, input domain.PostInput, opts ...quill.CallOption) (*domain.Post, error) {
	m.lastOpts = opts
	return m.UpdatePostFunc(ctx, id, input)
}

func (m *mockBackend) DeletePost(ctx context.Context, id uint, opts ...quill.CallOption) (*domain.MessageResponse, error) {
	m.lastOpts = opts
	return m.DeletePostFunc(ctx, id)
}

func (m *mockBackend) ListMyPosts(ctx context.Context, opts ...quill.CallOption) ([]domain.Post, error) {
	m.lastOpts = opts
	return m.ListMyPostsFunc(ctx)
}

func (m *mockBackend) UploadImage(ctx context.Context, filename string, r io.Reader, opts ...quill.CallOption) (*domain.UploadResult, error) {
	m.lastOpts = opts
	return m.UploadImageFunc(ctx, filename, r)
}

func (m *mockBackend) Probe(ctx context.Context) bool {
	awake := m.ProbeFunc(ctx)
	m.awake, m.resolved = awake, true
	return awake
}

func (m *mockBackend) Awake() (bool, bool) {
	return m.awake, m.resolved
}

func (m *mockBackend) ResetProbe() {
	m.resets++
	m.awake, m.resolved = false, false
}
