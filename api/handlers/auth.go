// ABOUTME: Authentication handlers for the Huma gateway API
// ABOUTME: Registration and login pass through; the session cookie is relayed by middleware

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/richochetclementine1315/Quill/core/domain"
	"github.com/richochetclementine1315/Quill/quill"
)

// AuthHandler handles account endpoints
type AuthHandler struct {
	backend Backend
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(backend Backend) *AuthHandler {
	return &AuthHandler{backend: backend}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/register",
		Summary:     "Create an account",
		Tags:        []string{"Auth"},
	}, h.Register)

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/login",
		Summary:     "Sign in",
		Description: "Signs in and relays the backend's session cookie to the browser",
		Tags:        []string{"Auth"},
	}, h.Login)
}

// RegisterInput defines the input for the Register operation
type RegisterInput struct {
	Body domain.RegisterRequest
}

// LoginInput defines the input for the Login operation
type LoginInput struct {
	Body domain.LoginRequest
}

// Register creates an account
func (h *AuthHandler) Register(ctx context.Context, input *RegisterInput) (*ResultOutput[domain.AuthResponse], error) {
	var info quill.ResultInfo
	resp, err := h.backend.Register(ctx, input.Body, callOptions("", &info)...)
	if err != nil {
		return nil, toHumaError(err)
	}
	return newResult(info, *resp), nil
}

// Login signs in; the cookie the backend issues leaves through the session middleware
func (h *AuthHandler) Login(ctx context.Context, input *LoginInput) (*ResultOutput[domain.AuthResponse], error) {
	var info quill.ResultInfo
	resp, err := h.backend.Login(ctx, input.Body, callOptions("", &info)...)
	if err != nil {
		return nil, toHumaError(err)
	}
	return newResult(info, *resp), nil
}
