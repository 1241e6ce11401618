package handlers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/richochetclementine1315/Quill/core/domain"
	"github.com/richochetclementine1315/Quill/quill"
)

// maxUploadSize bounds the image accepted from the browser
const maxUploadSize = 10 << 20

// UploadHandler relays image uploads
type UploadHandler struct {
	backend Backend
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(backend Backend) *UploadHandler {
	return &UploadHandler{backend: backend}
}

// RegisterRoutes registers the upload route
func (h *UploadHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:  "uploadImage",
		Method:       http.MethodPost,
		Path:         "/api/upload-image",
		Summary:      "Upload an image",
		Description:  "Forwards the multipart \"image\" file to the backend and returns its public URL",
		Tags:         []string{"Uploads"},
		MaxBodyBytes: maxUploadSize + 1<<20,
	}, h.Upload)
}

// UploadInput defines the input for the Upload operation
type UploadInput struct {
	IdempotencyKey string `header:"Idempotency-Key"`
	RawBody        multipart.Form
}

// Upload reads the "image" form file and forwards it to the backend
func (h *UploadHandler) Upload(ctx context.Context, input *UploadInput) (*ResultOutput[domain.UploadResult], error) {
	files := input.RawBody.File["image"]
	if len(files) == 0 {
		return nil, huma.Error400BadRequest("No file uploaded")
	}
	header := files[0]
	if header.Size > maxUploadSize {
		return nil, huma.NewError(http.StatusRequestEntityTooLarge, "Image is larger than 10MB")
	}

	file, err := header.Open()
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid multipart form", err)
	}
	defer file.Close()

	var info quill.ResultInfo
	resp, err := h.backend.UploadImage(ctx, header.Filename, file, callOptions(input.IdempotencyKey, &info)...)
	if err != nil {
		return nil, toHumaError(err)
	}
	return newResult(info, *resp), nil
}
