package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/bug-createdme/2share/internal/apperror"
)

type Uploader interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	MaxBytes() int64
}

// multipartOverhead allows for the form framing around the file itself.
const multipartOverhead = 64 << 10

type UploadHandler struct {
	uploads Uploader
	logger  *slog.Logger
}

func NewUploadHandler(uploads Uploader, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, logger: logger}
}

// HandleUpload serves POST /api/uploads. The image is the multipart field "file"; the
// response is {"url": ...}.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxBytes()+multipartOverhead)

	f, hdr, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, apperror.ValidationFailed("file", "file is too large"))
			return
		}
		writeError(w, apperror.ValidationFailed("file", "multipart field \"file\" is required"))
		return
	}
	defer f.Close()

	url, err := h.uploads.Save(r.Context(), hdr.Filename, f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
