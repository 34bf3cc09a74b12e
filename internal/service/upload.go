package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"github.com/bug-createdme/2share/internal/apperror"
)

// DefaultMaxUploadBytes bounds a single upload.
const DefaultMaxUploadBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadService stores images under content-addressed names, so re-uploading the same
// file returns the same URL and never writes twice.
type UploadService struct {
	dir       string
	urlPrefix string
	maxBytes  int64
	logger    *slog.Logger
}

// NewUploadService stores files in dir and returns URLs under urlPrefix (e.g. "/uploads").
func NewUploadService(dir, urlPrefix string, maxBytes int64, logger *slog.Logger) (*UploadService, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("service/upload: creating %s: %w", dir, err)
	}
	return &UploadService{dir: dir, urlPrefix: urlPrefix, maxBytes: maxBytes, logger: logger}, nil
}

// Dir is the directory served at the URL prefix.
func (s *UploadService) Dir() string { return s.dir }

// MaxBytes is the upload size limit.
func (s *UploadService) MaxBytes() int64 { return s.maxBytes }

// Save stores the image read from r and returns its public URL. The name is the
// blake2b-256 digest of the content plus an extension taken from the sniffed type;
// filename is only logged.
func (s *UploadService) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("service/upload: reading %s: %w", filename, err)
	}
	if len(data) == 0 {
		return "", apperror.ValidationFailed("file", "file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return "", apperror.ValidationFailed("file",
			fmt.Sprintf("file must be %d bytes or less", s.maxBytes))
	}

	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return "", apperror.ValidationFailed("file", "only PNG, JPEG, GIF and WebP images are accepted")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sum := blake2b.Sum256(data)
	name := hex.EncodeToString(sum[:]) + ext
	dst := filepath.Join(s.dir, name)

	if _, err := os.Stat(dst); err == nil {
		return path.Join(s.urlPrefix, name), nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("service/upload: checking %s: %w", name, err)
	}

	if err := writeAtomic(s.dir, dst, data); err != nil {
		return "", fmt.Errorf("service/upload: storing %s: %w", name, err)
	}

	s.logger.Info("upload stored",
		slog.String("name", name),
		slog.String("original", filename),
		slog.Int("bytes", len(data)),
	)
	return path.Join(s.urlPrefix, name), nil
}

func writeAtomic(dir, dst string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
