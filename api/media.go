package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"chat-pulse/errors"
)

const maxUploadBytes = 32 << 20 // 32 MB

// MediaStore persists uploaded attachments on disk. The content type is
// sniffed from the bytes, never trusted from the request.
type MediaStore struct {
	dir string
	log *slog.Logger
}

func NewMediaStore(dir string, log *slog.Logger) (*MediaStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	return &MediaStore{dir: dir, log: log}, nil
}

type Upload struct {
	URL       string `json:"url"`
	MediaType string `json:"mediaType"`
	Size      int64  `json:"size"`
}

// Save reads the "file" part of a multipart request, sniffs its type and
// writes it under a random name. Only image, video and audio payloads
// are accepted.
func (m *MediaStore) Save(r *http.Request) (Upload, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return Upload{}, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return Upload{}, fmt.Errorf("%w: missing file part", errors.ErrInvalidPayload)
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return Upload{}, fmt.Errorf("failed to read upload: %w", err)
	}

	mtype := mimetype.Detect(data)
	if !allowedMediaType(mtype.String()) {
		return Upload{}, fmt.Errorf("%w: unsupported media type %s", errors.ErrInvalidPayload, mtype.String())
	}

	name := uuid.NewString() + mtype.Extension()
	path := filepath.Join(m.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Upload{}, fmt.Errorf("failed to store upload: %w", err)
	}

	m.log.Info("media stored", "name", name, "type", mtype.String(), "size", len(data))
	return Upload{
		URL:       "/media/" + name,
		MediaType: mtype.String(),
		Size:      int64(len(data)),
	}, nil
}

// FileHandler serves stored media back under /media/.
func (m *MediaStore) FileHandler() http.Handler {
	return http.StripPrefix("/media/", http.FileServer(http.Dir(m.dir)))
}

func allowedMediaType(mime string) bool {
	return strings.HasPrefix(mime, "image/") ||
		strings.HasPrefix(mime, "video/") ||
		strings.HasPrefix(mime, "audio/")
}
