package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUploadFailed is a definite soft failure: storage unreachable or
// misconfigured. Callers show a corrective hint rather than crash the form.
var ErrUploadFailed = errors.New("image upload failed")

// Uploads stores product images under a bucket directory and hands back
// publicly fetchable URLs.
type Uploads struct {
	dir     string
	baseURL string
}

// NewUploads ensures the bucket directory exists.
func NewUploads(dir, baseURL string) (*Uploads, error) {
	if dir == "" {
		return nil, fmt.Errorf("uploads: empty bucket directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: create bucket dir: %w", err)
	}
	return &Uploads{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Store writes the image under a collision-resistant generated name:
// random token + timestamp + original extension.
func (u *Uploads) Store(originalName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".bin"
	}

	name := fmt.Sprintf("%s_%d%s", uuid.New().String()[:8], time.Now().UnixMilli(), ext)
	path := filepath.Join(u.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("uploads: write %s: %w", name, err)
	}
	return u.baseURL + "/" + name, nil
}

// Dir returns the bucket directory, served statically by the HTTP layer.
func (u *Uploads) Dir() string {
	return u.dir
}
