// Package storage persists user-uploaded avatar images on local disk and
// serves them as public URLs through the HTTP server's static route.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// MaxAvatarSize is the largest accepted upload (5MB).
const MaxAvatarSize int64 = 5 << 20

// AvatarStore saves avatar files under a directory and maps them to URLs.
type AvatarStore struct {
	dir     string
	baseURL string
}

// NewAvatarStore creates the upload directory if needed.
func NewAvatarStore(dir, baseURL string) (*AvatarStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &AvatarStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory files are stored in, for static serving.
func (s *AvatarStore) Dir() string {
	return s.dir
}

// Save writes the uploaded file and returns its public URL. The stored name
// is randomized so a re-upload never collides with a cached URL.
func (s *AvatarStore) Save(userID, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}

	name := fmt.Sprintf("%s_%s%s", userID, uuid.New().String()[:8], ext)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(r, MaxAvatarSize)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.baseURL + "/uploads/" + name, nil
}

// Remove deletes the file behind a previously issued URL. Unknown or
// already-deleted files are not an error.
func (s *AvatarStore) Remove(url string) error {
	idx := strings.LastIndex(url, "/uploads/")
	if idx < 0 {
		return nil
	}
	name := url[idx+len("/uploads/"):]
	// Reject anything that could escape the upload dir
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
