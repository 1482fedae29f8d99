// Package blob provides content-addressed storage for source and
// normalized icon images ({root}/{sha256}.{ext}).
package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// MaxImageBytes is the maximum size of a single stored image (10 MB).
const MaxImageBytes = 10 << 20

// validBlobKey matches keys produced by Put: 64 hex chars + known extension.
var validBlobKey = regexp.MustCompile(`^[a-f0-9]{64}\.(png|jpg|gif|webp|bmp|ico)$`)

// ErrNotFound is returned by Get for a well-formed key with no blob.
var ErrNotFound = errors.New("blob not found")

// Store is the interface for icon blob storage.
type Store interface {
	Put(data []byte, mediaType string) (key string, err error)
	Get(key string) ([]byte, error)
	Delete(key string) error
}

// FileStore stores blobs as files in a single directory.
type FileStore struct {
	root string
}

// NewFileStore creates a blob store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.root, key)
}

// Put writes image data to the store and returns a content-addressed key.
func (s *FileStore) Put(data []byte, mediaType string) (string, error) {
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("image too large: %d bytes (max %d)", len(data), MaxImageBytes)
	}

	ext := ExtForMediaType(mediaType)
	if ext == "" {
		return "", fmt.Errorf("unsupported media type: %s", mediaType)
	}

	hash := sha256.Sum256(data)
	key := hex.EncodeToString(hash[:]) + ext
	final := s.path(key)

	// Content-addressed dedup: skip if exists
	if _, err := os.Stat(final); err == nil {
		return key, nil
	}

	if err := os.MkdirAll(s.root, 0700); err != nil {
		return "", err
	}

	// Atomic write: temp file then rename
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	tmp.Close()
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return key, nil
}

// Get reads a blob by key. The key is validated to prevent path traversal.
func (s *FileStore) Get(key string) ([]byte, error) {
	if !validBlobKey.MatchString(key) {
		return nil, fmt.Errorf("invalid blob key: %q", key)
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return data, err
}

// Delete removes a blob. Deleting a missing blob is not an error, since
// identical images share one key and may already have been removed.
func (s *FileStore) Delete(key string) error {
	if !validBlobKey.MatchString(key) {
		return fmt.Errorf("invalid blob key: %q", key)
	}
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ExtForMediaType returns the file extension for a given MIME type.
func ExtForMediaType(mediaType string) string {
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	case "image/x-icon", "image/vnd.microsoft.icon":
		return ".ico"
	default:
		return ""
	}
}
