// Package storage keeps uploaded event images on the local filesystem and
// hands out their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidKey is returned for object keys that escape the store root.
var ErrInvalidKey = errors.New("invalid object key")

// PublicPrefix is the URL path under which stored objects are served.
const PublicPrefix = "/uploads/"

// FileStore writes objects below a root directory.
type FileStore struct {
	root    string
	baseURL string
}

// NewFileStore creates root if needed. baseURL is the externally visible
// origin, e.g. "https://portal.example.edu".
func NewFileStore(root, baseURL string) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the directory objects are written to.
func (s *FileStore) Root() string { return s.root }

// Put stores r under key and returns its public URL. The object is written
// to a temporary file first so readers never see a partial image.
func (s *FileStore) Put(ctx context.Context, key, _ string, r io.Reader) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != key {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp object: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("publish object: %w", err)
	}
	return s.URL(clean), nil
}

// URL returns the public URL of key.
func (s *FileStore) URL(key string) string {
	u := &url.URL{Path: PublicPrefix + key}
	return s.baseURL + u.EscapedPath()
}
