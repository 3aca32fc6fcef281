package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local stores blobs on the local filesystem and serves them from the
// application's /storage route. Development backend.
type Local struct {
	baseDir string
	baseURL string
}

// NewLocal creates a local-disk blob store rooted at baseDir.
func NewLocal(baseDir, baseURL string) *Local {
	return &Local{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Put writes the blob under baseDir, creating parent directories as needed.
func (l *Local) Put(ctx context.Context, data []byte, key, contentType string) (*UploadResult, error) {
	path := filepath.Join(l.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write blob %s: %w", key, err)
	}

	return &UploadResult{
		Key: key,
		URL: l.baseURL + "/storage/" + key,
	}, nil
}

// Delete removes the blob file. A missing file counts as deleted.
func (l *Local) Delete(ctx context.Context, key string) error {
	path := filepath.Join(l.baseDir, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}
