// Package archive stores exported reports on the local filesystem or in S3.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hamudi896/LagerAppENV/internal/port"
)

var _ port.ReportArchive = (*FSArchive)(nil)

// FSArchive maps keys to files under a root directory.
type FSArchive struct {
	root string
}

func NewFSArchive(root string) (*FSArchive, error) {
	if root == "" {
		root = "./exports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FSArchive{root: root}, nil
}

// sanitizeKey keeps keys relative and inside the root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key contains '..'")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key")
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}

func (a *FSArchive) Store(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	path := filepath.Join(a.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", clean, err)
	}
	return path, nil
}
