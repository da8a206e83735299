// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/tablegen/internal/apperr"
	"github.com/example/tablegen/internal/ports/secondary"
)

// FileWriter implements secondary.FileWriter by writing generated files
// below a root directory.
type FileWriter struct{}

// NewFileWriter creates a new filesystem file writer.
func NewFileWriter() *FileWriter {
	return &FileWriter{}
}

// WriteFiles writes files below root and returns the absolute paths written.
// Every path is checked before anything is written, so a file escaping root
// aborts the whole call.
func (w *FileWriter) WriteFiles(ctx context.Context, root string, files []secondary.GeneratedFile) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output root: %w", err)
	}

	targets := make([]string, len(files))
	for i, f := range files {
		target, err := confine(absRoot, f.Path)
		if err != nil {
			return nil, err
		}
		targets[i] = target
	}

	written := make([]string, 0, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		if err := os.MkdirAll(filepath.Dir(targets[i]), 0755); err != nil {
			return written, fmt.Errorf("failed to create directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(targets[i], []byte(f.Content), 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
		written = append(written, targets[i])
	}

	return written, nil
}

// confine joins rel onto root and rejects results outside root.
func confine(root, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) {
		return "", apperr.Validation("write files", "invalid generated path %q", rel)
	}

	target := filepath.Join(root, filepath.FromSlash(rel))
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", apperr.Validation("write files", "generated path %q escapes %s", rel, root)
	}
	return target, nil
}

// Ensure FileWriter implements the interface.
var _ secondary.FileWriter = (*FileWriter)(nil)
