// Package archive packages generated files into zip archives.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/example/tablegen/internal/ports/secondary"
)

// maxNameAttempts bounds the suffixes tried when an archive name is taken.
const maxNameAttempts = 100

// ZipWriter implements secondary.ArchiveWriter. Each call writes a private
// temp file and publishes it under a name no other call holds.
type ZipWriter struct {
	dir string
	now func() time.Time
}

// NewZipWriter creates a zip writer publishing archives into dir.
func NewZipWriter(dir string) *ZipWriter {
	return &ZipWriter{dir: dir, now: time.Now}
}

// WriteArchive writes files into a new archive and publishes it atomically.
func (w *ZipWriter) WriteArchive(ctx context.Context, files []secondary.GeneratedFile) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(w.dir, ".tablegen-*.zip.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	now := w.now()
	zw := zip.NewWriter(tmp)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Path,
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			return "", fmt.Errorf("failed to add %s to archive: %w", f.Path, err)
		}
		if _, err := entry.Write([]byte(f.Content)); err != nil {
			return "", fmt.Errorf("failed to write %s to archive: %w", f.Path, err)
		}
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish archive: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close archive: %w", err)
	}

	return w.publish(tmpPath, now)
}

// publish links the finished temp file to the first free archive name.
// A link never replaces an existing file.
func (w *ZipWriter) publish(tmpPath string, now time.Time) (string, error) {
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		final := filepath.Join(w.dir, ArchiveName(now, attempt))
		err := os.Link(tmpPath, final)
		if err == nil {
			return final, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to publish archive: %w", err)
		}
	}
	return "", fmt.Errorf("failed to publish archive: no free name for %d", now.Unix())
}

// ArchiveName returns the archive file name for now. Attempts after the
// first get a numeric suffix.
func ArchiveName(now time.Time, attempt int) string {
	if attempt <= 1 {
		return fmt.Sprintf("tablegen-%d.zip", now.Unix())
	}
	return fmt.Sprintf("tablegen-%d-%d.zip", now.Unix(), attempt)
}

// Ensure ZipWriter implements the interface.
var _ secondary.ArchiveWriter = (*ZipWriter)(nil)
