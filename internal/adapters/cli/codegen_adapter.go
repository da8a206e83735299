package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"

	"github.com/example/tablegen/internal/ports/primary"
)

// CodegenAdapter is a thin adapter that translates CLI operations to CodegenService calls.
type CodegenAdapter struct {
	service primary.CodegenService
	out     io.Writer
}

// NewCodegenAdapter creates a new CodegenAdapter with the given service.
func NewCodegenAdapter(service primary.CodegenService, out io.Writer) *CodegenAdapter {
	return &CodegenAdapter{
		service: service,
		out:     out,
	}
}

// Preview prints the rendered files of a table. When only is set, just that
// file is printed without a header.
func (a *CodegenAdapter) Preview(ctx context.Context, tableID int64, only string) error {
	files, err := a.service.PreviewCode(ctx, tableID)
	if err != nil {
		return err
	}

	if only != "" {
		content, ok := files[only]
		if !ok {
			return fmt.Errorf("no preview named %q (have: %v)", only, sortedKeys(files))
		}
		fmt.Fprint(a.out, content)
		return nil
	}

	header := color.New(color.FgCyan, color.Bold)
	for _, key := range sortedKeys(files) {
		fmt.Fprintf(a.out, "%s\n", header.Sprintf("==> %s <==", key))
		fmt.Fprintln(a.out, files[key])
	}
	return nil
}

// Download packages tables into an archive. When output is set the archive
// is also copied there.
func (a *CodegenAdapter) Download(ctx context.Context, tableIDs []int64, output string) error {
	archive, err := a.service.DownloadCode(ctx, tableIDs)
	if err != nil {
		return err
	}

	path := archive.Path
	if output != "" {
		if info, err := os.Stat(output); err == nil && info.IsDir() {
			output = filepath.Join(output, archive.Name)
		}
		if err := os.WriteFile(output, archive.Data, 0644); err != nil {
			return fmt.Errorf("failed to write archive: %w", err)
		}
		path = output
	}

	fmt.Fprintf(a.out, "%s Archive %s (%d bytes)\n", okMark, path, len(archive.Data))
	return nil
}

// Write renders a table into files below root.
func (a *CodegenAdapter) Write(ctx context.Context, tableID int64, root string) error {
	resp, err := a.service.WriteCode(ctx, primary.WriteCodeRequest{TableID: tableID, Root: root})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Wrote %d file(s)\n", okMark, len(resp.Files))
	for _, f := range resp.Files {
		fmt.Fprintf(a.out, "  %s\n", f)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
