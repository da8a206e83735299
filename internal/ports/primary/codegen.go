package primary

import "context"

// CodegenService defines the primary port for rendering and packaging code.
type CodegenService interface {
	// PreviewCode renders every template of a table. Keys are template ids
	// without the ".tpl" extension.
	PreviewCode(ctx context.Context, tableID int64) (map[string]string, error)

	// DownloadCode renders the given tables into one zip archive.
	DownloadCode(ctx context.Context, tableIDs []int64) (*Archive, error)

	// WriteCode renders a table and writes the files below a root directory.
	WriteCode(ctx context.Context, req WriteCodeRequest) (*WriteCodeResponse, error)
}

// Archive is a packaged download.
type Archive struct {
	Name        string // suggested filename
	ContentType string
	Path        string // published location
	Data        []byte
}

// WriteCodeRequest contains parameters for writing generated code to disk.
type WriteCodeRequest struct {
	TableID int64
	Root    string
}

// WriteCodeResponse lists the files that were written.
type WriteCodeResponse struct {
	Files []string
}
