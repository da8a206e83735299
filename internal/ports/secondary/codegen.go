package secondary

import "context"

// TemplateStore defines the secondary port for loading template bodies.
type TemplateStore interface {
	// Load returns the body of the template with the given identifier.
	Load(ctx context.Context, templateID string) (string, error)
}

// GeneratedFile is one rendered file with its archive-relative path.
type GeneratedFile struct {
	Path    string
	Content string
}

// ArchiveWriter defines the secondary port for packaging generated files.
type ArchiveWriter interface {
	// WriteArchive writes files into a new archive and publishes it atomically.
	// It returns the published path. Nothing is published on error.
	WriteArchive(ctx context.Context, files []GeneratedFile) (string, error)
}

// FileWriter defines the secondary port for writing generated files to disk.
type FileWriter interface {
	// WriteFiles writes files below root and returns the absolute paths written.
	WriteFiles(ctx context.Context, root string, files []GeneratedFile) ([]string, error)
}

// TemplateRenderer defines the secondary port for rendering templates.
type TemplateRenderer interface {
	// Render renders every template against data and returns the output keyed
	// by template id. Any failure returns no output.
	Render(ctx context.Context, templateIDs []string, data any) (map[string]string, error)
}
