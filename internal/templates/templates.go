// Package templates provides the code generation templates and their function map.
package templates

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"

	"github.com/example/tablegen/internal/core/table"
	"github.com/example/tablegen/internal/ports/secondary"
)

//go:embed codegen
var codegenTemplates embed.FS

// Store implements secondary.TemplateStore over a template tree laid out as
// gocode/*.tpl and vue/*.tpl.
type Store struct {
	fsys fs.FS
}

// NewStore returns the embedded templates, or the templates below dir when
// dir is set.
func NewStore(dir string) (*Store, error) {
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open template dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("template dir %s is not a directory", dir)
		}
		return &Store{fsys: os.DirFS(dir)}, nil
	}

	sub, err := fs.Sub(codegenTemplates, "codegen")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded templates: %w", err)
	}
	return &Store{fsys: sub}, nil
}

// NewStoreFS returns a store reading from fsys.
func NewStoreFS(fsys fs.FS) *Store {
	return &Store{fsys: fsys}
}

// Load returns the body of the template with the given identifier.
func (s *Store) Load(ctx context.Context, templateID string) (string, error) {
	if !fs.ValidPath(templateID) {
		return "", fmt.Errorf("invalid template id %q", templateID)
	}
	content, err := fs.ReadFile(s.fsys, templateID)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// TemplateFuncs returns the template function map for code templates.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"toLower": strings.ToLower,
		"toUpper": strings.ToUpper,
		"pascal":  table.ToPascalCase,
		"camel":   table.ToCamelCase,
		"snake":   table.ToSnakeCase,
		"kebab":   table.ToKebabCase,
		"join":    strings.Join,
		"add":     func(a, b int) int { return a + b },
		"sub":     func(a, b int) int { return a - b },
		"nonZero": nonZero,
	}
}

// nonZero returns a Go expression testing expr, of type goType, against its zero value.
// e.g., ("req.Status", "int") -> "req.Status != 0"
func nonZero(expr, goType string) string {
	switch goType {
	case "string":
		return expr + ` != ""`
	case "bool":
		return expr
	case "time.Time":
		return "!" + expr + ".IsZero()"
	default:
		return expr + " != 0"
	}
}

// Ensure Store implements the interface.
var _ secondary.TemplateStore = (*Store)(nil)
