// Package render executes code templates against a generation context.
package render

import (
	"bytes"
	"context"
	"text/template"

	"github.com/example/tablegen/internal/apperr"
	"github.com/example/tablegen/internal/ports/secondary"
	"github.com/example/tablegen/internal/templates"
)

// Renderer implements secondary.TemplateRenderer with text/template.
// Unresolved map keys fail the render instead of printing "<no value>".
type Renderer struct {
	store secondary.TemplateStore
	funcs template.FuncMap
}

// NewRenderer creates a renderer loading templates from store.
func NewRenderer(store secondary.TemplateStore) *Renderer {
	return &Renderer{
		store: store,
		funcs: templates.TemplateFuncs(),
	}
}

// Render renders every template against data. Each template is parsed and
// executed on its own; the first failure discards all output.
func (r *Renderer) Render(ctx context.Context, templateIDs []string, data any) (map[string]string, error) {
	out := make(map[string]string, len(templateIDs))
	for _, id := range templateIDs {
		if err := ctx.Err(); err != nil {
			return nil, apperr.Render("render", id, err)
		}

		content, err := r.renderTemplate(ctx, id, data)
		if err != nil {
			return nil, apperr.Render("render", id, err)
		}
		out[id] = content
	}
	return out, nil
}

// renderTemplate renders one template.
func (r *Renderer) renderTemplate(ctx context.Context, id string, data any) (string, error) {
	tmplContent, err := r.store.Load(ctx, id)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(id).Option("missingkey=error").Funcs(r.funcs).Parse(tmplContent)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// Ensure Renderer implements the interface.
var _ secondary.TemplateRenderer = (*Renderer)(nil)
