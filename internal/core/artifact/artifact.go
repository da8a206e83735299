// Package artifact holds the fixed mapping between code templates and the
// files they produce.
package artifact

import (
	"fmt"
	"path"
	"strings"

	"github.com/example/tablegen/internal/core/table"
)

// Template identifiers.
const (
	TplModel     = "gocode/model.go.tpl"
	TplSchema    = "gocode/schema.go.tpl"
	TplService   = "gocode/service.go.tpl"
	TplRoute     = "gocode/route.go.tpl"
	TplAPI       = "vue/api.ts.tpl"
	TplEdit      = "vue/edit.vue.tpl"
	TplIndex     = "vue/index.vue.tpl"
	TplIndexTree = "vue/index-tree.vue.tpl"
)

// pathPatterns maps template ids to target paths; %s is the module name.
var pathPatterns = map[string]string{
	TplModel:     "server/model/%s.go",
	TplSchema:    "server/schema/%s.go",
	TplService:   "server/service/%s.go",
	TplRoute:     "server/router/%s.go",
	TplAPI:       "admin/src/api/%s.ts",
	TplEdit:      "admin/src/views/%s/edit.vue",
	TplIndex:     "admin/src/views/%s/index.vue",
	TplIndexTree: "admin/src/views/%s/index.vue",
}

// TemplateIDs returns the templates rendered for a generation mode, in a stable order.
func TemplateIDs(genTpl string) []string {
	index := TplIndex
	if genTpl == table.TplTree {
		index = TplIndexTree
	}
	return []string{TplModel, TplSchema, TplService, TplRoute, TplAPI, TplEdit, index}
}

// TargetPath returns the archive-relative path a template renders to.
func TargetPath(templateID, moduleName string) (string, error) {
	pattern, ok := pathPatterns[templateID]
	if !ok {
		return "", fmt.Errorf("no target path for template %q", templateID)
	}
	if !table.IsValidIdentifier(moduleName) {
		return "", fmt.Errorf("invalid module name %q", moduleName)
	}
	return path.Clean(fmt.Sprintf(pattern, moduleName)), nil
}

// PreviewKey strips the template extension: "vue/api.ts.tpl" -> "vue/api.ts".
func PreviewKey(templateID string) string {
	return strings.TrimSuffix(templateID, ".tpl")
}

// File is one rendered file ready for packaging.
type File struct {
	Path    string
	Content string
}

// Files maps rendered templates of one table to target files, ordered like ids.
func Files(ids []string, rendered map[string]string, moduleName string) ([]File, error) {
	files := make([]File, 0, len(ids))
	for _, id := range ids {
		content, ok := rendered[id]
		if !ok {
			return nil, fmt.Errorf("template %q was not rendered", id)
		}
		p, err := TargetPath(id, moduleName)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: p, Content: content})
	}
	return files, nil
}
