package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/tablegen/internal/apperr"
	"github.com/example/tablegen/internal/core/artifact"
	"github.com/example/tablegen/internal/core/genctx"
	"github.com/example/tablegen/internal/core/table"
	"github.com/example/tablegen/internal/ports/primary"
	"github.com/example/tablegen/internal/ports/secondary"
)

// ArchiveContentType is the content type of downloads.
const ArchiveContentType = "application/zip"

// CodegenServiceImpl implements the CodegenService interface.
type CodegenServiceImpl struct {
	tableRepo   secondary.GenTableRepository
	columnRepo  secondary.GenColumnRepository
	renderer    secondary.TemplateRenderer
	archive     secondary.ArchiveWriter
	files       secondary.FileWriter
	logger      *slog.Logger
	packageName string
	now         func() time.Time
}

// NewCodegenService creates a new CodegenService with injected dependencies.
func NewCodegenService(
	tableRepo secondary.GenTableRepository,
	columnRepo secondary.GenColumnRepository,
	renderer secondary.TemplateRenderer,
	archive secondary.ArchiveWriter,
	files secondary.FileWriter,
	logger *slog.Logger,
	packageName string,
) *CodegenServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &CodegenServiceImpl{
		tableRepo:   tableRepo,
		columnRepo:  columnRepo,
		renderer:    renderer,
		archive:     archive,
		files:       files,
		logger:      logger,
		packageName: packageName,
		now:         time.Now,
	}
}

// PreviewCode renders every template of a table.
func (s *CodegenServiceImpl) PreviewCode(ctx context.Context, tableID int64) (map[string]string, error) {
	record, err := s.tableRepo.GetByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	ids, rendered, err := s.render(ctx, record)
	if err != nil {
		return nil, err
	}

	preview := make(map[string]string, len(ids))
	for _, id := range ids {
		preview[artifact.PreviewKey(id)] = rendered[id]
	}
	return preview, nil
}

// DownloadCode renders the given tables into one zip archive.
// Tables sharing a module name produce colliding paths; later tables are
// written after earlier ones.
func (s *CodegenServiceImpl) DownloadCode(ctx context.Context, tableIDs []int64) (*primary.Archive, error) {
	if len(tableIDs) == 0 {
		return nil, apperr.Validation("download", "no table ids given")
	}
	records, err := s.tableRepo.ListByIDs(ctx, tableIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tables: %w", err)
	}
	if missing := missingIDs(tableIDs, records); len(missing) > 0 {
		return nil, apperr.NotFound("download", "no tables with ids %v", missing)
	}

	var all []secondary.GeneratedFile
	for _, record := range records {
		files, err := s.generate(ctx, record)
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}

	path, err := s.archive.WriteArchive(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("failed to write archive: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	s.logger.InfoContext(ctx, "archive published", "path", path, "tables", len(records), "files", len(all))
	return &primary.Archive{
		Name:        filepath.Base(path),
		ContentType: ArchiveContentType,
		Path:        path,
		Data:        data,
	}, nil
}

// WriteCode renders a table and writes the files below a root directory.
func (s *CodegenServiceImpl) WriteCode(ctx context.Context, req primary.WriteCodeRequest) (*primary.WriteCodeResponse, error) {
	root := strings.TrimSpace(req.Root)
	if root == "" {
		return nil, apperr.Validation("write", "output directory is required")
	}
	record, err := s.tableRepo.GetByID(ctx, req.TableID)
	if err != nil {
		return nil, err
	}
	files, err := s.generate(ctx, record)
	if err != nil {
		return nil, err
	}

	written, err := s.files.WriteFiles(ctx, root, files)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "code written", "table", record.TableName, "root", root, "files", len(written))
	return &primary.WriteCodeResponse{Files: written}, nil
}

// generate renders a table and maps the output to target files.
func (s *CodegenServiceImpl) generate(ctx context.Context, record *secondary.GenTableRecord) ([]secondary.GeneratedFile, error) {
	ids, rendered, err := s.render(ctx, record)
	if err != nil {
		return nil, err
	}
	files, err := artifact.Files(ids, rendered, record.ModuleName)
	if err != nil {
		return nil, apperr.Validation("generate", "table %s: %v", record.TableName, err)
	}

	out := make([]secondary.GeneratedFile, len(files))
	for i, f := range files {
		out[i] = secondary.GeneratedFile{Path: f.Path, Content: f.Content}
	}
	return out, nil
}

// render builds the template context of a table and renders its templates.
func (s *CodegenServiceImpl) render(ctx context.Context, record *secondary.GenTableRecord) ([]string, map[string]string, error) {
	data, err := s.buildContext(ctx, record)
	if err != nil {
		return nil, nil, err
	}
	ids := artifact.TemplateIDs(record.GenTpl)
	rendered, err := s.renderer.Render(ctx, ids, data)
	if err != nil {
		return nil, nil, err
	}
	return ids, rendered, nil
}

func (s *CodegenServiceImpl) buildContext(ctx context.Context, record *secondary.GenTableRecord) (genctx.Context, error) {
	columns, err := s.columnRepo.ListByTableID(ctx, record.ID)
	if err != nil {
		return genctx.Context{}, fmt.Errorf("failed to list columns: %w", err)
	}

	var sub *genctx.SubTableInput
	if record.GenTpl == table.TplTree && record.SubTableName != "" {
		sub, err = s.loadSubTable(ctx, record)
		if err != nil {
			return genctx.Context{}, err
		}
	}

	return genctx.Build(tableInput(record), columnInputs(columns), sub, genctx.Options{
		PackageName: s.packageName,
		GenDate:     s.now().Format("2006-01-02 15:04:05"),
	}), nil
}

// loadSubTable loads the imported sub-table of a tree table.
func (s *CodegenServiceImpl) loadSubTable(ctx context.Context, record *secondary.GenTableRecord) (*genctx.SubTableInput, error) {
	subRecord, err := s.tableRepo.GetByName(ctx, record.SubTableName)
	if err != nil {
		return nil, err
	}
	subColumns, err := s.columnRepo.ListByTableID(ctx, subRecord.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-table columns: %w", err)
	}

	sub := &genctx.SubTableInput{
		TableName:  subRecord.TableName,
		EntityName: subRecord.EntityName,
		Columns:    columnInputs(subColumns),
	}
	found := false
	for _, c := range sub.Columns {
		if c.IsPk {
			sub.PrimaryKey = c
			found = true
			break
		}
	}
	if !found {
		return nil, apperr.Validation("generate", "sub-table %s has no primary key", subRecord.TableName)
	}
	return sub, nil
}

func missingIDs(want []int64, found []*secondary.GenTableRecord) []int64 {
	have := make(map[int64]bool, len(found))
	for _, r := range found {
		have[r.ID] = true
	}
	var missing []int64
	for _, id := range want {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

func tableInput(r *secondary.GenTableRecord) genctx.TableInput {
	return genctx.TableInput{
		ID:           r.ID,
		TableName:    r.TableName,
		TableComment: r.TableComment,
		EntityName:   r.EntityName,
		ModuleName:   r.ModuleName,
		FunctionName: r.FunctionName,
		AuthorName:   r.AuthorName,
		GenTpl:       r.GenTpl,
		SubTableName: r.SubTableName,
		SubTableFk:   r.SubTableFk,
		TreePrimary:  r.TreePrimary,
		TreeParent:   r.TreeParent,
		TreeName:     r.TreeName,
	}
}

func columnInputs(records []*secondary.GenColumnRecord) []genctx.ColumnInput {
	out := make([]genctx.ColumnInput, len(records))
	for i, c := range records {
		out[i] = genctx.ColumnInput{
			ColumnName:    c.ColumnName,
			ColumnComment: c.ColumnComment,
			ColumnType:    c.ColumnType,
			ColumnLength:  c.ColumnLength,
			FieldName:     c.FieldName,
			LogicalType:   c.LogicalType,
			HTMLType:      c.HTMLType,
			QueryType:     c.QueryType,
			DictType:      c.DictType,
			Sort:          c.Sort,
			IsPk:          c.IsPk,
			IsIncrement:   c.IsIncrement,
			IsRequired:    c.IsRequired,
			IsInsertable:  c.IsInsertable,
			IsEditable:    c.IsEditable,
			IsListable:    c.IsListable,
			IsQueryable:   c.IsQueryable,
		}
	}
	return out
}
