// Package app contains the application services that orchestrate business logic.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/example/tablegen/internal/apperr"
	"github.com/example/tablegen/internal/core/column"
	"github.com/example/tablegen/internal/core/merge"
	"github.com/example/tablegen/internal/core/table"
	"github.com/example/tablegen/internal/ports/primary"
	"github.com/example/tablegen/internal/ports/secondary"
)

// GenTableOptions are the configured values applied on import.
type GenTableOptions struct {
	TablePrefix string
	Author      string
}

// GenTableServiceImpl implements the GenTableService interface.
type GenTableServiceImpl struct {
	tableRepo  secondary.GenTableRepository
	columnRepo secondary.GenColumnRepository
	transactor secondary.Transactor
	catalog    secondary.SchemaCatalog
	logger     *slog.Logger
	opts       GenTableOptions
	locks      *tableLocks
}

// NewGenTableService creates a new GenTableService with injected dependencies.
func NewGenTableService(
	tableRepo secondary.GenTableRepository,
	columnRepo secondary.GenColumnRepository,
	transactor secondary.Transactor,
	catalog secondary.SchemaCatalog,
	logger *slog.Logger,
	opts GenTableOptions,
) *GenTableServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenTableServiceImpl{
		tableRepo:  tableRepo,
		columnRepo: columnRepo,
		transactor: transactor,
		catalog:    catalog,
		logger:     logger,
		opts:       opts,
		locks:      newTableLocks(),
	}
}

// ListDbTables lists live tables that can be imported.
func (s *GenTableServiceImpl) ListDbTables(ctx context.Context, req primary.ListDbTablesRequest) (*primary.DbTablePage, error) {
	limit, offset := pageBounds(req.Page, req.PageSize)
	total, rows, err := s.catalog.ListTables(ctx, secondary.CatalogFilter{
		TableName:    strings.TrimSpace(req.TableName),
		TableComment: strings.TrimSpace(req.TableComment),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, apperr.Catalog("list db tables", err)
	}

	page := &primary.DbTablePage{Total: total, Rows: make([]*primary.DbTable, len(rows))}
	for i, r := range rows {
		page.Rows[i] = &primary.DbTable{
			TableName:    r.TableName,
			TableComment: r.TableComment,
			CreateTime:   r.CreateTime,
			UpdateTime:   r.UpdateTime,
		}
	}
	return page, nil
}

// ListTables lists imported tables.
func (s *GenTableServiceImpl) ListTables(ctx context.Context, req primary.ListTablesRequest) (*primary.GenTablePage, error) {
	limit, offset := pageBounds(req.Page, req.PageSize)
	total, records, err := s.tableRepo.List(ctx, secondary.GenTableFilters{
		TableName:    strings.TrimSpace(req.TableName),
		TableComment: strings.TrimSpace(req.TableComment),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	page := &primary.GenTablePage{Total: total, Rows: make([]*primary.GenTable, len(records))}
	for i, r := range records {
		page.Rows[i] = recordToGenTable(r)
	}
	return page, nil
}

// GetTable retrieves an imported table with its columns.
func (s *GenTableServiceImpl) GetTable(ctx context.Context, tableID int64) (*primary.GenTableDetail, error) {
	record, err := s.tableRepo.GetByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	columns, err := s.columnRepo.ListByTableID(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	return toDetail(record, columns), nil
}

// importBatch is one table ready to be persisted.
type importBatch struct {
	table   *secondary.GenTableRecord
	columns []*secondary.GenColumnRecord
}

// ImportTables imports live tables as generator metadata.
// All catalog reads happen before the transaction; every write happens inside it.
func (s *GenTableServiceImpl) ImportTables(ctx context.Context, req primary.ImportTablesRequest) (*primary.ImportTablesResponse, error) {
	names, err := normalizeTableNames(req.TableNames)
	if err != nil {
		return nil, err
	}

	live, err := s.catalog.ListTablesByNames(ctx, names)
	if err != nil {
		return nil, apperr.Catalog("import", err)
	}
	if len(live) == 0 {
		return nil, apperr.NotFound("import", "no live tables match %s", strings.Join(names, ", "))
	}

	resolved := make([]string, len(live))
	for i, t := range live {
		resolved[i] = t.TableName
	}
	existing, err := s.tableRepo.ExistingNames(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to check imported tables: %w", err)
	}
	if len(existing) > 0 {
		return nil, apperr.Conflict("import", "already imported: %s", strings.Join(existing, ", "))
	}

	batches := make([]importBatch, 0, len(live))
	for _, t := range live {
		liveColumns, err := s.catalog.ListColumns(ctx, t.TableName)
		if err != nil {
			return nil, apperr.Catalog("import", err)
		}
		batches = append(batches, s.buildImport(t, liveColumns))
	}

	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		for _, b := range batches {
			if err := s.tableRepo.Create(ctx, b.table); err != nil {
				return err
			}
			for _, c := range b.columns {
				c.TableID = b.table.ID
			}
			if err := s.columnRepo.CreateBatch(ctx, b.columns); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Transaction("import", err)
	}

	resp := &primary.ImportTablesResponse{Tables: make([]*primary.GenTable, len(batches))}
	for i, b := range batches {
		resp.Tables[i] = recordToGenTable(b.table)
		s.logger.InfoContext(ctx, "table imported",
			"table", b.table.TableName,
			"table_id", b.table.ID,
			"columns", len(b.columns),
		)
	}
	return resp, nil
}

// buildImport derives the table and column records of one live table.
func (s *GenTableServiceImpl) buildImport(t *secondary.LiveTable, liveColumns []*secondary.LiveColumn) importBatch {
	names := table.DeriveNames(t.TableName, t.TableComment, s.opts.TablePrefix)
	record := &secondary.GenTableRecord{
		TableName:    t.TableName,
		TableComment: t.TableComment,
		EntityName:   names.EntityName,
		ModuleName:   names.ModuleName,
		FunctionName: names.FunctionName,
		AuthorName:   s.opts.Author,
		GenTpl:       table.TplCRUD,
	}

	columns := make([]*secondary.GenColumnRecord, len(liveColumns))
	for i, lc := range liveColumns {
		c := classifyLive(lc)
		columns[i] = columnRecord(0, merge.Column{
			ColumnName:     c.ColumnName,
			ColumnComment:  c.ColumnComment,
			ColumnType:     c.ColumnType,
			Sort:           lc.Position,
			IsPk:           c.IsPk,
			IsIncrement:    c.IsIncrement,
			Classification: c.Classification,
		})
	}
	return importBatch{table: record, columns: columns}
}

// SyncTable re-introspects an imported table and merges the live columns.
// Syncs of the same table are serialized.
func (s *GenTableServiceImpl) SyncTable(ctx context.Context, tableID int64) (*primary.SyncTableResponse, error) {
	unlock := s.locks.lock(tableID)
	defer unlock()

	record, err := s.tableRepo.GetByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	stored, err := s.columnRepo.ListByTableID(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	if len(stored) == 0 {
		return nil, apperr.Validation("sync", "table %s has no stored columns", record.TableName)
	}

	liveColumns, err := s.catalog.ListColumns(ctx, record.TableName)
	if err != nil {
		return nil, apperr.Catalog("sync", err)
	}
	if len(liveColumns) == 0 {
		return nil, apperr.Validation("sync", "live table %s has no columns", record.TableName)
	}

	storedByID := make(map[int64]*secondary.GenColumnRecord, len(stored))
	prev := make([]merge.StoredColumn, len(stored))
	for i, c := range stored {
		storedByID[c.ID] = c
		prev[i] = merge.StoredColumn{
			ID:           c.ID,
			ColumnName:   c.ColumnName,
			Sort:         c.Sort,
			HTMLType:     c.HTMLType,
			QueryType:    c.QueryType,
			DictType:     c.DictType,
			IsPk:         c.IsPk,
			IsRequired:   c.IsRequired,
			IsInsertable: c.IsInsertable,
			IsEditable:   c.IsEditable,
		}
	}
	live := make([]merge.LiveColumn, len(liveColumns))
	for i, lc := range liveColumns {
		live[i] = classifyLive(lc)
	}

	plan := merge.PlanSync(prev, live)
	resp := &primary.SyncTableResponse{TableID: tableID, Updated: []string{}, Added: []string{}, Removed: []string{}}

	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		for _, m := range plan.Updates {
			updated := columnRecord(tableID, m)
			updated.ID = m.ID
			updated.CreatedAt = storedByID[m.ID].CreatedAt
			if err := s.columnRepo.Update(ctx, updated); err != nil {
				return err
			}
			resp.Updated = append(resp.Updated, m.ColumnName)
		}

		if len(plan.Inserts) > 0 {
			inserts := make([]*secondary.GenColumnRecord, len(plan.Inserts))
			for i, m := range plan.Inserts {
				inserts[i] = columnRecord(tableID, m)
				resp.Added = append(resp.Added, m.ColumnName)
			}
			if err := s.columnRepo.CreateBatch(ctx, inserts); err != nil {
				return err
			}
		}

		if len(plan.DeleteIDs) > 0 {
			if err := s.columnRepo.DeleteByIDs(ctx, plan.DeleteIDs); err != nil {
				return err
			}
			for _, id := range plan.DeleteIDs {
				resp.Removed = append(resp.Removed, storedByID[id].ColumnName)
			}
		}

		return s.tableRepo.Touch(ctx, tableID)
	})
	if err != nil {
		return nil, apperr.Transaction("sync", err)
	}

	s.logger.InfoContext(ctx, "table synchronized",
		"table", record.TableName,
		"updated", len(resp.Updated),
		"added", len(resp.Added),
		"removed", len(resp.Removed),
	)
	return resp, nil
}

// EditTable applies manual edits to a table and its columns.
func (s *GenTableServiceImpl) EditTable(ctx context.Context, req primary.EditTableRequest) (*primary.GenTableDetail, error) {
	record, err := s.tableRepo.GetByID(ctx, req.TableID)
	if err != nil {
		return nil, err
	}
	columns, err := s.columnRepo.ListByTableID(ctx, req.TableID)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}

	genTpl := strings.TrimSpace(req.GenTpl)
	if genTpl == "" {
		genTpl = record.GenTpl
	}

	guardCtx := table.EditTableContext{
		TableID:      req.TableID,
		GenTpl:       genTpl,
		ModuleName:   req.ModuleName,
		EntityName:   req.EntityName,
		SubTableName: req.SubTableName,
		SubTableFk:   req.SubTableFk,
		TreePrimary:  req.TreePrimary,
		TreeParent:   req.TreeParent,
		TreeName:     req.TreeName,
	}
	byID := make(map[int64]*secondary.GenColumnRecord, len(columns))
	for _, c := range columns {
		byID[c.ID] = c
		guardCtx.ColumnNames = append(guardCtx.ColumnNames, c.ColumnName)
		guardCtx.OwnedIDs = append(guardCtx.OwnedIDs, c.ID)
	}
	for _, c := range req.Columns {
		guardCtx.EditedIDs = append(guardCtx.EditedIDs, c.ID)
	}
	if result := table.CanEditTable(guardCtx); !result.Allowed {
		return nil, apperr.Validation("edit", "%s", result.Reason)
	}
	for _, c := range req.Columns {
		if err := validateColumnEdit(c); err != nil {
			return nil, err
		}
	}

	updated := *record
	updated.TableComment = req.TableComment
	updated.EntityName = req.EntityName
	updated.ModuleName = req.ModuleName
	updated.FunctionName = req.FunctionName
	updated.AuthorName = req.AuthorName
	updated.Remarks = req.Remarks
	updated.GenTpl = genTpl
	updated.SubTableName = req.SubTableName
	updated.SubTableFk = req.SubTableFk
	updated.TreePrimary = req.TreePrimary
	updated.TreeParent = req.TreeParent
	updated.TreeName = req.TreeName

	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.tableRepo.Update(ctx, &updated); err != nil {
			return err
		}
		for _, edit := range req.Columns {
			c := *byID[edit.ID]
			c.ColumnComment = edit.ColumnComment
			c.FieldName = edit.FieldName
			c.LogicalType = edit.LogicalType
			c.HTMLType = edit.HTMLType
			c.QueryType = edit.QueryType
			c.DictType = edit.DictType
			c.IsRequired = edit.IsRequired
			c.IsInsertable = edit.IsInsertable
			c.IsEditable = edit.IsEditable
			c.IsListable = edit.IsListable
			c.IsQueryable = edit.IsQueryable
			if err := s.columnRepo.Update(ctx, &c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Transaction("edit", err)
	}

	s.logger.InfoContext(ctx, "table edited", "table", record.TableName, "columns", len(req.Columns))
	return s.GetTable(ctx, req.TableID)
}

// DeleteTables deletes tables and their columns in one transaction.
// Unknown ids are ignored unless none of the ids exist.
func (s *GenTableServiceImpl) DeleteTables(ctx context.Context, tableIDs []int64) (int64, error) {
	if len(tableIDs) == 0 {
		return 0, apperr.Validation("delete", "no table ids given")
	}

	existing, err := s.tableRepo.ListByIDs(ctx, tableIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to look up tables: %w", err)
	}
	if len(existing) == 0 {
		return 0, apperr.NotFound("delete", "no tables with ids %v", tableIDs)
	}
	ids := make([]int64, len(existing))
	for i, t := range existing {
		ids[i] = t.ID
	}

	var deleted int64
	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.columnRepo.DeleteByTableIDs(ctx, ids); err != nil {
			return err
		}
		n, err := s.tableRepo.DeleteByIDs(ctx, ids)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, apperr.Transaction("delete", err)
	}

	s.logger.InfoContext(ctx, "tables deleted", "ids", ids, "count", deleted)
	return deleted, nil
}

// normalizeTableNames trims, deduplicates and validates requested names.
func normalizeTableNames(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	names := make([]string, 0, len(raw))
	for _, n := range raw {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		if !table.IsValidIdentifier(n) {
			return nil, apperr.Validation("import", "invalid table name %q", n)
		}
		seen[n] = true
		names = append(names, n)
	}
	if len(names) == 0 {
		return nil, apperr.Validation("import", "no table names given")
	}
	return names, nil
}

func validateColumnEdit(c primary.EditColumnRequest) error {
	switch {
	case !table.IsValidIdentifier(c.FieldName):
		return apperr.Validation("edit", "column %d: invalid field name %q", c.ID, c.FieldName)
	case !column.IsLogicalType(c.LogicalType):
		return apperr.Validation("edit", "column %d: unknown logical type %q", c.ID, c.LogicalType)
	case !column.IsHTMLType(c.HTMLType):
		return apperr.Validation("edit", "column %d: unknown html type %q", c.ID, c.HTMLType)
	case !column.IsQueryType(c.QueryType):
		return apperr.Validation("edit", "column %d: unknown query type %q", c.ID, c.QueryType)
	}
	return nil
}

// pageBounds converts a 1-based page into limit and offset. A zero size disables paging.
func pageBounds(page, size int) (limit, offset int) {
	if size <= 0 {
		return 0, 0
	}
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size
}

func classifyLive(lc *secondary.LiveColumn) merge.LiveColumn {
	return merge.LiveColumn{
		ColumnName:    lc.ColumnName,
		ColumnComment: lc.ColumnComment,
		ColumnType:    lc.ColumnType,
		Position:      lc.Position,
		IsPk:          lc.IsPk,
		IsIncrement:   lc.IsIncrement,
		Classification: column.Classify(column.Descriptor{
			Name:       lc.ColumnName,
			RawType:    lc.ColumnType,
			IsPk:       lc.IsPk,
			IsRequired: lc.IsRequired,
		}),
	}
}

func columnRecord(tableID int64, m merge.Column) *secondary.GenColumnRecord {
	return &secondary.GenColumnRecord{
		TableID:       tableID,
		ColumnName:    m.ColumnName,
		ColumnComment: m.ColumnComment,
		ColumnType:    m.ColumnType,
		ColumnLength:  m.Length,
		FieldName:     table.ToCamelCase(m.ColumnName),
		LogicalType:   m.LogicalType,
		HTMLType:      m.HTMLType,
		QueryType:     m.QueryType,
		DictType:      m.DictType,
		Sort:          m.Sort,
		IsPk:          m.IsPk,
		IsIncrement:   m.IsIncrement,
		IsRequired:    m.IsRequired,
		IsInsertable:  m.IsInsertable,
		IsEditable:    m.IsEditable,
		IsListable:    m.IsListable,
		IsQueryable:   m.IsQueryable,
	}
}

// Helper methods

func recordToGenTable(r *secondary.GenTableRecord) *primary.GenTable {
	return &primary.GenTable{
		ID:           r.ID,
		TableName:    r.TableName,
		TableComment: r.TableComment,
		EntityName:   r.EntityName,
		ModuleName:   r.ModuleName,
		FunctionName: r.FunctionName,
		AuthorName:   r.AuthorName,
		Remarks:      r.Remarks,
		GenTpl:       r.GenTpl,
		SubTableName: r.SubTableName,
		SubTableFk:   r.SubTableFk,
		TreePrimary:  r.TreePrimary,
		TreeParent:   r.TreeParent,
		TreeName:     r.TreeName,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func recordToGenColumn(r *secondary.GenColumnRecord) *primary.GenColumn {
	return &primary.GenColumn{
		ID:            r.ID,
		TableID:       r.TableID,
		ColumnName:    r.ColumnName,
		ColumnComment: r.ColumnComment,
		ColumnType:    r.ColumnType,
		ColumnLength:  r.ColumnLength,
		FieldName:     r.FieldName,
		LogicalType:   r.LogicalType,
		HTMLType:      r.HTMLType,
		QueryType:     r.QueryType,
		DictType:      r.DictType,
		Sort:          r.Sort,
		IsPk:          r.IsPk,
		IsIncrement:   r.IsIncrement,
		IsRequired:    r.IsRequired,
		IsInsertable:  r.IsInsertable,
		IsEditable:    r.IsEditable,
		IsListable:    r.IsListable,
		IsQueryable:   r.IsQueryable,
	}
}

func toDetail(t *secondary.GenTableRecord, columns []*secondary.GenColumnRecord) *primary.GenTableDetail {
	detail := &primary.GenTableDetail{
		Table:   recordToGenTable(t),
		Columns: make([]*primary.GenColumn, len(columns)),
	}
	for i, c := range columns {
		detail.Columns[i] = recordToGenColumn(c)
	}
	return detail
}

// tableLocks hands out one mutex per table id.
type tableLocks struct {
	mu    sync.Mutex
	locks map[int64]*tableLock
}

type tableLock struct {
	sync.Mutex
	refs int
}

func newTableLocks() *tableLocks {
	return &tableLocks{locks: make(map[int64]*tableLock)}
}

// lock blocks until the table's mutex is held and returns its release func.
func (l *tableLocks) lock(id int64) func() {
	l.mu.Lock()
	tl, ok := l.locks[id]
	if !ok {
		tl = &tableLock{}
		l.locks[id] = tl
	}
	tl.refs++
	l.mu.Unlock()

	tl.Lock()
	return func() {
		tl.Unlock()
		l.mu.Lock()
		tl.refs--
		if tl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
