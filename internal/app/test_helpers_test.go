package app

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/tablegen/internal/apperr"
	"github.com/example/tablegen/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// Ensure mocks implement the interfaces
var (
	_ secondary.GenTableRepository  = (*mockGenTableRepository)(nil)
	_ secondary.GenColumnRepository = (*mockGenColumnRepository)(nil)
	_ secondary.Transactor          = (*mockTransactor)(nil)
	_ secondary.SchemaCatalog       = (*mockCatalog)(nil)
	_ secondary.TemplateRenderer    = (*mockRenderer)(nil)
	_ secondary.ArchiveWriter       = (*mockArchiveWriter)(nil)
	_ secondary.FileWriter          = (*mockFileWriter)(nil)
)

// mockGenTableRepository implements secondary.GenTableRepository for testing.
type mockGenTableRepository struct {
	tables    map[int64]*secondary.GenTableRecord
	nextID    int64
	touched   []int64
	createErr error
	updateErr error
	listErr   error
	deleteErr error
}

func newMockGenTableRepository() *mockGenTableRepository {
	return &mockGenTableRepository{
		tables: make(map[int64]*secondary.GenTableRecord),
	}
}

// add stores a copy of record, assigning an ID when it has none.
func (m *mockGenTableRepository) add(record *secondary.GenTableRecord) int64 {
	if record.ID == 0 {
		m.nextID++
		record.ID = m.nextID
	} else if record.ID > m.nextID {
		m.nextID = record.ID
	}
	stored := *record
	m.tables[record.ID] = &stored
	return record.ID
}

func (m *mockGenTableRepository) Create(ctx context.Context, table *secondary.GenTableRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, t := range m.tables {
		if t.TableName == table.TableName {
			return apperr.Conflict("create table", "table %q already imported", table.TableName)
		}
	}
	m.add(table)
	return nil
}

func (m *mockGenTableRepository) GetByID(ctx context.Context, id int64) (*secondary.GenTableRecord, error) {
	if t, ok := m.tables[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, apperr.NotFound("get table", "table %d not found", id)
}

func (m *mockGenTableRepository) GetByName(ctx context.Context, tableName string) (*secondary.GenTableRecord, error) {
	for _, t := range m.tables {
		if t.TableName == tableName {
			copied := *t
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("get table", "table %q not found", tableName)
}

func (m *mockGenTableRepository) ListByIDs(ctx context.Context, ids []int64) ([]*secondary.GenTableRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.GenTableRecord
	for _, id := range ids {
		if t, ok := m.tables[id]; ok {
			copied := *t
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockGenTableRepository) ExistingNames(ctx context.Context, names []string) ([]string, error) {
	var existing []string
	for _, name := range names {
		for _, t := range m.tables {
			if t.TableName == name {
				existing = append(existing, name)
				break
			}
		}
	}
	return existing, nil
}

func (m *mockGenTableRepository) List(ctx context.Context, filters secondary.GenTableFilters) (int, []*secondary.GenTableRecord, error) {
	if m.listErr != nil {
		return 0, nil, m.listErr
	}
	var matched []*secondary.GenTableRecord
	for _, t := range m.tables {
		if filters.TableName != "" && !strings.Contains(t.TableName, filters.TableName) {
			continue
		}
		if filters.TableComment != "" && !strings.Contains(t.TableComment, filters.TableComment) {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	if filters.Offset < len(matched) {
		matched = matched[filters.Offset:]
	} else {
		matched = nil
	}
	if filters.Limit > 0 && len(matched) > filters.Limit {
		matched = matched[:filters.Limit]
	}
	return total, matched, nil
}

func (m *mockGenTableRepository) Update(ctx context.Context, table *secondary.GenTableRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.tables[table.ID]; !ok {
		return apperr.NotFound("update table", "table %d not found", table.ID)
	}
	stored := *table
	m.tables[table.ID] = &stored
	return nil
}

func (m *mockGenTableRepository) Touch(ctx context.Context, id int64) error {
	m.touched = append(m.touched, id)
	return nil
}

func (m *mockGenTableRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var n int64
	for _, id := range ids {
		if _, ok := m.tables[id]; ok {
			delete(m.tables, id)
			n++
		}
	}
	return n, nil
}

// mockGenColumnRepository implements secondary.GenColumnRepository for testing.
type mockGenColumnRepository struct {
	columns   map[int64]*secondary.GenColumnRecord
	nextID    int64
	createErr error
	updateErr error
	deleteErr error
}

func newMockGenColumnRepository() *mockGenColumnRepository {
	return &mockGenColumnRepository{
		columns: make(map[int64]*secondary.GenColumnRecord),
	}
}

func (m *mockGenColumnRepository) CreateBatch(ctx context.Context, columns []*secondary.GenColumnRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, c := range columns {
		m.nextID++
		c.ID = m.nextID
		stored := *c
		m.columns[c.ID] = &stored
	}
	return nil
}

func (m *mockGenColumnRepository) ListByTableID(ctx context.Context, tableID int64) ([]*secondary.GenColumnRecord, error) {
	var result []*secondary.GenColumnRecord
	for _, c := range m.columns {
		if c.TableID == tableID {
			copied := *c
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Sort != result[j].Sort {
			return result[i].Sort < result[j].Sort
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockGenColumnRepository) Update(ctx context.Context, column *secondary.GenColumnRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.columns[column.ID]; !ok {
		return apperr.NotFound("update column", "column %d not found", column.ID)
	}
	stored := *column
	m.columns[column.ID] = &stored
	return nil
}

func (m *mockGenColumnRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for _, id := range ids {
		delete(m.columns, id)
	}
	return nil
}

func (m *mockGenColumnRepository) DeleteByTableIDs(ctx context.Context, tableIDs []int64) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	owners := make(map[int64]bool, len(tableIDs))
	for _, id := range tableIDs {
		owners[id] = true
	}
	var n int64
	for id, c := range m.columns {
		if owners[c.TableID] {
			delete(m.columns, id)
			n++
		}
	}
	return n, nil
}

// mockTransactor runs fn directly. It has no rollback.
type mockTransactor struct {
	beginErr error
	calls    int
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if m.beginErr != nil {
		return m.beginErr
	}
	return fn(ctx)
}

// mockCatalog implements secondary.SchemaCatalog for testing.
type mockCatalog struct {
	tables     []*secondary.LiveTable
	columns    map[string][]*secondary.LiveColumn
	lastFilter secondary.CatalogFilter
	listErr    error
	columnsErr error
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		columns: make(map[string][]*secondary.LiveColumn),
	}
}

// addTable registers a live table and its columns.
func (m *mockCatalog) addTable(name, comment string, columns ...*secondary.LiveColumn) {
	m.tables = append(m.tables, &secondary.LiveTable{TableName: name, TableComment: comment})
	for i, c := range columns {
		c.Position = i + 1
	}
	m.columns[name] = columns
}

func (m *mockCatalog) ListTables(ctx context.Context, filter secondary.CatalogFilter) (int, []*secondary.LiveTable, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return 0, nil, m.listErr
	}
	return len(m.tables), m.tables, nil
}

func (m *mockCatalog) ListTablesByNames(ctx context.Context, names []string) ([]*secondary.LiveTable, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.LiveTable
	for _, t := range m.tables {
		for _, name := range names {
			if t.TableName == name {
				result = append(result, t)
			}
		}
	}
	return result, nil
}

func (m *mockCatalog) ListColumns(ctx context.Context, tableName string) ([]*secondary.LiveColumn, error) {
	if m.columnsErr != nil {
		return nil, m.columnsErr
	}
	return m.columns[tableName], nil
}

// mockRenderer renders every template as "<id>:<entity>".
type mockRenderer struct {
	lastIDs  []string
	lastData any
	err      error
}

func (m *mockRenderer) Render(ctx context.Context, templateIDs []string, data any) (map[string]string, error) {
	m.lastIDs = templateIDs
	m.lastData = data
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]string, len(templateIDs))
	for _, id := range templateIDs {
		out[id] = "rendered " + id
	}
	return out, nil
}

// mockArchiveWriter writes a placeholder file into dir.
type mockArchiveWriter struct {
	dir   string
	files []secondary.GeneratedFile
	err   error
}

func (m *mockArchiveWriter) WriteArchive(ctx context.Context, files []secondary.GeneratedFile) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.files = files
	path := filepath.Join(m.dir, "tablegen-1.zip")
	if err := os.WriteFile(path, []byte("PK"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// mockFileWriter records the files it was asked to write.
type mockFileWriter struct {
	root  string
	files []secondary.GeneratedFile
	err   error
}

func (m *mockFileWriter) WriteFiles(ctx context.Context, root string, files []secondary.GeneratedFile) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.root = root
	m.files = files
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = filepath.Join(root, f.Path)
	}
	return paths, nil
}
