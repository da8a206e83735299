package secondary

import "context"

// SchemaCatalog defines the secondary port for read-only live schema introspection.
// Implementations bind every filter value as a query parameter.
type SchemaCatalog interface {
	// ListTables returns one page of live tables plus the total match count.
	// Generator metadata tables and scheduler tables are never returned.
	ListTables(ctx context.Context, filter CatalogFilter) (int, []*LiveTable, error)

	// ListTablesByNames returns the live tables whose names exactly match.
	ListTablesByNames(ctx context.Context, names []string) ([]*LiveTable, error)

	// ListColumns returns the columns of a live table ordered by position.
	ListColumns(ctx context.Context, tableName string) ([]*LiveColumn, error)
}

// CatalogFilter contains filter options for listing live tables.
type CatalogFilter struct {
	TableName    string // case-insensitive substring
	TableComment string // case-insensitive substring
	Limit        int    // 0 means no limit
	Offset       int
}

// LiveTable is a table as reported by the catalog.
type LiveTable struct {
	TableName    string
	TableComment string
	CreateTime   string // empty when the engine does not track it
	UpdateTime   string
}

// LiveColumn is a column as reported by the catalog.
type LiveColumn struct {
	ColumnName    string
	ColumnComment string
	ColumnType    string // raw declared type, e.g. "varchar(100)"
	Position      int
	IsPk          bool
	IsRequired    bool // NOT NULL and not primary key
	IsIncrement   bool
}

// Names of the generator's own tables, hidden from catalog listings.
var MetadataTables = []string{"gen_table", "gen_table_column"}

// SchedulerTablePrefix marks scheduler tables hidden from catalog listings.
const SchedulerTablePrefix = "qrtz_"
