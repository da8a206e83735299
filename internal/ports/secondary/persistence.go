// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// Transactor scopes repository calls to a single transaction.
type Transactor interface {
	// WithinTx runs fn in a transaction. Repository calls made with the ctx
	// passed to fn join the transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// GenTableRepository defines the secondary port for table metadata persistence.
type GenTableRepository interface {
	// Create persists a new table record and sets its ID.
	Create(ctx context.Context, table *GenTableRecord) error

	// GetByID retrieves a table record by its ID.
	GetByID(ctx context.Context, id int64) (*GenTableRecord, error)

	// GetByName retrieves a table record by its live table name.
	GetByName(ctx context.Context, tableName string) (*GenTableRecord, error)

	// ListByIDs retrieves the table records among ids that exist, ordered by ID.
	ListByIDs(ctx context.Context, ids []int64) ([]*GenTableRecord, error)

	// ExistingNames returns the subset of names that are already imported.
	ExistingNames(ctx context.Context, names []string) ([]string, error)

	// List retrieves table records matching the filters and the total match count.
	List(ctx context.Context, filters GenTableFilters) (int, []*GenTableRecord, error)

	// Update updates an existing table record.
	Update(ctx context.Context, table *GenTableRecord) error

	// Touch bumps the update timestamp of a table record.
	Touch(ctx context.Context, id int64) error

	// DeleteByIDs removes table records and returns how many were removed.
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

// GenTableRecord represents table metadata as stored in persistence.
// Empty strings mean "not set".
type GenTableRecord struct {
	ID           int64
	TableName    string
	TableComment string
	EntityName   string
	ModuleName   string
	FunctionName string
	AuthorName   string
	Remarks      string
	GenTpl       string // "crud" or "tree"
	SubTableName string
	SubTableFk   string
	TreePrimary  string
	TreeParent   string
	TreeName     string
	CreatedAt    string
	UpdatedAt    string
}

// GenTableFilters contains filter options for listing table records.
type GenTableFilters struct {
	TableName    string // substring match
	TableComment string // substring match
	Limit        int    // 0 means no limit
	Offset       int
}

// GenColumnRepository defines the secondary port for column metadata persistence.
type GenColumnRepository interface {
	// CreateBatch persists new column records and sets their IDs.
	CreateBatch(ctx context.Context, columns []*GenColumnRecord) error

	// ListByTableID retrieves the columns of a table ordered by sort.
	ListByTableID(ctx context.Context, tableID int64) ([]*GenColumnRecord, error)

	// Update updates an existing column record.
	Update(ctx context.Context, column *GenColumnRecord) error

	// DeleteByIDs removes column records by ID.
	DeleteByIDs(ctx context.Context, ids []int64) error

	// DeleteByTableIDs removes every column owned by the given tables.
	DeleteByTableIDs(ctx context.Context, tableIDs []int64) (int64, error)
}

// GenColumnRecord represents column metadata as stored in persistence.
type GenColumnRecord struct {
	ID            int64
	TableID       int64
	ColumnName    string
	ColumnComment string
	ColumnType    string
	ColumnLength  int
	FieldName     string
	LogicalType   string
	HTMLType      string
	QueryType     string
	DictType      string
	Sort          int
	IsPk          bool
	IsIncrement   bool
	IsRequired    bool
	IsInsertable  bool
	IsEditable    bool
	IsListable    bool
	IsQueryable   bool
	CreatedAt     string
	UpdatedAt     string
}
