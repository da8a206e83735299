// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import "context"

// GenTableService defines the primary port for generator metadata operations.
type GenTableService interface {
	// ListDbTables lists live tables that can be imported.
	ListDbTables(ctx context.Context, req ListDbTablesRequest) (*DbTablePage, error)

	// ListTables lists imported tables.
	ListTables(ctx context.Context, req ListTablesRequest) (*GenTablePage, error)

	// GetTable retrieves an imported table with its columns.
	GetTable(ctx context.Context, tableID int64) (*GenTableDetail, error)

	// ImportTables imports live tables as generator metadata in one transaction.
	ImportTables(ctx context.Context, req ImportTablesRequest) (*ImportTablesResponse, error)

	// SyncTable re-introspects an imported table and merges the live columns.
	SyncTable(ctx context.Context, tableID int64) (*SyncTableResponse, error)

	// EditTable applies manual edits to a table and its columns.
	EditTable(ctx context.Context, req EditTableRequest) (*GenTableDetail, error)

	// DeleteTables deletes tables and their columns in one transaction.
	DeleteTables(ctx context.Context, tableIDs []int64) (int64, error)
}

// ListDbTablesRequest contains parameters for listing live tables.
type ListDbTablesRequest struct {
	TableName    string
	TableComment string
	Page         int // 1-based; 0 means 1
	PageSize     int // 0 means no paging
}

// DbTablePage is one page of live tables.
type DbTablePage struct {
	Total int        `json:"total"`
	Rows  []*DbTable `json:"rows"`
}

// DbTable represents a live table at the port boundary.
type DbTable struct {
	TableName    string `json:"table_name"`
	TableComment string `json:"table_comment"`
	CreateTime   string `json:"create_time,omitempty"`
	UpdateTime   string `json:"update_time,omitempty"`
}

// ListTablesRequest contains parameters for listing imported tables.
type ListTablesRequest struct {
	TableName    string
	TableComment string
	Page         int
	PageSize     int
}

// GenTablePage is one page of imported tables.
type GenTablePage struct {
	Total int         `json:"total"`
	Rows  []*GenTable `json:"rows"`
}

// ImportTablesRequest contains the live table names to import.
type ImportTablesRequest struct {
	TableNames []string
}

// ImportTablesResponse contains the imported tables.
type ImportTablesResponse struct {
	Tables []*GenTable `json:"tables"`
}

// SyncTableResponse summarizes a synchronization.
type SyncTableResponse struct {
	TableID int64    `json:"table_id"`
	Updated []string `json:"updated"`
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// EditTableRequest contains a full replacement of the editable table fields
// plus optional per-column edits.
type EditTableRequest struct {
	TableID      int64               `json:"-"`
	TableComment string              `json:"table_comment"`
	EntityName   string              `json:"entity_name"`
	ModuleName   string              `json:"module_name"`
	FunctionName string              `json:"function_name"`
	AuthorName   string              `json:"author_name"`
	Remarks      string              `json:"remarks"`
	GenTpl       string              `json:"gen_tpl"`
	SubTableName string              `json:"sub_table_name"`
	SubTableFk   string              `json:"sub_table_fk"`
	TreePrimary  string              `json:"tree_primary"`
	TreeParent   string              `json:"tree_parent"`
	TreeName     string              `json:"tree_name"`
	Columns      []EditColumnRequest `json:"columns"`
}

// EditColumnRequest contains the editable fields of one column.
type EditColumnRequest struct {
	ID            int64  `json:"id"`
	ColumnComment string `json:"column_comment"`
	FieldName     string `json:"field_name"`
	LogicalType   string `json:"logical_type"`
	HTMLType      string `json:"html_type"`
	QueryType     string `json:"query_type"`
	DictType      string `json:"dict_type"`
	IsRequired    bool   `json:"is_required"`
	IsInsertable  bool   `json:"is_insertable"`
	IsEditable    bool   `json:"is_editable"`
	IsListable    bool   `json:"is_listable"`
	IsQueryable   bool   `json:"is_queryable"`
}

// GenTable represents table metadata at the port boundary.
type GenTable struct {
	ID           int64  `json:"id" yaml:"id"`
	TableName    string `json:"table_name" yaml:"table_name"`
	TableComment string `json:"table_comment" yaml:"table_comment"`
	EntityName   string `json:"entity_name" yaml:"entity_name"`
	ModuleName   string `json:"module_name" yaml:"module_name"`
	FunctionName string `json:"function_name" yaml:"function_name"`
	AuthorName   string `json:"author_name" yaml:"author_name"`
	Remarks      string `json:"remarks,omitempty" yaml:"remarks,omitempty"`
	GenTpl       string `json:"gen_tpl" yaml:"gen_tpl"`
	SubTableName string `json:"sub_table_name,omitempty" yaml:"sub_table_name,omitempty"`
	SubTableFk   string `json:"sub_table_fk,omitempty" yaml:"sub_table_fk,omitempty"`
	TreePrimary  string `json:"tree_primary,omitempty" yaml:"tree_primary,omitempty"`
	TreeParent   string `json:"tree_parent,omitempty" yaml:"tree_parent,omitempty"`
	TreeName     string `json:"tree_name,omitempty" yaml:"tree_name,omitempty"`
	CreatedAt    string `json:"created_at" yaml:"created_at"`
	UpdatedAt    string `json:"updated_at" yaml:"updated_at"`
}

// GenColumn represents column metadata at the port boundary.
type GenColumn struct {
	ID            int64  `json:"id" yaml:"id"`
	TableID       int64  `json:"table_id" yaml:"-"`
	ColumnName    string `json:"column_name" yaml:"column_name"`
	ColumnComment string `json:"column_comment" yaml:"column_comment"`
	ColumnType    string `json:"column_type" yaml:"column_type"`
	ColumnLength  int    `json:"column_length" yaml:"column_length"`
	FieldName     string `json:"field_name" yaml:"field_name"`
	LogicalType   string `json:"logical_type" yaml:"logical_type"`
	HTMLType      string `json:"html_type" yaml:"html_type"`
	QueryType     string `json:"query_type" yaml:"query_type"`
	DictType      string `json:"dict_type,omitempty" yaml:"dict_type,omitempty"`
	Sort          int    `json:"sort" yaml:"sort"`
	IsPk          bool   `json:"is_pk" yaml:"is_pk"`
	IsIncrement   bool   `json:"is_increment" yaml:"is_increment"`
	IsRequired    bool   `json:"is_required" yaml:"is_required"`
	IsInsertable  bool   `json:"is_insertable" yaml:"is_insertable"`
	IsEditable    bool   `json:"is_editable" yaml:"is_editable"`
	IsListable    bool   `json:"is_listable" yaml:"is_listable"`
	IsQueryable   bool   `json:"is_queryable" yaml:"is_queryable"`
}

// GenTableDetail is a table with its ordered columns.
type GenTableDetail struct {
	Table   *GenTable    `json:"table" yaml:"table"`
	Columns []*GenColumn `json:"columns" yaml:"columns"`
}
