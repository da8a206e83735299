// Package mysql contains the MySQL implementation of the schema catalog.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/example/tablegen/internal/apperr"
	"github.com/example/tablegen/internal/core/table"
	"github.com/example/tablegen/internal/ports/secondary"
)

// Open connects to the MySQL database named by dsn.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("mysql dsn must name a database")
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create mysql connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}
	return db, nil
}

// Catalog implements secondary.SchemaCatalog over information_schema of the
// connection's current database.
type Catalog struct {
	db *sql.DB
}

// NewCatalog creates a new MySQL schema catalog.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

const tableSelect = `SELECT table_name, IFNULL(table_comment, ''), create_time, update_time
	FROM information_schema.tables`

// tablesWhere builds the shared WHERE clause: current schema, base tables,
// no metadata or scheduler tables, plus the optional filters.
func tablesWhere(filter secondary.CatalogFilter) (string, []any) {
	where := []string{
		"table_schema = (SELECT DATABASE())",
		"table_type = 'BASE TABLE'",
		`table_name NOT LIKE ?`,
		"table_name NOT IN (" + placeholders(len(secondary.MetadataTables)) + ")",
	}
	args := []any{escapeLike(secondary.SchedulerTablePrefix) + "%"}
	for _, name := range secondary.MetadataTables {
		args = append(args, name)
	}

	if filter.TableName != "" {
		where = append(where, "LOWER(table_name) LIKE LOWER(?)")
		args = append(args, "%"+escapeLike(filter.TableName)+"%")
	}
	if filter.TableComment != "" {
		where = append(where, "LOWER(table_comment) LIKE LOWER(?)")
		args = append(args, "%"+escapeLike(filter.TableComment)+"%")
	}

	return strings.Join(where, " AND "), args
}

// listTablesQueries returns the count query, the page query and the page args.
func listTablesQueries(filter secondary.CatalogFilter) (count, page string, countArgs, pageArgs []any) {
	where, args := tablesWhere(filter)

	count = "SELECT COUNT(*) FROM information_schema.tables WHERE " + where
	page = tableSelect + " WHERE " + where + " ORDER BY create_time DESC, table_name"

	pageArgs = append([]any{}, args...)
	if filter.Limit > 0 {
		page += " LIMIT ? OFFSET ?"
		pageArgs = append(pageArgs, filter.Limit, filter.Offset)
	}
	return count, page, args, pageArgs
}

// ListTables returns one page of live tables plus the total match count.
func (c *Catalog) ListTables(ctx context.Context, filter secondary.CatalogFilter) (int, []*secondary.LiveTable, error) {
	count, page, countArgs, pageArgs := listTablesQueries(filter)

	var total int
	if err := c.db.QueryRowContext(ctx, count, countArgs...).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("failed to count live tables: %w", err)
	}

	tables, err := c.queryTables(ctx, page, pageArgs...)
	if err != nil {
		return 0, nil, err
	}
	return total, tables, nil
}

// ListTablesByNames returns the live tables whose names exactly match.
func (c *Catalog) ListTablesByNames(ctx context.Context, names []string) ([]*secondary.LiveTable, error) {
	if len(names) == 0 {
		return nil, nil
	}

	where, args := tablesWhere(secondary.CatalogFilter{})
	where += " AND table_name IN (" + placeholders(len(names)) + ")"
	for _, name := range names {
		args = append(args, name)
	}

	return c.queryTables(ctx, tableSelect+" WHERE "+where+" ORDER BY table_name", args...)
}

func (c *Catalog) queryTables(ctx context.Context, query string, args ...any) ([]*secondary.LiveTable, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list live tables: %w", err)
	}
	defer rows.Close()

	var tables []*secondary.LiveTable
	for rows.Next() {
		var (
			t                      secondary.LiveTable
			createTime, updateTime sql.NullString
		)
		if err := rows.Scan(&t.TableName, &t.TableComment, &createTime, &updateTime); err != nil {
			return nil, fmt.Errorf("failed to scan live table: %w", err)
		}
		t.CreateTime = createTime.String
		t.UpdateTime = updateTime.String
		tables = append(tables, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate live tables: %w", err)
	}
	return tables, nil
}

const columnsQuery = `SELECT column_name, IFNULL(column_comment, ''), column_type, ordinal_position,
		column_key, is_nullable, extra
	FROM information_schema.columns
	WHERE table_schema = (SELECT DATABASE()) AND table_name = ?
	ORDER BY ordinal_position`

// ListColumns returns the columns of a live table ordered by position.
func (c *Catalog) ListColumns(ctx context.Context, tableName string) ([]*secondary.LiveColumn, error) {
	if !table.IsValidIdentifier(tableName) {
		return nil, apperr.Validation("list columns", "invalid table name %q", tableName)
	}

	rows, err := c.db.QueryContext(ctx, columnsQuery, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []*secondary.LiveColumn
	for rows.Next() {
		var r columnRow
		if err := rows.Scan(&r.name, &r.comment, &r.columnType, &r.position, &r.key, &r.nullable, &r.extra); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, r.toLive())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate columns: %w", err)
	}
	return columns, nil
}

// columnRow is one row of information_schema.columns.
type columnRow struct {
	name       string
	comment    string
	columnType string
	position   int
	key        string // "PRI", "UNI", "MUL" or ""
	nullable   string // "YES" or "NO"
	extra      string
}

func (r columnRow) toLive() *secondary.LiveColumn {
	isPk := r.key == "PRI"
	return &secondary.LiveColumn{
		ColumnName:    r.name,
		ColumnComment: r.comment,
		ColumnType:    r.columnType,
		Position:      r.position,
		IsPk:          isPk,
		IsRequired:    r.nullable == "NO" && !isPk,
		IsIncrement:   strings.Contains(strings.ToLower(r.extra), "auto_increment"),
	}
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// escapeLike escapes LIKE wildcards with MySQL's default escape character.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Ensure Catalog implements the interface.
var _ secondary.SchemaCatalog = (*Catalog)(nil)
