package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/tablegen/internal/apperr"
	"github.com/example/tablegen/internal/core/table"
	"github.com/example/tablegen/internal/ports/secondary"
)

// Catalog implements secondary.SchemaCatalog over a SQLite database.
// SQLite keeps no table or column comments, so both are always empty.
type Catalog struct {
	db *sql.DB
}

// NewCatalog creates a new SQLite schema catalog.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// hiddenTablesClause excludes internal, metadata and scheduler tables.
const hiddenTablesClause = `type = 'table'
	AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
	AND name NOT LIKE ? ESCAPE '\'
	AND name NOT IN (?, ?)`

func hiddenTablesArgs() []any {
	return []any{
		strings.ReplaceAll(secondary.SchedulerTablePrefix, "_", `\_`) + "%",
		secondary.MetadataTables[0], secondary.MetadataTables[1],
	}
}

// ListTables returns one page of live tables plus the total match count.
func (c *Catalog) ListTables(ctx context.Context, filter secondary.CatalogFilter) (int, []*secondary.LiveTable, error) {
	where := hiddenTablesClause
	args := hiddenTablesArgs()
	if filter.TableName != "" {
		where += ` AND name LIKE ? ESCAPE '\'`
		args = append(args, likePattern(filter.TableName))
	}
	if filter.TableComment != "" {
		// No table carries a comment.
		return 0, nil, nil
	}

	var total int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE "+where, args...).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("failed to count live tables: %w", err)
	}

	query := "SELECT name FROM sqlite_master WHERE " + where + " ORDER BY name"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	tables, err := c.queryTables(ctx, query, args...)
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

	args := append(hiddenTablesArgs(), stringArgs(names)...)
	return c.queryTables(ctx,
		"SELECT name FROM sqlite_master WHERE "+hiddenTablesClause+
			" AND name IN ("+placeholders(len(names))+") ORDER BY name",
		args...,
	)
}

func (c *Catalog) queryTables(ctx context.Context, query string, args ...any) ([]*secondary.LiveTable, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list live tables: %w", err)
	}
	defer rows.Close()

	var tables []*secondary.LiveTable
	for rows.Next() {
		t := &secondary.LiveTable{}
		if err := rows.Scan(&t.TableName); err != nil {
			return nil, fmt.Errorf("failed to scan live table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate live tables: %w", err)
	}
	return tables, nil
}

// ListColumns returns the columns of a live table ordered by position.
// An unknown table yields no columns.
func (c *Catalog) ListColumns(ctx context.Context, tableName string) ([]*secondary.LiveColumn, error) {
	if !table.IsValidIdentifier(tableName) {
		return nil, apperr.Validation("list columns", "invalid table name %q", tableName)
	}

	var ddl sql.NullString
	err := c.db.QueryRowContext(ctx,
		"SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", tableName).Scan(&ddl)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", tableName, err)
	}
	autoincrement := strings.Contains(strings.ToUpper(ddl.String), "AUTOINCREMENT")

	rows, err := c.db.QueryContext(ctx,
		`SELECT cid, name, type, "notnull", pk FROM pragma_table_info(?) ORDER BY cid`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", tableName, err)
	}
	defer rows.Close()

	var (
		columns []*secondary.LiveColumn
		pkCount int
	)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		if pk > 0 {
			pkCount++
		}
		columns = append(columns, &secondary.LiveColumn{
			ColumnName: name,
			ColumnType: strings.ToLower(colType),
			Position:   cid + 1,
			IsPk:       pk > 0,
			IsRequired: notNull == 1 && pk == 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate columns: %w", err)
	}

	// A sole INTEGER primary key is the rowid alias and auto-assigned.
	for _, col := range columns {
		if col.IsPk && pkCount == 1 && (col.ColumnType == "integer" || autoincrement) {
			col.IsIncrement = true
		}
	}

	return columns, nil
}

// Ensure Catalog implements the interface.
var _ secondary.SchemaCatalog = (*Catalog)(nil)
