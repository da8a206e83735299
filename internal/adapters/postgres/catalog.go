// Package postgres contains the PostgreSQL implementation of the schema catalog.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/tablegen/internal/apperr"
	"github.com/example/tablegen/internal/core/table"
	"github.com/example/tablegen/internal/ports/secondary"
)

// DefaultSchema is introspected when no schema is configured.
const DefaultSchema = "public"

// Connect creates a connection pool for dsn and verifies it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.MaxConns = 4
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// querier is the subset of *pgxpool.Pool used by the catalog.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Catalog implements secondary.SchemaCatalog over information_schema of one schema.
type Catalog struct {
	pool   querier
	schema string
}

// NewCatalog creates a new PostgreSQL schema catalog for schema.
func NewCatalog(pool *pgxpool.Pool, schema string) *Catalog {
	if schema == "" {
		schema = DefaultSchema
	}
	return &Catalog{pool: pool, schema: schema}
}

const tableComment = `COALESCE(obj_description(format('%I.%I', t.table_schema, t.table_name)::regclass, 'pg_class'), '')`

// tablesWhere builds the shared WHERE clause with numbered parameters.
func tablesWhere(schema string, filter secondary.CatalogFilter) (string, []any) {
	args := []any{schema, escapeLike(secondary.SchedulerTablePrefix) + "%", secondary.MetadataTables}
	where := []string{
		"t.table_schema = $1",
		"t.table_type = 'BASE TABLE'",
		"t.table_name::text NOT LIKE $2",
		"t.table_name::text <> ALL($3::text[])",
	}

	if filter.TableName != "" {
		args = append(args, "%"+escapeLike(filter.TableName)+"%")
		where = append(where, fmt.Sprintf("t.table_name::text ILIKE $%d", len(args)))
	}
	if filter.TableComment != "" {
		args = append(args, "%"+escapeLike(filter.TableComment)+"%")
		where = append(where, fmt.Sprintf("%s ILIKE $%d", tableComment, len(args)))
	}

	return strings.Join(where, " AND "), args
}

// listTablesQueries returns the count query, the page query and the page args.
func listTablesQueries(schema string, filter secondary.CatalogFilter) (count, page string, countArgs, pageArgs []any) {
	where, args := tablesWhere(schema, filter)

	count = "SELECT COUNT(*) FROM information_schema.tables t WHERE " + where
	page = "SELECT t.table_name::text, " + tableComment + " FROM information_schema.tables t WHERE " +
		where + " ORDER BY t.table_name"

	pageArgs = append([]any{}, args...)
	if filter.Limit > 0 {
		pageArgs = append(pageArgs, filter.Limit, filter.Offset)
		page += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(pageArgs)-1, len(pageArgs))
	}
	return count, page, args, pageArgs
}

// ListTables returns one page of live tables plus the total match count.
func (c *Catalog) ListTables(ctx context.Context, filter secondary.CatalogFilter) (int, []*secondary.LiveTable, error) {
	count, page, countArgs, pageArgs := listTablesQueries(c.schema, filter)

	var total int
	if err := c.pool.QueryRow(ctx, count, countArgs...).Scan(&total); err != nil {
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

	where, args := tablesWhere(c.schema, secondary.CatalogFilter{})
	args = append(args, names)
	query := "SELECT t.table_name::text, " + tableComment + " FROM information_schema.tables t WHERE " +
		where + fmt.Sprintf(" AND t.table_name::text = ANY($%d::text[]) ORDER BY t.table_name", len(args))

	return c.queryTables(ctx, query, args...)
}

func (c *Catalog) queryTables(ctx context.Context, query string, args ...any) ([]*secondary.LiveTable, error) {
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list live tables: %w", err)
	}
	defer rows.Close()

	var tables []*secondary.LiveTable
	for rows.Next() {
		var t secondary.LiveTable
		if err := rows.Scan(&t.TableName, &t.TableComment); err != nil {
			return nil, fmt.Errorf("failed to scan live table: %w", err)
		}
		tables = append(tables, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate live tables: %w", err)
	}
	return tables, nil
}

// columnsQuery reports udt names ("varchar", "int4", "numeric") with their
// declared length or precision and scale.
const columnsQuery = `
	SELECT
		c.column_name::text,
		COALESCE(col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position::int), ''),
		CASE
			WHEN c.character_maximum_length IS NOT NULL
				THEN c.udt_name || '(' || c.character_maximum_length || ')'
			WHEN c.udt_name = 'numeric' AND c.numeric_precision IS NOT NULL
				THEN c.udt_name || '(' || c.numeric_precision || ',' || COALESCE(c.numeric_scale, 0) || ')'
			ELSE c.udt_name
		END,
		c.ordinal_position::int,
		c.is_nullable = 'YES',
		pk.column_name IS NOT NULL,
		c.is_identity = 'YES' OR COALESCE(c.column_default, '') LIKE 'nextval(%'
	FROM information_schema.columns c
	LEFT JOIN (
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
	) pk ON pk.column_name = c.column_name
	WHERE c.table_schema = $1 AND c.table_name = $2
	ORDER BY c.ordinal_position
`

// ListColumns returns the columns of a live table ordered by position.
func (c *Catalog) ListColumns(ctx context.Context, tableName string) ([]*secondary.LiveColumn, error) {
	if !table.IsValidIdentifier(tableName) {
		return nil, apperr.Validation("list columns", "invalid table name %q", tableName)
	}

	rows, err := c.pool.Query(ctx, columnsQuery, c.schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []*secondary.LiveColumn
	for rows.Next() {
		var (
			col      secondary.LiveColumn
			nullable bool
		)
		if err := rows.Scan(&col.ColumnName, &col.ColumnComment, &col.ColumnType, &col.Position,
			&nullable, &col.IsPk, &col.IsIncrement); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		col.IsRequired = !nullable && !col.IsPk
		columns = append(columns, &col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate columns: %w", err)
	}
	return columns, nil
}

// escapeLike escapes LIKE wildcards with the default escape character.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Ensure Catalog implements the interface.
var _ secondary.SchemaCatalog = (*Catalog)(nil)
