package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/tablegen/internal/apperr"
	"github.com/example/tablegen/internal/ports/secondary"
)

const genTableColumns = `id, table_name, table_comment, entity_name, module_name, function_name,
	author_name, remarks, gen_tpl, sub_table_name, sub_table_fk, tree_primary, tree_parent,
	tree_name, created_at, updated_at`

// GenTableRepository implements secondary.GenTableRepository with SQLite.
type GenTableRepository struct {
	db *sql.DB
}

// NewGenTableRepository creates a new SQLite table metadata repository.
func NewGenTableRepository(db *sql.DB) *GenTableRepository {
	return &GenTableRepository{db: db}
}

// Create persists a new table record and sets its ID.
func (r *GenTableRepository) Create(ctx context.Context, t *secondary.GenTableRecord) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO gen_table (table_name, table_comment, entity_name, module_name, function_name,
			author_name, remarks, gen_tpl, sub_table_name, sub_table_fk, tree_primary, tree_parent, tree_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TableName, t.TableComment, t.EntityName, t.ModuleName, t.FunctionName,
		t.AuthorName, nullString(t.Remarks), t.GenTpl, nullString(t.SubTableName), nullString(t.SubTableFk),
		nullString(t.TreePrimary), nullString(t.TreeParent), nullString(t.TreeName),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("create table", "table %s is already imported", t.TableName)
		}
		return fmt.Errorf("failed to create gen table: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read gen table id: %w", err)
	}
	t.ID = id

	return nil
}

// GetByID retrieves a table record by its ID.
func (r *GenTableRepository) GetByID(ctx context.Context, id int64) (*secondary.GenTableRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+genTableColumns+" FROM gen_table WHERE id = ?", id)

	record, err := scanGenTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("get table", "table %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gen table: %w", err)
	}
	return record, nil
}

// GetByName retrieves a table record by its live table name.
func (r *GenTableRepository) GetByName(ctx context.Context, tableName string) (*secondary.GenTableRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+genTableColumns+" FROM gen_table WHERE table_name = ?", tableName)

	record, err := scanGenTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("get table", "table '%s' is not imported", tableName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gen table: %w", err)
	}
	return record, nil
}

// ListByIDs retrieves the table records among ids that exist, ordered by ID.
func (r *GenTableRepository) ListByIDs(ctx context.Context, ids []int64) ([]*secondary.GenTableRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+genTableColumns+" FROM gen_table WHERE id IN ("+placeholders(len(ids))+") ORDER BY id",
		int64Args(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list gen tables: %w", err)
	}
	defer rows.Close()

	return collectGenTables(rows)
}

// ExistingNames returns the subset of names that are already imported.
func (r *GenTableRepository) ExistingNames(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT table_name FROM gen_table WHERE table_name IN ("+placeholders(len(names))+") ORDER BY table_name",
		stringArgs(names)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to check imported tables: %w", err)
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		existing = append(existing, name)
	}
	return existing, rows.Err()
}

// List retrieves table records matching the filters and the total match count.
func (r *GenTableRepository) List(ctx context.Context, filters secondary.GenTableFilters) (int, []*secondary.GenTableRecord, error) {
	var (
		where []string
		args  []any
	)
	if filters.TableName != "" {
		where = append(where, `table_name LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filters.TableName))
	}
	if filters.TableComment != "" {
		where = append(where, `table_comment LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filters.TableComment))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	db := conn(ctx, r.db)

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM gen_table"+clause, args...).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("failed to count gen tables: %w", err)
	}

	query := "SELECT " + genTableColumns + " FROM gen_table" + clause + " ORDER BY id DESC"
	if filters.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filters.Limit, filters.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list gen tables: %w", err)
	}
	defer rows.Close()

	records, err := collectGenTables(rows)
	if err != nil {
		return 0, nil, err
	}
	return total, records, nil
}

// Update updates an existing table record.
func (r *GenTableRepository) Update(ctx context.Context, t *secondary.GenTableRecord) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE gen_table SET table_comment = ?, entity_name = ?, module_name = ?, function_name = ?,
			author_name = ?, remarks = ?, gen_tpl = ?, sub_table_name = ?, sub_table_fk = ?,
			tree_primary = ?, tree_parent = ?, tree_name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		t.TableComment, t.EntityName, t.ModuleName, t.FunctionName,
		t.AuthorName, nullString(t.Remarks), t.GenTpl, nullString(t.SubTableName), nullString(t.SubTableFk),
		nullString(t.TreePrimary), nullString(t.TreeParent), nullString(t.TreeName),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update gen table: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.NotFound("update table", "table %d not found", t.ID)
	}

	return nil
}

// Touch bumps the update timestamp of a table record.
func (r *GenTableRepository) Touch(ctx context.Context, id int64) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE gen_table SET updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to touch gen table: %w", err)
	}
	return nil
}

// DeleteByIDs removes table records and returns how many were removed.
func (r *GenTableRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM gen_table WHERE id IN ("+placeholders(len(ids))+")", int64Args(ids)...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete gen tables: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGenTable(row rowScanner) (*secondary.GenTableRecord, error) {
	var (
		remarks      sql.NullString
		subTableName sql.NullString
		subTableFk   sql.NullString
		treePrimary  sql.NullString
		treeParent   sql.NullString
		treeName     sql.NullString
		createdAt    time.Time
		updatedAt    time.Time
	)

	record := &secondary.GenTableRecord{}
	err := row.Scan(&record.ID, &record.TableName, &record.TableComment, &record.EntityName,
		&record.ModuleName, &record.FunctionName, &record.AuthorName, &remarks, &record.GenTpl,
		&subTableName, &subTableFk, &treePrimary, &treeParent, &treeName, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	record.Remarks = remarks.String
	record.SubTableName = subTableName.String
	record.SubTableFk = subTableFk.String
	record.TreePrimary = treePrimary.String
	record.TreeParent = treeParent.String
	record.TreeName = treeName.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

func collectGenTables(rows *sql.Rows) ([]*secondary.GenTableRecord, error) {
	var records []*secondary.GenTableRecord
	for rows.Next() {
		record, err := scanGenTable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gen table: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate gen tables: %w", err)
	}
	return records, nil
}

// Ensure GenTableRepository implements the interface.
var _ secondary.GenTableRepository = (*GenTableRepository)(nil)
