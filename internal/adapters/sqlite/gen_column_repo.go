package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tablegen/internal/apperr"
	"github.com/example/tablegen/internal/ports/secondary"
)

const genColumnColumns = `id, table_id, column_name, column_comment, column_type, column_length,
	field_name, logical_type, html_type, query_type, dict_type, sort, is_pk, is_increment,
	is_required, is_insert, is_edit, is_list, is_query, created_at, updated_at`

// GenColumnRepository implements secondary.GenColumnRepository with SQLite.
type GenColumnRepository struct {
	db *sql.DB
}

// NewGenColumnRepository creates a new SQLite column metadata repository.
func NewGenColumnRepository(db *sql.DB) *GenColumnRepository {
	return &GenColumnRepository{db: db}
}

// CreateBatch persists new column records and sets their IDs.
func (r *GenColumnRepository) CreateBatch(ctx context.Context, columns []*secondary.GenColumnRecord) error {
	db := conn(ctx, r.db)
	for _, c := range columns {
		result, err := db.ExecContext(ctx,
			`INSERT INTO gen_table_column (table_id, column_name, column_comment, column_type, column_length,
				field_name, logical_type, html_type, query_type, dict_type, sort, is_pk, is_increment,
				is_required, is_insert, is_edit, is_list, is_query)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.TableID, c.ColumnName, c.ColumnComment, c.ColumnType, c.ColumnLength,
			c.FieldName, c.LogicalType, c.HTMLType, c.QueryType, nullString(c.DictType), c.Sort,
			boolToInt(c.IsPk), boolToInt(c.IsIncrement), boolToInt(c.IsRequired),
			boolToInt(c.IsInsertable), boolToInt(c.IsEditable), boolToInt(c.IsListable), boolToInt(c.IsQueryable),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("create column", "column %s of table %d already exists", c.ColumnName, c.TableID)
			}
			return fmt.Errorf("failed to create column %s: %w", c.ColumnName, err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read column id: %w", err)
		}
		c.ID = id
	}
	return nil
}

// ListByTableID retrieves the columns of a table ordered by sort.
func (r *GenColumnRepository) ListByTableID(ctx context.Context, tableID int64) ([]*secondary.GenColumnRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+genColumnColumns+" FROM gen_table_column WHERE table_id = ? ORDER BY sort, id",
		tableID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	defer rows.Close()

	var columns []*secondary.GenColumnRecord
	for rows.Next() {
		var (
			dictType                          sql.NullString
			isPk, isIncrement, isRequired     int
			isInsert, isEdit, isList, isQuery int
			createdAt, updatedAt              time.Time
		)

		c := &secondary.GenColumnRecord{}
		err := rows.Scan(&c.ID, &c.TableID, &c.ColumnName, &c.ColumnComment, &c.ColumnType, &c.ColumnLength,
			&c.FieldName, &c.LogicalType, &c.HTMLType, &c.QueryType, &dictType, &c.Sort,
			&isPk, &isIncrement, &isRequired, &isInsert, &isEdit, &isList, &isQuery,
			&createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		c.DictType = dictType.String
		c.IsPk = isPk == 1
		c.IsIncrement = isIncrement == 1
		c.IsRequired = isRequired == 1
		c.IsInsertable = isInsert == 1
		c.IsEditable = isEdit == 1
		c.IsListable = isList == 1
		c.IsQueryable = isQuery == 1
		c.CreatedAt = createdAt.Format(time.RFC3339)
		c.UpdatedAt = updatedAt.Format(time.RFC3339)

		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate columns: %w", err)
	}

	return columns, nil
}

// Update updates an existing column record.
func (r *GenColumnRepository) Update(ctx context.Context, c *secondary.GenColumnRecord) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE gen_table_column SET column_comment = ?, column_type = ?, column_length = ?,
			field_name = ?, logical_type = ?, html_type = ?, query_type = ?, dict_type = ?, sort = ?,
			is_pk = ?, is_increment = ?, is_required = ?, is_insert = ?, is_edit = ?, is_list = ?,
			is_query = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		c.ColumnComment, c.ColumnType, c.ColumnLength,
		c.FieldName, c.LogicalType, c.HTMLType, c.QueryType, nullString(c.DictType), c.Sort,
		boolToInt(c.IsPk), boolToInt(c.IsIncrement), boolToInt(c.IsRequired),
		boolToInt(c.IsInsertable), boolToInt(c.IsEditable), boolToInt(c.IsListable),
		boolToInt(c.IsQueryable), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update column %s: %w", c.ColumnName, err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.NotFound("update column", "column %d not found", c.ID)
	}

	return nil
}

// DeleteByIDs removes column records by ID.
func (r *GenColumnRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM gen_table_column WHERE id IN ("+placeholders(len(ids))+")", int64Args(ids)...)
	if err != nil {
		return fmt.Errorf("failed to delete columns: %w", err)
	}
	return nil
}

// DeleteByTableIDs removes every column owned by the given tables.
func (r *GenColumnRepository) DeleteByTableIDs(ctx context.Context, tableIDs []int64) (int64, error) {
	if len(tableIDs) == 0 {
		return 0, nil
	}

	result, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM gen_table_column WHERE table_id IN ("+placeholders(len(tableIDs))+")", int64Args(tableIDs)...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete columns: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Ensure GenColumnRepository implements the interface.
var _ secondary.GenColumnRepository = (*GenColumnRepository)(nil)
