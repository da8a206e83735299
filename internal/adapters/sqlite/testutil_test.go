// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the metadata schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/tablegen/internal/adapters/sqlite"
	"github.com/example/tablegen/internal/db"
	"github.com/example/tablegen/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// A single connection keeps every statement on the same in-memory database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	// Use the authoritative schema from schema.go
	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedGenTable inserts a table record and returns its ID.
func seedGenTable(t *testing.T, database *sql.DB, tableName string) int64 {
	t.Helper()

	record := &secondary.GenTableRecord{
		TableName:    tableName,
		TableComment: tableName + " comment",
		EntityName:   "Entity",
		ModuleName:   tableName,
		FunctionName: tableName,
		GenTpl:       "crud",
	}
	if err := sqlite.NewGenTableRepository(database).Create(context.Background(), record); err != nil {
		t.Fatalf("failed to seed gen table: %v", err)
	}
	return record.ID
}

// seedGenColumn inserts a column record for tableID and returns its ID.
func seedGenColumn(t *testing.T, database *sql.DB, tableID int64, name string, sort int) int64 {
	t.Helper()

	record := &secondary.GenColumnRecord{
		TableID:      tableID,
		ColumnName:   name,
		ColumnType:   "varchar(32)",
		ColumnLength: 32,
		FieldName:    name,
		LogicalType:  "string",
		HTMLType:     "input",
		QueryType:    "=",
		Sort:         sort,
		IsInsertable: true,
		IsEditable:   true,
	}
	if err := sqlite.NewGenColumnRepository(database).CreateBatch(context.Background(), []*secondary.GenColumnRecord{record}); err != nil {
		t.Fatalf("failed to seed gen column: %v", err)
	}
	return record.ID
}
