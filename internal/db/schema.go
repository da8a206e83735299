package db

import "database/sql"

// SchemaSQL is the complete schema of the generator metadata store.
//
// This is the SINGLE SOURCE OF TRUTH for the schema. Repository tests load it
// through GetSchemaSQL() so they fail with "no such column" as soon as code
// and schema drift apart. When changing it, add a migration as well.
const SchemaSQL = `
-- Imported tables
CREATE TABLE IF NOT EXISTS gen_table (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	table_name TEXT NOT NULL UNIQUE,
	table_comment TEXT NOT NULL DEFAULT '',
	entity_name TEXT NOT NULL,
	module_name TEXT NOT NULL,
	function_name TEXT NOT NULL DEFAULT '',
	author_name TEXT NOT NULL DEFAULT '',
	remarks TEXT,
	gen_tpl TEXT NOT NULL DEFAULT 'crud' CHECK (gen_tpl IN ('crud', 'tree')),
	sub_table_name TEXT,
	sub_table_fk TEXT,
	tree_primary TEXT,
	tree_parent TEXT,
	tree_name TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Columns of imported tables
CREATE TABLE IF NOT EXISTS gen_table_column (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	table_id INTEGER NOT NULL,
	column_name TEXT NOT NULL,
	column_comment TEXT NOT NULL DEFAULT '',
	column_type TEXT NOT NULL,
	column_length INTEGER NOT NULL DEFAULT 0,
	field_name TEXT NOT NULL,
	logical_type TEXT NOT NULL CHECK (logical_type IN ('string', 'int', 'float', 'date')),
	html_type TEXT NOT NULL,
	query_type TEXT NOT NULL DEFAULT '=' CHECK (query_type IN ('=', 'LIKE')),
	dict_type TEXT,
	sort INTEGER NOT NULL,
	is_pk INTEGER NOT NULL DEFAULT 0,
	is_increment INTEGER NOT NULL DEFAULT 0,
	is_required INTEGER NOT NULL DEFAULT 0,
	is_insert INTEGER NOT NULL DEFAULT 0,
	is_edit INTEGER NOT NULL DEFAULT 0,
	is_list INTEGER NOT NULL DEFAULT 0,
	is_query INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (table_id) REFERENCES gen_table(id) ON DELETE CASCADE,
	UNIQUE (table_id, column_name),
	UNIQUE (table_id, sort)
);

CREATE INDEX IF NOT EXISTS idx_gen_table_column_table ON gen_table_column(table_id);
`

// InitSchema creates or upgrades the schema of database.
func InitSchema(database *sql.DB) error {
	return RunMigrations(database)
}

// GetSchemaSQL returns the authoritative schema for tests.
func GetSchemaSQL() string {
	return SchemaSQL
}
