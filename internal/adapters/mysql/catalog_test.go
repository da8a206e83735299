package mysql

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/tablegen/internal/apperr"
	"github.com/example/tablegen/internal/ports/secondary"
)

func TestListTablesQueries(t *testing.T) {
	tests := []struct {
		name          string
		filter        secondary.CatalogFilter
		wantInWhere   []string
		wantCountArgs int
		wantPageArgs  int
	}{
		{
			name:          "no filters",
			filter:        secondary.CatalogFilter{},
			wantInWhere:   []string{"table_schema = (SELECT DATABASE())", "NOT IN (?, ?)"},
			wantCountArgs: 3,
			wantPageArgs:  3,
		},
		{
			name:          "name and comment",
			filter:        secondary.CatalogFilter{TableName: "order", TableComment: "订单"},
			wantInWhere:   []string{"LOWER(table_name) LIKE LOWER(?)", "LOWER(table_comment) LIKE LOWER(?)"},
			wantCountArgs: 5,
			wantPageArgs:  5,
		},
		{
			name:          "paged",
			filter:        secondary.CatalogFilter{Limit: 10, Offset: 20},
			wantInWhere:   []string{"LIMIT ? OFFSET ?"},
			wantCountArgs: 3,
			wantPageArgs:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, page, countArgs, pageArgs := listTablesQueries(tt.filter)

			for _, want := range tt.wantInWhere {
				if !strings.Contains(page, want) {
					t.Errorf("page query missing %q:\n%s", want, page)
				}
			}
			if strings.Contains(count, "LIMIT") {
				t.Errorf("count query must not be paged:\n%s", count)
			}
			if len(countArgs) != tt.wantCountArgs {
				t.Errorf("expected %d count args, got %d", tt.wantCountArgs, len(countArgs))
			}
			if len(pageArgs) != tt.wantPageArgs {
				t.Errorf("expected %d page args, got %d", tt.wantPageArgs, len(pageArgs))
			}
		})
	}
}

func TestListTablesQueries_BindsFilterValues(t *testing.T) {
	hostile := "x' OR '1'='1"
	count, page, _, pageArgs := listTablesQueries(secondary.CatalogFilter{TableName: hostile})

	if strings.Contains(count, hostile) || strings.Contains(page, hostile) {
		t.Fatal("filter value must not appear in query text")
	}
	if pageArgs[len(pageArgs)-1] != "%"+hostile+"%" {
		t.Errorf("expected bound pattern, got %v", pageArgs[len(pageArgs)-1])
	}
}

func TestListTablesQueries_ExcludesHiddenTables(t *testing.T) {
	_, _, args, _ := listTablesQueries(secondary.CatalogFilter{})

	if args[0] != `qrtz\_%` {
		t.Errorf("expected escaped scheduler prefix, got %v", args[0])
	}
	if args[1] != "gen_table" || args[2] != "gen_table_column" {
		t.Errorf("expected metadata tables, got %v", args[1:3])
	}
}

func TestColumnRow_ToLive(t *testing.T) {
	tests := []struct {
		name          string
		row           columnRow
		wantPk        bool
		wantRequired  bool
		wantIncrement bool
	}{
		{"auto increment pk", columnRow{name: "id", columnType: "bigint unsigned", key: "PRI", nullable: "NO", extra: "auto_increment"}, true, false, true},
		{"not null column", columnRow{name: "title", columnType: "varchar(100)", nullable: "NO"}, false, true, false},
		{"nullable column", columnRow{name: "remark", columnType: "varchar(255)", nullable: "YES"}, false, false, false},
		{"unique key is not pk", columnRow{name: "sn", columnType: "varchar(32)", key: "UNI", nullable: "NO"}, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := tt.row.toLive()
			if live.IsPk != tt.wantPk {
				t.Errorf("IsPk = %v, want %v", live.IsPk, tt.wantPk)
			}
			if live.IsRequired != tt.wantRequired {
				t.Errorf("IsRequired = %v, want %v", live.IsRequired, tt.wantRequired)
			}
			if live.IsIncrement != tt.wantIncrement {
				t.Errorf("IsIncrement = %v, want %v", live.IsIncrement, tt.wantIncrement)
			}
			if live.ColumnType != tt.row.columnType {
				t.Errorf("ColumnType = %q, want %q", live.ColumnType, tt.row.columnType)
			}
		})
	}
}

func TestCatalog_ListColumns_RejectsInvalidName(t *testing.T) {
	catalog := NewCatalog(nil)

	_, err := catalog.ListColumns(context.Background(), "orders; DROP TABLE x")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestOpen_RequiresDatabaseName(t *testing.T) {
	_, err := Open(context.Background(), "root:secret@tcp(127.0.0.1:3306)/")
	if err == nil || !strings.Contains(err.Error(), "must name a database") {
		t.Errorf("expected missing database error, got %v", err)
	}
}
