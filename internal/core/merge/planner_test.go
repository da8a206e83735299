package merge

import (
	"testing"

	"github.com/example/tablegen/internal/core/column"
)

func live(name, rawType string, pos int, pk, required bool) LiveColumn {
	return LiveColumn{
		ColumnName: name,
		ColumnType: rawType,
		Position:   pos,
		IsPk:       pk,
		Classification: column.Classify(column.Descriptor{
			Name:       name,
			RawType:    rawType,
			IsPk:       pk,
			IsRequired: required,
		}),
	}
}

func storedFrom(id int64, c Column) StoredColumn {
	return StoredColumn{
		ID:           id,
		ColumnName:   c.ColumnName,
		Sort:         c.Sort,
		HTMLType:     c.HTMLType,
		QueryType:    c.QueryType,
		DictType:     c.DictType,
		IsPk:         c.IsPk,
		IsRequired:   c.IsRequired,
		IsInsertable: c.IsInsertable,
		IsEditable:   c.IsEditable,
	}
}

func TestPlanSync_ThreeWay(t *testing.T) {
	stored := []StoredColumn{
		{ID: 1, ColumnName: "id", Sort: 1, HTMLType: column.HTMLInput, IsPk: true, IsEditable: true},
		{ID: 2, ColumnName: "order_no", Sort: 2, HTMLType: column.HTMLInput, IsRequired: true, IsInsertable: true, IsEditable: true},
		{ID: 3, ColumnName: "legacy_flag", Sort: 3, HTMLType: column.HTMLInput, IsInsertable: true, IsEditable: true},
	}
	liveCols := []LiveColumn{
		live("id", "int", 1, true, false),
		live("order_no", "varchar(64)", 2, false, true),
		live("remark", "text", 3, false, false),
	}

	plan := PlanSync(stored, liveCols)

	if len(plan.Updates) != 2 {
		t.Fatalf("Updates = %d, want 2", len(plan.Updates))
	}
	if len(plan.Inserts) != 1 || plan.Inserts[0].ColumnName != "remark" {
		t.Fatalf("Inserts = %+v, want remark", plan.Inserts)
	}
	if plan.Inserts[0].Sort != 4 {
		t.Errorf("inserted Sort = %d, want 4 (after max stored sort)", plan.Inserts[0].Sort)
	}
	if plan.Inserts[0].ID != 0 {
		t.Errorf("inserted ID = %d, want 0", plan.Inserts[0].ID)
	}
	if len(plan.DeleteIDs) != 1 || plan.DeleteIDs[0] != 3 {
		t.Errorf("DeleteIDs = %v, want [3]", plan.DeleteIDs)
	}
	if plan.Updates[1].ID != 2 || plan.Updates[1].Sort != 2 || plan.Updates[1].ColumnType != "varchar(64)" {
		t.Errorf("order_no update = %+v", plan.Updates[1])
	}
}

func TestPlanSync_KeepsManualSelectOnEditableColumn(t *testing.T) {
	stored := []StoredColumn{
		{ID: 7, ColumnName: "channel", Sort: 1, HTMLType: column.HTMLSelect, QueryType: column.QueryEQ, IsInsertable: true, IsEditable: true},
	}

	plan := PlanSync(stored, []LiveColumn{live("channel", "varchar(20)", 1, false, false)})

	if got := plan.Updates[0].HTMLType; got != column.HTMLSelect {
		t.Errorf("HTMLType = %q, want %q", got, column.HTMLSelect)
	}
}

func TestPlanSync_OverrideRules(t *testing.T) {
	tests := []struct {
		name         string
		stored       StoredColumn
		live         LiveColumn
		wantHTML     string
		wantRequired bool
		wantQuery    string
		wantDict     string
	}{
		{
			name:         "non-editable, non-required column takes classification",
			stored:       StoredColumn{ID: 1, ColumnName: "create_time", HTMLType: column.HTMLInput, QueryType: column.QueryEQ},
			live:         live("create_time", "datetime", 1, false, true),
			wantHTML:     column.HTMLDatetime,
			wantRequired: false,
			wantQuery:    column.QueryEQ,
		},
		{
			name:         "required insertable column keeps widget and requiredness",
			stored:       StoredColumn{ID: 1, ColumnName: "amount", HTMLType: column.HTMLRadio, IsRequired: true, IsInsertable: true},
			live:         live("amount", "decimal(10,2)", 1, false, false),
			wantHTML:     column.HTMLRadio,
			wantRequired: true,
			wantQuery:    column.QueryEQ,
		},
		{
			name:         "required primary key not editable takes classification",
			stored:       StoredColumn{ID: 1, ColumnName: "code", HTMLType: column.HTMLSelect, QueryType: column.QueryEQ, IsPk: true, IsRequired: true, IsInsertable: true},
			live:         live("code", "varchar(10)", 1, true, false),
			wantHTML:     column.HTMLInput,
			wantRequired: false,
			wantQuery:    column.QueryEQ,
		},
		{
			name:      "hidden column keeps dict and query type",
			stored:    StoredColumn{ID: 1, ColumnName: "content", HTMLType: column.HTMLEditor, QueryType: column.QueryLike, DictType: "article_kind", IsEditable: true},
			live:      live("content", "text", 1, false, false),
			wantHTML:  column.HTMLEditor,
			wantQuery: column.QueryLike,
			wantDict:  "article_kind",
		},
		{
			name:      "listable column resets dict and query type",
			stored:    StoredColumn{ID: 1, ColumnName: "status", HTMLType: column.HTMLRadio, QueryType: column.QueryLike, DictType: "order_status", IsEditable: true},
			live:      live("status", "tinyint", 1, false, false),
			wantHTML:  column.HTMLRadio,
			wantQuery: column.QueryEQ,
			wantDict:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanSync([]StoredColumn{tt.stored}, []LiveColumn{tt.live})
			got := plan.Updates[0]
			if got.HTMLType != tt.wantHTML {
				t.Errorf("HTMLType = %q, want %q", got.HTMLType, tt.wantHTML)
			}
			if got.IsRequired != tt.wantRequired {
				t.Errorf("IsRequired = %v, want %v", got.IsRequired, tt.wantRequired)
			}
			if got.QueryType != tt.wantQuery {
				t.Errorf("QueryType = %q, want %q", got.QueryType, tt.wantQuery)
			}
			if got.DictType != tt.wantDict {
				t.Errorf("DictType = %q, want %q", got.DictType, tt.wantDict)
			}
		})
	}
}

func TestPlanSync_Idempotent(t *testing.T) {
	liveCols := []LiveColumn{
		live("id", "int", 1, true, false),
		live("title", "varchar(100)", 2, false, true),
		live("goods_type", "tinyint", 3, false, false),
		live("intro", "varchar(1000)", 4, false, false),
	}

	// First sync against a store seeded with a manual override.
	stored := []StoredColumn{
		{ID: 1, ColumnName: "id", Sort: 1, IsPk: true, IsEditable: true},
		{ID: 2, ColumnName: "title", Sort: 2, HTMLType: column.HTMLTextarea, IsRequired: true, IsInsertable: true, IsEditable: true},
		{ID: 3, ColumnName: "goods_type", Sort: 3, HTMLType: column.HTMLRadio, IsInsertable: true, IsEditable: true},
		{ID: 4, ColumnName: "intro", Sort: 4, HTMLType: column.HTMLEditor, DictType: "x", IsInsertable: true, IsEditable: true},
	}
	first := PlanSync(stored, liveCols)

	var afterFirst []StoredColumn
	for _, c := range first.Updates {
		afterFirst = append(afterFirst, storedFrom(c.ID, c))
	}
	second := PlanSync(afterFirst, liveCols)

	if len(second.Inserts) != 0 || len(second.DeleteIDs) != 0 {
		t.Fatalf("second sync should only update, got %+v", second)
	}
	for i := range first.Updates {
		if first.Updates[i] != second.Updates[i] {
			t.Errorf("column %s changed between syncs:\n first  %+v\n second %+v",
				first.Updates[i].ColumnName, first.Updates[i], second.Updates[i])
		}
	}
}

func TestKeepsWidget(t *testing.T) {
	tests := []struct {
		name string
		prev StoredColumn
		want bool
	}{
		{"editable", StoredColumn{IsEditable: true}, true},
		{"required insertable", StoredColumn{IsRequired: true, IsInsertable: true}, true},
		{"required pk insertable", StoredColumn{IsRequired: true, IsPk: true, IsInsertable: true}, false},
		{"required not insertable", StoredColumn{IsRequired: true}, false},
		{"nothing", StoredColumn{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeepsWidget(tt.prev); got != tt.want {
				t.Errorf("KeepsWidget() = %v, want %v", got, tt.want)
			}
		})
	}
}
