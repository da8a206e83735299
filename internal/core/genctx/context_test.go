package genctx

import "testing"

func demoColumns() []ColumnInput {
	return []ColumnInput{
		{ColumnName: "remark", LogicalType: "string", HTMLType: "textarea", Sort: 4, IsInsertable: true, IsEditable: true, IsListable: true, IsQueryable: true},
		{ColumnName: "id", ColumnType: "int", LogicalType: "int", Sort: 1, IsPk: true, IsIncrement: true, IsEditable: true},
		{ColumnName: "order_no", ColumnComment: "Order number", LogicalType: "string", Sort: 2, IsInsertable: true, IsEditable: true, IsListable: true, IsQueryable: true},
		{ColumnName: "status", LogicalType: "int", HTMLType: "radio", DictType: "order_status", Sort: 3, IsInsertable: true, IsEditable: true, IsListable: true, IsQueryable: true},
		{ColumnName: "create_time", ColumnType: "int(10) unsigned", LogicalType: "date", Sort: 5},
		{ColumnName: "paid_at", ColumnType: "datetime", LogicalType: "date", Sort: 6, DictType: "order_status"},
	}
}

func TestBuild_CRUD(t *testing.T) {
	ctx := Build(TableInput{
		TableName:  "demo_order",
		EntityName: "DemoOrder",
		ModuleName: "order",
		GenTpl:     "crud",
	}, demoColumns(), nil, Options{PackageName: "demo", GenDate: "2026-10-15"})

	if ctx.EntityCamel != "demoOrder" || ctx.EntitySnake != "demo_order" {
		t.Errorf("entity names = %q, %q", ctx.EntityCamel, ctx.EntitySnake)
	}
	if !ctx.HasPrimaryKey || ctx.PrimaryKey.ColumnName != "id" {
		t.Errorf("PrimaryKey = %+v", ctx.PrimaryKey)
	}

	wantOrder := []string{"id", "order_no", "status", "remark", "create_time", "paid_at"}
	for i, name := range wantOrder {
		if ctx.Columns[i].ColumnName != name {
			t.Errorf("Columns[%d] = %q, want %q", i, ctx.Columns[i].ColumnName, name)
		}
	}

	if len(ctx.InsertColumns) != 3 || len(ctx.ListColumns) != 3 || len(ctx.QueryColumns) != 3 {
		t.Errorf("insert/list/query = %d/%d/%d, want 3/3/3", len(ctx.InsertColumns), len(ctx.ListColumns), len(ctx.QueryColumns))
	}
	if len(ctx.EditColumns) != 4 {
		t.Errorf("EditColumns = %d, want 4", len(ctx.EditColumns))
	}
	if len(ctx.DictTypes) != 1 || ctx.DictTypes[0] != "order_status" {
		t.Errorf("DictTypes = %v", ctx.DictTypes)
	}
	if !ctx.HasTime {
		t.Error("HasTime = false, want true for a datetime column")
	}
	if ctx.IsTree || ctx.SubTable != nil {
		t.Error("crud context must not carry tree data")
	}

	orderNo := ctx.Columns[1]
	if orderNo.GoField != "OrderNo" || orderNo.GoType != "string" || orderNo.Label != "Order number" {
		t.Errorf("order_no view = %+v", orderNo)
	}
	if ctx.Columns[4].GoType != "int64" {
		t.Errorf("integer create_time GoType = %q, want int64", ctx.Columns[4].GoType)
	}
	if ctx.Columns[3].Label != "remark" {
		t.Errorf("empty comment label = %q, want column name", ctx.Columns[3].Label)
	}
}

func TestBuild_TreeWithSubTable(t *testing.T) {
	sub := &SubTableInput{
		TableName:  "demo_order_item",
		EntityName: "DemoOrderItem",
		PrimaryKey: ColumnInput{ColumnName: "id", LogicalType: "int", IsPk: true},
		Columns: []ColumnInput{
			{ColumnName: "id", LogicalType: "int", IsPk: true},
			{ColumnName: "order_id", LogicalType: "int"},
		},
	}

	ctx := Build(TableInput{
		EntityName:   "DemoOrder",
		ModuleName:   "order",
		GenTpl:       "tree",
		SubTableName: "demo_order_item",
		SubTableFk:   "order_id",
		TreeName:     "order_no",
	}, demoColumns(), sub, Options{})

	if !ctx.IsTree {
		t.Fatal("IsTree = false")
	}
	if ctx.Tree.Primary != "id" || ctx.Tree.Parent != "pid" || ctx.Tree.Name != "order_no" {
		t.Errorf("Tree = %+v", ctx.Tree)
	}
	if ctx.SubTable == nil {
		t.Fatal("SubTable = nil")
	}
	if ctx.SubTable.ForeignKey != "order_id" || ctx.SubTable.ModuleName != "item" || len(ctx.SubTable.Columns) != 2 {
		t.Errorf("SubTable = %+v", ctx.SubTable)
	}
	if ctx.SubTable.PrimaryKey.GoField != "Id" {
		t.Errorf("SubTable.PrimaryKey.GoField = %q", ctx.SubTable.PrimaryKey.GoField)
	}
}

func TestBuild_DoesNotReorderInput(t *testing.T) {
	cols := demoColumns()
	Build(TableInput{GenTpl: "crud"}, cols, nil, Options{})
	if cols[0].ColumnName != "remark" {
		t.Errorf("input slice was reordered: first = %q", cols[0].ColumnName)
	}
}
