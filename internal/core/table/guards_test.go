package table

import "testing"

func TestCanEditTable(t *testing.T) {
	base := EditTableContext{
		TableID:     1,
		GenTpl:      TplCRUD,
		EntityName:  "DemoOrder",
		ModuleName:  "order",
		ColumnNames: []string{"id", "pid", "name"},
		OwnedIDs:    []int64{10, 11, 12},
	}

	tests := []struct {
		name        string
		mutate      func(*EditTableContext)
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "plain crud edit",
			mutate:      func(c *EditTableContext) {},
			wantAllowed: true,
		},
		{
			name:        "unknown template",
			mutate:      func(c *EditTableContext) { c.GenTpl = "sub" },
			wantAllowed: false,
			wantReason:  `invalid gen_tpl "sub": must be "crud" or "tree"`,
		},
		{
			name:        "bad module name",
			mutate:      func(c *EditTableContext) { c.ModuleName = "or der" },
			wantAllowed: false,
			wantReason:  `invalid module name "or der"`,
		},
		{
			name:        "tree without sub table",
			mutate:      func(c *EditTableContext) { c.GenTpl = TplTree },
			wantAllowed: false,
			wantReason:  "table 1: tree mode requires sub_table_name and sub_table_fk",
		},
		{
			name: "tree with sub table",
			mutate: func(c *EditTableContext) {
				c.GenTpl = TplTree
				c.SubTableName = "demo_order_item"
				c.SubTableFk = "order_id"
				c.TreeParent = "pid"
			},
			wantAllowed: true,
		},
		{
			name:        "tree option references missing column",
			mutate:      func(c *EditTableContext) { c.TreeName = "title" },
			wantAllowed: false,
			wantReason:  `tree_name "title" is not a column of table 1`,
		},
		{
			name:        "foreign column id",
			mutate:      func(c *EditTableContext) { c.EditedIDs = []int64{10, 99} },
			wantAllowed: false,
			wantReason:  "column 99 does not belong to table 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := base
			tt.mutate(&ctx)
			result := CanEditTable(ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
			if tt.wantAllowed && result.Error() != nil {
				t.Errorf("Error() = %v, want nil", result.Error())
			}
		})
	}
}
