package table

import "fmt"

// Generation modes.
const (
	TplCRUD = "crud"
	TplTree = "tree"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// EditTableContext provides context for table edit guards.
type EditTableContext struct {
	TableID      int64
	GenTpl       string
	ModuleName   string
	EntityName   string
	SubTableName string
	SubTableFk   string
	TreePrimary  string
	TreeParent   string
	TreeName     string
	ColumnNames  []string // stored columns of the table
	EditedIDs    []int64  // column ids present in the request
	OwnedIDs     []int64  // column ids owned by the table
}

// CanEditTable evaluates whether a manual edit of table metadata is valid.
// Rules:
// - GenTpl must be crud or tree
// - EntityName and ModuleName must be identifiers
// - Tree mode needs a sub-table name and foreign key
// - Tree options must reference existing columns
// - Edited columns must belong to the table
func CanEditTable(ctx EditTableContext) GuardResult {
	if ctx.GenTpl != TplCRUD && ctx.GenTpl != TplTree {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("invalid gen_tpl %q: must be %q or %q", ctx.GenTpl, TplCRUD, TplTree),
		}
	}

	if !IsValidIdentifier(ctx.EntityName) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("invalid entity name %q", ctx.EntityName)}
	}
	if !IsValidIdentifier(ctx.ModuleName) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("invalid module name %q", ctx.ModuleName)}
	}

	if ctx.GenTpl == TplTree {
		if ctx.SubTableName == "" || ctx.SubTableFk == "" {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("table %d: tree mode requires sub_table_name and sub_table_fk", ctx.TableID),
			}
		}
		if !IsValidIdentifier(ctx.SubTableName) || !IsValidIdentifier(ctx.SubTableFk) {
			return GuardResult{Allowed: false, Reason: "sub_table_name and sub_table_fk must be identifiers"}
		}
	}

	known := make(map[string]bool, len(ctx.ColumnNames))
	for _, name := range ctx.ColumnNames {
		known[name] = true
	}
	for label, name := range map[string]string{
		"tree_primary": ctx.TreePrimary,
		"tree_parent":  ctx.TreeParent,
		"tree_name":    ctx.TreeName,
	} {
		if name != "" && !known[name] {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("%s %q is not a column of table %d", label, name, ctx.TableID),
			}
		}
	}

	owned := make(map[int64]bool, len(ctx.OwnedIDs))
	for _, id := range ctx.OwnedIDs {
		owned[id] = true
	}
	for _, id := range ctx.EditedIDs {
		if !owned[id] {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("column %d does not belong to table %d", id, ctx.TableID),
			}
		}
	}

	return GuardResult{Allowed: true}
}
