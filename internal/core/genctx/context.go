// Package genctx builds the variable context handed to code templates.
// Building is pure: all inputs are gathered by the caller.
package genctx

import (
	"sort"
	"strings"

	"github.com/example/tablegen/internal/core/column"
	"github.com/example/tablegen/internal/core/table"
)

// TableInput is the table metadata needed for rendering.
type TableInput struct {
	ID           int64
	TableName    string
	TableComment string
	EntityName   string
	ModuleName   string
	FunctionName string
	AuthorName   string
	GenTpl       string
	SubTableName string
	SubTableFk   string
	TreePrimary  string
	TreeParent   string
	TreeName     string
}

// ColumnInput is the column metadata needed for rendering.
type ColumnInput struct {
	ColumnName    string
	ColumnComment string
	ColumnType    string
	ColumnLength  int
	FieldName     string
	LogicalType   string
	HTMLType      string
	QueryType     string
	DictType      string
	Sort          int
	IsPk          bool
	IsIncrement   bool
	IsRequired    bool
	IsInsertable  bool
	IsEditable    bool
	IsListable    bool
	IsQueryable   bool
}

// SubTableInput is the sub-table used by tree mode.
type SubTableInput struct {
	TableName  string
	EntityName string
	PrimaryKey ColumnInput
	Columns    []ColumnInput
}

// Options are values that do not come from metadata.
type Options struct {
	PackageName string
	GenDate     string // preformatted by the caller
}

// Column is a column as seen by templates.
type Column struct {
	ColumnInput
	GoField string // PascalCase field name
	GoType  string
	TSType  string
	Label   string // comment, or the column name when empty
}

// Tree holds tree display options.
type Tree struct {
	Primary string
	Parent  string
	Name    string
}

// SubTable is the sub-table as seen by templates.
type SubTable struct {
	TableName   string
	EntityName  string
	ForeignKey  string
	PrimaryKey  Column
	Columns     []Column
	ModuleName  string
	EntityCamel string
}

// Context is the complete variable set for one table.
type Context struct {
	PackageName   string
	GenDate       string
	TableName     string
	TableComment  string
	EntityName    string
	EntityCamel   string
	EntitySnake   string
	ModuleName    string
	FunctionName  string
	AuthorName    string
	GenTpl        string
	IsTree        bool
	PrimaryKey    Column
	HasPrimaryKey bool
	Columns       []Column
	InsertColumns []Column
	EditColumns   []Column
	ListColumns   []Column
	QueryColumns  []Column
	DictTypes     []string
	HasTime       bool
	Tree          Tree
	SubTable      *SubTable
}

// Build assembles the template context. Columns are ordered by Sort.
// sub is only consulted in tree mode and may be nil.
func Build(t TableInput, cols []ColumnInput, sub *SubTableInput, opts Options) Context {
	ordered := make([]ColumnInput, len(cols))
	copy(ordered, cols)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Sort < ordered[j].Sort })

	ctx := Context{
		PackageName:  opts.PackageName,
		GenDate:      opts.GenDate,
		TableName:    t.TableName,
		TableComment: t.TableComment,
		EntityName:   t.EntityName,
		EntityCamel:  lowerFirst(t.EntityName),
		EntitySnake:  table.ToSnakeCase(t.EntityName),
		ModuleName:   t.ModuleName,
		FunctionName: t.FunctionName,
		AuthorName:   t.AuthorName,
		GenTpl:       t.GenTpl,
		IsTree:       t.GenTpl == table.TplTree,
		Columns:      make([]Column, 0, len(ordered)),
		DictTypes:    []string{},
	}

	dicts := make(map[string]bool)
	for _, in := range ordered {
		c := viewOf(in)
		ctx.Columns = append(ctx.Columns, c)
		if c.IsPk && !ctx.HasPrimaryKey {
			ctx.PrimaryKey = c
			ctx.HasPrimaryKey = true
		}
		if c.IsInsertable {
			ctx.InsertColumns = append(ctx.InsertColumns, c)
		}
		if c.IsEditable {
			ctx.EditColumns = append(ctx.EditColumns, c)
		}
		if c.IsListable {
			ctx.ListColumns = append(ctx.ListColumns, c)
		}
		if c.IsQueryable {
			ctx.QueryColumns = append(ctx.QueryColumns, c)
		}
		if c.DictType != "" && !dicts[c.DictType] {
			dicts[c.DictType] = true
			ctx.DictTypes = append(ctx.DictTypes, c.DictType)
		}
		if c.GoType == "time.Time" {
			ctx.HasTime = true
		}
	}

	if ctx.IsTree {
		ctx.Tree = Tree{
			Primary: defaultString(t.TreePrimary, ctx.PrimaryKey.ColumnName),
			Parent:  defaultString(t.TreeParent, "pid"),
			Name:    defaultString(t.TreeName, "name"),
		}
		if sub != nil {
			st := &SubTable{
				TableName:   sub.TableName,
				EntityName:  sub.EntityName,
				EntityCamel: lowerFirst(sub.EntityName),
				ModuleName:  table.ModuleName(sub.TableName),
				ForeignKey:  t.SubTableFk,
				PrimaryKey:  viewOf(sub.PrimaryKey),
			}
			for _, in := range sub.Columns {
				st.Columns = append(st.Columns, viewOf(in))
			}
			ctx.SubTable = st
		}
	}

	return ctx
}

func viewOf(in ColumnInput) Column {
	field := in.FieldName
	if field == "" {
		field = table.ToCamelCase(in.ColumnName)
	}
	label := strings.TrimSpace(in.ColumnComment)
	if label == "" {
		label = in.ColumnName
	}
	return Column{
		ColumnInput: in,
		GoField:     table.ToPascalCase(field),
		GoType:      GoType(in.LogicalType, in.ColumnType),
		TSType:      TSType(in.LogicalType),
		Label:       label,
	}
}

// GoType maps a logical type to a Go type. Dates stored as integers stay int64.
func GoType(logical, rawType string) string {
	switch logical {
	case column.TypeInt:
		return "int"
	case column.TypeFloat:
		return "float64"
	case column.TypeDate:
		base, _, _, _ := column.ParseType(rawType)
		if strings.Contains(base, "int") {
			return "int64"
		}
		return "time.Time"
	default:
		return "string"
	}
}

// TSType maps a logical type to a TypeScript type.
func TSType(logical string) string {
	switch logical {
	case column.TypeInt, column.TypeFloat:
		return "number"
	default:
		return "string"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
