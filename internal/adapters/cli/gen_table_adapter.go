// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/example/tablegen/internal/ports/primary"
)

// Output formats accepted by Show.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

var (
	okMark      = color.New(color.FgGreen).Sprint("✓")
	addedMark   = color.New(color.FgGreen).Sprint("+")
	removedMark = color.New(color.FgRed).Sprint("-")
)

// GenTableAdapter is a thin adapter that translates CLI operations to GenTableService calls.
// It depends only on the GenTableService interface, enabling easy testing with mocks.
type GenTableAdapter struct {
	service primary.GenTableService
	out     io.Writer
}

// NewGenTableAdapter creates a new GenTableAdapter with the given service.
func NewGenTableAdapter(service primary.GenTableService, out io.Writer) *GenTableAdapter {
	return &GenTableAdapter{
		service: service,
		out:     out,
	}
}

// ListDb lists live tables that can be imported.
func (a *GenTableAdapter) ListDb(ctx context.Context, req primary.ListDbTablesRequest) error {
	page, err := a.service.ListDbTables(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to list database tables: %w", err)
	}

	if len(page.Rows) == 0 {
		fmt.Fprintln(a.out, "No database tables found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tCOMMENT\tCREATED\tUPDATED")
	for _, t := range page.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.TableName, dash(t.TableComment), dash(t.CreateTime), dash(t.UpdateTime))
	}
	w.Flush()
	fmt.Fprintf(a.out, "\n%d of %d table(s)\n", len(page.Rows), page.Total)
	return nil
}

// List lists imported tables.
func (a *GenTableAdapter) List(ctx context.Context, req primary.ListTablesRequest) error {
	page, err := a.service.ListTables(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	if len(page.Rows) == 0 {
		fmt.Fprintln(a.out, "No imported tables found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTABLE\tENTITY\tMODULE\tTPL\tUPDATED")
	for _, t := range page.Rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.TableName, t.EntityName, t.ModuleName, t.GenTpl, t.UpdatedAt)
	}
	w.Flush()
	fmt.Fprintf(a.out, "\n%d of %d table(s)\n", len(page.Rows), page.Total)
	return nil
}

// Show displays an imported table with its columns.
func (a *GenTableAdapter) Show(ctx context.Context, tableID int64, format string) error {
	detail, err := a.service.GetTable(ctx, tableID)
	if err != nil {
		return err
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(detail); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(detail)
	case FormatText, "":
	default:
		return fmt.Errorf("unknown format %q: use %s, %s or %s", format, FormatText, FormatYAML, FormatJSON)
	}

	t := detail.Table
	fmt.Fprintf(a.out, "\nTable:    %s (%d)\n", t.TableName, t.ID)
	if t.TableComment != "" {
		fmt.Fprintf(a.out, "Comment:  %s\n", t.TableComment)
	}
	fmt.Fprintf(a.out, "Entity:   %s\n", t.EntityName)
	fmt.Fprintf(a.out, "Module:   %s\n", t.ModuleName)
	fmt.Fprintf(a.out, "Function: %s\n", t.FunctionName)
	fmt.Fprintf(a.out, "Template: %s\n", t.GenTpl)
	if t.SubTableName != "" {
		fmt.Fprintf(a.out, "Sub-table: %s (fk %s)\n", t.SubTableName, t.SubTableFk)
	}
	fmt.Fprintln(a.out)

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCOLUMN\tTYPE\tFIELD\tLOGICAL\tWIDGET\tQUERY\tDICT\tFLAGS")
	for _, c := range detail.Columns {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Sort, c.ColumnName, c.ColumnType, c.FieldName, c.LogicalType,
			c.HTMLType, c.QueryType, dash(c.DictType), columnFlags(c))
	}
	w.Flush()
	fmt.Fprintln(a.out)
	return nil
}

// Import imports live tables.
func (a *GenTableAdapter) Import(ctx context.Context, names []string) error {
	resp, err := a.service.ImportTables(ctx, primary.ImportTablesRequest{TableNames: names})
	if err != nil {
		return err
	}

	for _, t := range resp.Tables {
		fmt.Fprintf(a.out, "%s Imported %s as %s (id %d)\n", okMark, t.TableName, t.EntityName, t.ID)
	}
	return nil
}

// Sync re-introspects a table and reports the merge.
func (a *GenTableAdapter) Sync(ctx context.Context, tableID int64) error {
	resp, err := a.service.SyncTable(ctx, tableID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Table %d synchronized: %d updated, %d added, %d removed\n",
		okMark, resp.TableID, len(resp.Updated), len(resp.Added), len(resp.Removed))
	for _, name := range resp.Added {
		fmt.Fprintf(a.out, "  %s %s\n", addedMark, name)
	}
	for _, name := range resp.Removed {
		fmt.Fprintf(a.out, "  %s %s\n", removedMark, name)
	}
	return nil
}

// EditFromYAML applies a table document in the format printed by
// Show with FormatYAML.
func (a *GenTableAdapter) EditFromYAML(ctx context.Context, tableID int64, r io.Reader) error {
	var detail primary.GenTableDetail
	if err := yaml.NewDecoder(r).Decode(&detail); err != nil {
		return fmt.Errorf("failed to parse table document: %w", err)
	}
	if detail.Table == nil {
		return fmt.Errorf("table document has no table section")
	}

	req := EditRequestFromDetail(&detail)
	req.TableID = tableID
	if _, err := a.service.EditTable(ctx, req); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Table %d updated (%d column(s))\n", okMark, tableID, len(req.Columns))
	return nil
}

// ColumnPatch holds the column fields to change; nil fields are kept.
type ColumnPatch struct {
	HTMLType   *string
	QueryType  *string
	DictType   *string
	IsRequired *bool
	IsListable *bool
	IsQuery    *bool
}

// EditColumn changes one column of a table, keeping every other setting.
func (a *GenTableAdapter) EditColumn(ctx context.Context, tableID int64, columnName string, patch ColumnPatch) error {
	detail, err := a.service.GetTable(ctx, tableID)
	if err != nil {
		return err
	}

	req := EditRequestFromDetail(detail)
	found := false
	for i := range req.Columns {
		c := &req.Columns[i]
		if detail.Columns[i].ColumnName != columnName {
			continue
		}
		found = true
		if patch.HTMLType != nil {
			c.HTMLType = *patch.HTMLType
		}
		if patch.QueryType != nil {
			c.QueryType = *patch.QueryType
		}
		if patch.DictType != nil {
			c.DictType = *patch.DictType
		}
		if patch.IsRequired != nil {
			c.IsRequired = *patch.IsRequired
		}
		if patch.IsListable != nil {
			c.IsListable = *patch.IsListable
		}
		if patch.IsQuery != nil {
			c.IsQueryable = *patch.IsQuery
		}
		req.Columns = []primary.EditColumnRequest{*c}
		break
	}
	if !found {
		return fmt.Errorf("table %d has no column %q", tableID, columnName)
	}

	if _, err := a.service.EditTable(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Column %s of table %d updated\n", okMark, columnName, tableID)
	return nil
}

// Delete deletes imported tables.
func (a *GenTableAdapter) Delete(ctx context.Context, tableIDs []int64) error {
	n, err := a.service.DeleteTables(ctx, tableIDs)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Deleted %d table(s)\n", okMark, n)
	return nil
}

// EditRequestFromDetail builds an edit request that leaves a table unchanged.
func EditRequestFromDetail(detail *primary.GenTableDetail) primary.EditTableRequest {
	t := detail.Table
	req := primary.EditTableRequest{
		TableID:      t.ID,
		TableComment: t.TableComment,
		EntityName:   t.EntityName,
		ModuleName:   t.ModuleName,
		FunctionName: t.FunctionName,
		AuthorName:   t.AuthorName,
		Remarks:      t.Remarks,
		GenTpl:       t.GenTpl,
		SubTableName: t.SubTableName,
		SubTableFk:   t.SubTableFk,
		TreePrimary:  t.TreePrimary,
		TreeParent:   t.TreeParent,
		TreeName:     t.TreeName,
		Columns:      make([]primary.EditColumnRequest, len(detail.Columns)),
	}
	for i, c := range detail.Columns {
		req.Columns[i] = primary.EditColumnRequest{
			ID:            c.ID,
			ColumnComment: c.ColumnComment,
			FieldName:     c.FieldName,
			LogicalType:   c.LogicalType,
			HTMLType:      c.HTMLType,
			QueryType:     c.QueryType,
			DictType:      c.DictType,
			IsRequired:    c.IsRequired,
			IsInsertable:  c.IsInsertable,
			IsEditable:    c.IsEditable,
			IsListable:    c.IsListable,
			IsQueryable:   c.IsQueryable,
		}
	}
	return req
}

// columnFlags renders the boolean column settings as a compact string, e.g. "PK,AI,R,I,E,L,Q".
func columnFlags(c *primary.GenColumn) string {
	var flags []byte
	add := func(on bool, flag string) {
		if !on {
			return
		}
		if len(flags) > 0 {
			flags = append(flags, ',')
		}
		flags = append(flags, flag...)
	}
	add(c.IsPk, "PK")
	add(c.IsIncrement, "AI")
	add(c.IsRequired, "R")
	add(c.IsInsertable, "I")
	add(c.IsEditable, "E")
	add(c.IsListable, "L")
	add(c.IsQueryable, "Q")
	if len(flags) == 0 {
		return "-"
	}
	return string(flags)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
