// Package cli provides CLI commands for tablegen.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/tablegen/internal/adapters/cli"
	"github.com/example/tablegen/internal/ports/primary"
	"github.com/example/tablegen/internal/wire"
)

// TableCmd returns the table command
func TableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage imported tables",
		Long:  `Import live tables and edit the metadata code generation reads.`,
	}

	cmd.AddCommand(tableImportCmd())
	cmd.AddCommand(tableListCmd())
	cmd.AddCommand(tableShowCmd())
	cmd.AddCommand(tableEditCmd())
	cmd.AddCommand(tableColumnCmd())
	cmd.AddCommand(tableSyncCmd())
	cmd.AddCommand(tableDeleteCmd())

	return cmd
}

func tableImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [table...]",
		Short: "Import live tables",
		Long: `Import one or more live tables in a single transaction.

Examples:
  tablegen table import demo_order
  tablegen table import demo_order demo_order_item`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.GenTableAdapterWithOutput(cmd.OutOrStdout()).Import(cmd.Context(), args)
		},
	}
}

func tableListCmd() *cobra.Command {
	var req primary.ListTablesRequest

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.GenTableAdapterWithOutput(cmd.OutOrStdout()).List(cmd.Context(), req)
		},
	}

	cmd.Flags().StringVarP(&req.TableName, "name", "n", "", "Filter by table name (substring)")
	cmd.Flags().StringVarP(&req.TableComment, "comment", "c", "", "Filter by table comment (substring)")
	cmd.Flags().IntVar(&req.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&req.PageSize, "page-size", 0, "Rows per page (0 lists all)")

	return cmd
}

func tableShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [table-id]",
		Short: "Show a table with its columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return wire.GenTableAdapterWithOutput(cmd.OutOrStdout()).Show(cmd.Context(), id, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", cliadapter.FormatText, "Output format (text, yaml, json)")

	return cmd
}

func tableEditCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "edit [table-id]",
		Short: "Apply a table document",
		Long: `Apply a table document in the format printed by "table show --format yaml".

Examples:
  tablegen table show 3 -o yaml > order.yaml
  tablegen table edit 3 --file order.yaml
  tablegen table show 3 -o yaml | sed 's/gen_tpl: crud/gen_tpl: tree/' | tablegen table edit 3 --file -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open table document: %w", err)
				}
				defer f.Close()
				in = f
			}

			return wire.GenTableAdapterWithOutput(cmd.OutOrStdout()).EditFromYAML(cmd.Context(), id, in)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Table document to apply (- for stdin)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func tableColumnCmd() *cobra.Command {
	var (
		htmlType, queryType, dictType string
		required, listable, queryable bool
	)

	cmd := &cobra.Command{
		Use:   "column [table-id] [column]",
		Short: "Change one column",
		Long: `Change the widget, query or flags of one column. Unset flags are kept.

Examples:
  tablegen table column 3 status --html select --dict order_status
  tablegen table column 3 remark --list=false --query-flag=false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var patch cliadapter.ColumnPatch
			flags := cmd.Flags()
			if flags.Changed("html") {
				patch.HTMLType = &htmlType
			}
			if flags.Changed("query") {
				patch.QueryType = &queryType
			}
			if flags.Changed("dict") {
				patch.DictType = &dictType
			}
			if flags.Changed("required") {
				patch.IsRequired = &required
			}
			if flags.Changed("list") {
				patch.IsListable = &listable
			}
			if flags.Changed("query-flag") {
				patch.IsQuery = &queryable
			}

			return wire.GenTableAdapterWithOutput(cmd.OutOrStdout()).EditColumn(cmd.Context(), id, args[1], patch)
		},
	}

	cmd.Flags().StringVar(&htmlType, "html", "", "Form widget (input, textarea, select, radio, checkbox, datetime, imageUpload, fileUpload, editor)")
	cmd.Flags().StringVar(&queryType, "query", "", "Query operator (=, LIKE)")
	cmd.Flags().StringVar(&dictType, "dict", "", "Dictionary type backing the widget")
	cmd.Flags().BoolVar(&required, "required", false, "Column is required")
	cmd.Flags().BoolVar(&listable, "list", false, "Column is shown in lists")
	cmd.Flags().BoolVar(&queryable, "query-flag", false, "Column is a query condition")

	return cmd
}

func tableSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [table-id]",
		Short: "Re-introspect a table and merge the live columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return wire.GenTableAdapterWithOutput(cmd.OutOrStdout()).Sync(cmd.Context(), id)
		},
	}
}

func tableDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [table-id...]",
		Short: "Delete imported tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return wire.GenTableAdapterWithOutput(cmd.OutOrStdout()).Delete(cmd.Context(), ids)
		},
	}
}
