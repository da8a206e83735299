package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/tablegen/internal/ports/primary"
	"github.com/example/tablegen/internal/wire"
)

// DbCmd returns the db command
func DbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Browse the live database",
		Long:  `Browse the tables of the configured catalog database that can be imported.`,
	}

	cmd.AddCommand(dbListCmd())

	return cmd
}

func dbListCmd() *cobra.Command {
	var req primary.ListDbTablesRequest

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List live tables that are not yet imported",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.GenTableAdapterWithOutput(cmd.OutOrStdout()).ListDb(cmd.Context(), req)
		},
	}

	cmd.Flags().StringVarP(&req.TableName, "name", "n", "", "Filter by table name (substring)")
	cmd.Flags().StringVarP(&req.TableComment, "comment", "c", "", "Filter by table comment (substring)")
	cmd.Flags().IntVar(&req.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&req.PageSize, "page-size", 0, "Rows per page (0 lists all)")

	return cmd
}
