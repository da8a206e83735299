package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/tablegen/internal/wire"
)

// GenCmd returns the gen command
func GenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate code from imported tables",
		Long:  `Render the template set of imported tables for preview, download or writing to disk.`,
	}

	cmd.AddCommand(genPreviewCmd())
	cmd.AddCommand(genDownloadCmd())
	cmd.AddCommand(genWriteCmd())

	return cmd
}

func genPreviewCmd() *cobra.Command {
	var only string

	cmd := &cobra.Command{
		Use:   "preview [table-id]",
		Short: "Print the rendered files of a table",
		Long: `Print every rendered file of a table, or just one with --only.

Examples:
  tablegen gen preview 3
  tablegen gen preview 3 --only gocode/model.go`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return wire.CodegenAdapterWithOutput(cmd.OutOrStdout()).Preview(cmd.Context(), id, only)
		},
	}

	cmd.Flags().StringVar(&only, "only", "", "Print only this file (e.g. vue/api.ts)")

	return cmd
}

func genDownloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download [table-id...]",
		Short: "Package the code of tables into a zip archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return wire.CodegenAdapterWithOutput(cmd.OutOrStdout()).Download(cmd.Context(), ids, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Copy the archive to this file or directory")

	return cmd
}

func genWriteCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "write [table-id]",
		Short: "Write the code of a table below a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if root == "" {
				root = wire.Config().Generator.OutputDir
			}
			return wire.CodegenAdapterWithOutput(cmd.OutOrStdout()).Write(cmd.Context(), id, root)
		},
	}

	cmd.Flags().StringVarP(&root, "root", "r", "", "Target directory (default: generator output_dir)")

	return cmd
}
