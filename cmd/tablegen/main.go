package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/tablegen/internal/cli"
	"github.com/example/tablegen/internal/version"
	"github.com/example/tablegen/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "tablegen",
		Short:   "tablegen - CRUD code generator driven by live database tables",
		Version: version.String(),
		Long: `tablegen imports live database tables as editable metadata and renders
backend and admin UI code from it.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DbCmd())
	rootCmd.AddCommand(cli.TableCmd())
	rootCmd.AddCommand(cli.GenCmd())
	rootCmd.AddCommand(cli.ServeCmd())

	err := rootCmd.ExecuteContext(context.Background())
	wire.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
