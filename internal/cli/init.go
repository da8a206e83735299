package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/tablegen/internal/config"
	"github.com/example/tablegen/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var (
		driver, dsn, schema string
		storePath           string
		packageName         string
		outputDir           string
		prefix, author      string
		force               bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize tablegen in the current directory",
		Long: `Write .tablegen/config.json and create the metadata store.

Examples:
  tablegen init
  tablegen init --driver mysql --dsn "root:secret@tcp(localhost:3306)/shop" --package shop
  tablegen init --driver postgres --dsn postgres://localhost/shop --schema public --prefix t_`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadConfig("."); !force {
				if err == nil {
					return fmt.Errorf("config already exists at %s (use --force to overwrite)", filepath.Join(".tablegen", "config.json"))
				}
				if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}

			cfg := config.Default()
			cfg.Catalog = config.CatalogConfig{Driver: driver, DSN: dsn, Schema: schema}
			if storePath != "" {
				cfg.Store.Path = storePath
			}
			if packageName != "" {
				cfg.Generator.PackageName = packageName
			}
			if outputDir != "" {
				cfg.Generator.OutputDir = outputDir
			}
			cfg.Generator.TablePrefix = prefix
			cfg.Generator.Author = author

			if err := cfg.Validate(); err != nil {
				return err
			}

			database, err := db.Open(cfg.Store.Path)
			if err != nil {
				return fmt.Errorf("failed to initialize store: %w", err)
			}
			database.Close()

			if err := config.SaveConfig(".", cfg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Metadata store ready at %s\n", cfg.Store.Path)
			fmt.Fprintf(out, "✓ Config written to %s\n", filepath.Join(".tablegen", "config.json"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  tablegen db list")
			fmt.Fprintln(out, "  tablegen table import <table>")
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "driver", config.DriverSQLite, "Catalog driver (sqlite, mysql, postgres)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Catalog connection string (sqlite: database path)")
	cmd.Flags().StringVar(&schema, "schema", "", "Postgres schema to introspect")
	cmd.Flags().StringVar(&storePath, "store", "", "Metadata store path")
	cmd.Flags().StringVar(&packageName, "package", "", "Package name used by generated code")
	cmd.Flags().StringVar(&outputDir, "output", "", "Default output directory for gen write")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Table prefix stripped from entity names")
	cmd.Flags().StringVar(&author, "author", os.Getenv("USER"), "Author recorded on imported tables")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")

	return cmd
}
