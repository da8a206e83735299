// Package wire provides dependency injection for the tablegen application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/example/tablegen/internal/adapters/archive"
	cliadapter "github.com/example/tablegen/internal/adapters/cli"
	"github.com/example/tablegen/internal/adapters/filesystem"
	"github.com/example/tablegen/internal/adapters/mysql"
	"github.com/example/tablegen/internal/adapters/postgres"
	"github.com/example/tablegen/internal/adapters/sqlite"
	"github.com/example/tablegen/internal/adapters/web"
	"github.com/example/tablegen/internal/app"
	"github.com/example/tablegen/internal/config"
	"github.com/example/tablegen/internal/db"
	"github.com/example/tablegen/internal/logging"
	"github.com/example/tablegen/internal/ports/primary"
	"github.com/example/tablegen/internal/ports/secondary"
	"github.com/example/tablegen/internal/render"
	"github.com/example/tablegen/internal/templates"
)

var (
	cfg             *config.Config
	logger          *slog.Logger
	genTableService primary.GenTableService
	codegenService  primary.CodegenService
	closers         []func()
	once            sync.Once
)

// Config returns the effective configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the application logger.
func Logger() *slog.Logger {
	once.Do(initServices)
	return logger
}

// GenTableService returns the singleton GenTableService instance.
func GenTableService() primary.GenTableService {
	once.Do(initServices)
	return genTableService
}

// CodegenService returns the singleton CodegenService instance.
func CodegenService() primary.CodegenService {
	once.Do(initServices)
	return codegenService
}

// Close releases database connections and flushes the logger, most recent first.
func Close() {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var flush func()
	logger, flush = logging.SetupLogger(logging.Options{
		Level:  cfg.Log.Level,
		SeqURL: cfg.Log.SeqURL,
		Output: os.Stderr,
	})
	closers = append(closers, flush)

	// Metadata store
	database, err := db.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	closers = append(closers, func() { database.Close() })

	catalog, err := openCatalog(context.Background(), cfg.Catalog, cfg.Store.Path, database)
	if err != nil {
		log.Fatalf("failed to connect to catalog: %v", err)
	}

	store, err := templates.NewStore(cfg.Generator.TemplateDir)
	if err != nil {
		log.Fatalf("failed to load templates: %v", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	tableRepo := sqlite.NewGenTableRepository(database)
	columnRepo := sqlite.NewGenColumnRepository(database)

	// Create services (primary ports implementation)
	genTableService = app.NewGenTableService(tableRepo, columnRepo, sqlite.NewTransactor(database), catalog, logger,
		app.GenTableOptions{TablePrefix: cfg.Generator.TablePrefix, Author: cfg.Generator.Author})
	codegenService = app.NewCodegenService(tableRepo, columnRepo, render.NewRenderer(store),
		archive.NewZipWriter(cfg.Generator.OutputDir), filesystem.NewFileWriter(), logger, cfg.Generator.PackageName)

	logger.Debug("services initialized", "catalog", cfg.Catalog.Driver, "store", cfg.Store.Path)
}

// openCatalog connects to the live database tables are imported from. A
// sqlite catalog pointing at the store reuses its connection.
func openCatalog(ctx context.Context, c config.CatalogConfig, storePath string, store *sql.DB) (secondary.SchemaCatalog, error) {
	switch c.Driver {
	case config.DriverMySQL:
		conn, err := mysql.Open(ctx, c.DSN)
		if err != nil {
			return nil, err
		}
		closers = append(closers, func() { conn.Close() })
		return mysql.NewCatalog(conn), nil
	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, c.DSN)
		if err != nil {
			return nil, err
		}
		closers = append(closers, pool.Close)
		return postgres.NewCatalog(pool, c.Schema), nil
	case config.DriverSQLite:
		if c.DSN == "" || c.DSN == storePath {
			return sqlite.NewCatalog(store), nil
		}
		conn, err := sql.Open("sqlite3", db.DSN(c.DSN))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite catalog: %w", err)
		}
		closers = append(closers, func() { conn.Close() })
		return sqlite.NewCatalog(conn), nil
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", c.Driver)
	}
}

// GenTableAdapter returns a new GenTableAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func GenTableAdapter() *cliadapter.GenTableAdapter {
	return GenTableAdapterWithOutput(os.Stdout)
}

// GenTableAdapterWithOutput returns a new GenTableAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func GenTableAdapterWithOutput(out io.Writer) *cliadapter.GenTableAdapter {
	once.Do(initServices)
	return cliadapter.NewGenTableAdapter(genTableService, out)
}

// CodegenAdapter returns a new CodegenAdapter writing to stdout.
func CodegenAdapter() *cliadapter.CodegenAdapter {
	return CodegenAdapterWithOutput(os.Stdout)
}

// CodegenAdapterWithOutput returns a new CodegenAdapter writing to the given output.
func CodegenAdapterWithOutput(out io.Writer) *cliadapter.CodegenAdapter {
	once.Do(initServices)
	return cliadapter.NewCodegenAdapter(codegenService, out)
}

// HTTPServer returns an HTTP server over the singleton services. An empty
// addr uses the configured one.
func HTTPServer(addr string) *http.Server {
	once.Do(initServices)
	if addr == "" {
		addr = cfg.Server.Addr
	}
	return web.NewServer(web.Options{Addr: addr, AllowOrigins: cfg.Server.AllowOrigins},
		genTableService, codegenService, logger)
}
