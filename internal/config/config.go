package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Catalog drivers
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config represents the tablegen configuration
type Config struct {
	Version   string          `json:"version"`
	Catalog   CatalogConfig   `json:"catalog"`
	Store     StoreConfig     `json:"store"`
	Generator GeneratorConfig `json:"generator"`
	Server    ServerConfig    `json:"server"`
	Log       LogConfig       `json:"log"`
}

// CatalogConfig selects the live database that tables are imported from.
type CatalogConfig struct {
	Driver string `json:"driver"`           // sqlite, mysql or postgres
	DSN    string `json:"dsn,omitempty"`    // sqlite path or driver DSN
	Schema string `json:"schema,omitempty"` // postgres only
}

// StoreConfig locates the generator metadata database.
type StoreConfig struct {
	Path string `json:"path"`
}

// GeneratorConfig controls naming and output of generated code.
type GeneratorConfig struct {
	TablePrefix string `json:"table_prefix,omitempty"` // stripped when deriving entity names
	Author      string `json:"author,omitempty"`
	PackageName string `json:"package_name"`
	OutputDir   string `json:"output_dir"`
	TemplateDir string `json:"template_dir,omitempty"` // overrides the embedded templates
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string   `json:"addr"`
	AllowOrigins []string `json:"allow_origins,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level"`
	SeqURL string `json:"seq_url,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	storePath := filepath.Join(".tablegen", "tablegen.db")
	if home, err := os.UserHomeDir(); err == nil {
		storePath = filepath.Join(home, ".tablegen", "tablegen.db")
	}

	return &Config{
		Version: "1",
		Catalog: CatalogConfig{Driver: DriverSQLite},
		Store:   StoreConfig{Path: storePath},
		Generator: GeneratorConfig{
			PackageName: "app",
			OutputDir:   "generated",
		},
		Server: ServerConfig{
			Addr:         ":8089",
			AllowOrigins: []string{"*"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load resolves the effective configuration for dir: .env first, then
// .tablegen/config.json when present, then TABLEGEN_* environment overrides.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := LoadConfig(dir)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	applyEnv(cfg, os.Getenv)

	if cfg.Catalog.Driver == DriverSQLite && cfg.Catalog.DSN == "" {
		cfg.Catalog.DSN = cfg.Store.Path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields with non-empty TABLEGEN_* variables.
func applyEnv(cfg *Config, getenv func(string) string) {
	overrides := []struct {
		key    string
		target *string
	}{
		{"TABLEGEN_CATALOG_DRIVER", &cfg.Catalog.Driver},
		{"TABLEGEN_CATALOG_DSN", &cfg.Catalog.DSN},
		{"TABLEGEN_CATALOG_SCHEMA", &cfg.Catalog.Schema},
		{"TABLEGEN_STORE_PATH", &cfg.Store.Path},
		{"TABLEGEN_TABLE_PREFIX", &cfg.Generator.TablePrefix},
		{"TABLEGEN_AUTHOR", &cfg.Generator.Author},
		{"TABLEGEN_OUTPUT_DIR", &cfg.Generator.OutputDir},
		{"TABLEGEN_TEMPLATE_DIR", &cfg.Generator.TemplateDir},
		{"TABLEGEN_ADDR", &cfg.Server.Addr},
		{"TABLEGEN_SEQ_URL", &cfg.Log.SeqURL},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(getenv(o.key)); v != "" {
			*o.target = v
		}
	}
}

// Validate checks the configuration for values no command can work with.
func (c *Config) Validate() error {
	switch c.Catalog.Driver {
	case DriverSQLite:
	case DriverMySQL, DriverPostgres:
		if c.Catalog.DSN == "" {
			return fmt.Errorf("catalog driver %s requires a dsn", c.Catalog.Driver)
		}
	default:
		return fmt.Errorf("unknown catalog driver %q: must be sqlite, mysql or postgres", c.Catalog.Driver)
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}
	if c.Generator.OutputDir == "" {
		return fmt.Errorf("generator output dir is required")
	}
	return nil
}

// LoadConfig reads .tablegen/config.json from the specified directory.
// Resolution order: cwd only (no home fallback).
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".tablegen", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	cfgDir := filepath.Join(dir, ".tablegen")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("failed to create .tablegen dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(cfgDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
