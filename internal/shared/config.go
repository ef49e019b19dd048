package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

// Storage drivers understood by the repositories package.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Config represents the application configuration loaded from a TOML file.
//
// Environment variables take precedence over the file; see config.example.toml for their names.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Catalog  CatalogConfig  `toml:"catalog" envPrefix:"CATALOG_"`
	Library  LibraryConfig  `toml:"library" envPrefix:"LIBRARY_"`
	Metadata MetadataConfig `toml:"metadata" envPrefix:"METADATA_"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level" env:"LOG_LEVEL"`
}

// ServerConfig contains HTTP settings shared by both services.
type ServerConfig struct {
	RateLimit       float64       `toml:"rate_limit" env:"RATE_LIMIT"`
	Burst           int           `toml:"burst" env:"RATE_BURST"`
	CORSOrigin      string        `toml:"cors_origin" env:"CORS_ORIGIN"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// StorageConfig selects and configures a record store backend.
type StorageConfig struct {
	Driver       string `toml:"driver" env:"DRIVER"`
	Path         string `toml:"path" env:"DATA_PATH"`
	DatabasePath string `toml:"database_path" env:"DATABASE_PATH"`
	Seed         bool   `toml:"seed" env:"SEED"`
	MaxOpenConns int    `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
}

// CatalogConfig contains settings for the track catalog service.
type CatalogConfig struct {
	Host     string        `toml:"host" env:"HOST"`
	Port     int           `toml:"port" env:"PORT"`
	CacheTTL time.Duration `toml:"cache_ttl" env:"CACHE_TTL"`
	Storage  StorageConfig `toml:"storage"`
}

// LibraryConfig contains settings for the playlist library service.
type LibraryConfig struct {
	Host    string        `toml:"host" env:"HOST"`
	Port    int           `toml:"port" env:"PORT"`
	Storage StorageConfig `toml:"storage"`
}

// MetadataConfig points the library service at the catalog service.
type MetadataConfig struct {
	URL           string        `toml:"url" env:"SERVICE_URL"`
	FetchTimeout  time.Duration `toml:"fetch_timeout" env:"FETCH_TIMEOUT"`
	HealthTimeout time.Duration `toml:"health_timeout" env:"HEALTH_TIMEOUT"`
}

// Addr returns the listen address for the catalog service.
func (c CatalogConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr returns the listen address for the library service.
func (c LibraryConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overlays environment variables onto config.
func ApplyEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ResolveConfig builds the effective configuration: defaults, then the file at path (if it exists), then environment.
func ResolveConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		loaded, err := LoadConfig(path)
		switch {
		case err == nil:
			config = loaded
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports settings that would prevent a service from starting.
func (c *Config) Validate() error {
	for name, s := range map[string]StorageConfig{"catalog": c.Catalog.Storage, "library": c.Library.Storage} {
		switch s.Driver {
		case DriverJSON, DriverSQLite:
		default:
			return fmt.Errorf("%w: %s storage driver %q", ErrInvalidConfig, name, s.Driver)
		}
	}
	if c.Catalog.Port <= 0 || c.Library.Port <= 0 {
		return fmt.Errorf("%w: ports must be positive", ErrInvalidConfig)
	}
	if c.Metadata.URL == "" {
		return fmt.Errorf("%w: metadata url is required", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
