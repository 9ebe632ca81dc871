// Package config loads the novels configuration.
//
// Values are layered: built-in defaults, then the YAML file, then environment variables
// prefixed with NOVELS_ (a .env file in the working directory is loaded first). Command line
// flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/integrations"
	"github.com/kerbaras/novels/pkg/segment"
	"github.com/kerbaras/novels/pkg/services"
	"github.com/kerbaras/novels/pkg/sources"
	"github.com/kerbaras/novels/pkg/translate"
)

// EnvPrefix is the prefix of every environment variable read by Load
const EnvPrefix = "NOVELS"

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	MirrorNone     = "none"
	MirrorRclone   = "rclone"
	MirrorPostgres = "postgres"

	BackendExec   = "exec"
	BackendGemini = "gemini"
	BackendEcho   = "echo"
)

type LedgerConfig struct {
	Path   string `yaml:"path" split_words:"true"`
	Mirror string `yaml:"mirror" split_words:"true"`
	// rclone destination of the ledger file, e.g. "drive:novels/history.txt"
	Remote string `yaml:"remote" split_words:"true"`
	DSN    string `yaml:"dsn" split_words:"true"`
}

type SyncConfig struct {
	Enabled bool   `yaml:"enabled" split_words:"true"`
	Remote  string `yaml:"remote" split_words:"true"`
	Rclone  string `yaml:"rclone" split_words:"true"`
}

type SegmentConfig struct {
	Limit int `yaml:"limit" split_words:"true"`
}

type TranslateConfig struct {
	Backend       string        `yaml:"backend" split_words:"true"`
	Command       []string      `yaml:"command" split_words:"true"`
	Attempts      int           `yaml:"attempts" split_words:"true"`
	Timeout       time.Duration `yaml:"timeout" split_words:"true"`
	RetryDelay    time.Duration `yaml:"retry_delay" split_words:"true"`
	Threshold     float64       `yaml:"threshold" split_words:"true"`
	FailureMarker string        `yaml:"failure_marker" split_words:"true"`
	GeminiModel   string        `yaml:"gemini_model" split_words:"true"`
	GeminiAPIKey  string        `yaml:"gemini_api_key" split_words:"true"`
}

type FetchConfig struct {
	UserAgent string        `yaml:"user_agent" split_words:"true"`
	Timeout   time.Duration `yaml:"timeout" split_words:"true"`
	Rate      float64       `yaml:"rate" split_words:"true"` // requests per second
}

type PipelineConfig struct {
	PauseEvery    int           `yaml:"pause_every" split_words:"true"`
	PauseDuration time.Duration `yaml:"pause_duration" split_words:"true"`
	Placeholder   string        `yaml:"placeholder" split_words:"true"`
	BucketSize    int           `yaml:"bucket_size" split_words:"true"`
}

type CatalogConfig struct {
	Driver string `yaml:"driver" split_words:"true"`
	Path   string `yaml:"path" split_words:"true"`
}

type LogConfig struct {
	Level  string `yaml:"level" split_words:"true"`
	Format string `yaml:"format" split_words:"true"`
}

type Config struct {
	OutputDir string `yaml:"output_dir" split_words:"true"`
	NovelList string `yaml:"novel_list" split_words:"true"`

	Ledger    LedgerConfig    `yaml:"ledger" split_words:"true"`
	Sync      SyncConfig      `yaml:"sync" split_words:"true"`
	Segment   SegmentConfig   `yaml:"segment" split_words:"true"`
	Translate TranslateConfig `yaml:"translate" split_words:"true"`
	Fetch     FetchConfig     `yaml:"fetch" split_words:"true"`
	Pipeline  PipelineConfig  `yaml:"pipeline" split_words:"true"`
	Catalog   CatalogConfig   `yaml:"catalog" split_words:"true"`
	Log       LogConfig       `yaml:"log" split_words:"true"`
}

// Default returns the configuration used when nothing else is set. Relative paths are
// resolved against home (usually ~/.novels).
func Default(home string) *Config {
	return &Config{
		OutputDir: filepath.Join(home, "library"),
		NovelList: filepath.Join(home, "novels.txt"),
		Ledger: LedgerConfig{
			Path:   filepath.Join(home, "history.txt"),
			Mirror: MirrorNone,
		},
		Sync: SyncConfig{Rclone: "rclone"},
		Segment: SegmentConfig{
			Limit: segment.DefaultLimit,
		},
		Translate: TranslateConfig{
			Backend:       BackendExec,
			Command:       append([]string(nil), translate.DefaultCommand...),
			Attempts:      translate.DefaultAttempts,
			Timeout:       translate.DefaultTimeout,
			RetryDelay:    translate.DefaultRetryDelay,
			Threshold:     translate.DefaultThreshold,
			FailureMarker: translate.DefaultFailureMarker,
			GeminiModel:   translate.DefaultGeminiModel,
		},
		Fetch: FetchConfig{
			UserAgent: sources.DefaultUserAgent,
			Timeout:   sources.DefaultTimeout,
			Rate:      sources.DefaultRate,
		},
		Pipeline: PipelineConfig{
			PauseEvery:    services.DefaultPauseEvery,
			PauseDuration: services.DefaultPauseDuration,
			Placeholder:   services.DefaultPlaceholder,
			BucketSize:    integrations.DefaultBucketSize,
		},
		Catalog: CatalogConfig{
			Driver: data.DriverDuckDB,
			Path:   filepath.Join(home, "catalog.db"),
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// HomeDir returns ~/.novels
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".novels"), nil
}

// DefaultPath returns $NOVELS_CONFIG or ~/.novels/config.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p, nil
	}
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}

// Load builds the configuration from the defaults, the YAML file at path and the
// environment. An empty path selects DefaultPath; a missing file is not an error.
func Load(path string) (*Config, error) {
	home, err := HomeDir()
	if err != nil {
		return nil, err
	}
	if path == "" {
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	return load(path, home)
}

func load(path, home string) (*Config, error) {
	cfg := Default(home)

	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}

	// Ignore errors, variables may come from the shell
	_ = godotenv.Load(".env")

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir is required", ErrInvalidConfig)
	}
	if c.Ledger.Path == "" {
		return fmt.Errorf("%w: ledger.path is required", ErrInvalidConfig)
	}

	switch c.Ledger.Mirror {
	case MirrorNone, "":
	case MirrorRclone:
		if c.Ledger.Remote == "" {
			return fmt.Errorf("%w: ledger.remote is required for the rclone mirror", ErrInvalidConfig)
		}
	case MirrorPostgres:
		if c.Ledger.DSN == "" {
			return fmt.Errorf("%w: ledger.dsn is required for the postgres mirror", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown ledger mirror %q", ErrInvalidConfig, c.Ledger.Mirror)
	}

	if c.Sync.Enabled && c.Sync.Remote == "" {
		return fmt.Errorf("%w: sync.remote is required when sync is enabled", ErrInvalidConfig)
	}

	switch c.Translate.Backend {
	case BackendExec:
		if len(c.Translate.Command) == 0 {
			return fmt.Errorf("%w: translate.command is required for the exec backend", ErrInvalidConfig)
		}
	case BackendGemini, BackendEcho:
	default:
		return fmt.Errorf("%w: unknown translate backend %q", ErrInvalidConfig, c.Translate.Backend)
	}
	if c.Translate.Attempts < 1 {
		return fmt.Errorf("%w: translate.attempts must be at least 1", ErrInvalidConfig)
	}
	if c.Translate.Threshold <= 0 || c.Translate.Threshold > 1 {
		return fmt.Errorf("%w: translate.threshold must be in (0, 1]", ErrInvalidConfig)
	}
	if c.Segment.Limit < 1 {
		return fmt.Errorf("%w: segment.limit must be positive", ErrInvalidConfig)
	}
	if c.Fetch.Rate < 0 {
		return fmt.Errorf("%w: fetch.rate must not be negative", ErrInvalidConfig)
	}

	switch c.Catalog.Driver {
	case data.DriverDuckDB, data.DriverSQLite, "":
	default:
		return fmt.Errorf("%w: unknown catalog driver %q", ErrInvalidConfig, c.Catalog.Driver)
	}
	return nil
}

// CatalogEnabled reports whether runs are recorded in a catalog database
func (c *Config) CatalogEnabled() bool {
	return c.Catalog.Driver != "" && c.Catalog.Path != ""
}
