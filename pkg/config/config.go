package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/mousdieng/neo4flix/pkg/driver"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Dataset location
	Dataset DatasetConfig `mapstructure:"dataset" yaml:"dataset"`

	// Import run parameters
	Import ImportConfig `mapstructure:"import" yaml:"import"`

	// Export destination
	Export ExportConfig `mapstructure:"export" yaml:"export"`

	// Checkpoint configuration
	Checkpoint CheckpointConfig `mapstructure:"checkpoint" yaml:"checkpoint"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert" yaml:"alert"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker" yaml:"circuit_breaker"`
}

// AlertConfig holds configuration for alerting
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled" yaml:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port" yaml:"smtp_port"`
	Username string   `mapstructure:"username" yaml:"username"`
	Password string   `mapstructure:"password" yaml:"password"`
	From     string   `mapstructure:"from" yaml:"from"`
	To       []string `mapstructure:"to" yaml:"to"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled" yaml:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests" yaml:"max_requests"`
	Interval         int     `mapstructure:"interval" yaml:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout" yaml:"timeout"`   // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio" yaml:"ready_to_trip_ratio"`
}

// Settings converts the configuration to driver.BreakerSettings.
func (c CircuitBreakerConfig) Settings() driver.BreakerSettings {
	return driver.BreakerSettings{
		MaxRequests:      c.MaxRequests,
		Interval:         time.Duration(c.Interval) * time.Second,
		Timeout:          time.Duration(c.Timeout) * time.Second,
		ReadyToTripRatio: c.ReadyToTripRatio,
	}
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path" yaml:"parquet_path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" yaml:"driver"` // neo4j, memgraph
	URI      string `mapstructure:"uri" yaml:"uri"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	Database string `mapstructure:"database" yaml:"database"`
}

// Options converts the configuration to driver.Options.
func (c DatabaseConfig) Options() (driver.Options, error) {
	provider, err := driver.ParseProvider(c.Driver)
	if err != nil {
		return driver.Options{}, err
	}
	opts := driver.DefaultOptions()
	opts.Provider = provider
	opts.URI = c.URI
	opts.Username = c.Username
	opts.Password = c.Password
	opts.Database = c.Database
	return opts, nil
}

// DatasetConfig holds the dataset location
type DatasetConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// ImportConfig holds the import run parameters
type ImportConfig struct {
	Limit     int  `mapstructure:"limit" yaml:"limit"`
	MinVotes  int  `mapstructure:"min_votes" yaml:"min_votes"`
	TopCast   int  `mapstructure:"top_cast" yaml:"top_cast"`
	BatchSize int  `mapstructure:"batch_size" yaml:"batch_size"`
	Reset     bool `mapstructure:"reset" yaml:"reset"`
	AssumeYes bool `mapstructure:"assume_yes" yaml:"assume_yes"`
	YearMin   int  `mapstructure:"year_min" yaml:"year_min"`
	YearMax   int  `mapstructure:"year_max" yaml:"year_max"`
}

// ExportConfig holds the export destination
type ExportConfig struct {
	Output     string `mapstructure:"output" yaml:"output"`
	ParquetDir string `mapstructure:"parquet_dir" yaml:"parquet_dir"`
}

// CheckpointConfig holds the checkpoint directory
type CheckpointConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Load loads configuration from the global viper instance, which holds
// the config file, bound flags and environment variables.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads configuration from v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	// Set defaults
	setDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Database defaults
	v.SetDefault("database.driver", "neo4j")
	v.SetDefault("database.uri", "bolt://localhost:7687")
	v.SetDefault("database.username", "neo4j")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "")

	// Dataset and import defaults
	v.SetDefault("dataset.dir", "./imdb_data")
	v.SetDefault("import.limit", 10000)
	v.SetDefault("import.min_votes", 10000)
	v.SetDefault("import.top_cast", 5)
	v.SetDefault("import.batch_size", 500)
	v.SetDefault("import.reset", true)
	v.SetDefault("import.assume_yes", false)
	v.SetDefault("import.year_min", 1900)
	v.SetDefault("import.year_max", 2030)

	// Export defaults
	v.SetDefault("export.output", "movies_seed.json")
	v.SetDefault("export.parquet_dir", "")

	v.SetDefault("checkpoint.dir", filepath.Join(os.TempDir(), "neo4flix-runs"))

	// Circuit breaker defaults, off unless enabled
	v.SetDefault("circuit_breaker.enabled", false)
	v.SetDefault("circuit_breaker.max_requests", 1)
	v.SetDefault("circuit_breaker.interval", 60)
	v.SetDefault("circuit_breaker.timeout", 30)
	v.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Alert defaults
	v.SetDefault("alert.enabled", false)
	v.SetDefault("alert.smtp_port", 587)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		v.SetDefault("telemetry.parquet_path", filepath.Join(home, ".neo4flix", "telemetry"))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	// Database credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Database.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Database.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Database.Password = pass
	}
	if db := os.Getenv("NEO4J_DATABASE"); db != "" {
		config.Database.Database = db
	}

	// Generic database settings
	if dbDriver := os.Getenv("DB_DRIVER"); dbDriver != "" {
		config.Database.Driver = dbDriver
	}

	if dir := os.Getenv("DATASET_DIR"); dir != "" {
		config.Dataset.Dir = dir
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}

// Validate checks the run parameters.
func (c *Config) Validate() error {
	var errs []error
	if _, err := driver.ParseProvider(c.Database.Driver); err != nil {
		errs = append(errs, err)
	}
	if c.Database.URI == "" {
		errs = append(errs, errors.New("database.uri is required"))
	}
	if c.Import.Limit <= 0 {
		errs = append(errs, fmt.Errorf("import.limit must be positive, got %d", c.Import.Limit))
	}
	if c.Import.MinVotes < 0 {
		errs = append(errs, fmt.Errorf("import.min_votes cannot be negative, got %d", c.Import.MinVotes))
	}
	if c.Import.TopCast <= 0 {
		errs = append(errs, fmt.Errorf("import.top_cast must be positive, got %d", c.Import.TopCast))
	}
	if c.Import.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("import.batch_size must be positive, got %d", c.Import.BatchSize))
	}
	if c.Import.YearMin > c.Import.YearMax {
		errs = append(errs, fmt.Errorf("import.year_min %d is after import.year_max %d", c.Import.YearMin, c.Import.YearMax))
	}
	if c.CircuitBreaker.Enabled && (c.CircuitBreaker.ReadyToTripRatio <= 0 || c.CircuitBreaker.ReadyToTripRatio > 1) {
		errs = append(errs, fmt.Errorf("circuit_breaker.ready_to_trip_ratio must be in (0, 1], got %g", c.CircuitBreaker.ReadyToTripRatio))
	}
	if c.Alert.Enabled && (c.Alert.SMTPHost == "" || c.Alert.From == "" || len(c.Alert.To) == 0) {
		errs = append(errs, errors.New("alert.smtp_host, alert.from and alert.to are required when alerting is enabled"))
	}
	return errors.Join(errs...)
}

// Redacted returns a copy with secrets masked, suitable for printing.
func (c Config) Redacted() Config {
	if c.Database.Password != "" {
		c.Database.Password = "********"
	}
	if c.Alert.Password != "" {
		c.Alert.Password = "********"
	}
	return c
}
