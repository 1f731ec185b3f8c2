package neo4flix

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mousdieng/neo4flix/pkg/alert"
	"github.com/mousdieng/neo4flix/pkg/config"
	"github.com/mousdieng/neo4flix/pkg/driver"
	"github.com/mousdieng/neo4flix/pkg/logger"
	"github.com/mousdieng/neo4flix/pkg/telemetry"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "neo4flix",
		Short: "Neo4flix: IMDb movie graph loader",
		Long: `Neo4flix loads the IMDb public datasets into a Neo4j or Memgraph movie graph
and exports that graph as a JSON seed file.

It ranks feature films by a Bayesian weighted rating, attaches genres,
directors and top-billed actors, and upserts them in batches.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.neo4flix.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	// Database flags
	rootCmd.PersistentFlags().String("db-driver", "neo4j", "Database driver (neo4j, memgraph)")
	rootCmd.PersistentFlags().String("db-uri", "bolt://localhost:7687", "Database bolt URI")
	rootCmd.PersistentFlags().String("db-username", "neo4j", "Database username")
	rootCmd.PersistentFlags().String("db-password", "", "Database password")
	rootCmd.PersistentFlags().String("db-database", "", "Database name (empty for the server default)")

	rootCmd.PersistentFlags().String("checkpoint-dir", "", "Directory for run checkpoints")
	rootCmd.PersistentFlags().String("telemetry-parquet-path", "", "Directory for error telemetry parquet files")

	// Bind flags to viper
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".neo4flix" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".neo4flix")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads the configuration and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrideConfigWithFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	// Database flags
	if flags.Changed("db-driver") {
		cfg.Database.Driver, _ = flags.GetString("db-driver")
	}
	if flags.Changed("db-uri") {
		cfg.Database.URI, _ = flags.GetString("db-uri")
	}
	if flags.Changed("db-username") {
		cfg.Database.Username, _ = flags.GetString("db-username")
	}
	if flags.Changed("db-password") {
		cfg.Database.Password, _ = flags.GetString("db-password")
	}
	if flags.Changed("db-database") {
		cfg.Database.Database, _ = flags.GetString("db-database")
	}

	if flags.Changed("checkpoint-dir") {
		cfg.Checkpoint.Dir, _ = flags.GetString("checkpoint-dir")
	}
	if flags.Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = flags.GetString("telemetry-parquet-path")
	}

	// Import flags
	if flags.Changed("data-dir") {
		cfg.Dataset.Dir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("limit") {
		cfg.Import.Limit, _ = flags.GetInt("limit")
	}
	if flags.Changed("min-votes") {
		cfg.Import.MinVotes, _ = flags.GetInt("min-votes")
	}
	if flags.Changed("top-cast") {
		cfg.Import.TopCast, _ = flags.GetInt("top-cast")
	}
	if flags.Changed("batch-size") {
		cfg.Import.BatchSize, _ = flags.GetInt("batch-size")
	}
	if flags.Changed("year-min") {
		cfg.Import.YearMin, _ = flags.GetInt("year-min")
	}
	if flags.Changed("year-max") {
		cfg.Import.YearMax, _ = flags.GetInt("year-max")
	}
	if flags.Changed("clean") {
		cfg.Import.Reset, _ = flags.GetBool("clean")
	}
	if flags.Changed("no-clean") {
		noClean, _ := flags.GetBool("no-clean")
		cfg.Import.Reset = !noClean
	}
	if flags.Changed("yes") {
		cfg.Import.AssumeYes, _ = flags.GetBool("yes")
	}

	// Export flags
	if flags.Changed("output") {
		cfg.Export.Output, _ = flags.GetString("output")
	}
	if flags.Changed("parquet-dir") {
		cfg.Export.ParquetDir, _ = flags.GetString("parquet-dir")
	}
}

// newLogger builds the process logger. Error records are also persisted to
// parquet when a telemetry path is configured; the returned func flushes them.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	base, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, nil, err
	}
	if cfg.Telemetry.ParquetPath == "" {
		return base, func() {}, nil
	}

	parquetHandler, err := telemetry.NewParquetHandler(base.Handler(), cfg.Telemetry.ParquetPath)
	if err != nil {
		base.Warn("Failed to initialize error tracking", "error", err)
		return base, func() {}, nil
	}
	log := slog.New(parquetHandler)
	return log, func() {
		if err := parquetHandler.Close(); err != nil {
			base.Warn("Failed to flush error telemetry", "error", err)
		}
	}, nil
}

// openStore connects to the configured graph, wrapped in a circuit breaker
// when enabled.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (driver.GraphStore, error) {
	opts, err := cfg.Database.Options()
	if err != nil {
		return nil, err
	}

	var store driver.GraphStore
	store, err = driver.NewStore(opts, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s driver: %w", opts.Provider, err)
	}
	if cfg.CircuitBreaker.Enabled {
		store = driver.NewBreakerStore(store, cfg.CircuitBreaker.Settings(), log)
	}

	if err := store.VerifyConnectivity(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("cannot reach %s at %s: %w", opts.Provider, opts.URI, err)
	}
	return store, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// notify sends an operator alert. Alert failures are logged only.
func notify(ctx context.Context, cfg *config.Config, log *slog.Logger, subject, body string) {
	if err := alert.New(cfg.Alert).Alert(ctx, subject, body); err != nil {
		log.Warn("Failed to send alert", "subject", subject, "error", err)
	}
}
