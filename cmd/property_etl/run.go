package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aditya/property-etl/internal/config"
	"github.com/aditya/property-etl/internal/etl"
	"github.com/aditya/property-etl/internal/load"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full ETL pipeline over the configured regions",
	Long: `Orchestrates the entire pipeline for every configured region: extract -> raw CSV -> transform -> processed CSV -> load -> cleanup.

Regions run concurrently. Configuration can be loaded from a JSON file using --config; command-line arguments override config file values. Ctrl-C stops extraction cooperatively and keeps the listings collected so far.`,
	RunE: runETLCmd,
}

var (
	runConfigPath   string
	runAdsType      string
	runPropertyType string
	runNumPages     int
	runBaseURL      string
	runBatchSize    int
	runVerbose      bool
	runDatabaseURL  string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runAdsType, "ads-type", "a", "", "Listing kind: sale or rent")
	runCommand.Flags().StringVarP(&runPropertyType, "property-type", "p", "", "Property kind: house, apartment, boarding-room, villa or hotel")
	runCommand.Flags().IntVarP(&runNumPages, "num-pages", "n", 0, "Maximum result pages to fetch per region")
	runCommand.Flags().StringVar(&runBaseURL, "base-url", "", "Listing site base URL")
	runCommand.Flags().IntVar(&runBatchSize, "batch-size", 0, "Staging insert batch size")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress information")

	// Database URL can be passed as a flag, or read from env var DATABASE_URL
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

// loadMergedConfig builds the effective configuration: config file values,
// then CLI flag overrides, then built-in defaults for whatever is left.
func loadMergedConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("ads-type") {
		cfg.AdsType = runAdsType
	}
	if cmd.Flags().Changed("property-type") {
		cfg.PropertyType = runPropertyType
	}
	if cmd.Flags().Changed("num-pages") {
		cfg.NumPages = runNumPages
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = runBaseURL
	}
	if cmd.Flags().Changed("batch-size") {
		cfg.BatchSize = runBatchSize
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())

	// Flag overrides can introduce invalid values, so validate again
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runETLCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadMergedConfig(cmd)
	if err != nil {
		return err
	}

	if len(cfg.Regions) == 0 {
		return fmt.Errorf("at least one region must be configured (via config file)")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	pool, err := load.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	reports, err := etl.RunAll(ctx, cfg.Regions, etl.RunOptions{
		AdsType:      cfg.AdsType,
		PropertyType: cfg.PropertyType,
		NumPages:     cfg.NumPages,
		BaseURL:      cfg.BaseURL,
		StagingTable: cfg.StagingTable,
		MainTable:    cfg.MainTable,
		UniqueKey:    cfg.UniqueKey,
		BatchSize:    cfg.BatchSize,
		RawDir:       cfg.RawDir,
		ProcessedDir: cfg.ProcessedDir,
		Verbose:      cfg.Verbose,
		Pool:         pool,
	})
	if err != nil {
		return err
	}

	for _, report := range reports {
		fmt.Fprintf(os.Stdout, "%s: %d extracted, %d cleaned, %d inserted, %d updated\n",
			report.Region, report.Extracted, report.Cleaned,
			report.LoadReport.Inserted, report.LoadReport.Updated)
	}
	return nil
}
