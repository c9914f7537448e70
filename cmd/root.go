package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/listsum/internal/config"
	"github.com/KaramelBytes/listsum/internal/logging"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	logFile string

	// Loaded configuration
	cfg *cfgpkg.Global

	logCleanup = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "listsum",
	Short: "listsum: describe dataset columns as prompt-ready text",
	Long: `listsum summarizes a column of a dataset (CSV, TSV, JSON, JSONL, YAML, XLSX)
as a short deterministic description of its shape, missing values and
distribution, and collects summaries into bundles for prompt context.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	err := rootCmd.Execute()
	_ = logCleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.listsum/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a rotated file (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
	}
	cfg = c

	lc := logging.DefaultConfig()
	if cfg != nil {
		if cfg.LogLevel != "" {
			lc.Level = cfg.LogLevel
		}
		lc.FilePath = cfg.LogFile
	}
	if logFile != "" {
		lc.FilePath = logFile
	}
	if debug {
		lc.Level = "debug"
	}
	_ = logCleanup()
	cleanup, err := logging.Setup(lc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to set up logging: %v\n", err)
		return
	}
	logCleanup = cleanup
	slog.Debug("config loaded", "file", cfgFile, "bundles_dir", settings().BundlesDir)
}
