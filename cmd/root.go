package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/visitpivot/internal/config"
	"github.com/KaramelBytes/visitpivot/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagLogFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "visitpivot",
	Short: "visitpivot: daily visit pivots by specialty and payer group",
	Long: `visitpivot reads a clinic visit export (XLSX or CSV), cleans and classifies each visit,
and builds a pivot of visit counts per specialty and payer group for every day,
plus the busiest and quietest days.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.visitpivot/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	lc := logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}
	if debug {
		lc.Level = "debug"
	}
	if rootCmd.PersistentFlags().Changed("log-format") {
		lc.Format = flagLogFormat
	}
	if _, err := logging.Setup(lc, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	}
}

// currentConfig returns the loaded configuration or the defaults.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Defaults()
	}
	return cfg
}
