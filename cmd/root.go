// Package cmd implements the zillow-scraper command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"zillow-scraper/config"
	"zillow-scraper/logging"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	// cfg is loaded before any subcommand runs
	cfg      *config.Config
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:           "zillow-scraper",
	Short:         "zillow-scraper collects listings from paginated Zillow search results.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		closeLog, err = logging.Setup(level, cfg.LogFile)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")
}

// ExecuteContext runs the command line and exits non-zero on failure
func ExecuteContext(ctx context.Context) {
	if err := execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// execute runs the command line and closes the log file whether or not the
// command failed
func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cerr := closeLog(); cerr != nil && err == nil {
		err = cerr
	}
	closeLog = func() error { return nil }
	return err
}
