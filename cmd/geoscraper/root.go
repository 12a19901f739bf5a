package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"geoscraper/pkg/logger"
	"geoscraper/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
	verbose    bool
)

// rootCmd collects when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "geoscraper [query]",
	Short: "Collect geo-tagged posts from the recent search API",
	Long: `geoscraper pages through the v2 recent search endpoint, keeps only posts
that carry geographic metadata, attaches the resolved place (with the center of
its bounding box) and the first media URL, and writes the result as one JSON
array once the target count is reached or the results run out.

Requests are spaced at least 2.1s apart and never exceed 450 per 15 minutes.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Version = version

		if quiet {
			ui.SetQuietMode(true)
		}
		if cmd.Name() != "help" && cmd.Name() != "version" {
			ui.PrintBanner()
		}
	},
	RunE: runCollect,
}

// Execute runs the root command and exits 1 on failure
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.geoscraper.yaml or ~/.config/geoscraper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print one progress line per page")

	rootCmd.SetVersionTemplate(`geoscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
