package main

import (
	"fmt"
	"os"

	"geoscraper/pkg/auth"
	"geoscraper/pkg/config"
	"geoscraper/pkg/ui"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage geoscraper configuration files.

Configuration is merged from, highest priority first:
  - Command line flags
  - Environment variables (GEOSCRAPER_*, also read from .env)
  - Configuration file
  - Default values`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created as '.geoscraper.yaml' in the current directory unless a
different path is given with --config.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the configuration after merging file, environment and defaults. The bearer token is masked.`,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const exampleConfig = `# geoscraper configuration
#
# Every value can also be set with a GEOSCRAPER_ environment variable,
# for example GEOSCRAPER_BEARER_TOKEN or GEOSCRAPER_QUERY.

twitter:
  # App-only bearer token. Prefer 'geoscraper auth login' over storing it here.
  bearer_token: ""
  user_agent: "v2RecentSearchGo"
  base_url: "https://api.twitter.com"
  # Per-request timeout, 0 means none beyond the transport's own
  request_timeout: 0s

search:
  # Recent search query, e.g. "coffee -is:retweet"
  query: ""
  # Stop once this many geo-tagged posts are collected
  target_count: 200
  # Page size, 10-100
  max_results: 100
  # Discard the first page without filtering it
  skip_first_page: false
  # Place or media key missing from the includes: skip (drop the post) or fail
  on_missing: skip

rate_limit:
  # Minimum time between requests
  request_interval: 2.1s
  # Request budget per window, 0 disables the window
  requests_per_window: 450
  window: 15m

output:
  file: "geo-posts.json"

logging:
  # debug, info, warn, error
  level: info
  # JSON log file, empty logs to the console only
  file: ""

metrics:
  # node_exporter textfile collector path, empty disables export
  textfile: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = ".geoscraper.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	if err := os.WriteFile(path, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + path)
	return nil
}

// loadUnvalidated merges file and environment over the defaults
func loadUnvalidated() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadUnvalidated()
	if err != nil {
		return err
	}
	if cfg.Twitter.BearerToken != "" {
		cfg.Twitter.BearerToken = auth.Mask(cfg.Twitter.BearerToken)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadUnvalidated()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration is invalid:\n%w", err)
	}

	ui.PrintSuccess("Configuration is valid")
	if cfg.Twitter.BearerToken == "" {
		ui.PrintWarning("No bearer token configured; a stored token will be used")
	}
	return nil
}
