package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultBaseURL is the API host used for recent search
	DefaultBaseURL = "https://api.twitter.com"

	// DefaultUserAgent is sent with every search request
	DefaultUserAgent = "v2RecentSearchGo"

	// DefaultTargetCount is the number of geo-tagged posts to collect before stopping
	DefaultTargetCount = 200

	// DefaultRequestInterval keeps a single client under 450 requests per 15 minutes
	DefaultRequestInterval = 2100 * time.Millisecond

	// DefaultOutputFile is where the collected posts are written
	DefaultOutputFile = "geo-posts.json"
)

// Missing lookup policies
const (
	OnMissingSkip = "skip"
	OnMissingFail = "fail"
)

// Config holds all configuration options for the collector
type Config struct {
	// API credentials and transport
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// What to search for and when to stop
	Search SearchConfig `yaml:"search" json:"search"`

	// Request pacing
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Run metrics export
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// TwitterConfig holds API-specific configuration
type TwitterConfig struct {
	BearerToken    string        `yaml:"bearer_token" json:"bearer_token"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	// RequestTimeout bounds one search request; zero leaves it to the transport
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// SearchConfig holds the query and the stop conditions
type SearchConfig struct {
	Query         string `yaml:"query" json:"query"`
	TargetCount   int    `yaml:"target_count" json:"target_count"`
	MaxResults    int    `yaml:"max_results" json:"max_results"`
	SkipFirstPage bool   `yaml:"skip_first_page" json:"skip_first_page"`
	OnMissing     string `yaml:"on_missing" json:"on_missing"`
}

// RateLimitConfig holds request pacing configuration
type RateLimitConfig struct {
	RequestInterval   time.Duration `yaml:"request_interval" json:"request_interval"`
	RequestsPerWindow int           `yaml:"requests_per_window" json:"requests_per_window"`
	Window            time.Duration `yaml:"window" json:"window"`
}

// OutputConfig holds the output file location
type OutputConfig struct {
	File string `yaml:"file" json:"file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	// Textfile is a node_exporter textfile collector path; empty disables export
	Textfile string `yaml:"textfile" json:"textfile"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			UserAgent: DefaultUserAgent,
			BaseURL:   DefaultBaseURL,
		},
		Search: SearchConfig{
			TargetCount: DefaultTargetCount,
			MaxResults:  100,
			OnMissing:   OnMissingSkip,
		},
		RateLimit: RateLimitConfig{
			RequestInterval:   DefaultRequestInterval,
			RequestsPerWindow: 450,
			Window:            15 * time.Minute,
		},
		Output: OutputConfig{
			File: DefaultOutputFile,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv("GEOSCRAPER_BEARER_TOKEN"); token != "" {
		c.Twitter.BearerToken = token
	}
	if userAgent := os.Getenv("GEOSCRAPER_USER_AGENT"); userAgent != "" {
		c.Twitter.UserAgent = userAgent
	}
	if baseURL := os.Getenv("GEOSCRAPER_BASE_URL"); baseURL != "" {
		c.Twitter.BaseURL = baseURL
	}

	if query := os.Getenv("GEOSCRAPER_QUERY"); query != "" {
		c.Search.Query = query
	}
	if target := os.Getenv("GEOSCRAPER_TARGET_COUNT"); target != "" {
		val, err := strconv.Atoi(target)
		if err != nil {
			return fmt.Errorf("invalid GEOSCRAPER_TARGET_COUNT: %w", err)
		}
		c.Search.TargetCount = val
	}
	if onMissing := os.Getenv("GEOSCRAPER_ON_MISSING"); onMissing != "" {
		c.Search.OnMissing = onMissing
	}

	if interval := os.Getenv("GEOSCRAPER_REQUEST_INTERVAL"); interval != "" {
		val, err := time.ParseDuration(interval)
		if err != nil {
			return fmt.Errorf("invalid GEOSCRAPER_REQUEST_INTERVAL: %w", err)
		}
		c.RateLimit.RequestInterval = val
	}

	if outputFile := os.Getenv("GEOSCRAPER_OUTPUT_FILE"); outputFile != "" {
		c.Output.File = outputFile
	}

	if logLevel := os.Getenv("GEOSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if textfile := os.Getenv("GEOSCRAPER_METRICS_TEXTFILE"); textfile != "" {
		c.Metrics.Textfile = textfile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	for _, loc := range ConfigLocations() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// ConfigLocations lists the config file candidates in order of precedence
func ConfigLocations() []string {
	home := os.Getenv("HOME")
	return []string{
		".geoscraper.yaml",
		".geoscraper.yml",
		filepath.Join(home, ".config", "geoscraper", "config.yaml"),
		filepath.Join(home, ".config", "geoscraper", "config.yml"),
		filepath.Join(home, ".geoscraper.yaml"),
		filepath.Join(home, ".geoscraper.yml"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Search.Query) == "" {
		errs = append(errs, errors.New("search query is required"))
	}
	if c.Search.TargetCount <= 0 {
		errs = append(errs, errors.New("target count must be positive"))
	}
	if c.Search.MaxResults < 10 || c.Search.MaxResults > 100 {
		errs = append(errs, errors.New("max results must be between 10 and 100"))
	}
	switch c.Search.OnMissing {
	case OnMissingSkip, OnMissingFail:
	default:
		errs = append(errs, fmt.Errorf("invalid on_missing policy %q (want skip or fail)", c.Search.OnMissing))
	}

	if c.Twitter.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	}
	if c.Twitter.RequestTimeout < 0 {
		errs = append(errs, errors.New("request timeout cannot be negative"))
	}

	if c.RateLimit.RequestInterval < 0 {
		errs = append(errs, errors.New("request interval cannot be negative"))
	}
	if c.RateLimit.RequestsPerWindow < 0 {
		errs = append(errs, errors.New("requests per window cannot be negative"))
	}
	if c.RateLimit.RequestsPerWindow > 0 && c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("window must be positive when requests per window is set"))
	}

	if c.Output.File == "" {
		errs = append(errs, errors.New("output file is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if token, ok := flags["bearer-token"].(string); ok && token != "" {
		c.Twitter.BearerToken = token
	}
	if query, ok := flags["query"].(string); ok && query != "" {
		c.Search.Query = query
	}
	if target, ok := flags["target"].(int); ok && target > 0 {
		c.Search.TargetCount = target
	}
	if skip, ok := flags["skip-first-page"].(bool); ok {
		c.Search.SkipFirstPage = skip
	}
	if onMissing, ok := flags["on-missing"].(string); ok && onMissing != "" {
		c.Search.OnMissing = onMissing
	}
	if interval, ok := flags["interval"].(time.Duration); ok && interval >= 0 {
		c.RateLimit.RequestInterval = interval
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.File = output
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if textfile, ok := flags["metrics-textfile"].(string); ok && textfile != "" {
		c.Metrics.Textfile = textfile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".geoscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
