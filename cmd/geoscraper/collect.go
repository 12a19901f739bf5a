package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"geoscraper/pkg/auth"
	"geoscraper/pkg/collector"
	"geoscraper/pkg/config"
	"geoscraper/pkg/logger"
	"geoscraper/pkg/metrics"
	"geoscraper/pkg/ui"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Collect command flags
	targetCount     int
	outputFile      string
	requestInterval time.Duration
	skipFirstPage   bool
	onMissing       string
	accountName     string
	bearerToken     string
	metricsTextfile string
)

var collectCmd = &cobra.Command{
	Use:   "collect [query]",
	Short: "Collect geo-tagged posts matching a query",
	Long: `Collect geo-tagged posts matching a recent search query.

The bearer token is taken from, in order:
  - the stored token named by --account (cannot be combined with --bearer-token)
  - the --bearer-token flag
  - GEOSCRAPER_BEARER_TOKEN (also read from .env)
  - the twitter.bearer_token config value
  - stored credentials (see 'geoscraper auth login')

Nothing is written if the run fails before the target is reached or the
results run out.`,
	Example: `  # Collect 200 geo-tagged posts (the default target)
  geoscraper collect "coffee -is:retweet"

  # Stop at 50 posts and write them somewhere else
  geoscraper collect "coffee -is:retweet" --target 50 --output coffee.json

  # Abort on a place or media key missing from the includes
  geoscraper collect "coffee" --on-missing fail

  # Use a specific stored token and export run metrics
  geoscraper collect "coffee" --account work --metrics-textfile /var/lib/node_exporter/geoscraper.prom`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	addCollectFlags(collectCmd.Flags())
	// The root command collects too
	addCollectFlags(rootCmd.Flags())

	collectCmd.MarkFlagsMutuallyExclusive("account", "bearer-token")
	rootCmd.MarkFlagsMutuallyExclusive("account", "bearer-token")
}

func addCollectFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&targetCount, "target", "n", config.DefaultTargetCount, "number of geo-tagged posts to collect")
	fs.StringVarP(&outputFile, "output", "o", "", "output JSON file (default: "+config.DefaultOutputFile+")")
	fs.DurationVar(&requestInterval, "interval", config.DefaultRequestInterval, "minimum time between requests")
	fs.BoolVar(&skipFirstPage, "skip-first-page", false, "discard the first page of results unfiltered")
	fs.StringVar(&onMissing, "on-missing", "", "what to do when a place or media key is missing: skip or fail")
	fs.StringVarP(&accountName, "account", "a", "", "use a specific stored token")
	fs.StringVar(&bearerToken, "bearer-token", "", "API bearer token")
	fs.StringVar(&metricsTextfile, "metrics-textfile", "", "write run metrics to this node_exporter textfile")
}

// collectFlags keeps only the flags given on the command line
func collectFlags(cmd *cobra.Command, args []string) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if len(args) > 0 {
		flags["query"] = strings.TrimSpace(args[0])
	}
	if changed("target") {
		flags["target"] = targetCount
	}
	if changed("output") {
		flags["output"] = outputFile
	}
	if changed("interval") {
		flags["interval"] = requestInterval
	}
	if changed("skip-first-page") {
		flags["skip-first-page"] = skipFirstPage
	}
	if changed("on-missing") {
		flags["on-missing"] = onMissing
	}
	if changed("bearer-token") {
		flags["bearer-token"] = bearerToken
	}
	if changed("metrics-textfile") {
		flags["metrics-textfile"] = metricsTextfile
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, collectFlags(cmd, args))
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	if err := resolveToken(cfg, accountName, openCredentials, log); err != nil {
		return err
	}

	ui.PrintInfo("Query", cfg.Search.Query)
	ui.PrintInfo("Target", fmt.Sprintf("%d posts", cfg.Search.TargetCount))

	c, err := collector.NewFromConfig(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize collector: %w", err)
	}

	recorder := metrics.NewRecorder()
	c.SetRecorder(recorder)

	tracker := ui.NewStatusTracker(cfg.Search.Query, cfg.Search.TargetCount, verbose)
	c.SetProgress(tracker)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, runErr := c.Run(ctx)
	if runErr != nil {
		recorder.RunFinished("failed", time.Now())
	}

	if cfg.Metrics.Textfile != "" {
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.WithError(err).WithField("path", cfg.Metrics.Textfile).Warn("Failed to export metrics")
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			ui.PrintWarning("Interrupted, nothing was written")
		}
		return runErr
	}

	tracker.Complete(res.OutputPath)
	if res.Stats.PlaceMissing+res.Stats.MediaMissing > 0 {
		ui.PrintWarning(fmt.Sprintf("%d place and %d media lookups were unresolved",
			res.Stats.PlaceMissing, res.Stats.MediaMissing))
	}
	return nil
}

// openCredentials opens the per-user credential stores
func openCredentials() (*auth.Manager, error) {
	return auth.NewManager("")
}

// resolveToken picks the bearer token for the run. A named account always
// uses its stored token. Otherwise a configured token (env, .env or file)
// wins, and stored credentials are only consulted when there is none. A
// stored user agent never replaces one that was configured explicitly.
func resolveToken(cfg *config.Config, account string, open func() (*auth.Manager, error), log logger.Logger) error {
	if cfg.Twitter.BearerToken != "" && account == "" {
		return nil
	}

	manager, err := open()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	cred, err := manager.Resolve(account)
	if err != nil {
		if account != "" {
			return fmt.Errorf("no stored token named %q (see 'geoscraper auth list'): %w", account, err)
		}
		return fmt.Errorf("no bearer token found; run 'geoscraper auth login' or set %s", auth.TokenEnv)
	}

	if cfg.Twitter.BearerToken != "" {
		log.WithField("account", cred.Name).Warn("Configured bearer token replaced by the named account")
	}
	cfg.Twitter.BearerToken = cred.BearerToken
	if cred.UserAgent != "" && (cfg.Twitter.UserAgent == "" || cfg.Twitter.UserAgent == config.DefaultUserAgent) {
		cfg.Twitter.UserAgent = cred.UserAgent
	}
	log.WithField("account", cred.Name).Info("Using stored bearer token")
	return nil
}
