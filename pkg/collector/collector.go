package collector

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"geoscraper/pkg/config"
	"geoscraper/pkg/enrich"
	"geoscraper/pkg/errors"
	"geoscraper/pkg/logger"
	"geoscraper/pkg/metrics"
	"geoscraper/pkg/ratelimit"
	"geoscraper/pkg/storage"
	"geoscraper/pkg/twitter"

	"github.com/google/uuid"
)

// StopReason says why a run ended
type StopReason string

const (
	// StopTargetReached means the collection reached the target count
	StopTargetReached StopReason = "target_reached"
	// StopExhausted means the endpoint had no further pages
	StopExhausted StopReason = "exhausted"
)

// Result summarises a finished run
type Result struct {
	RunID      string
	Query      string
	Pages      int
	Seen       int
	Posts      []twitter.Post
	Stats      enrich.Stats
	StopReason StopReason
	OutputPath string
	Duration   time.Duration
}

// Collector pages through recent search results until it has enough
// geo-tagged posts, then writes them out once
type Collector struct {
	fetcher  Fetcher
	filter   *enrich.Filter
	limiter  ratelimit.Limiter
	sink     Sink
	recorder *metrics.Recorder
	progress Progress
	logger   logger.Logger

	query         string
	target        int
	skipFirstPage bool
}

// New creates a collector for cfg using the given fetcher and sink
func New(cfg *config.Config, fetcher Fetcher, sink Sink, log logger.Logger) (*Collector, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if cfg.Search.TargetCount <= 0 {
		return nil, fmt.Errorf("target count must be positive, got %d", cfg.Search.TargetCount)
	}

	policy, err := enrich.ParsePolicy(cfg.Search.OnMissing)
	if err != nil {
		return nil, err
	}

	return &Collector{
		fetcher:       fetcher,
		filter:        enrich.NewFilter(policy, log),
		limiter:       ratelimit.FromConfig(cfg.RateLimit, ratelimit.SystemClock{}),
		sink:          sink,
		logger:        log,
		query:         cfg.Search.Query,
		target:        cfg.Search.TargetCount,
		skipFirstPage: cfg.Search.SkipFirstPage,
	}, nil
}

// NewFromConfig wires the search client and the JSON file writer described by cfg
func NewFromConfig(cfg *config.Config, log logger.Logger) (*Collector, error) {
	client := twitter.NewClient(cfg.Twitter, log)
	client.SetMaxResults(cfg.Search.MaxResults)

	return New(cfg, client, storage.NewWriter(cfg.Output.File), log)
}

// SetLimiter replaces the request gate
func (c *Collector) SetLimiter(l ratelimit.Limiter) {
	c.limiter = l
}

// SetRecorder attaches run metrics
func (c *Collector) SetRecorder(r *metrics.Recorder) {
	c.recorder = r
	if r != nil {
		c.filter.SetObserver(r)
	}
}

// SetProgress attaches a progress display
func (c *Collector) SetProgress(p Progress) {
	c.progress = p
}

// Run collects posts until the target is reached or the results run out,
// then writes them to the sink. On any error nothing is written.
func (c *Collector) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID: uuid.NewString(),
		Query: c.query,
	}
	start := time.Now()

	log := c.logger.WithFields(map[string]interface{}{
		"run_id": res.RunID,
		"query":  c.query,
	})
	log.InfoWithFields("Starting collection", map[string]interface{}{
		"target":          c.target,
		"skip_first_page": c.skipFirstPage,
	})

	acc := make([]twitter.Post, 0, c.target)
	nextToken := ""

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}

		page, err := c.fetch(ctx, nextToken)
		if err != nil {
			log.WithError(err).WithField("page", res.Pages+1).Error("Failed to fetch page")
			return nil, fmt.Errorf("fetching page %d: %w", res.Pages+1, err)
		}
		res.Pages++
		res.Seen += len(page.Data)

		before := len(acc)
		if res.Pages == 1 && c.skipFirstPage {
			log.DebugWithFields("Discarding first page", map[string]interface{}{
				"received": len(page.Data),
			})
			if c.recorder != nil {
				for range page.Data {
					c.recorder.PostSeen()
				}
			}
		} else if err := c.filter.Apply(&acc, page); err != nil {
			log.WithError(err).WithField("page", res.Pages).Error("Failed to filter page")
			return nil, fmt.Errorf("filtering page %d: %w", res.Pages, err)
		}

		logger.LogPage(log, res.Pages, len(page.Data), len(acc)-before, len(acc))
		logger.LogCollectProgress(log, len(acc), c.target)
		if c.recorder != nil {
			c.recorder.SetCollected(len(acc))
			c.recorder.SetQuotaRemaining(page.RateLimit.Remaining)
		}
		if c.progress != nil {
			c.progress.PageDone(res.Pages, res.Seen, len(acc))
		}

		if len(acc) >= c.target {
			res.StopReason = StopTargetReached
			break
		}
		if page.Meta.NextToken == "" {
			res.StopReason = StopExhausted
			break
		}
		nextToken = page.Meta.NextToken
	}

	if err := c.sink.WritePosts(acc); err != nil {
		log.WithError(err).Error("Failed to write collection")
		return nil, fmt.Errorf("writing output: %w", err)
	}

	res.Posts = acc
	res.Stats = c.filter.Stats()
	res.OutputPath = c.sink.Path()
	res.Duration = time.Since(start)

	if c.recorder != nil {
		c.recorder.RunFinished(string(res.StopReason), time.Now())
	}

	log.InfoWithFields("Collection finished", map[string]interface{}{
		"posts":       len(acc),
		"pages":       res.Pages,
		"seen":        res.Seen,
		"stop_reason": string(res.StopReason),
		"output":      res.OutputPath,
		"duration":    res.Duration,
	})

	return res, nil
}

// fetch requests one page and records the outcome
func (c *Collector) fetch(ctx context.Context, nextToken string) (*twitter.Page, error) {
	start := time.Now()
	page, err := c.fetcher.FetchPage(ctx, c.query, nextToken)
	if c.recorder != nil {
		c.recorder.ObserveRequest(requestStatus(err), time.Since(start))
	}
	return page, err
}

// requestStatus labels a request outcome for metrics
func requestStatus(err error) string {
	if err == nil {
		return "ok"
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	var apiErr *errors.Error
	if stderrors.As(err, &apiErr) {
		return string(apiErr.Type)
	}
	return "error"
}
