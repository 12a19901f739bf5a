package collector

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"geoscraper/pkg/config"
	"geoscraper/pkg/enrich"
	"geoscraper/pkg/errors"
	"geoscraper/pkg/logger"
	"geoscraper/pkg/metrics"
	"geoscraper/pkg/ratelimit"
	"geoscraper/pkg/twitter"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFetcher replays pages in order and records the tokens it was asked for
type scriptedFetcher struct {
	pages  []*twitter.Page
	errAt  int
	err    error
	tokens []string
}

func (f *scriptedFetcher) FetchPage(ctx context.Context, query, nextToken string) (*twitter.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	call := len(f.tokens)
	f.tokens = append(f.tokens, nextToken)
	if f.err != nil && call == f.errAt {
		return nil, f.err
	}
	if call >= len(f.pages) {
		return nil, fmt.Errorf("unexpected fetch %d", call+1)
	}
	return f.pages[call], nil
}

// memorySink keeps what was written
type memorySink struct {
	writes int
	posts  []twitter.Post
	err    error
}

func (s *memorySink) WritePosts(posts []twitter.Post) error {
	s.writes++
	if s.err != nil {
		return s.err
	}
	s.posts = append([]twitter.Post(nil), posts...)
	return nil
}

func (s *memorySink) Path() string { return "memory" }

type recordingProgress struct {
	calls [][3]int
}

func (p *recordingProgress) PageDone(page, seen, collected int) {
	p.calls = append(p.calls, [3]int{page, seen, collected})
}

// page builds a page whose posts all carry geo data unless the id starts with "n"
func page(next string, ids ...string) *twitter.Page {
	p := &twitter.Page{Meta: twitter.Meta{NextToken: next, ResultCount: len(ids)}}
	for _, id := range ids {
		post := twitter.Post{ID: id}
		if id[0] != 'n' {
			post.Geo = &twitter.PostGeo{Coordinates: &twitter.Point{Type: "Point", Coordinates: []float64{1, 2}}}
		}
		p.Data = append(p.Data, post)
	}
	return p
}

func testConfig(target int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Search.Query = "test -is:retweet"
	cfg.Search.TargetCount = target
	return cfg
}

func newTestCollector(t *testing.T, cfg *config.Config, f Fetcher, s Sink) (*Collector, *ratelimit.FakeClock) {
	t.Helper()
	c, err := New(cfg, f, s, logger.NewTestLogger())
	require.NoError(t, err)

	clock := ratelimit.NewFakeClock(time.Unix(0, 0))
	c.SetLimiter(ratelimit.FromConfig(cfg.RateLimit, clock))
	return c, clock
}

func ids(posts []twitter.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestRunStopsWhenNextTokenMissing(t *testing.T) {
	f := &scriptedFetcher{pages: []*twitter.Page{
		page("t2", "a", "n1"),
		page("t3", "n2", "b"),
		page("", "c"),
	}}
	sink := &memorySink{}
	c, clock := newTestCollector(t, testConfig(200), f, sink)

	res, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"", "t2", "t3"}, f.tokens)
	assert.Equal(t, StopExhausted, res.StopReason)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, 5, res.Seen)
	assert.Equal(t, []string{"a", "b", "c"}, ids(res.Posts))
	assert.Equal(t, 1, sink.writes)
	assert.Equal(t, []string{"a", "b", "c"}, ids(sink.posts))
	assert.Equal(t, "memory", res.OutputPath)
	assert.NotEmpty(t, res.RunID)

	// first request is immediate, then 2.1s between requests
	assert.Equal(t, []time.Duration{2100 * time.Millisecond, 2100 * time.Millisecond}, clock.Sleeps())
}

func TestRunStopsAtTargetWithoutTruncating(t *testing.T) {
	f := &scriptedFetcher{pages: []*twitter.Page{
		page("t2", "a", "b"),
		page("t3", "c", "d", "e"),
		page("t4", "never"),
	}}
	sink := &memorySink{}
	c, _ := newTestCollector(t, testConfig(4), f, sink)

	res, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StopTargetReached, res.StopReason)
	assert.Len(t, f.tokens, 2)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(sink.posts))
}

func TestRunFirstPageAlreadyFinal(t *testing.T) {
	f := &scriptedFetcher{pages: []*twitter.Page{page("", "a")}}
	sink := &memorySink{}
	c, clock := newTestCollector(t, testConfig(10), f, sink)

	res, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StopExhausted, res.StopReason)
	assert.Equal(t, []string{"a"}, ids(res.Posts))
	assert.Empty(t, clock.Sleeps())
}

func TestRunEmptyCollectionStillWritten(t *testing.T) {
	f := &scriptedFetcher{pages: []*twitter.Page{page("", "n1", "n2")}}
	sink := &memorySink{}
	c, _ := newTestCollector(t, testConfig(10), f, sink)

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Posts)
	assert.Equal(t, 1, sink.writes)
}

func TestRunSkipFirstPage(t *testing.T) {
	f := &scriptedFetcher{pages: []*twitter.Page{
		page("t2", "first"),
		page("", "second"),
	}}
	cfg := testConfig(10)
	cfg.Search.SkipFirstPage = true
	sink := &memorySink{}
	c, _ := newTestCollector(t, cfg, f, sink)
	rec := metrics.NewRecorder()
	c.SetRecorder(rec)

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, ids(res.Posts))
	assert.Equal(t, 2, res.Seen)
	assert.Equal(t, 1, res.Stats.Seen)

	// the discarded page still counts as seen, like Result.Seen
	expected := `
# HELP geoscraper_posts_kept_total Geo-tagged posts added to the collection
# TYPE geoscraper_posts_kept_total counter
geoscraper_posts_kept_total 1
# HELP geoscraper_posts_seen_total Posts returned by the search endpoint
# TYPE geoscraper_posts_seen_total counter
geoscraper_posts_seen_total 2
`
	require.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected),
		"geoscraper_posts_kept_total", "geoscraper_posts_seen_total"))
}

func TestRunFetchErrorWritesNothing(t *testing.T) {
	apiErr := errors.New(errors.ErrorTypeRateLimit, 429, "search failed: Too Many Requests")
	f := &scriptedFetcher{
		pages: []*twitter.Page{page("t2", "a")},
		errAt: 1,
		err:   apiErr,
	}
	sink := &memorySink{}
	c, _ := newTestCollector(t, testConfig(10), f, sink)
	rec := metrics.NewRecorder()
	c.SetRecorder(rec)

	res, err := c.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.IsType(err, errors.ErrorTypeRateLimit))
	assert.Contains(t, err.Error(), "fetching page 2")
	assert.Zero(t, sink.writes)

	// one ok and one rate_limit series
	assert.Equal(t, 2, testutil.CollectAndCount(rec.Registry(), "geoscraper_search_requests_total"))
}

func TestRunLookupFailure(t *testing.T) {
	bad := &twitter.Page{
		Data: []twitter.Post{{ID: "x", Geo: &twitter.PostGeo{PlaceID: "ghost"}}},
		Meta: twitter.Meta{NextToken: "t2"},
	}

	t.Run("fail policy aborts", func(t *testing.T) {
		cfg := testConfig(10)
		cfg.Search.OnMissing = config.OnMissingFail
		sink := &memorySink{}
		c, _ := newTestCollector(t, cfg, &scriptedFetcher{pages: []*twitter.Page{bad}}, sink)

		_, err := c.Run(context.Background())
		assert.ErrorIs(t, err, enrich.ErrPlaceNotFound)
		assert.Zero(t, sink.writes)
	})

	t.Run("skip policy continues", func(t *testing.T) {
		sink := &memorySink{}
		f := &scriptedFetcher{pages: []*twitter.Page{bad, page("", "ok")}}
		c, _ := newTestCollector(t, testConfig(10), f, sink)

		res, err := c.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"ok"}, ids(res.Posts))
		assert.Equal(t, 1, res.Stats.PlaceMissing)
	})
}

func TestRunSinkError(t *testing.T) {
	sink := &memorySink{err: stderrors.New("disk full")}
	c, _ := newTestCollector(t, testConfig(1), &scriptedFetcher{pages: []*twitter.Page{page("", "a")}}, sink)

	_, err := c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing output")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &memorySink{}
	c, _ := newTestCollector(t, testConfig(10), &scriptedFetcher{}, sink)

	_, err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sink.writes)
}

func TestRunReportsProgressAndMetrics(t *testing.T) {
	f := &scriptedFetcher{pages: []*twitter.Page{
		page("t2", "a", "n1"),
		page("", "b"),
	}}
	c, _ := newTestCollector(t, testConfig(10), f, &memorySink{})
	progress := &recordingProgress{}
	rec := metrics.NewRecorder()
	c.SetProgress(progress)
	c.SetRecorder(rec)

	_, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, [][3]int{{1, 2, 1}, {2, 3, 2}}, progress.calls)
	expected := `
# HELP geoscraper_collected_posts Posts in the collection
# TYPE geoscraper_collected_posts gauge
geoscraper_collected_posts 2
# HELP geoscraper_posts_seen_total Posts returned by the search endpoint
# TYPE geoscraper_posts_seen_total counter
geoscraper_posts_seen_total 3
`
	require.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected),
		"geoscraper_collected_posts", "geoscraper_posts_seen_total"))
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig(0)
	_, err := New(cfg, &scriptedFetcher{}, &memorySink{}, nil)
	assert.Error(t, err)

	cfg = testConfig(5)
	cfg.Search.OnMissing = "ignore"
	_, err = New(cfg, &scriptedFetcher{}, &memorySink{}, nil)
	assert.Error(t, err)
}

func TestRequestStatus(t *testing.T) {
	assert.Equal(t, "ok", requestStatus(nil))
	assert.Equal(t, "canceled", requestStatus(fmt.Errorf("x: %w", context.Canceled)))
	assert.Equal(t, "auth", requestStatus(errors.New(errors.ErrorTypeAuth, 401, "no")))
	assert.Equal(t, "error", requestStatus(stderrors.New("plain")))
}
