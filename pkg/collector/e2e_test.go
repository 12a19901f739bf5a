package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"geoscraper/pkg/config"
	"geoscraper/pkg/logger"
	"geoscraper/pkg/ratelimit"
	"geoscraper/pkg/storage"
	"geoscraper/pkg/twitter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	initialPage = `{
  "data": [{"id": "100", "text": "no location"}],
  "meta": {"result_count": 1, "next_token": "t1"}
}`
	loopPage = `{
  "data": [
    {"id": "200", "text": "hello from p1", "author_id": "9", "created_at": "2024-05-01T10:00:00.000Z",
     "geo": {"place_id": "p1"}}
  ],
  "includes": {"places": [{"id": "p1", "full_name": "Box", "geo": {"type": "Feature", "bbox": [0, 0, 2, 2], "properties": {}}}]},
  "meta": {"result_count": 1, "next_token": "t2"}
}`
)

func searchServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, twitter.RecentSearchPath, r.URL.Path)
		assert.Equal(t, "test -is:retweet", r.URL.Query().Get("query"))
		assert.Equal(t, "Bearer e2e-token", r.Header.Get("Authorization"))

		switch r.URL.Query().Get("next_token") {
		case "":
			_, _ = w.Write([]byte(initialPage))
		case "t1":
			_, _ = w.Write([]byte(loopPage))
		default:
			t.Errorf("unexpected next_token %q", r.URL.Query().Get("next_token"))
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEndToEnd(t *testing.T) {
	for _, skipFirst := range []bool{false, true} {
		name := "filter first page"
		if skipFirst {
			name = "discard first page"
		}

		t.Run(name, func(t *testing.T) {
			var calls int32
			srv := searchServer(t, &calls)

			cfg := config.DefaultConfig()
			cfg.Twitter.BaseURL = srv.URL
			cfg.Twitter.BearerToken = "e2e-token"
			cfg.Search.Query = "test -is:retweet"
			cfg.Search.TargetCount = 1
			cfg.Search.SkipFirstPage = skipFirst
			cfg.Output.File = filepath.Join(t.TempDir(), "geo.json")

			c, err := NewFromConfig(cfg, logger.NewTestLogger())
			require.NoError(t, err)
			c.SetLimiter(ratelimit.Nop{})

			res, err := c.Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
			assert.Equal(t, StopTargetReached, res.StopReason)
			require.Len(t, res.Posts, 1)
			assert.Equal(t, []float64{1, 1}, res.Posts[0].PlaceInfo.Geo.Center)

			written, err := storage.ReadPosts(cfg.Output.File)
			require.NoError(t, err)
			require.Len(t, written, 1)
			assert.Equal(t, "200", written[0].ID)
			require.NotNil(t, written[0].PlaceInfo)
			assert.Equal(t, "p1", written[0].PlaceInfo.ID)
			assert.Equal(t, []float64{1, 1}, written[0].PlaceInfo.Geo.Center)
		})
	}
}

func TestEndToEndServerErrorLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"title":"Unauthorized","detail":"Unauthorized"}`))
	}))
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Twitter.BaseURL = srv.URL
	cfg.Search.Query = "test -is:retweet"
	cfg.Output.File = filepath.Join(t.TempDir(), "geo.json")

	c, err := NewFromConfig(cfg, logger.NewTestLogger())
	require.NoError(t, err)
	c.SetLimiter(ratelimit.Nop{})

	_, err = c.Run(context.Background())
	require.Error(t, err)
	assert.NoFileExists(t, cfg.Output.File)
}
