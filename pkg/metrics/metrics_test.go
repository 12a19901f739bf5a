package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	r := NewRecorder()

	r.ObserveRequest("ok", 200*time.Millisecond)
	r.ObserveRequest("ok", 300*time.Millisecond)
	r.ObserveRequest("rate_limit", 10*time.Millisecond)
	for i := 0; i < 5; i++ {
		r.PostSeen()
	}
	r.PostKept()
	r.PostKept()
	r.LookupMissed("place")
	r.SetCollected(2)
	r.SetQuotaRemaining(447)
	r.SetQuotaRemaining(-1)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requestsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requestsTotal.WithLabelValues("rate_limit")))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.postsSeen))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.postsKept))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.collected))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lookupMisses.WithLabelValues("place")))
	assert.Equal(t, 447.0, testutil.ToFloat64(r.quotaRemaining))
	assert.Equal(t, 1, testutil.CollectAndCount(r.requestDuration))
}

func TestRecordersAreIndependent(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.PostKept()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.postsKept))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.postsKept))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveRequest("ok", time.Second)
	r.PostSeen()
	r.PostKept()
	r.RunFinished("target_reached", time.Unix(1714567890, 0))

	path := filepath.Join(t.TempDir(), "geoscraper.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `geoscraper_search_requests_total{status="ok"} 1`)
	assert.Contains(t, out, "geoscraper_posts_kept_total 1")
	assert.Contains(t, out, `geoscraper_last_run_timestamp_seconds{reason="target_reached"} 1.71456789e+09`)
	assert.True(t, strings.Contains(out, "# HELP geoscraper_collected_posts"))
}

func TestWriteTextfileBadPath(t *testing.T) {
	r := NewRecorder()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.Error(t, err)
}
