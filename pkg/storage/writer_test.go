package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"geoscraper/pkg/twitter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePosts() []twitter.Post {
	return []twitter.Post{
		{
			ID:   "1",
			Text: "sunset",
			Geo:  &twitter.PostGeo{PlaceID: "p1"},
			PlaceInfo: &twitter.Place{
				ID:  "p1",
				Geo: twitter.PlaceGeo{Type: "Feature", BBox: []float64{0, 0, 2, 2}, Center: []float64{1, 1}},
			},
			MediaURL: "https://pbs.twimg.com/media/a.jpg?format=jpg&name=small",
		},
		{ID: "2", Text: "coords only", Geo: &twitter.PostGeo{Coordinates: &twitter.Point{Type: "Point", Coordinates: []float64{-9.1, 38.7}}}},
	}
}

func TestWritePosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	w := NewWriter(path)

	require.NoError(t, w.WritePosts(samplePosts()))
	assert.Equal(t, path, w.Path())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "["))
	assert.Contains(t, string(data), `"center":[1,1]`)
	assert.Contains(t, string(data), "&name=small")

	posts, err := ReadPosts(path)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, []float64{1, 1}, posts[0].PlaceInfo.Geo.Center)
	assert.Equal(t, "2", posts[1].ID)
	assert.Nil(t, posts[1].PlaceInfo)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestWritePostsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	require.NoError(t, NewWriter(path).WritePosts(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestWritePostsReplacesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	w := NewWriter(path)
	w.SetIndent(true)
	require.NoError(t, w.WritePosts(samplePosts()[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.json", entries[0].Name())
}

func TestWritePostsUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := NewWriter(filepath.Join(blocker, "out.json")).WritePosts(samplePosts())
	assert.Error(t, err)
}

func TestReadPostsErrors(t *testing.T) {
	_, err := ReadPosts(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = ReadPosts(bad)
	assert.Error(t, err)
}
