package twitter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampMaxResults(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultMaxResults},
		{-5, DefaultMaxResults},
		{5, MinMaxResults},
		{10, 10},
		{55, 55},
		{100, 100},
		{500, MaxMaxResults},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampMaxResults(tt.in), "input %d", tt.in)
	}
}

func TestSearchURL(t *testing.T) {
	tests := []struct {
		name      string
		baseURL   string
		nextToken string
	}{
		{"first page", "https://api.twitter.com", ""},
		{"continuation", "https://api.twitter.com/", "b26v89c19zqg8o3fpzbkk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := SearchURL(tt.baseURL, "wildlife -is:retweet", tt.nextToken, 100)

			u, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, "api.twitter.com", u.Host)
			assert.Equal(t, RecentSearchPath, u.Path)

			q := u.Query()
			assert.Equal(t, "wildlife -is:retweet", q.Get("query"))
			assert.Equal(t, "100", q.Get("max_results"))
			assert.Equal(t, "geo.place_id,attachments.media_keys", q.Get("expansions"))
			assert.Equal(t, "author_id,created_at,geo", q.Get("tweet.fields"))
			assert.Equal(t, "geo,name,full_name,place_type", q.Get("place.fields"))
			assert.Equal(t, "preview_image_url,url", q.Get("media.fields"))

			if tt.nextToken == "" {
				_, ok := q["next_token"]
				assert.False(t, ok)
			} else {
				assert.Equal(t, tt.nextToken, q.Get("next_token"))
			}
		})
	}
}

func TestPlaceClone(t *testing.T) {
	orig := Place{
		ID: "p1",
		Geo: PlaceGeo{
			BBox:       []float64{0, 0, 2, 2},
			Properties: map[string]interface{}{"k": "v"},
		},
	}

	c := orig.Clone()
	c.Geo.BBox[0] = 99
	c.Geo.Center = []float64{1, 1}
	c.Geo.Properties["k"] = "changed"

	assert.Equal(t, 0.0, orig.Geo.BBox[0])
	assert.Nil(t, orig.Geo.Center)
	assert.Equal(t, "v", orig.Geo.Properties["k"])
}
