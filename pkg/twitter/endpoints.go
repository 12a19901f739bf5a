package twitter

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// RecentSearchPath is the recent search endpoint, relative to the API host
	RecentSearchPath = "/2/tweets/search/recent"

	// DefaultMaxResults is the page size used when none is configured
	DefaultMaxResults = 100

	// MinMaxResults and MaxMaxResults bound the page size the endpoint accepts
	MinMaxResults = 10
	MaxMaxResults = 100
)

// Field and expansion lists requested on every search
const (
	Expansions  = "geo.place_id,attachments.media_keys"
	TweetFields = "author_id,created_at,geo"
	PlaceFields = "geo,name,full_name,place_type"
	MediaFields = "preview_image_url,url"
)

// ClampMaxResults keeps n inside the range the endpoint accepts
func ClampMaxResults(n int) int {
	switch {
	case n <= 0:
		return DefaultMaxResults
	case n < MinMaxResults:
		return MinMaxResults
	case n > MaxMaxResults:
		return MaxMaxResults
	default:
		return n
	}
}

// SearchParams builds the query string of a recent search request
func SearchParams(query, nextToken string, maxResults int) url.Values {
	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", strconv.Itoa(ClampMaxResults(maxResults)))
	params.Set("expansions", Expansions)
	params.Set("tweet.fields", TweetFields)
	params.Set("place.fields", PlaceFields)
	params.Set("media.fields", MediaFields)
	if nextToken != "" {
		params.Set("next_token", nextToken)
	}
	return params
}

// SearchURL constructs the full recent search URL for baseURL
func SearchURL(baseURL, query, nextToken string, maxResults int) string {
	return strings.TrimRight(baseURL, "/") + RecentSearchPath + "?" +
		SearchParams(query, nextToken, maxResults).Encode()
}
