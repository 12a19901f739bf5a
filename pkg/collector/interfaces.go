package collector

import (
	"context"

	"geoscraper/pkg/twitter"
)

// Fetcher retrieves one page of search results
type Fetcher interface {
	FetchPage(ctx context.Context, query, nextToken string) (*twitter.Page, error)
}

// Sink receives the collection once a run is done
type Sink interface {
	WritePosts(posts []twitter.Post) error
	Path() string
}

// Progress is told about every filtered page
type Progress interface {
	PageDone(page, seen, collected int)
}
