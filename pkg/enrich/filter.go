package enrich

import (
	"errors"
	"fmt"

	"geoscraper/pkg/config"
	"geoscraper/pkg/logger"
	"geoscraper/pkg/twitter"
)

// MissingPolicy decides what happens to a post whose place or media
// reference cannot be resolved
type MissingPolicy int

const (
	// SkipMissing drops the post and logs a warning
	SkipMissing MissingPolicy = iota
	// FailMissing aborts the page with a *LookupError
	FailMissing
)

// ParsePolicy converts the configured on_missing value
func ParsePolicy(s string) (MissingPolicy, error) {
	switch s {
	case "", config.OnMissingSkip:
		return SkipMissing, nil
	case config.OnMissingFail:
		return FailMissing, nil
	default:
		return SkipMissing, fmt.Errorf("unknown missing-lookup policy %q", s)
	}
}

func (p MissingPolicy) String() string {
	if p == FailMissing {
		return config.OnMissingFail
	}
	return config.OnMissingSkip
}

// Stats counts what a filter has done across all pages it has seen
type Stats struct {
	Seen          int
	Kept          int
	NoGeo         int
	PlaceMissing  int
	MediaMissing  int
	MediaResolved int
}

// Observer is notified about each post the filter decides on
type Observer interface {
	PostSeen()
	PostKept()
	LookupMissed(kind string)
}

// Filter keeps geo-tagged posts and attaches their place and media details
type Filter struct {
	policy   MissingPolicy
	logger   logger.Logger
	observer Observer
	stats    Stats
}

// NewFilter creates a filter with the given missing-lookup policy
func NewFilter(policy MissingPolicy, log logger.Logger) *Filter {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Filter{policy: policy, logger: log}
}

// SetObserver registers o to receive per-post events
func (f *Filter) SetObserver(o Observer) {
	f.observer = o
}

// Stats returns the running totals
func (f *Filter) Stats() Stats {
	return f.stats
}

// Apply appends the geo-tagged posts of page to acc, in page order,
// enriched with place_info and media_url. Posts without geo data are
// ignored. With FailMissing the first unresolved reference stops the
// page; posts appended before it stay in acc.
func (f *Filter) Apply(acc *[]twitter.Post, page *twitter.Page) error {
	if page == nil {
		return nil
	}

	for i := range page.Data {
		f.stats.Seen++
		f.notify(func(o Observer) { o.PostSeen() })

		post := page.Data[i]
		if post.Geo == nil {
			f.stats.NoGeo++
			continue
		}

		if err := f.enrich(&post, &page.Includes); err != nil {
			var lookupErr *LookupError
			if f.policy == FailMissing || !errors.As(err, &lookupErr) {
				return err
			}
			f.logger.WithError(err).WarnWithFields("dropping post with unresolved reference", map[string]interface{}{
				"post_id": lookupErr.PostID,
				"key":     lookupErr.Key,
			})
			continue
		}

		*acc = append(*acc, post)
		f.stats.Kept++
		f.notify(func(o Observer) { o.PostKept() })
	}

	return nil
}

// enrich resolves the place and media references of a single post
func (f *Filter) enrich(post *twitter.Post, inc *twitter.Includes) error {
	if id := post.Geo.PlaceID; id != "" {
		place, ok := FindPlace(inc.Places, id)
		if !ok {
			f.stats.PlaceMissing++
			f.notify(func(o Observer) { o.LookupMissed("place") })
			return &LookupError{PostID: post.ID, Key: id, Err: ErrPlaceNotFound}
		}

		// each post owns its place so center is never shared
		post.PlaceInfo = place.Clone()
		if center, ok := Center(post.PlaceInfo.Geo.BBox); ok {
			post.PlaceInfo.Geo.Center = center
		}
	}

	if post.Attachments != nil && len(post.Attachments.MediaKeys) > 0 {
		key := post.Attachments.MediaKeys[0]
		media, ok := FindMedia(inc.Media, key)
		if !ok {
			f.stats.MediaMissing++
			f.notify(func(o Observer) { o.LookupMissed("media") })
			return &LookupError{PostID: post.ID, Key: key, Err: ErrMediaNotFound}
		}
		if url, ok := MediaURL(media); ok {
			post.MediaURL = url
			f.stats.MediaResolved++
		}
	}

	return nil
}

func (f *Filter) notify(fn func(Observer)) {
	if f.observer != nil {
		fn(f.observer)
	}
}
