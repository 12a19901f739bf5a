package enrich

import (
	"errors"
	"fmt"
)

var (
	// ErrPlaceNotFound means a post references a place_id absent from the page includes
	ErrPlaceNotFound = errors.New("place not found in includes")

	// ErrMediaNotFound means a post references a media key absent from the page includes
	ErrMediaNotFound = errors.New("media not found in includes")
)

// LookupError reports a reference from a post that could not be resolved
type LookupError struct {
	PostID string
	Key    string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("post %s: %v (key %q)", e.PostID, e.Err, e.Key)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
