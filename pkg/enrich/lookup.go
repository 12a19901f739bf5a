package enrich

import "geoscraper/pkg/twitter"

// FindPlace returns the place with the given id from a page's includes
func FindPlace(places []twitter.Place, id string) (*twitter.Place, bool) {
	for i := range places {
		if places[i].ID == id {
			return &places[i], true
		}
	}
	return nil, false
}

// FindMedia returns the media item with the given key from a page's includes
func FindMedia(media []twitter.MediaItem, key string) (*twitter.MediaItem, bool) {
	for i := range media {
		if media[i].MediaKey == key {
			return &media[i], true
		}
	}
	return nil, false
}

// Center returns the midpoint of a [minX, minY, maxX, maxY] bounding box.
// ok is false unless bbox has exactly four elements.
func Center(bbox []float64) (center []float64, ok bool) {
	if len(bbox) != 4 {
		return nil, false
	}
	return []float64{(bbox[0] + bbox[2]) / 2, (bbox[1] + bbox[3]) / 2}, true
}

// MediaURL picks the displayable URL of a media item: the image itself
// for photos and the preview frame for videos. Other types have none.
func MediaURL(m *twitter.MediaItem) (string, bool) {
	switch m.Type {
	case twitter.MediaTypePhoto:
		return m.URL, true
	case twitter.MediaTypeVideo:
		return m.PreviewImageURL, true
	default:
		return "", false
	}
}
