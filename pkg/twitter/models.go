package twitter

// Page is one response of the recent search endpoint
type Page struct {
	Data     []Post     `json:"data"`
	Includes Includes   `json:"includes"`
	Meta     Meta       `json:"meta"`
	Errors   []APIError `json:"errors,omitempty"`

	// RateLimit is read from the response headers
	RateLimit RateLimit `json:"-"`
}

// Includes holds the objects expanded from the posts of a page
type Includes struct {
	Places []Place     `json:"places,omitempty"`
	Media  []MediaItem `json:"media,omitempty"`
}

// Meta carries the pagination state of a page
type Meta struct {
	ResultCount int    `json:"result_count"`
	NewestID    string `json:"newest_id,omitempty"`
	OldestID    string `json:"oldest_id,omitempty"`
	NextToken   string `json:"next_token,omitempty"`
}

// APIError is a partial error reported alongside a successful response
type APIError struct {
	Title        string `json:"title"`
	Detail       string `json:"detail"`
	Type         string `json:"type"`
	ResourceType string `json:"resource_type,omitempty"`
	ResourceID   string `json:"resource_id,omitempty"`
	Parameter    string `json:"parameter,omitempty"`
	Value        string `json:"value,omitempty"`
}

// Post is a single search result. PlaceInfo and MediaURL are filled in
// during enrichment and are absent from the API payload.
type Post struct {
	ID                  string       `json:"id"`
	Text                string       `json:"text"`
	AuthorID            string       `json:"author_id,omitempty"`
	CreatedAt           string       `json:"created_at,omitempty"`
	EditHistoryTweetIDs []string     `json:"edit_history_tweet_ids,omitempty"`
	Geo                 *PostGeo     `json:"geo,omitempty"`
	Attachments         *Attachments `json:"attachments,omitempty"`

	PlaceInfo *Place `json:"place_info,omitempty"`
	MediaURL  string `json:"media_url,omitempty"`
}

// PostGeo is the geographic metadata attached to a post
type PostGeo struct {
	PlaceID     string `json:"place_id,omitempty"`
	Coordinates *Point `json:"coordinates,omitempty"`
}

// Point is an exact location, [longitude, latitude]
type Point struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Attachments lists the media keys of a post
type Attachments struct {
	MediaKeys []string `json:"media_keys,omitempty"`
}

// Place is an expanded place object
type Place struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	FullName    string   `json:"full_name,omitempty"`
	PlaceType   string   `json:"place_type,omitempty"`
	Country     string   `json:"country,omitempty"`
	CountryCode string   `json:"country_code,omitempty"`
	Geo         PlaceGeo `json:"geo"`
}

// PlaceGeo is the GeoJSON feature of a place.
// BBox is [minLon, minLat, maxLon, maxLat].
type PlaceGeo struct {
	Type       string                 `json:"type,omitempty"`
	BBox       []float64              `json:"bbox,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Center     []float64              `json:"center,omitempty"`
}

// Clone returns a deep copy of the place
func (p Place) Clone() *Place {
	c := p
	if p.Geo.BBox != nil {
		c.Geo.BBox = append([]float64(nil), p.Geo.BBox...)
	}
	if p.Geo.Center != nil {
		c.Geo.Center = append([]float64(nil), p.Geo.Center...)
	}
	if p.Geo.Properties != nil {
		c.Geo.Properties = make(map[string]interface{}, len(p.Geo.Properties))
		for k, v := range p.Geo.Properties {
			c.Geo.Properties[k] = v
		}
	}
	return &c
}

// Media types
const (
	MediaTypePhoto       = "photo"
	MediaTypeVideo       = "video"
	MediaTypeAnimatedGIF = "animated_gif"
)

// MediaItem is an expanded media object
type MediaItem struct {
	MediaKey        string `json:"media_key"`
	Type            string `json:"type"`
	URL             string `json:"url,omitempty"`
	PreviewImageURL string `json:"preview_image_url,omitempty"`
}

// RateLimit is the quota reported by the x-rate-limit-* headers.
// Limit and Remaining are -1 when the header was absent.
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     int64
}
