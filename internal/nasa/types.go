// Package nasa provides clients for the Astronomy Picture of the Day API
// and the NASA Image and Video Library search API, plus a caching facade
// that shields both upstreams with memoization, retry, and fallbacks.
package nasa

// Apod is the Astronomy Picture of the Day payload.
type Apod struct {
	Date           string `json:"date,omitempty"`
	Title          string `json:"title,omitempty"`
	Explanation    string `json:"explanation,omitempty"`
	MediaType      string `json:"media_type,omitempty"`
	URL            string `json:"url,omitempty"`
	HDURL          string `json:"hdurl,omitempty"`
	ThumbnailURL   string `json:"thumbnail_url,omitempty"`
	Copyright      string `json:"copyright,omitempty"`
	ServiceVersion string `json:"service_version,omitempty"`
}

// ImageSearch is the response envelope of the image library search API,
// which follows the Collection+JSON convention.
type ImageSearch struct {
	Collection Collection `json:"collection"`
}

type Collection struct {
	Version  string    `json:"version,omitempty"`
	Href     string    `json:"href,omitempty"`
	Items    []Item    `json:"items,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Links    []Link    `json:"links,omitempty"`
}

type Metadata struct {
	TotalHits int `json:"total_hits"`
}

type Item struct {
	Href  string `json:"href,omitempty"`
	Data  []Data `json:"data,omitempty"`
	Links []Link `json:"links,omitempty"`
}

type Data struct {
	Center           string   `json:"center,omitempty"`
	Title            string   `json:"title,omitempty"`
	Description      string   `json:"description,omitempty"`
	NasaID           string   `json:"nasa_id,omitempty"`
	MediaType        string   `json:"media_type,omitempty"`
	DateCreated      string   `json:"date_created,omitempty"`
	Photographer     string   `json:"photographer,omitempty"`
	SecondaryCreator string   `json:"secondary_creator,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
	Album            []string `json:"album,omitempty"`
	Location         string   `json:"location,omitempty"`
}

type Link struct {
	Href   string `json:"href,omitempty"`
	Rel    string `json:"rel,omitempty"`
	Render string `json:"render,omitempty"`
}
