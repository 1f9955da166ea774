package flickr

import "fmt"

// Photo is one photostream item as served to the gallery page.
type Photo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URLSmall    string `json:"url_small"`
	URLMedium   string `json:"url_medium"`
	URLLarge    string `json:"url_large"`
	URLOriginal string `json:"url_original,omitempty"`
	Width       int    `json:"width"`  // small variant dimensions
	Height      int    `json:"height"`
	PageURL     string `json:"pageUrl"`
}

// Album is one photoset as served to the gallery page.
type Album struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PhotoCount  int    `json:"photoCount"`
	CoverURL    string `json:"coverUrl"` // empty when the upstream triple is incomplete
	FlickrURL   string `json:"flickrUrl"`
}

// PhotoData is what the gallery page consumes.
type PhotoData struct {
	Photos []Photo `json:"photos"`
	Albums []Album `json:"albums"`
}

// Envelope is the persisted cache document for the gallery.
type Envelope struct {
	Timestamp int64   `json:"timestamp"` // ms since epoch of the last refresh with data
	Photos    []Photo `json:"photos"`
	Albums    []Album `json:"albums"`
}

// contentField matches Flickr's {"_content": "..."} wrapper.
type contentField struct {
	Content string `json:"_content"`
}

// PhotoJSON matches one item of people.getPublicPhotos with the extras
// we request. Size URLs are optional; missing ones get synthesized.
type PhotoJSON struct {
	ID          string       `json:"id"`
	Owner       string       `json:"owner"`
	Secret      string       `json:"secret"`
	Server      string       `json:"server"`
	Title       string       `json:"title"`
	Description contentField `json:"description"`
	URLM        string       `json:"url_m"`
	WidthM      int          `json:"width_m"`
	HeightM     int          `json:"height_m"`
	URLZ        string       `json:"url_z"`
	URLL        string       `json:"url_l"`
	URLO        string       `json:"url_o"`
}

// PhotoPage is one page of the photostream.
type PhotoPage struct {
	Page   int         `json:"page"`
	Pages  int         `json:"pages"`
	Photos []PhotoJSON `json:"photo"`
}

// PhotosetJSON matches one item of photosets.getList.
type PhotosetJSON struct {
	ID          string       `json:"id"`
	Primary     string       `json:"primary"`
	Secret      string       `json:"secret"`
	Server      string       `json:"server"`
	Photos      int          `json:"photos"`
	Title       contentField `json:"title"`
	Description contentField `json:"description"`
}

// FeedItem matches one item of the public photo feed.
type FeedItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Published   string `json:"published"`
	AuthorID    string `json:"author_id"`
	Media       struct {
		M string `json:"m"`
	} `json:"media"`
}

// Size suffixes of the static photo CDN. The small suffix doubles as
// the token the public feed embeds in its media URLs.
const (
	suffixSmall  = "m"
	suffixMedium = "z"
	suffixLarge  = "b"
)

// photoURL builds a static CDN URL from the photo record's parts.
func photoURL(server, id, secret, suffix string) string {
	return fmt.Sprintf("https://live.staticflickr.com/%s/%s_%s_%s.jpg", server, id, secret, suffix)
}
