package flickr

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// stripHTML reduces an upstream description to plain text. Flickr
// descriptions arrive as HTML fragments; feed descriptions also embed
// the thumbnail markup.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	plain := strictPolicy.Sanitize(s)
	plain = html.UnescapeString(plain)
	return strings.TrimSpace(plain)
}
