// Package youtube extracts video identifiers from YouTube links.
package youtube

import "regexp"

// The id must be exactly 11 characters of the YouTube alphabet; a longer run
// of id characters is not a video id. Channel paths stop at the query string
// so a slash inside a later parameter cannot win over v=.
var videoPattern = regexp.MustCompile(
	`(?i)(?:youtube\.com/(?:(?:v|e(?:mbed)?|shorts|live)/|[^#]*?[?&]v=|[^/?#]+/[^?]+/)|youtu\.be/)` +
		`([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`,
)

// VideoID returns the video identifier embedded in raw, if any.
func VideoID(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	m := videoPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func EmbedURL(id string) string {
	return "https://www.youtube.com/embed/" + id
}

func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
