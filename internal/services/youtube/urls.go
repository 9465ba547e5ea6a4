package youtube

import (
	"fmt"
	"html"
	"strings"
)

const (
	watchURLPrefix = "https://www.youtube.com/watch?v="
	embedURLPrefix = "https://www.youtube.com/embed/"

	defaultEmbedWidth  = 560
	defaultEmbedHeight = 315
)

// WatchURL returns the canonical watch URL for id.
func WatchURL(id string) string {
	return watchURLPrefix + id
}

// EmbedURL returns the embeddable player URL for id.
func EmbedURL(id string) string {
	return embedURLPrefix + id
}

// EmbedHTML returns an iframe snippet for the player of id. Non-positive
// dimensions fall back to 560x315.
func EmbedHTML(id string, width, height int) string {
	if width <= 0 {
		width = defaultEmbedWidth
	}
	if height <= 0 {
		height = defaultEmbedHeight
	}
	return fmt.Sprintf(`<iframe width="%d" height="%d" src="%s" title="YouTube video player" frameborder="0" `+
		`allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share" `+
		`referrerpolicy="strict-origin-when-cross-origin" allowfullscreen></iframe>`,
		width, height, html.EscapeString(EmbedURL(id)))
}

var urlShapes = []struct {
	marker     string
	terminator string
}{
	{"watch?v=", "&"},
	{"youtu.be/", "?"},
	{"embed/", "?"},
}

// ExtractVideoID pulls a video id out of a watch, youtu.be or embed URL.
// Shapes are tried in that order; the id runs to the first query delimiter.
func ExtractVideoID(rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	for _, shape := range urlShapes {
		idx := strings.LastIndex(rawURL, shape.marker)
		if idx < 0 {
			continue
		}
		id := rawURL[idx+len(shape.marker):]
		if cut := strings.Index(id, shape.terminator); cut >= 0 {
			id = id[:cut]
		}
		if id == "" {
			return "", false
		}
		return id, true
	}
	return "", false
}
