// Package videoembed normalizes exercise video links of various hosting
// platforms into embeddable player URLs.
package videoembed

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Kind tells the client which element to render the embed with.
type Kind string

const (
	// KindIframe: the URL goes into an iframe player.
	KindIframe Kind = "iframe"
	// KindVideo: a direct media file for a native video element.
	KindVideo Kind = "video"
)

// Embed is a normalized, embeddable video reference.
type Embed struct {
	URL  string `json:"url"`
	Kind Kind   `json:"kind"`
}

var (
	directFileRe = regexp.MustCompile(`(?i)\.(mp4|webm|ogg|mov)$`)
	vkVideoRe    = regexp.MustCompile(`video(-?\d+)_(\d+)`)
)

// EmbedURL maps a raw video link to its embeddable form. Links of unknown
// platforms pass through unchanged as iframe embeds, matching what the
// platforms' own share dialogs hand out.
func EmbedURL(raw string) Embed {
	if raw == "" {
		return Embed{Kind: KindIframe}
	}

	// direct video file, no player page needed
	if directFileRe.MatchString(raw) {
		return Embed{URL: raw, Kind: KindVideo}
	}

	if strings.Contains(raw, "youtube.com") || strings.Contains(raw, "youtu.be") {
		return Embed{URL: youtubeEmbed(raw), Kind: KindIframe}
	}

	if strings.Contains(raw, "vimeo.com") {
		videoID := pathAfter(raw, "vimeo.com/")
		return Embed{URL: "https://player.vimeo.com/video/" + videoID, Kind: KindIframe}
	}

	if strings.Contains(raw, "rutube.ru") {
		videoID := pathAfter(raw, "rutube.ru/video/")
		if videoID == "" {
			videoID = pathAfter(raw, "rutube.ru/play/embed/")
		}
		return Embed{URL: "https://rutube.ru/play/embed/" + videoID, Kind: KindIframe}
	}

	if strings.Contains(raw, "vk.com/video") {
		if match := vkVideoRe.FindStringSubmatch(raw); match != nil {
			return Embed{
				URL:  fmt.Sprintf("https://vk.com/video_ext.php?oid=%s&id=%s", match[1], match[2]),
				Kind: KindIframe,
			}
		}
		return Embed{URL: raw, Kind: KindIframe}
	}

	if strings.Contains(raw, "dzen.ru") {
		videoID := pathAfter(raw, "dzen.ru/video/watch/")
		if videoID == "" {
			videoID = pathAfter(raw, "dzen.ru/embed/")
		}
		if videoID != "" {
			return Embed{URL: "https://dzen.ru/embed/" + videoID, Kind: KindIframe}
		}
	}

	// telegram and everything else: embed the link as-is
	return Embed{URL: raw, Kind: KindIframe}
}

func youtubeEmbed(raw string) string {
	var videoID string
	if strings.Contains(raw, "youtu.be") {
		videoID = pathAfter(raw, "youtu.be/")
	} else if parsed, err := url.Parse(raw); err == nil {
		videoID = parsed.Query().Get("v")
	}
	return "https://www.youtube.com/embed/" + videoID
}

// pathAfter returns what follows the marker in the url, query string stripped;
// empty when the marker is absent.
func pathAfter(raw, marker string) string {
	_, after, found := strings.Cut(raw, marker)
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(after, "?")
	return id
}
