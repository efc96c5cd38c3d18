package ingest

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/133matt/ChatServer/internal/models"
)

// resolveMedia turns the inbound media field into a stored reference.
// An explicit mediaKind wins; otherwise an absolute http(s) URL is treated
// as hosted content and anything else as an inline base64 payload. Inline
// payloads are size-checked against maxInline (decoded bytes) and stored
// as-is; no network I/O, no transcoding.
func resolveMedia(media, kind string, maxInline int64) (string, string, *ValidationError) {
	if media == "" {
		return "", models.MediaNone, nil
	}

	switch strings.ToLower(kind) {
	case models.MediaInline:
		kind = models.MediaInline
	case models.MediaURL:
		kind = models.MediaURL
	default:
		if isAbsoluteURL(media) {
			kind = models.MediaURL
		} else {
			kind = models.MediaInline
		}
	}

	if kind == models.MediaInline {
		if inlineDecodedSize(media) > maxInline {
			return "", "", payloadTooLarge(maxInline)
		}
	}

	return media, kind, nil
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// inlineDecodedSize estimates the decoded byte size of an inline payload,
// tolerating a data: URI prefix.
func inlineDecodedSize(media string) int64 {
	if strings.HasPrefix(media, "data:") {
		if i := strings.IndexByte(media, ','); i >= 0 {
			media = media[i+1:]
		}
	}
	return int64(base64.StdEncoding.DecodedLen(len(media)))
}
