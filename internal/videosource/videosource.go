// Package videosource abstracts the external shared-video platform: a URL
// in, metadata and a readable stream of a chosen encoding out.
package videosource

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrInvalidSourceURL means the URL does not match a supported
	// shared-video host. Checked before any network I/O.
	ErrInvalidSourceURL = errors.New("invalid source url")

	// ErrSourceUnavailable covers every provider-side failure: private,
	// age-restricted, region-locked, deleted, or plain unreachable.
	// The causes cannot be distinguished reliably, so they aren't.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// VideoMeta describes a resolved shared video.
type VideoMeta struct {
	SourceURL string
	Title     string
	Duration  time.Duration

	// provider-internal handle used by OpenStream
	handle any
}

// VideoSource resolves a shared-video URL to metadata and a stream.
type VideoSource interface {
	// FetchMetadata resolves the URL to title/duration/encodings.
	FetchMetadata(ctx context.Context, rawURL string) (*VideoMeta, error)

	// OpenStream opens a streaming read of the chosen encoding, returning
	// the stream, its size (-1 if unknown), and its MIME type. Prefers a
	// combined audio+video encoding when one exists.
	OpenStream(ctx context.Context, meta *VideoMeta) (io.ReadCloser, int64, string, error)
}

var supportedHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// IsSupportedURL reports whether rawURL points at a supported
// shared-video host.
func IsSupportedURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return supportedHosts[strings.ToLower(u.Host)]
}
