package videosource

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// YouTubeSource is a VideoSource backed by the kkdai/youtube client.
type YouTubeSource struct {
	client youtube.Client
}

// NewYouTubeSource creates a YouTube-backed video source.
func NewYouTubeSource() *YouTubeSource {
	return &YouTubeSource{}
}

// FetchMetadata resolves the video URL. Provider errors are opaque and map
// uniformly to ErrSourceUnavailable.
func (s *YouTubeSource) FetchMetadata(ctx context.Context, rawURL string) (*VideoMeta, error) {
	if !IsSupportedURL(rawURL) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSourceURL, rawURL)
	}

	video, err := s.client.GetVideoContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	return &VideoMeta{
		SourceURL: rawURL,
		Title:     video.Title,
		Duration:  video.Duration,
		handle:    video,
	}, nil
}

// OpenStream opens the best available encoding: a combined audio+video mp4
// when present, else the first combined format, else the first format at all.
func (s *YouTubeSource) OpenStream(ctx context.Context, meta *VideoMeta) (io.ReadCloser, int64, string, error) {
	video, ok := meta.handle.(*youtube.Video)
	if !ok {
		return nil, 0, "", fmt.Errorf("%w: metadata not resolved by this source", ErrSourceUnavailable)
	}

	format := pickFormat(video.Formats)
	if format == nil {
		return nil, 0, "", fmt.Errorf("%w: no playable formats", ErrSourceUnavailable)
	}

	stream, size, err := s.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, 0, "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	return stream, size, mimeOf(format), nil
}

func pickFormat(formats youtube.FormatList) *youtube.Format {
	combined := formats.WithAudioChannels()
	for i := range combined {
		if strings.HasPrefix(combined[i].MimeType, "video/mp4") {
			return &combined[i]
		}
	}
	if len(combined) > 0 {
		return &combined[0]
	}
	if len(formats) > 0 {
		return &formats[0]
	}
	return nil
}

// mimeOf strips the codecs parameter from a format's MIME type.
func mimeOf(f *youtube.Format) string {
	mime := f.MimeType
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.TrimSpace(mime)
}
