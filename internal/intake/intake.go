// Package intake orchestrates remote-video ingestion: validate the shared
// URL, fetch metadata and a stream from the video source, re-host the bytes
// in the object store, then record a message through the ingestion pipeline.
// Linear, no retries; a caller resubmits the whole request to retry.
package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/133matt/ChatServer/internal/ingest"
	"github.com/133matt/ChatServer/internal/models"
	"github.com/133matt/ChatServer/internal/objectstore"
	"github.com/133matt/ChatServer/internal/videosource"
)

// Request is the remote-video intake input.
type Request struct {
	SourceURL string          `json:"sourceUrl"`
	Username  string          `json:"username"`
	Device    string          `json:"device"`
	Text      string          `json:"text"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// Intake coordinates the video source, object store, and pipeline.
type Intake struct {
	source   videosource.VideoSource
	objects  objectstore.ObjectStore
	pipeline *ingest.Pipeline
	timeout  time.Duration
	logger   zerolog.Logger
}

// New creates an intake orchestrator. timeout bounds the whole
// fetch-and-re-host flow per request.
func New(source videosource.VideoSource, objects objectstore.ObjectStore, pipeline *ingest.Pipeline, timeout time.Duration, logger zerolog.Logger) *Intake {
	return &Intake{
		source:   source,
		objects:  objects,
		pipeline: pipeline,
		timeout:  timeout,
		logger:   logger,
	}
}

// Download runs the intake flow under the request context, so a client
// disconnect cancels the in-flight fetch/upload and no message is recorded.
func (i *Intake) Download(ctx context.Context, req Request) (*models.Message, error) {
	if !videosource.IsSupportedURL(req.SourceURL) {
		return nil, fmt.Errorf("%w: %s", videosource.ErrInvalidSourceURL, req.SourceURL)
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	meta, err := i.source.FetchMetadata(ctx, req.SourceURL)
	if err != nil {
		return nil, err
	}

	stream, size, mime, err := i.source.OpenStream(ctx, meta)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	key := uuid.NewString() + extensionFor(mime)

	start := time.Now()
	hostedURL, err := i.objects.Put(ctx, key, stream, size, mime)
	if err != nil {
		return nil, err
	}

	i.logger.Info().
		Str("source_url", req.SourceURL).
		Str("key", key).
		Int64("size", size).
		Dur("upload_time", time.Since(start)).
		Msg("remote video re-hosted")

	return i.pipeline.Ingest(ctx, ingest.Payload{
		Username:    req.Username,
		Text:        req.Text,
		Device:      req.Device,
		Media:       hostedURL,
		MediaKind:   models.MediaURL,
		SourceURL:   req.SourceURL,
		SourceTitle: meta.Title,
		Timestamp:   req.Timestamp,
	})
}

func extensionFor(mime string) string {
	switch mime {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/3gpp":
		return ".3gp"
	default:
		return ".bin"
	}
}
