package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/133matt/ChatServer/internal/config"
	"github.com/133matt/ChatServer/internal/ingest"
	"github.com/133matt/ChatServer/internal/models"
	"github.com/133matt/ChatServer/internal/objectstore"
	"github.com/133matt/ChatServer/internal/store"
	"github.com/133matt/ChatServer/internal/videosource"
)

type fakeSource struct {
	metaErr   error
	streamErr error
	title     string
	content   string
}

func (f *fakeSource) FetchMetadata(ctx context.Context, rawURL string) (*videosource.VideoMeta, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	return &videosource.VideoMeta{SourceURL: rawURL, Title: f.title, Duration: time.Minute}, nil
}

func (f *fakeSource) OpenStream(ctx context.Context, meta *videosource.VideoMeta) (io.ReadCloser, int64, string, error) {
	if f.streamErr != nil {
		return nil, 0, "", f.streamErr
	}
	return io.NopCloser(strings.NewReader(f.content)), int64(len(f.content)), "video/mp4", nil
}

type fakeObjects struct {
	putErr error
	puts   int
}

func (f *fakeObjects) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts++
	return "https://media.example.com/" + key, nil
}

func (f *fakeObjects) Ping(ctx context.Context) error { return nil }

func newTestIntake(src videosource.VideoSource, obj objectstore.ObjectStore) (*Intake, *store.MemoryStore) {
	st := store.NewMemoryStore()
	pipeline := ingest.New(st, config.Limits{
		MaxUsernameLen:      50,
		MaxTextLen:          5000,
		MaxDeviceLen:        100,
		MaxInlineMediaBytes: 10 << 20,
	})
	return New(src, obj, pipeline, 30*time.Second, zerolog.Nop()), st
}

func storeSize(t *testing.T, st *store.MemoryStore) int {
	t.Helper()
	msgs, err := st.List(context.Background(), 1000)
	require.NoError(t, err)
	return len(msgs)
}

func TestDownloadSuccess(t *testing.T) {
	src := &fakeSource{title: "Never Gonna Give You Up", content: "videobytes"}
	obj := &fakeObjects{}
	in, st := newTestIntake(src, obj)

	msg, err := in.Download(context.Background(), Request{
		SourceURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Username:  "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, obj.puts)
	assert.Equal(t, models.MediaURL, msg.MediaKind)
	assert.True(t, strings.HasPrefix(msg.Media, "https://media.example.com/"))
	assert.True(t, strings.HasSuffix(msg.Media, ".mp4"))
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", msg.SourceURL)
	assert.Equal(t, "Never Gonna Give You Up", msg.SourceTitle)
	assert.Equal(t, 1, storeSize(t, st))
}

func TestDownloadRejectsUnsupportedURL(t *testing.T) {
	in, st := newTestIntake(&fakeSource{}, &fakeObjects{})

	for _, rawURL := range []string{
		"https://vimeo.com/12345",
		"not a url",
		"ftp://youtube.com/watch?v=x",
		"",
	} {
		_, err := in.Download(context.Background(), Request{SourceURL: rawURL, Username: "alice"})
		assert.ErrorIs(t, err, videosource.ErrInvalidSourceURL, "url=%q", rawURL)
	}
	assert.Equal(t, 0, storeSize(t, st))
}

func TestDownloadSourceUnavailable(t *testing.T) {
	src := &fakeSource{metaErr: fmt.Errorf("%w: video is private", videosource.ErrSourceUnavailable)}
	in, st := newTestIntake(src, &fakeObjects{})

	_, err := in.Download(context.Background(), Request{
		SourceURL: "https://youtu.be/dQw4w9WgXcQ",
		Username:  "alice",
	})
	assert.ErrorIs(t, err, videosource.ErrSourceUnavailable)
	assert.Equal(t, 0, storeSize(t, st), "no message recorded for a failed fetch")
}

func TestDownloadStreamFailure(t *testing.T) {
	src := &fakeSource{streamErr: fmt.Errorf("%w: no formats", videosource.ErrSourceUnavailable)}
	in, st := newTestIntake(src, &fakeObjects{})

	_, err := in.Download(context.Background(), Request{
		SourceURL: "https://youtu.be/dQw4w9WgXcQ",
		Username:  "alice",
	})
	assert.ErrorIs(t, err, videosource.ErrSourceUnavailable)
	assert.Equal(t, 0, storeSize(t, st))
}

func TestDownloadUploadFailure(t *testing.T) {
	src := &fakeSource{title: "t", content: "bytes"}
	obj := &fakeObjects{putErr: fmt.Errorf("%w: bucket gone", objectstore.ErrUploadFailed)}
	in, st := newTestIntake(src, obj)

	_, err := in.Download(context.Background(), Request{
		SourceURL: "https://youtu.be/dQw4w9WgXcQ",
		Username:  "alice",
	})
	assert.ErrorIs(t, err, objectstore.ErrUploadFailed)
	assert.Equal(t, 0, storeSize(t, st), "no message recorded for a failed upload")
}

func TestDownloadValidationStillApplies(t *testing.T) {
	src := &fakeSource{title: "t", content: "bytes"}
	in, st := newTestIntake(src, &fakeObjects{})

	_, err := in.Download(context.Background(), Request{
		SourceURL: "https://youtu.be/dQw4w9WgXcQ",
		Username:  "   ",
	})
	var verr *ingest.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ingest.CodeMissingField, verr.Code)
	assert.Equal(t, 0, storeSize(t, st))
}
