package ingest

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/133matt/ChatServer/internal/models"
)

func TestResolveMediaEmpty(t *testing.T) {
	media, kind, err := resolveMedia("", "", 1024)
	require.Nil(t, err)
	assert.Empty(t, media)
	assert.Equal(t, models.MediaNone, kind)
}

func TestResolveMediaExplicitKindWins(t *testing.T) {
	// An https URL tagged inline is treated as inline.
	_, kind, err := resolveMedia("https://cdn.example.com/a.png", "inline", 1024)
	require.Nil(t, err)
	assert.Equal(t, models.MediaInline, kind)

	_, kind, err = resolveMedia("not-a-url", "URL", 1024)
	require.Nil(t, err)
	assert.Equal(t, models.MediaURL, kind)
}

func TestResolveMediaInfersKind(t *testing.T) {
	_, kind, err := resolveMedia("https://cdn.example.com/a.png", "", 1024)
	require.Nil(t, err)
	assert.Equal(t, models.MediaURL, kind)

	payload := base64.StdEncoding.EncodeToString([]byte("tiny image"))
	media, kind, err := resolveMedia(payload, "", 1024)
	require.Nil(t, err)
	assert.Equal(t, models.MediaInline, kind)
	assert.Equal(t, payload, media, "inline payload stored as-is")
}

func TestResolveMediaSizeCeiling(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(make([]byte, 100))

	// DecodedLen rounds up to the 3-byte block, so allow a little headroom.
	_, _, err := resolveMedia(payload, "inline", 128)
	require.Nil(t, err)

	_, _, err = resolveMedia(payload, "inline", 50)
	require.NotNil(t, err)
	assert.Equal(t, CodePayloadTooLarge, err.Code)
}

func TestResolveMediaURLNotSizeChecked(t *testing.T) {
	long := "https://cdn.example.com/" + strings.Repeat("x", 500)
	_, kind, err := resolveMedia(long, "", 10)
	require.Nil(t, err)
	assert.Equal(t, models.MediaURL, kind)
}

func TestInlineDecodedSizeDataURI(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString(make([]byte, 90))
	withPrefix := "data:image/png;base64," + raw

	// The data: prefix must not count towards the decoded size.
	assert.Equal(t, inlineDecodedSize(raw), inlineDecodedSize(withPrefix))
}
