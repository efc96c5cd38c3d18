package models

// MediaKind values tag how the media field of a message should be interpreted.
const (
	MediaNone   = ""
	MediaInline = "inline" // base64 payload carried in the message body
	MediaURL    = "url"    // externally hosted, media holds the URL
)

// Message is the sole persisted entity: one chat message.
type Message struct {
	ID          string `json:"id"`                  // ULID, assigned by the store
	Username    string `json:"username"`
	Text        string `json:"text,omitempty"`
	Media       string `json:"media,omitempty"`     // inline base64 or hosted URL
	MediaKind   string `json:"mediaKind,omitempty"`
	Device      string `json:"device,omitempty"`
	SourceURL   string `json:"sourceUrl,omitempty"` // original shared-video link
	SourceTitle string `json:"sourceTitle,omitempty"`
	Timestamp   int64  `json:"timestamp"`           // Unix ms
}

// HasContent reports whether the message carries at least one of
// text, media, or a source URL.
func (m *Message) HasContent() bool {
	return m.Text != "" || m.Media != "" || m.SourceURL != ""
}
