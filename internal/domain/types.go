package domain

import "time"

// SourceKind identifies how the active image entered the session.
type SourceKind string

const (
	SourceExample SourceKind = "example"
	SourceUpload  SourceKind = "upload"
	SourceCamera  SourceKind = "camera"
)

// Image is the in-memory representation of the session's active picture.
// Bytes are passed through to the agent unchanged; no resize or recompression.
type Image struct {
	Data     []byte
	MimeType string
	Label    string
	Source   SourceKind
}

// Analysis is one archived analyzer run.
type Analysis struct {
	ID         int64
	Source     SourceKind
	Label      string
	StorageKey string
	MimeType   string
	Model      string
	ResultText string
	CreatedAt  time.Time
}
