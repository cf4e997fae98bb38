package statement

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// DefaultMediaType is assumed when the caller does not tag the payload.
const DefaultMediaType = "application/pdf"

// ErrEmptyDocument is returned for a zero-length payload.
var ErrEmptyDocument = errors.New("document payload is empty")

// Document is an immutable statement payload plus its media type.
type Document struct {
	data      []byte
	mediaType string
}

// NewDocument copies data into a Document. An empty mediaType means PDF.
func NewDocument(data []byte, mediaType string) (Document, error) {
	if len(data) == 0 {
		return Document{}, ErrEmptyDocument
	}
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		mediaType = DefaultMediaType
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return Document{data: buf, mediaType: mediaType}, nil
}

// DocumentFromBase64 decodes an encoded payload. A "data:<type>;base64," prefix
// is honoured and overrides mediaType; padded and unpadded encodings are accepted.
func DocumentFromBase64(payload, mediaType string) (Document, error) {
	payload = strings.TrimSpace(payload)
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		header, body, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return Document{}, fmt.Errorf("DocumentFromBase64: unsupported data URI header %q", header)
		}
		if t := strings.TrimSuffix(header, ";base64"); t != "" {
			mediaType = t
		}
		payload = body
	}
	if payload == "" {
		return Document{}, ErrEmptyDocument
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if rawErr != nil {
			return Document{}, fmt.Errorf("DocumentFromBase64: decode payload: %w", err)
		}
	}
	return NewDocument(data, mediaType)
}

// Bytes returns a copy of the payload.
func (d Document) Bytes() []byte {
	out := make([]byte, len(d.data))
	copy(out, d.data)
	return out
}

// Base64 returns the payload in standard padded encoding.
func (d Document) Base64() string {
	return base64.StdEncoding.EncodeToString(d.data)
}

// MediaType returns the payload's media type.
func (d Document) MediaType() string { return d.mediaType }

// Size is the payload length in bytes.
func (d Document) Size() int { return len(d.data) }
