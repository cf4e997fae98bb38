package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/statement-analyzer/internal/statement"
	"google.golang.org/api/option"
)

var (
	// ErrInvalidURI is returned for anything that is not gs://bucket/object.
	ErrInvalidURI = errors.New("invalid GCS URI")
	// ErrNotFound is returned when the bucket or object does not exist.
	ErrNotFound = errors.New("GCS object not found")
	// ErrTooLarge is returned when the object exceeds the configured size limit.
	ErrTooLarge = errors.New("GCS object exceeds size limit")
)

// Source reads statements from Google Cloud Storage. Objects are never written
// or retained.
type Source struct {
	client   *storage.Client
	maxBytes int64
}

// NewSource creates a storage client using Application Default Credentials
// unless opts say otherwise. maxBytes <= 0 disables the size limit.
func NewSource(ctx context.Context, maxBytes int64, opts ...option.ClientOption) (*Source, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewSource: create storage client: %w", err)
	}
	return &Source{client: client, maxBytes: maxBytes}, nil
}

// Close releases the storage client.
func (s *Source) Close() error {
	return s.client.Close()
}

// FetchDocument downloads the object at uri. The object's content type is used as
// the document media type when it is set.
func (s *Source) FetchDocument(ctx context.Context, uri string) (statement.Document, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return statement.Document{}, err
	}

	rc, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return statement.Document{}, fmt.Errorf("FetchDocument: %s: %w", uri, ErrNotFound)
		}
		return statement.Document{}, fmt.Errorf("FetchDocument: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	if s.maxBytes > 0 && rc.Attrs.Size > s.maxBytes {
		return statement.Document{}, fmt.Errorf("FetchDocument: %s is %d bytes: %w", uri, rc.Attrs.Size, ErrTooLarge)
	}

	data, err := readLimited(rc, s.maxBytes)
	if err != nil {
		return statement.Document{}, fmt.Errorf("FetchDocument: %s: %w", uri, err)
	}

	return statement.NewDocument(data, mediaTypeFor(rc.Attrs.ContentType, object))
}

// readLimited reads r fully, failing with ErrTooLarge past max bytes.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read bytes: %w", err)
	}
	if int64(len(data)) > max {
		return nil, ErrTooLarge
	}
	return data, nil
}

// mediaTypeFor prefers the stored content type and falls back to the object extension.
func mediaTypeFor(contentType, object string) string {
	if ct, _, _ := strings.Cut(contentType, ";"); ct != "" && ct != "application/octet-stream" {
		return strings.TrimSpace(ct)
	}
	switch strings.ToLower(path.Ext(object)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return statement.DefaultMediaType
	}
}

// ParseURI splits gs://bucket/path/to/object into bucket and object.
func ParseURI(uri string) (bucket, object string, err error) {
	trimmed, ok := strings.CutPrefix(strings.TrimSpace(uri), "gs://")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	bucket, object, found := strings.Cut(trimmed, "/")
	if !found || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w (no object path): %q", ErrInvalidURI, uri)
	}
	return bucket, object, nil
}

// ExtractFilename extracts the object's base name from a GCS URI.
// e.g., "gs://bucket/folder/file.pdf" → "file.pdf"
func ExtractFilename(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	_, object, found := strings.Cut(trimmed, "/")
	if !found {
		return trimmed
	}
	return path.Base(object)
}
