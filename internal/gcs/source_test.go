package gcs

import (
	"strings"
	"testing"

	"github.com/dvloznov/statement-analyzer/internal/statement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{uri: "gs://statements/2024/enero.pdf", wantBucket: "statements", wantObject: "2024/enero.pdf"},
		{uri: "  gs://b/o  ", wantBucket: "b", wantObject: "o"},
		{uri: "gs://bucket-only", wantErr: true},
		{uri: "gs://bucket/", wantErr: true},
		{uri: "gs:///object", wantErr: true},
		{uri: "s3://bucket/object", wantErr: true},
		{uri: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestExtractFilename(t *testing.T) {
	assert.Equal(t, "file.pdf", ExtractFilename("gs://bucket/folder/file.pdf"))
	assert.Equal(t, "file.pdf", ExtractFilename("gs://bucket/file.pdf"))
	assert.Equal(t, "bucket", ExtractFilename("gs://bucket"))
}

func TestReadLimited(t *testing.T) {
	data, err := readLimited(strings.NewReader("12345"), 5)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))

	_, err = readLimited(strings.NewReader("123456"), 5)
	assert.ErrorIs(t, err, ErrTooLarge)

	data, err = readLimited(strings.NewReader("unbounded"), 0)
	require.NoError(t, err)
	assert.Equal(t, "unbounded", string(data))
}

func TestMediaTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", mediaTypeFor("application/pdf", "a.bin"))
	assert.Equal(t, "image/png", mediaTypeFor("image/png; charset=binary", "a.pdf"))
	assert.Equal(t, "image/jpeg", mediaTypeFor("application/octet-stream", "scan.JPG"))
	assert.Equal(t, statement.DefaultMediaType, mediaTypeFor("", "statement"))
}
