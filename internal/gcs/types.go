package gcs

import (
	"context"

	"github.com/dvloznov/statement-analyzer/internal/statement"
)

// DocumentSource loads statements from cloud storage.
// This interface enables mocking of storage in handler tests.
type DocumentSource interface {
	// FetchDocument downloads the object behind a gs:// URI as a statement Document.
	FetchDocument(ctx context.Context, uri string) (statement.Document, error)
}
