package ragModel

import "context"

// DocumentStore owns raw document text and source metadata. The RAG service
// reads from it during ingestion and deletes through it so that index entries
// and documents share a lifecycle.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (Document, bool)
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context) ([]Document, error)
}
