package memory

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist in the store.
var ErrNotFound = errors.New("memory: record not found")

// ErrNotSupported is returned by backends that cannot implement an
// operation (e.g. chromem-go has no direct get-by-ID).
var ErrNotSupported = errors.New("memory: operation not supported by backend")

// Record is a single stored memory.
type Record struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Embedding []float32         `json:"embedding,omitempty"`

	// Similarity is populated on query results only.
	Similarity float32 `json:"similarity,omitempty"`
}

// Store is the storage backend interface.
// Implementations: chromem (embedded vector DB), file (JSONL), milvus.
type Store interface {
	// Store saves a record. The embedding must be set.
	Store(ctx context.Context, rec *Record) error

	// Query returns up to k records sorted by similarity to the
	// embedding, highest first. Filter matches metadata exactly; a nil
	// filter matches everything.
	Query(ctx context.Context, embedding []float32, k int, filter map[string]string) ([]*Record, error)

	// Get retrieves a record by ID. Backends without point lookup
	// return ErrNotSupported.
	Get(ctx context.Context, id string) (*Record, error)

	// Update replaces a stored record, keeping its ID.
	Update(ctx context.Context, rec *Record) error

	// Delete removes a record permanently.
	Delete(ctx context.Context, id string) error

	// Clear removes all records.
	Clear(ctx context.Context) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}

// Embedder converts text to vector embeddings.
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// Stats summarizes the state of a memory manager.
type Stats struct {
	Count          int    `json:"count"`
	Dimensions     int    `json:"dimensions"`
	DistanceMetric string `json:"distance_metric"`
}

// Manager is the high-level memory interface the rest of NEURA uses.
type Manager interface {
	// Add stores content with optional metadata and returns the record ID.
	Add(ctx context.Context, content string, metadata map[string]string) (string, error)

	// Search returns up to k records relevant to the query.
	Search(ctx context.Context, query string, k int, filter map[string]string) ([]*Record, error)

	// Update replaces content and/or metadata of an existing record.
	Update(ctx context.Context, id string, content string, metadata map[string]string) error

	// Delete removes a record.
	Delete(ctx context.Context, id string) error

	// Clear removes all records.
	Clear(ctx context.Context) error

	// Stats reports record count and embedding characteristics.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases resources held by the manager and its store.
	Close() error
}
