// Package chromem implements memory.Store on chromem-go, a pure Go
// embedded vector database.
package chromem

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/neura-ai/neura/memory"
)

const defaultCollection = "neura_memory"

// Store wraps a chromem-go collection.
type Store struct {
	db   *chromemgo.DB
	col  *chromemgo.Collection
	name string
	mu   sync.Mutex
}

// New creates an in-memory chromem store. Contents are lost on exit;
// use NewPersistent for durable memory.
func New(collection string) (*Store, error) {
	return open(chromemgo.NewDB(), collection)
}

// NewPersistent creates a chromem store that persists under dir.
func NewPersistent(dir string, collection string) (*Store, error) {
	db, err := chromemgo.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open chromem db: %w", err)
	}
	return open(db, collection)
}

func open(db *chromemgo.DB, collection string) (*Store, error) {
	if collection == "" {
		collection = defaultCollection
	}

	// Embeddings are always supplied by the caller, so no embedding func.
	// The default distance is cosine, which matches the manager's stats.
	col, err := db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &Store{db: db, col: col, name: collection}, nil
}

// Store saves a record with its embedding.
func (s *Store) Store(ctx context.Context, rec *memory.Record) error {
	return s.add(ctx, rec)
}

func (s *Store) add(ctx context.Context, rec *memory.Record) error {
	if len(rec.Embedding) == 0 {
		return fmt.Errorf("record %s has no embedding", rec.ID)
	}

	doc := chromemgo.Document{
		ID:        rec.ID,
		Content:   rec.Content,
		Embedding: rec.Embedding,
		Metadata:  encodeMetadata(rec),
	}

	if err := s.col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Query retrieves records by vector similarity.
func (s *Store) Query(ctx context.Context, embedding []float32, k int, filter map[string]string) ([]*memory.Record, error) {
	// chromem-go requires nResults <= collection size, so clamp first.
	count := s.col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	where := make(map[string]string, len(filter))
	for key, v := range filter {
		where["meta."+key] = v
	}
	if len(where) == 0 {
		where = nil
	}

	results, err := s.col.QueryEmbedding(ctx, embedding, k, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	records := make([]*memory.Record, 0, len(results))
	for _, res := range results {
		records = append(records, decodeResult(res))
	}
	return records, nil
}

// Get is not supported: chromem-go has no point lookup by ID.
func (s *Store) Get(ctx context.Context, id string) (*memory.Record, error) {
	return nil, memory.ErrNotSupported
}

// Update replaces a record by deleting and re-adding it under the same ID.
// The replacement is checked first so a bad record never destroys the
// stored one.
func (s *Store) Update(ctx context.Context, rec *memory.Record) error {
	if len(rec.Embedding) == 0 {
		return fmt.Errorf("record %s has no embedding", rec.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.col.Delete(ctx, nil, nil, rec.ID); err != nil {
		return fmt.Errorf("delete for update: %w", err)
	}
	return s.add(ctx, rec)
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.col.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("chromem delete: %w", err)
	}
	return nil
}

// Clear drops and recreates the collection.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	col, err := s.db.GetOrCreateCollection(s.name, nil, nil)
	if err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}
	s.col = col
	log.Printf("[CHROMEM] Cleared collection %s", s.name)
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.col.Count(), nil
}

// Close releases resources. chromem keeps everything in process memory
// (persistence happens on write), so there is nothing to flush.
func (s *Store) Close() error {
	return nil
}

// encodeMetadata flattens a record into chromem's string-only metadata.
// User metadata keys get a "meta." prefix so they cannot collide with the
// record envelope fields.
func encodeMetadata(rec *memory.Record) map[string]string {
	md := map[string]string{
		"created_at": rec.CreatedAt.Format(time.RFC3339),
	}
	for k, v := range rec.Metadata {
		md["meta."+k] = v
	}
	return md
}

func decodeResult(res chromemgo.Result) *memory.Record {
	createdAt, _ := time.Parse(time.RFC3339, res.Metadata["created_at"])

	meta := make(map[string]string)
	for k, v := range res.Metadata {
		if name, ok := strings.CutPrefix(k, "meta."); ok {
			meta[name] = v
		}
	}
	if len(meta) == 0 {
		meta = nil
	}

	return &memory.Record{
		ID:         res.ID,
		Content:    res.Content,
		Metadata:   meta,
		CreatedAt:  createdAt,
		Embedding:  res.Embedding,
		Similarity: res.Similarity,
	}
}
