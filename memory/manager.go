package memory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
)

// Config holds VectorManager configuration.
type Config struct {
	// DefaultK is the result count used when Search is called with k <= 0.
	DefaultK int

	// MinSimilarity filters out weak matches [0.0-1.0].
	// Small local models produce lower scores than API embedders, so the
	// default is deliberately permissive.
	MinSimilarity float32

	// CacheSize bounds the query cache in entries. Zero disables caching.
	CacheSize int64
}

// DefaultConfig returns the defaults used by the CLI.
var DefaultConfig = &Config{
	DefaultK:      5,
	MinSimilarity: 0.0,
	CacheSize:     1024,
}

// VectorManager is the standard Manager implementation: a Store for
// persistence, an Embedder for vectorization, and a ristretto cache in
// front of repeated queries. Any mutation invalidates the whole cache.
type VectorManager struct {
	store    Store
	embedder Embedder
	config   *Config
	cache    *ristretto.Cache
}

// NewVectorManager creates a manager over the given store and embedder.
func NewVectorManager(store Store, embedder Embedder, config *Config) (*VectorManager, error) {
	if config == nil {
		config = DefaultConfig
	}

	m := &VectorManager{
		store:    store,
		embedder: embedder,
		config:   config,
	}

	if config.CacheSize > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: config.CacheSize * 10,
			MaxCost:     config.CacheSize,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("create query cache: %w", err)
		}
		m.cache = cache
	}

	return m, nil
}

// Add stores content with metadata and returns the new record ID.
func (m *VectorManager) Add(ctx context.Context, content string, metadata map[string]string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("content cannot be empty")
	}

	embedding, err := m.embedder.Embed(ctx, content)
	if err != nil {
		return "", fmt.Errorf("embed content: %w", err)
	}

	rec := &Record{
		ID:        uuid.New().String(),
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
		Embedding: embedding,
	}

	if err := m.store.Store(ctx, rec); err != nil {
		return "", fmt.Errorf("store record: %w", err)
	}

	m.invalidate()
	log.Printf("[MEMORY] Stored record %s (%d chars)", rec.ID, len(content))
	return rec.ID, nil
}

// Search returns up to k records relevant to the query, best match first.
func (m *VectorManager) Search(ctx context.Context, query string, k int, filter map[string]string) ([]*Record, error) {
	if k <= 0 {
		k = m.config.DefaultK
	}

	cacheKey := searchCacheKey(query, k, filter)
	if m.cache != nil {
		if v, ok := m.cache.Get(cacheKey); ok {
			if recs, ok := v.([]*Record); ok {
				return recs, nil
			}
		}
	}

	embedding, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	records, err := m.store.Query(ctx, embedding, k, filter)
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}

	// Drop weak matches and keep best-first order.
	filtered := records[:0]
	for _, rec := range records {
		if rec.Similarity >= m.config.MinSimilarity {
			filtered = append(filtered, rec)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Similarity > filtered[j].Similarity
	})

	log.Printf("[MEMORY] Retrieved %d records for query %q", len(filtered), truncateLog(query, 50))

	if m.cache != nil {
		m.cache.Set(cacheKey, filtered, 1)
	}
	return filtered, nil
}

// Update replaces an existing record. Non-empty content is re-embedded;
// empty content replaces only the metadata, carrying the stored content
// and embedding through. Metadata-only updates need a backend with point
// lookup and return ErrNotSupported otherwise, leaving the record intact.
func (m *VectorManager) Update(ctx context.Context, id string, content string, metadata map[string]string) error {
	if id == "" {
		return fmt.Errorf("record id cannot be empty")
	}

	rec := &Record{
		ID:        id,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	if content != "" {
		embedding, err := m.embedder.Embed(ctx, content)
		if err != nil {
			return fmt.Errorf("embed content: %w", err)
		}
		rec.Embedding = embedding
	} else {
		existing, err := m.store.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotSupported) {
				return fmt.Errorf("metadata-only update: %w", err)
			}
			return fmt.Errorf("load record %s: %w", id, err)
		}
		rec.Content = existing.Content
		rec.Embedding = existing.Embedding
		rec.CreatedAt = existing.CreatedAt
	}

	if err := m.store.Update(ctx, rec); err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	m.invalidate()
	return nil
}

// Delete removes a record.
func (m *VectorManager) Delete(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	m.invalidate()
	return nil
}

// Clear removes all records.
func (m *VectorManager) Clear(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	m.invalidate()
	log.Printf("[MEMORY] Cleared all records")
	return nil
}

// Stats reports record count and embedding characteristics.
func (m *VectorManager) Stats(ctx context.Context) (*Stats, error) {
	count, err := m.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	return &Stats{
		Count:          count,
		Dimensions:     m.embedder.Dimensions(),
		DistanceMetric: "cosine",
	}, nil
}

// Close releases the cache and the underlying store.
func (m *VectorManager) Close() error {
	if m.cache != nil {
		m.cache.Close()
	}
	return m.store.Close()
}

func (m *VectorManager) invalidate() {
	if m.cache != nil {
		m.cache.Clear()
	}
}

func searchCacheKey(query string, k int, filter map[string]string) string {
	var b strings.Builder
	b.WriteString(query)
	fmt.Fprintf(&b, "|%d", k)

	// Deterministic filter encoding.
	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, "|%s=%s", key, filter[key])
	}
	return b.String()
}

// truncateLog truncates text for logging.
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
