// Package file implements memory.Store as a flat JSONL file with an
// in-process cosine scan. It is the zero-dependency backend for CLI use:
// every record fits one line, the whole set is loaded at open, and
// mutations rewrite the file.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/neura-ai/neura/memory"
)

// Store keeps records in memory and mirrors them to a JSONL file.
type Store struct {
	path    string
	mu      sync.RWMutex
	records map[string]*memory.Record
}

// New opens (or creates) a file store at path.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create memory dir: %w", err)
	}

	s := &Store{
		path:    path,
		records: make(map[string]*memory.Record),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open memory file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec memory.Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return fmt.Errorf("memory file line %d: %w", line, err)
		}
		s.records[rec.ID] = &rec
	}
	return scanner.Err()
}

// flush rewrites the whole file. Callers must hold the write lock.
func (s *Store) flush() error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create memory file: %w", err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rec := range s.records {
		if err := enc.Encode(rec); err != nil {
			f.Close()
			return fmt.Errorf("encode record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Store saves a record.
func (s *Store) Store(ctx context.Context, rec *memory.Record) error {
	if len(rec.Embedding) == 0 {
		return fmt.Errorf("record %s has no embedding", rec.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	return s.flush()
}

// Query scans all records and returns the k most similar.
func (s *Store) Query(ctx context.Context, embedding []float32, k int, filter map[string]string) ([]*memory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]*memory.Record, 0, len(s.records))
	for _, rec := range s.records {
		if !matchesFilter(rec, filter) {
			continue
		}
		scored := *rec
		scored.Similarity = cosineSimilarity(embedding, rec.Embedding)
		matches = append(matches, &scored)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Get retrieves a record by ID.
func (s *Store) Get(ctx context.Context, id string) (*memory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, memory.ErrNotFound
	}
	return rec, nil
}

// Update replaces a stored record, preserving fields that are zero in rec.
func (s *Store) Update(ctx context.Context, rec *memory.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[rec.ID]
	if !ok {
		return memory.ErrNotFound
	}

	updated := *existing
	if rec.Content != "" {
		updated.Content = rec.Content
		updated.Embedding = rec.Embedding
	}
	if rec.Metadata != nil {
		updated.Metadata = rec.Metadata
	}
	s.records[rec.ID] = &updated
	return s.flush()
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return memory.ErrNotFound
	}
	delete(s.records, id)
	return s.flush()
}

// Clear removes all records.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*memory.Record)
	return s.flush()
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close is a no-op; every mutation is already flushed.
func (s *Store) Close() error {
	return nil
}

func matchesFilter(rec *memory.Record, filter map[string]string) bool {
	for k, v := range filter {
		if rec.Metadata[k] != v {
			return false
		}
	}
	return true
}

// cosineSimilarity returns the cosine of the angle between a and b,
// or 0 when either vector is zero or the lengths differ.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
