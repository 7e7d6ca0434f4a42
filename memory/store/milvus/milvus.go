// Package milvus implements memory.Store on a Milvus collection for
// deployments where memory outgrows the embedded backends.
package milvus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/neura-ai/neura/memory"
)

// Config holds Milvus connection settings.
type Config struct {
	Address    string // host:port, e.g. "localhost:19530"
	Username   string
	Password   string
	Collection string
	Dimensions int
}

// Store wraps a Milvus collection holding NEURA memory records.
type Store struct {
	client     client.Client
	collection string
	dim        int
}

// New connects to Milvus and ensures the memory collection exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("milvus: collection name is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("milvus: embedding dimensions must be positive")
	}

	c, err := client.NewClient(ctx, client.Config{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to milvus: %w", err)
	}

	s := &Store{
		client:     c,
		collection: cfg.Collection,
		dim:        cfg.Dimensions,
	}
	if err := s.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if !exists {
		schema := &entity.Schema{
			CollectionName: s.collection,
			Description:    "NEURA agent memory records",
			Fields: []*entity.Field{
				{
					Name:       "id",
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					TypeParams: map[string]string{"max_length": "64"},
				},
				{
					Name:       "content",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "65535"},
				},
				{
					Name:       "metadata",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "65535"},
				},
				{
					Name:     "created_at",
					DataType: entity.FieldTypeInt64,
				},
				{
					Name:       "embedding",
					DataType:   entity.FieldTypeFloatVector,
					TypeParams: map[string]string{"dim": fmt.Sprintf("%d", s.dim)},
				},
			},
		}
		if err := s.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}

		index, err := entity.NewIndexFlat(entity.COSINE)
		if err != nil {
			return fmt.Errorf("create index: %w", err)
		}
		if err := s.client.CreateIndex(ctx, s.collection, "embedding", index, false); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	return nil
}

// Store saves a record.
func (s *Store) Store(ctx context.Context, rec *memory.Record) error {
	if len(rec.Embedding) != s.dim {
		return fmt.Errorf("record %s embedding has %d dimensions, collection expects %d",
			rec.ID, len(rec.Embedding), s.dim)
	}

	metaJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	columns := []entity.Column{
		entity.NewColumnVarChar("id", []string{rec.ID}),
		entity.NewColumnVarChar("content", []string{rec.Content}),
		entity.NewColumnVarChar("metadata", []string{string(metaJSON)}),
		entity.NewColumnInt64("created_at", []int64{rec.CreatedAt.Unix()}),
		entity.NewColumnFloatVector("embedding", s.dim, [][]float32{rec.Embedding}),
	}

	if _, err := s.client.Insert(ctx, s.collection, "", columns...); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	if err := s.client.Flush(ctx, s.collection, false); err != nil {
		return fmt.Errorf("flush collection: %w", err)
	}
	return nil
}

// Query retrieves records by vector similarity. Metadata filtering is
// applied client-side after the vector search because metadata is stored
// as a JSON blob.
func (s *Store) Query(ctx context.Context, embedding []float32, k int, filter map[string]string) ([]*memory.Record, error) {
	sp, err := entity.NewIndexFlatSearchParam()
	if err != nil {
		return nil, fmt.Errorf("search params: %w", err)
	}

	results, err := s.client.Search(
		ctx,
		s.collection,
		nil,
		"",
		[]string{"id", "content", "metadata", "created_at"},
		[]entity.Vector{entity.FloatVector(embedding)},
		"embedding",
		entity.COSINE,
		k,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search: %w", err)
	}

	var records []*memory.Record
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			rec, err := rowToRecord(result, i)
			if err != nil {
				continue
			}
			if matchesFilter(rec, filter) {
				records = append(records, rec)
			}
		}
	}
	return records, nil
}

// Get retrieves a record by ID.
func (s *Store) Get(ctx context.Context, id string) (*memory.Record, error) {
	rs, err := s.client.Query(ctx, s.collection, nil,
		fmt.Sprintf("id == %q", id),
		[]string{"id", "content", "metadata", "created_at"})
	if err != nil {
		return nil, fmt.Errorf("milvus query: %w", err)
	}

	idCol := columnByName(rs, "id")
	if idCol == nil || idCol.Len() == 0 {
		return nil, memory.ErrNotFound
	}
	return resultSetToRecord(rs, 0)
}

// Update replaces a stored record by deleting and re-inserting it. The
// replacement is checked first so a bad record never destroys the stored
// one.
func (s *Store) Update(ctx context.Context, rec *memory.Record) error {
	if len(rec.Embedding) == 0 {
		return fmt.Errorf("record %s has no embedding", rec.ID)
	}
	if err := s.Delete(ctx, rec.ID); err != nil {
		return err
	}
	return s.Store(ctx, rec)
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, id string) error {
	expr := fmt.Sprintf("id == %q", id)
	if err := s.client.Delete(ctx, s.collection, "", expr); err != nil {
		return fmt.Errorf("milvus delete: %w", err)
	}
	return nil
}

// Clear drops and recreates the collection.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.DropCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	return s.ensureCollection(ctx)
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	stats, err := s.client.GetCollectionStatistics(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("collection statistics: %w", err)
	}
	var count int
	fmt.Sscanf(stats["row_count"], "%d", &count)
	return count, nil
}

// Close closes the Milvus connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func matchesFilter(rec *memory.Record, filter map[string]string) bool {
	for k, v := range filter {
		if rec.Metadata[k] != v {
			return false
		}
	}
	return true
}

func rowToRecord(result client.SearchResult, i int) (*memory.Record, error) {
	rec := &memory.Record{Similarity: result.Scores[i]}
	if err := fillRecord(rec, result.Fields, i); err != nil {
		return nil, err
	}
	// The primary key may come back in IDs instead of Fields.
	if rec.ID == "" && result.IDs != nil {
		id, err := result.IDs.GetAsString(i)
		if err != nil {
			return nil, err
		}
		rec.ID = id
	}
	if rec.ID == "" {
		return nil, fmt.Errorf("search row %d has no id", i)
	}
	return rec, nil
}

func resultSetToRecord(rs client.ResultSet, i int) (*memory.Record, error) {
	rec := &memory.Record{}
	if err := fillRecord(rec, []entity.Column(rs), i); err != nil {
		return nil, err
	}
	return rec, nil
}

func fillRecord(rec *memory.Record, cols []entity.Column, i int) error {
	for _, col := range cols {
		switch col.Name() {
		case "id":
			v, err := col.GetAsString(i)
			if err != nil {
				return err
			}
			rec.ID = v
		case "content":
			v, err := col.GetAsString(i)
			if err != nil {
				return err
			}
			rec.Content = v
		case "metadata":
			v, err := col.GetAsString(i)
			if err != nil {
				return err
			}
			if v != "" && v != "null" {
				if err := json.Unmarshal([]byte(v), &rec.Metadata); err != nil {
					return fmt.Errorf("unmarshal metadata: %w", err)
				}
			}
		case "created_at":
			v, err := col.GetAsInt64(i)
			if err != nil {
				return err
			}
			rec.CreatedAt = time.Unix(v, 0).UTC()
		}
	}
	return nil
}

func columnByName(rs client.ResultSet, name string) entity.Column {
	for _, col := range rs {
		if col.Name() == name {
			return col
		}
	}
	return nil
}
