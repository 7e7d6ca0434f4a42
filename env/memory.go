package env

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/neura-ai/neura/config"
	"github.com/neura-ai/neura/memory"
	mockembed "github.com/neura-ai/neura/memory/embedder/mock"
	openaiembed "github.com/neura-ai/neura/memory/embedder/openai"
	"github.com/neura-ai/neura/memory/store/chromem"
	"github.com/neura-ai/neura/memory/store/file"
	"github.com/neura-ai/neura/memory/store/milvus"
)

// newMemory builds the memory manager from config: store backend plus
// embedder, wrapped in the vector manager.
func newMemory(cfg *config.Config) (memory.Manager, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	store, err := newStore(cfg, embedder.Dimensions())
	if err != nil {
		return nil, err
	}

	return memory.NewVectorManager(store, embedder, nil)
}

func newStore(cfg *config.Config, dimensions int) (memory.Store, error) {
	switch cfg.Memory.Backend {
	case "chromem":
		dir := cfg.Memory.Path
		if dir == "" {
			dir = filepath.Join(cfg.DataDir, "chromem")
		}
		return chromem.NewPersistent(dir, cfg.Memory.Collection)
	case "file":
		path := cfg.Memory.Path
		if path == "" {
			path = filepath.Join(cfg.DataDir, "memory.jsonl")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return file.New(path)
	case "milvus":
		return milvus.New(context.Background(), milvus.Config{
			Address:    cfg.Memory.MilvusAddress,
			Collection: cfg.Memory.Collection,
			Dimensions: dimensions,
		})
	default:
		return nil, fmt.Errorf("unknown memory backend %q", cfg.Memory.Backend)
	}
}

func newEmbedder(cfg *config.Config) (memory.Embedder, error) {
	switch cfg.Memory.Embedder {
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set (required by the openai embedder)")
		}
		return openaiembed.New(openaiembed.Config{
			APIKey: key,
			Model:  cfg.Memory.EmbeddingModel,
		})
	case "onnx":
		return newONNXEmbedder(cfg)
	case "mock":
		return mockembed.New(0), nil
	default:
		return nil, fmt.Errorf("unknown embedder %q", cfg.Memory.Embedder)
	}
}
