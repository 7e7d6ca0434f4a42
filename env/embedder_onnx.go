//go:build onnx

package env

import (
	"path/filepath"

	"github.com/neura-ai/neura/config"
	"github.com/neura-ai/neura/memory"
	"github.com/neura-ai/neura/memory/embedder/onnx"
)

// newONNXEmbedder loads the local MiniLM model from the data dir.
func newONNXEmbedder(cfg *config.Config) (memory.Embedder, error) {
	modelDir := filepath.Join(cfg.DataDir, "models", "all-MiniLM-L6-v2")
	return onnx.New(onnx.Config{
		ModelPath:     filepath.Join(modelDir, "model.onnx"),
		TokenizerPath: filepath.Join(modelDir, "tokenizer.json"),
	})
}
