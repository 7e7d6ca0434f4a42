//go:build !onnx

package env

import (
	"fmt"

	"github.com/neura-ai/neura/config"
	"github.com/neura-ai/neura/memory"
)

// newONNXEmbedder is unavailable without the onnx build tag, which
// links ONNX Runtime.
func newONNXEmbedder(cfg *config.Config) (memory.Embedder, error) {
	return nil, fmt.Errorf("onnx embedder requires building with -tags onnx")
}
