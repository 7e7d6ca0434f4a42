// Package memory provides persistent memory for NEURA agents.
//
// Completed tasks and other interactions are stored as records and
// retrieved later by semantic similarity. The package is split into three
// pluggable pieces:
//   - Store: the storage backend (chromem vector store, flat file, milvus)
//   - Embedder: text-to-vector conversion (OpenAI API, local ONNX, mock)
//   - Manager: orchestrates add/search/update/delete and caches queries
//
// Backends are interchangeable behind the Store interface, so a CLI run
// against the file backend and a server run against milvus share the same
// manager code.
package memory
