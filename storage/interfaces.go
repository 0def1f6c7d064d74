package storage

import (
	"context"

	"github.com/poiesic/assessrec/core"
)

// Repository is the lifecycle shared by every storage backend.
type Repository interface {
	// Close closes the storage backend and releases resources.
	Close() error
}

// EmbeddingRepository caches catalog embeddings across process restarts.
// Vectors are namespaced by model so switching models never reuses stale vectors.
type EmbeddingRepository interface {
	Repository

	// GetEmbeddings retrieves the cached vectors for ids under model.
	// Missing ids are simply absent from the result (no error).
	GetEmbeddings(ctx context.Context, model string, ids ...core.ID) (map[core.ID][]float32, error)

	// PutEmbeddings stores vectors under model, replacing any existing entries.
	PutEmbeddings(ctx context.Context, model string, vectors map[core.ID][]float32) error

	// CountEmbeddings returns the number of vectors cached under model.
	CountEmbeddings(ctx context.Context, model string) (int, error)

	// PruneEmbeddings deletes every vector under model whose id is not in keep.
	// Returns the number of vectors deleted.
	PruneEmbeddings(ctx context.Context, model string, keep []core.ID) (int, error)
}
