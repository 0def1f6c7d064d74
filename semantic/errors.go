package semantic

import "errors"

var (
	// ErrEmbedderRequired is returned when NewIndex is given a nil embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrDimensionMismatch indicates vectors of different widths were compared.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingCountMismatch indicates the embedder returned the wrong number of vectors.
	ErrEmbeddingCountMismatch = errors.New("embedding result count mismatch")
)
