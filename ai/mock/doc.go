// Package mock provides test double implementations of AI service interfaces.
//
// The mocks allow tests to run without a model runtime or embedding server
// and give controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	embedder := mock.NewMockEmbedder()
//	vec, err := embedder.EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
//
// # Default Behavior
//
// MockEmbedder returns unit-length 384-dimensional vectors derived from an
// FNV hash of the text, so equal texts always map to equal vectors.
package mock
