package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/poiesic/assessrec/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEmbeddingServer fakes the /v1/embeddings endpoint, answering each input
// with a vector whose first component is the input's length.
func newEmbeddingServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		type datum struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]datum, len(req.Input))
		for i, in := range req.Input {
			data[i] = datum{Object: "embedding", Embedding: []float32{float32(len(in)), 1, 0}, Index: i}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
}

func TestProvider(t *testing.T) {
	srv := newEmbeddingServer(t)
	defer srv.Close()

	provider, err := NewProvider(ai.NewConfig(ai.WithEmbeddingHost(srv.URL), ai.WithEmbeddingModel("all-minilm")))
	require.NoError(t, err)
	defer provider.Close()

	assert.Equal(t, "openai:all-minilm", provider.ModelID())

	ctx := context.Background()

	t.Run("single text", func(t *testing.T) {
		vec, err := provider.Embedder().EmbedText(ctx, "java")
		require.NoError(t, err)
		assert.Equal(t, []float32{4, 1, 0}, vec)
	})

	t.Run("batch keeps order", func(t *testing.T) {
		vecs, err := provider.Embedder().EmbedTexts(ctx, []string{"a", "abc", "ab"})
		require.NoError(t, err)
		require.Len(t, vecs, 3)
		assert.Equal(t, float32(1), vecs[0][0])
		assert.Equal(t, float32(3), vecs[1][0])
		assert.Equal(t, float32(2), vecs[2][0])
	})
}

func TestProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model not found"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	embedder, err := NewEmbedder(ai.NewConfig(ai.WithEmbeddingHost(srv.URL)))
	require.NoError(t, err)

	_, err = embedder.EmbedText(context.Background(), "java")
	assert.Error(t, err)
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(&ai.Config{Provider: ai.ProviderOpenAI})
	assert.Error(t, err)
}
