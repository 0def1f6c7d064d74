package badger

import (
	"bytes"

	"github.com/poiesic/assessrec/core"
	"github.com/poiesic/assessrec/storage"
)

// Key prefixes for different data types
const (
	embeddingPrefix = "emb"
)

// makeEmbeddingModelPrefix generates the key prefix shared by every vector of a model.
// Format: prefix:model:
func makeEmbeddingModelPrefix(model string) []byte {
	prefix := embeddingPrefix + ":" + model + ":"
	return []byte(prefix)
}

// makeEmbeddingKey generates a composite key for a cached vector.
// Format: prefix:model:varint(id)
func makeEmbeddingKey(model string, id core.ID) []byte {
	prefixBytes := makeEmbeddingModelPrefix(model)
	idBytes := storage.MarshalID(id)
	buf := make([]byte, 0, len(prefixBytes)+len(idBytes))
	buf = append(buf, prefixBytes...)
	return append(buf, idBytes...)
}

// idFromEmbeddingKey extracts the ID of an embedding key belonging to model.
// Keys of a model whose name merely extends model (e.g. "a" and "a:b") are rejected.
func idFromEmbeddingKey(model string, key []byte) (core.ID, bool) {
	prefix := makeEmbeddingModelPrefix(model)
	if !bytes.HasPrefix(key, prefix) {
		return 0, false
	}
	suffix := key[len(prefix):]
	id, err := storage.UnmarshalID(suffix)
	if err != nil || !bytes.Equal(storage.MarshalID(id), suffix) {
		return 0, false
	}
	return id, true
}
