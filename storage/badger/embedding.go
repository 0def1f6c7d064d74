package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/assessrec/core"
	"github.com/poiesic/assessrec/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend     *Backend
	ownsBackend bool
	logger      *slog.Logger
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a repository over an existing backend.
// The caller keeps ownership of backend and must close it.
func NewEmbeddingRepository(backend *Backend) (*EmbeddingRepository, error) {
	if backend == nil {
		return nil, errors.New("badger: backend is required")
	}
	return &EmbeddingRepository{
		backend: backend,
		logger:  backend.logger.With("repository", "embeddings"),
	}, nil
}

// NewRepository opens a persistent embedding cache at path.
// Closing the repository closes the underlying database.
func NewRepository(path string) (*EmbeddingRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	repo, err := NewEmbeddingRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	repo.ownsBackend = true
	return repo, nil
}

// Close releases resources. The backend is closed only when the repository opened it.
func (r *EmbeddingRepository) Close() error {
	if r.ownsBackend && !r.backend.IsClosed() {
		return r.backend.Close()
	}
	return nil
}

// GetEmbeddings retrieves the cached vectors for ids under model.
func (r *EmbeddingRepository) GetEmbeddings(ctx context.Context, model string, ids ...core.ID) (map[core.ID][]float32, error) {
	if model == "" {
		return nil, fmt.Errorf("%w: model is required", storage.ErrInvalidQuery)
	}

	vectors := make(map[core.ID][]float32, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			record, err := readEmbedding(tx, makeEmbeddingKey(model, id))
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}
			vectors[id] = record.Vector
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("cache lookup", "model", model, "requested", len(ids), "found", len(vectors))
	return vectors, nil
}

// PutEmbeddings stores vectors under model, replacing any existing entries.
func (r *EmbeddingRepository) PutEmbeddings(ctx context.Context, model string, vectors map[core.ID][]float32) error {
	if model == "" {
		return fmt.Errorf("%w: model is required", storage.ErrInvalidQuery)
	}

	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	// A single transaction has a size limit; WriteBatch splits commits as needed
	wb := r.backend.db.NewWriteBatch()
	defer wb.Cancel()
	for id, vec := range vectors {
		if err := ctx.Err(); err != nil {
			return err
		}
		value := storage.MarshalEmbeddingRecord(&storage.EmbeddingRecord{ID: id, Model: model, Vector: vec})
		if err := wb.Set(makeEmbeddingKey(model, id), value); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}

	r.logger.Debug("cached embeddings", "model", model, "count", len(vectors))
	return nil
}

// CountEmbeddings returns the number of vectors cached under model.
func (r *EmbeddingRepository) CountEmbeddings(ctx context.Context, model string) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makeEmbeddingModelPrefix(model)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if _, ok := idFromEmbeddingKey(model, iter.Item().Key()); ok {
				count++
			}
		}
		return nil
	}, false)
	return count, err
}

// PruneEmbeddings deletes every vector under model whose id is not in keep.
func (r *EmbeddingRepository) PruneEmbeddings(ctx context.Context, model string, keep []core.ID) (int, error) {
	if model == "" {
		return 0, fmt.Errorf("%w: model is required", storage.ErrInvalidQuery)
	}

	retain := make(map[core.ID]struct{}, len(keep))
	for _, id := range keep {
		retain[id] = struct{}{}
	}

	var stale [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makeEmbeddingModelPrefix(model)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().KeyCopy(nil)
			id, ok := idFromEmbeddingKey(model, key)
			if !ok {
				continue
			}
			if _, ok := retain[id]; !ok {
				stale = append(stale, key)
			}
		}
		return nil
	}, false)
	if err != nil || len(stale) == 0 {
		return 0, err
	}

	wb := r.backend.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}

	r.logger.Debug("pruned embeddings", "model", model, "count", len(stale))
	return len(stale), nil
}

// readEmbedding reads one record. Returns nil, nil if the key doesn't exist.
func readEmbedding(tx *badger.Txn, key []byte) (*storage.EmbeddingRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *storage.EmbeddingRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalEmbeddingRecord(val)
		return unmarshalErr
	})
	return record, err
}
