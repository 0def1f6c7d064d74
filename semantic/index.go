package semantic

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/assessrec/ai"
	"github.com/poiesic/assessrec/core"
	"github.com/poiesic/assessrec/storage"
)

// Index holds one embedding per catalog text and scores queries against them.
// It is immutable after construction and safe for concurrent use.
type Index struct {
	embedder ai.Embedder
	vectors  [][]float64
	dims     int
	logger   *slog.Logger
}

// indexBuilder carries construction-time settings.
type indexBuilder struct {
	logger     *slog.Logger
	batchSize  int
	poolSize   int
	maxRetries int
	retryDelay time.Duration
	cache      storage.EmbeddingRepository
	modelID    string
	progress   io.Writer
}

// Option configures index construction.
type Option func(*indexBuilder) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *indexBuilder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// WithBatchSize sets how many texts are sent to the embedder per call.
func WithBatchSize(size int) Option {
	return func(b *indexBuilder) error {
		if size < 1 {
			return fmt.Errorf("batch size must be positive, got %d", size)
		}
		b.batchSize = size
		return nil
	}
}

// WithPoolSize sets how many batches are encoded concurrently.
func WithPoolSize(size int) Option {
	return func(b *indexBuilder) error {
		if size < 1 {
			size = 1
		}
		b.poolSize = size
		return nil
	}
}

// WithMaxRetries sets the number of attempts per batch.
func WithMaxRetries(attempts int) Option {
	return func(b *indexBuilder) error {
		if attempts < 1 {
			return ErrInvalidMaxAttempts
		}
		b.maxRetries = attempts
		return nil
	}
}

// WithRetryDelay sets the base backoff delay between attempts.
func WithRetryDelay(delay time.Duration) Option {
	return func(b *indexBuilder) error {
		b.retryDelay = delay
		return nil
	}
}

// WithCache reuses vectors stored under modelID and stores newly computed ones.
// A nil repository disables caching.
func WithCache(repo storage.EmbeddingRepository, modelID string) Option {
	return func(b *indexBuilder) error {
		if repo != nil && modelID == "" {
			return fmt.Errorf("%w: cache requires a model id", storage.ErrInvalidQuery)
		}
		b.cache = repo
		b.modelID = modelID
		return nil
	}
}

// WithProgress writes encoding progress to w.
func WithProgress(w io.Writer) Option {
	return func(b *indexBuilder) error {
		b.progress = w
		return nil
	}
}

// NewIndex encodes every text once and keeps the vectors for the life of the Index.
// Any failure wraps core.ErrModelUnavailable.
func NewIndex(ctx context.Context, texts []string, embedder ai.Embedder, opts ...Option) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: %w", core.ErrModelUnavailable, ErrEmbedderRequired)
	}

	b := &indexBuilder{
		logger:     slog.Default(),
		batchSize:  32,
		poolSize:   max(1, runtime.NumCPU()/2),
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.logger = b.logger.With("component", "semantic-index")

	vectors, err := b.build(ctx, texts, embedder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrModelUnavailable, err)
	}

	idx := &Index{
		embedder: embedder,
		vectors:  make([][]float64, len(vectors)),
		logger:   b.logger,
	}
	for i, v := range vectors {
		if i == 0 {
			idx.dims = len(v)
		}
		if len(v) == 0 || len(v) != idx.dims {
			return nil, fmt.Errorf("%w: %w: text %d has %d dimensions, expected %d",
				core.ErrModelUnavailable, ErrDimensionMismatch, i, len(v), idx.dims)
		}
		idx.vectors[i] = toFloat64(v)
	}

	b.logger.Info("semantic index ready", "texts", len(texts), "dimensions", idx.dims)
	return idx, nil
}

// Len returns the number of indexed texts.
func (idx *Index) Len() int {
	return len(idx.vectors)
}

// Dimensions returns the embedding width, or 0 for an empty index.
func (idx *Index) Dimensions() int {
	return idx.dims
}

// Score embeds query and returns its cosine similarity to every indexed text, index-aligned.
// An empty index returns an empty slice without calling the embedder.
func (idx *Index) Score(ctx context.Context, query string) ([]float64, error) {
	scores := make([]float64, len(idx.vectors))
	if len(idx.vectors) == 0 {
		return scores, nil
	}

	qv, err := idx.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qv) != idx.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, catalog has %d", ErrDimensionMismatch, len(qv), idx.dims)
	}

	q := toFloat64(qv)
	for i, v := range idx.vectors {
		scores[i] = Cosine(q, v)
	}
	return scores, nil
}

// build returns one vector per text, reusing cached vectors where possible.
func (b *indexBuilder) build(ctx context.Context, texts []string, embedder ai.Embedder) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	if len(texts) == 0 {
		return vectors, nil
	}

	ids := make([]core.ID, len(texts))
	for i, text := range texts {
		ids[i] = core.IDFromContent(text)
	}

	pending := b.loadCached(ctx, ids, vectors)
	if err := b.encode(ctx, texts, pending, embedder, vectors); err != nil {
		return nil, err
	}
	b.storeCached(ctx, ids, pending, vectors)
	return vectors, nil
}

// loadCached fills vectors from the cache and returns the indices still to encode.
func (b *indexBuilder) loadCached(ctx context.Context, ids []core.ID, vectors [][]float32) []int {
	all := make([]int, 0, len(ids))
	if b.cache == nil {
		for i := range ids {
			all = append(all, i)
		}
		return all
	}

	cached, err := b.cache.GetEmbeddings(ctx, b.modelID, ids...)
	if err != nil {
		b.logger.Warn("embedding cache unavailable, encoding full catalog", "err", err)
		cached = nil
	}
	for i, id := range ids {
		if vec, ok := cached[id]; ok {
			vectors[i] = vec
			continue
		}
		all = append(all, i)
	}
	b.logger.Info("embedding cache", "hits", len(ids)-len(all), "misses", len(all))
	return all
}

// storeCached writes newly encoded vectors and drops entries for texts no longer in the catalog.
// Cache failures are logged, never fatal.
func (b *indexBuilder) storeCached(ctx context.Context, ids []core.ID, encoded []int, vectors [][]float32) {
	if b.cache == nil {
		return
	}

	if len(encoded) > 0 {
		fresh := make(map[core.ID][]float32, len(encoded))
		for _, i := range encoded {
			fresh[ids[i]] = vectors[i]
		}
		if err := b.cache.PutEmbeddings(ctx, b.modelID, fresh); err != nil {
			b.logger.Warn("failed to cache embeddings", "err", err)
			return
		}
	}

	pruned, err := b.cache.PruneEmbeddings(ctx, b.modelID, ids)
	if err != nil {
		b.logger.Warn("failed to prune embedding cache", "err", err)
		return
	}
	if pruned > 0 {
		b.logger.Debug("pruned stale embeddings", "count", pruned)
	}
}

// encode embeds texts[pending] in batches on a worker pool, writing into vectors.
// The first failing batch cancels the rest.
func (b *indexBuilder) encode(ctx context.Context, texts []string, pending []int, embedder ai.Embedder, vectors [][]float32) error {
	if len(pending) == 0 {
		return nil
	}

	pool, err := ants.NewPool(b.poolSize)
	if err != nil {
		return err
	}
	defer pool.Release()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var tracker *ProgressTracker
	if b.progress != nil {
		tracker = NewProgressTracker(b.progress, len(pending), b.batchSize)
		tracker.Start()
	}

	b.logger.Debug("encoding texts", "count", len(pending), "batch_size", b.batchSize, "workers", b.poolSize)

	var wg sync.WaitGroup
	for start := 0; start < len(pending); start += b.batchSize {
		batch := pending[start:min(start+b.batchSize, len(pending))]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := b.encodeBatch(ctx, texts, batch, embedder, vectors); err != nil {
				cancel(err)
				return
			}
			if tracker != nil {
				tracker.Increment(len(batch))
			}
		})
		if submitErr != nil {
			wg.Done()
			cancel(submitErr)
			break
		}
	}
	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		return err
	}
	if tracker != nil {
		tracker.Finish()
	}
	return nil
}

func (b *indexBuilder) encodeBatch(ctx context.Context, texts []string, batch []int, embedder ai.Embedder, vectors [][]float32) error {
	batchTexts := make([]string, len(batch))
	for j, i := range batch {
		batchTexts[j] = texts[i]
	}

	return RetryWithBackoff(ctx, func(ctx context.Context) error {
		vecs, err := embedder.EmbedTexts(ctx, batchTexts)
		if err != nil {
			return err
		}
		if len(vecs) != len(batch) {
			return fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingCountMismatch, len(batch), len(vecs))
		}
		for j, i := range batch {
			vectors[i] = vecs[j]
		}
		return nil
	}, b.maxRetries, b.retryDelay)
}
