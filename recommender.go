// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package assessrec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/assessrec/ai"
	"github.com/poiesic/assessrec/ai/onnx"
	"github.com/poiesic/assessrec/ai/openai"
	"github.com/poiesic/assessrec/catalog"
	"github.com/poiesic/assessrec/core"
	"github.com/poiesic/assessrec/lexical"
	"github.com/poiesic/assessrec/ranking"
	"github.com/poiesic/assessrec/semantic"
	"github.com/poiesic/assessrec/storage/badger"
)

// Recommender is the assembled, read-only service context.
// Everything it holds is built once by New and shared by all requests.
type Recommender struct {
	catalog  *catalog.Catalog
	lexical  *lexical.BM25
	semantic *semantic.Index
	fuser    *ranking.Fuser
	provider ai.AIProvider // nil when the embedder was supplied by the caller
	cache    *badger.EmbeddingRepository
	logger   *slog.Logger
}

// Option configures a Recommender.
type Option func(*options)

type options struct {
	aiConfig       *ai.Config
	embedder       ai.Embedder
	modelID        string
	cacheDir       string
	lexicalWeight  float64
	semanticWeight float64
	topN           int
	poolSize       int
	batchSize      int
	progress       io.Writer
	logger         *slog.Logger
}

// WithAIConfig selects and configures the embedding provider.
func WithAIConfig(config *ai.Config) Option {
	return func(o *options) {
		o.aiConfig = config
	}
}

// WithEmbedder uses embedder instead of building a provider from the AI config.
// modelID namespaces cached vectors. The caller keeps ownership of embedder.
func WithEmbedder(embedder ai.Embedder, modelID string) Option {
	return func(o *options) {
		o.embedder = embedder
		o.modelID = modelID
	}
}

// WithCacheDir persists catalog embeddings in a badger database under dir.
// An empty dir disables the cache.
func WithCacheDir(dir string) Option {
	return func(o *options) {
		o.cacheDir = dir
	}
}

// WithWeights sets the lexical and semantic fusion weights.
func WithWeights(lexical, semantic float64) Option {
	return func(o *options) {
		o.lexicalWeight = lexical
		o.semanticWeight = semantic
	}
}

// WithTopN sets the maximum number of recommendations per query.
func WithTopN(n int) Option {
	return func(o *options) {
		o.topN = n
	}
}

// WithPoolSize sets how many embedding batches run concurrently at startup.
func WithPoolSize(n int) Option {
	return func(o *options) {
		o.poolSize = n
	}
}

// WithBatchSize sets how many catalog texts are embedded per call at startup.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithProgress reports catalog encoding progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *options) {
		o.progress = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New loads the catalog at catalogPath and builds a Recommender over it.
// Errors wrap core.ErrCatalogLoad or core.ErrModelUnavailable.
func New(ctx context.Context, catalogPath string, opts ...Option) (*Recommender, error) {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, err
	}
	r, err := FromCatalog(ctx, cat, opts...)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("catalog source", "path", catalogPath)
	return r, nil
}

// FromCatalog builds a Recommender over an already loaded catalog.
//
// Initialization order is lexical index, embedding provider, embedding cache, then
// catalog embeddings. A failure at any step releases everything opened before it.
func FromCatalog(ctx context.Context, cat *catalog.Catalog, opts ...Option) (*Recommender, error) {
	if cat == nil {
		return nil, ranking.ErrCatalogRequired
	}

	o := &options{
		aiConfig:       ai.DefaultConfig(),
		lexicalWeight:  ranking.DefaultLexicalWeight,
		semanticWeight: ranking.DefaultSemanticWeight,
		topN:           ranking.DefaultTopN,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	r := &Recommender{
		catalog: cat,
		logger:  o.logger.With("component", "recommender"),
	}

	texts := cat.Texts()
	r.lexical = lexical.NewBM25(texts)
	r.logger.Debug("lexical index ready", "documents", r.lexical.Len())

	embedder, modelID := o.embedder, o.modelID
	if embedder == nil {
		provider, err := newProvider(o.aiConfig)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrModelUnavailable, err)
		}
		r.provider = provider
		embedder, modelID = provider.Embedder(), provider.ModelID()
	}

	if o.cacheDir != "" {
		cache, err := badger.NewRepository(o.cacheDir)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("open embedding cache: %w", err)
		}
		r.cache = cache
	}

	indexOpts := []semantic.Option{semantic.WithLogger(o.logger)}
	if o.batchSize > 0 {
		indexOpts = append(indexOpts, semantic.WithBatchSize(o.batchSize))
	}
	if o.poolSize > 0 {
		indexOpts = append(indexOpts, semantic.WithPoolSize(o.poolSize))
	}
	if r.cache != nil {
		if modelID == "" {
			modelID = "default"
		}
		indexOpts = append(indexOpts, semantic.WithCache(r.cache, modelID))
	}
	if o.progress != nil {
		indexOpts = append(indexOpts, semantic.WithProgress(o.progress))
	}

	index, err := semantic.NewIndex(ctx, texts, embedder, indexOpts...)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.semantic = index

	fuser, err := ranking.NewFuser(r.lexical, r.semantic, cat,
		ranking.WithWeights(o.lexicalWeight, o.semanticWeight),
		ranking.WithTopN(o.topN),
		ranking.WithLogger(o.logger),
	)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.fuser = fuser

	r.logger.Info("recommender ready", "assessments", cat.Len(), "model", modelID, "dimensions", index.Dimensions())
	return r, nil
}

// newProvider builds the embedding provider named by config.
func newProvider(config *ai.Config) (ai.AIProvider, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Provider {
	case ai.ProviderONNX:
		return onnx.NewProvider(config)
	default:
		return openai.NewProvider(config)
	}
}

// Recommend returns up to TopN assessments for query, best first.
// The slice is empty, never nil, when nothing qualifies.
func (r *Recommender) Recommend(ctx context.Context, query string) ([]core.Recommendation, error) {
	results, err := r.fuser.Rank(ctx, query)
	if err != nil {
		r.logger.Error("ranking failed", "err", err)
		return nil, err
	}
	return core.Recommendations(results), nil
}

// Explain ranks like Recommend but returns the scored candidates and reports each stage to monitor.
func (r *Recommender) Explain(ctx context.Context, query string, monitor ranking.RankingMonitor) ([]core.ScoredCandidate, error) {
	return r.fuser.RankWithMonitor(ctx, query, monitor)
}

// Catalog returns the catalog being served.
func (r *Recommender) Catalog() *catalog.Catalog {
	return r.catalog
}

// Len returns the number of assessments served.
func (r *Recommender) Len() int {
	return r.catalog.Len()
}

// TopN returns the maximum number of recommendations per query.
func (r *Recommender) TopN() int {
	return r.fuser.TopN()
}

// Close releases the embedding cache and any provider New created.
func (r *Recommender) Close() error {
	var errs []error

	// Close AI provider first
	if r.provider != nil {
		if err := r.provider.Close(); err != nil {
			r.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
		r.provider = nil
	}

	if r.cache != nil {
		if err := r.cache.Close(); err != nil {
			r.logger.Error("error closing embedding cache", "err", err)
			errs = append(errs, err)
		}
		r.cache = nil
	}
	return errors.Join(errs...)
}
