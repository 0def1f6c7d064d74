package ranking

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/poiesic/assessrec/core"
	"github.com/poiesic/assessrec/duration"
	"golang.org/x/sync/errgroup"
)

// Default fusion settings.
const (
	DefaultLexicalWeight  = 0.5
	DefaultSemanticWeight = 0.5
	DefaultTopN           = 10
)

// LexicalScorer scores every catalog entry against a query by term overlap.
type LexicalScorer interface {
	Score(query string) []float64
}

// SemanticScorer scores every catalog entry against a query by meaning.
type SemanticScorer interface {
	Score(ctx context.Context, query string) ([]float64, error)
}

// Catalog is the ordered set of assessments being ranked.
// Scores from both scorers must be index-aligned with it.
type Catalog interface {
	Len() int
	Assessment(i int) *core.Assessment
}

// Fuser merges lexical and semantic scores into one ranking.
// It holds no per-request state and is safe for concurrent use.
type Fuser struct {
	lexical        LexicalScorer
	semantic       SemanticScorer
	catalog        Catalog
	lexicalWeight  float64
	semanticWeight float64
	topN           int
	epsilon        float64
	logger         *slog.Logger
}

// Option configures a Fuser.
type Option func(*Fuser) error

// WithWeights sets the contribution of each normalized signal to the final score.
func WithWeights(lexical, semantic float64) Option {
	return func(f *Fuser) error {
		if !validWeight(lexical) || !validWeight(semantic) || lexical+semantic == 0 {
			return fmt.Errorf("%w: lexical=%v semantic=%v", ErrInvalidWeights, lexical, semantic)
		}
		f.lexicalWeight = lexical
		f.semanticWeight = semantic
		return nil
	}
}

// WithTopN sets the maximum number of results.
func WithTopN(n int) Option {
	return func(f *Fuser) error {
		if n < 1 {
			return fmt.Errorf("%w: got %d", ErrInvalidTopN, n)
		}
		f.topN = n
		return nil
	}
}

// WithEpsilon sets the denominator guard used by min-max normalization.
func WithEpsilon(epsilon float64) Option {
	return func(f *Fuser) error {
		if !(epsilon > 0) || math.IsInf(epsilon, 0) {
			return fmt.Errorf("epsilon must be positive and finite, got %v", epsilon)
		}
		f.epsilon = epsilon
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fuser) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

func validWeight(w float64) bool {
	return w >= 0 && !math.IsInf(w, 0)
}

// NewFuser creates a Fuser over cat. Both scorers must produce vectors aligned with cat.
func NewFuser(lex LexicalScorer, sem SemanticScorer, cat Catalog, opts ...Option) (*Fuser, error) {
	if lex == nil {
		return nil, ErrLexicalScorerRequired
	}
	if sem == nil {
		return nil, ErrSemanticScorerRequired
	}
	if cat == nil {
		return nil, ErrCatalogRequired
	}

	f := &Fuser{
		lexical:        lex,
		semantic:       sem,
		catalog:        cat,
		lexicalWeight:  DefaultLexicalWeight,
		semanticWeight: DefaultSemanticWeight,
		topN:           DefaultTopN,
		epsilon:        DefaultEpsilon,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	f.logger = f.logger.With("component", "fuser")
	return f, nil
}

// TopN returns the maximum number of results per query.
func (f *Fuser) TopN() int {
	return f.topN
}

// Weights returns the lexical and semantic weights.
func (f *Fuser) Weights() (lexical, semantic float64) {
	return f.lexicalWeight, f.semanticWeight
}

// Rank returns at most TopN candidates ordered by final score, highest first.
func (f *Fuser) Rank(ctx context.Context, query string) ([]core.ScoredCandidate, error) {
	return f.RankWithMonitor(ctx, query, nil)
}

// RankWithMonitor ranks like Rank and reports each stage to monitor.
// If monitor is nil, a no-op monitor is used.
//
// Candidates whose duration exceeds an upper bound stated in the query are removed.
// Equal final scores keep catalog order. Errors wrap core.ErrInternalScoring.
func (f *Fuser) RankWithMonitor(ctx context.Context, query string, monitor RankingMonitor) ([]core.ScoredCandidate, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	n := f.catalog.Len()
	if n == 0 {
		results := []core.ScoredCandidate{}
		monitor.Finish(results)
		return results, nil
	}

	lexScores, semScores, err := f.score(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInternalScoring, err)
	}
	monitor.AfterLexicalScoring(lexScores)
	monitor.AfterSemanticScoring(semScores)

	maxMinutes, bounded := duration.ExtractMax(query)
	monitor.AfterDurationExtraction(maxMinutes, bounded)

	lexNorm := minMaxNormalize(lexScores, f.epsilon)
	semNorm := minMaxNormalize(semScores, f.epsilon)

	fused := make([]core.ScoredCandidate, n)
	for i := range fused {
		fused[i] = core.ScoredCandidate{
			Assessment:    f.catalog.Assessment(i),
			LexicalScore:  lexNorm[i],
			SemanticScore: semNorm[i],
			FinalScore:    f.lexicalWeight*lexNorm[i] + f.semanticWeight*semNorm[i],
		}
	}
	monitor.AfterFusion(fused)

	results := make([]core.ScoredCandidate, 0, n)
	for _, c := range fused {
		if bounded && c.Assessment.Duration > maxMinutes {
			continue
		}
		results = append(results, c)
	}

	slices.SortStableFunc(results, func(a, b core.ScoredCandidate) int {
		return cmp.Compare(b.FinalScore, a.FinalScore)
	})
	if len(results) > f.topN {
		results = results[:f.topN]
	}

	f.logger.Debug("ranked", "candidates", n, "bounded", bounded, "max_minutes", maxMinutes, "results", len(results))
	monitor.Finish(results)
	return results, nil
}

// score runs both scorers concurrently and checks their vectors against the catalog size.
// A query without any non-space character carries no semantic signal and is not encoded.
func (f *Fuser) score(ctx context.Context, query string, n int) (lex, sem []float64, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		defer recoverScorer("lexical", &err)
		lex = f.lexical.Score(query)
		return nil
	})
	g.Go(func() (err error) {
		defer recoverScorer("semantic", &err)
		if strings.TrimSpace(query) == "" {
			sem = make([]float64, n)
			return nil
		}
		sem, err = f.semantic.Score(gctx, query)
		if err != nil {
			return fmt.Errorf("semantic scoring: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if len(lex) != n {
		return nil, nil, fmt.Errorf("%w: lexical returned %d, catalog has %d", ErrScoreLengthMismatch, len(lex), n)
	}
	if len(sem) != n {
		return nil, nil, fmt.Errorf("%w: semantic returned %d, catalog has %d", ErrScoreLengthMismatch, len(sem), n)
	}
	return lex, sem, nil
}

// recoverScorer converts a scorer panic into err.
func recoverScorer(name string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s scorer panicked: %v", name, r)
	}
}
