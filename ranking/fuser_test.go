package ranking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/assessrec/catalog"
	"github.com/poiesic/assessrec/core"
	"github.com/poiesic/assessrec/lexical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lexicalFunc func(query string) []float64

func (f lexicalFunc) Score(query string) []float64 { return f(query) }

type semanticFunc func(ctx context.Context, query string) ([]float64, error)

func (f semanticFunc) Score(ctx context.Context, query string) ([]float64, error) {
	return f(ctx, query)
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func zeroSemantic(n int) semanticFunc {
	return func(context.Context, string) ([]float64, error) { return constant(n, 0), nil }
}

func newCatalog(t *testing.T, assessments ...core.Assessment) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(assessments)
	require.NoError(t, err)
	return c
}

// largeCatalog holds n assessments with durations 5, 10, 15, ...
func largeCatalog(t *testing.T, n int) *catalog.Catalog {
	t.Helper()
	items := make([]core.Assessment, n)
	for i := range items {
		items[i] = core.Assessment{
			Name:        fmt.Sprintf("Assessment %d", i),
			URL:         fmt.Sprintf("https://example.com/%d", i),
			Duration:    5 * (i + 1),
			Description: "generic skills test",
		}
	}
	return newCatalog(t, items...)
}

// indexSemantic scores entry i as i/n so later entries rank higher.
func indexSemantic(n int) semanticFunc {
	return func(context.Context, string) ([]float64, error) {
		out := make([]float64, n)
		for i := range out {
			out[i] = float64(i) / float64(n)
		}
		return out, nil
	}
}

func names(results []core.ScoredCandidate) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Assessment.Name
	}
	return out
}

func TestNewFuser(t *testing.T) {
	cat := largeCatalog(t, 3)
	lex := lexical.NewBM25(cat.Texts())
	sem := zeroSemantic(3)

	t.Run("requires dependencies", func(t *testing.T) {
		_, err := NewFuser(nil, sem, cat)
		assert.ErrorIs(t, err, ErrLexicalScorerRequired)
		_, err = NewFuser(lex, nil, cat)
		assert.ErrorIs(t, err, ErrSemanticScorerRequired)
		_, err = NewFuser(lex, sem, nil)
		assert.ErrorIs(t, err, ErrCatalogRequired)
	})

	t.Run("defaults", func(t *testing.T) {
		f, err := NewFuser(lex, sem, cat)
		require.NoError(t, err)
		assert.Equal(t, DefaultTopN, f.TopN())
		wl, ws := f.Weights()
		assert.Equal(t, 0.5, wl)
		assert.Equal(t, 0.5, ws)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := NewFuser(lex, sem, cat, WithTopN(0))
		assert.ErrorIs(t, err, ErrInvalidTopN)
		_, err = NewFuser(lex, sem, cat, WithWeights(-1, 1))
		assert.ErrorIs(t, err, ErrInvalidWeights)
		_, err = NewFuser(lex, sem, cat, WithWeights(0, 0))
		assert.ErrorIs(t, err, ErrInvalidWeights)
		_, err = NewFuser(lex, sem, cat, WithEpsilon(0))
		assert.Error(t, err)
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		_, err := NewFuser(lex, sem, cat, WithLogger(nil))
		assert.NoError(t, err)
	})
}

func TestFuser_Rank(t *testing.T) {
	ctx := context.Background()

	t.Run("duration bound keeps only short assessments", func(t *testing.T) {
		cat := newCatalog(t,
			core.Assessment{Name: "A", Duration: 20, Description: "test"},
			core.Assessment{Name: "B", Duration: 40, Description: "test"},
		)
		f, err := NewFuser(lexical.NewBM25(cat.Texts()), zeroSemantic(2), cat)
		require.NoError(t, err)

		results, err := f.Rank(ctx, "test under 30 minutes")
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, names(results))
	})

	t.Run("filter is monotone", func(t *testing.T) {
		cat := largeCatalog(t, 20)
		f, err := NewFuser(lexical.NewBM25(cat.Texts()), indexSemantic(20), cat, WithTopN(20))
		require.NoError(t, err)

		for _, bound := range []int{0, 5, 12, 50, 1000} {
			results, err := f.Rank(ctx, fmt.Sprintf("skills test under %d", bound))
			require.NoError(t, err)
			for _, r := range results {
				assert.LessOrEqual(t, r.Assessment.Duration, bound)
			}
		}

		none, err := f.Rank(ctx, "skills test under 0")
		require.NoError(t, err)
		assert.Empty(t, none)
		assert.NotNil(t, none)
	})

	t.Run("scores are non-increasing with index tie-break", func(t *testing.T) {
		cat := largeCatalog(t, 6)
		lex := lexicalFunc(func(string) []float64 { return []float64{1, 3, 3, 0, 3, 1} })
		f, err := NewFuser(lex, zeroSemantic(6), cat)
		require.NoError(t, err)

		results, err := f.Rank(ctx, "anything")
		require.NoError(t, err)
		require.Len(t, results, 6)
		for i := 1; i < len(results); i++ {
			prev, cur := results[i-1], results[i]
			assert.GreaterOrEqual(t, prev.FinalScore, cur.FinalScore)
			if prev.FinalScore == cur.FinalScore {
				assert.Less(t, prev.Assessment.Index, cur.Assessment.Index)
			}
		}
		indices := make([]int, len(results))
		for i, r := range results {
			indices[i] = r.Assessment.Index
		}
		assert.Equal(t, []int{1, 2, 4, 0, 5, 3}, indices)
	})

	t.Run("empty query keeps catalog order", func(t *testing.T) {
		cat := largeCatalog(t, 15)
		called := false
		sem := semanticFunc(func(context.Context, string) ([]float64, error) {
			called = true
			return constant(15, 0), nil
		})
		f, err := NewFuser(lexical.NewBM25(cat.Texts()), sem, cat)
		require.NoError(t, err)

		for _, q := range []string{"", "   "} {
			results, err := f.Rank(ctx, q)
			require.NoError(t, err)
			require.Len(t, results, 10)
			for i, r := range results {
				assert.Equal(t, i, r.Assessment.Index)
				assert.Equal(t, 0.0, r.FinalScore)
			}
		}
		assert.False(t, called, "whitespace query must not be encoded")
	})

	t.Run("query without matches still returns top n", func(t *testing.T) {
		cat := largeCatalog(t, 15)
		f, err := NewFuser(lexical.NewBM25(cat.Texts()), indexSemantic(15), cat)
		require.NoError(t, err)

		results, err := f.Rank(ctx, "quantum basket weaving")
		require.NoError(t, err)
		assert.Len(t, results, 10)
		assert.Equal(t, 14, results[0].Assessment.Index)
	})

	t.Run("fewer candidates than top n", func(t *testing.T) {
		cat := largeCatalog(t, 3)
		f, err := NewFuser(lexical.NewBM25(cat.Texts()), indexSemantic(3), cat)
		require.NoError(t, err)

		results, err := f.Rank(ctx, "skills")
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("idempotent", func(t *testing.T) {
		cat := largeCatalog(t, 12)
		f, err := NewFuser(lexical.NewBM25(cat.Texts()), indexSemantic(12), cat)
		require.NoError(t, err)

		first, err := f.Rank(ctx, "generic test under 40 minutes")
		require.NoError(t, err)
		second, err := f.Rank(ctx, "generic test under 40 minutes")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("weights", func(t *testing.T) {
		cat := largeCatalog(t, 2)
		lex := lexicalFunc(func(string) []float64 { return []float64{1, 0} })
		sem := semanticFunc(func(context.Context, string) ([]float64, error) { return []float64{0, 1}, nil })

		lexHeavy, err := NewFuser(lex, sem, cat, WithWeights(0.9, 0.1))
		require.NoError(t, err)
		results, err := lexHeavy.Rank(ctx, "q")
		require.NoError(t, err)
		assert.Equal(t, 0, results[0].Assessment.Index)
		assert.InDelta(t, 0.9, results[0].FinalScore, 1e-6)

		semHeavy, err := NewFuser(lex, sem, cat, WithWeights(0.1, 0.9))
		require.NoError(t, err)
		results, err = semHeavy.Rank(ctx, "q")
		require.NoError(t, err)
		assert.Equal(t, 1, results[0].Assessment.Index)
	})

	t.Run("empty catalog", func(t *testing.T) {
		cat := newCatalog(t)
		f, err := NewFuser(lexical.NewBM25(nil), zeroSemantic(0), cat)
		require.NoError(t, err)

		results, err := f.Rank(ctx, "java")
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})
}

func TestFuser_RankErrors(t *testing.T) {
	ctx := context.Background()
	cat := largeCatalog(t, 3)
	lex := lexical.NewBM25(cat.Texts())

	t.Run("semantic failure", func(t *testing.T) {
		boom := errors.New("encoder offline")
		sem := semanticFunc(func(context.Context, string) ([]float64, error) { return nil, boom })
		f, err := NewFuser(lex, sem, cat)
		require.NoError(t, err)

		_, err = f.Rank(ctx, "java")
		assert.ErrorIs(t, err, core.ErrInternalScoring)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("length mismatch", func(t *testing.T) {
		f, err := NewFuser(lex, zeroSemantic(2), cat)
		require.NoError(t, err)

		_, err = f.Rank(ctx, "java")
		assert.ErrorIs(t, err, core.ErrInternalScoring)
		assert.ErrorIs(t, err, ErrScoreLengthMismatch)
	})

	t.Run("scorer panic becomes error", func(t *testing.T) {
		bad := lexicalFunc(func(string) []float64 { panic("index out of range") })
		f, err := NewFuser(bad, zeroSemantic(3), cat)
		require.NoError(t, err)

		_, err = f.Rank(ctx, "java")
		assert.ErrorIs(t, err, core.ErrInternalScoring)
		assert.Contains(t, err.Error(), "lexical scorer panicked")
	})

	t.Run("canceled context", func(t *testing.T) {
		sem := semanticFunc(func(ctx context.Context, _ string) ([]float64, error) {
			return nil, ctx.Err()
		})
		f, err := NewFuser(lex, sem, cat)
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = f.Rank(cctx, "java")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFuser_RankWithMonitor(t *testing.T) {
	cat := newCatalog(t,
		core.Assessment{Name: "Java", Duration: 20, Description: "java developer"},
		core.Assessment{Name: "Python", Duration: 40, Description: "python developer"},
		core.Assessment{Name: "OPQ", Duration: 25, Description: "personality"},
	)
	f, err := NewFuser(lexical.NewBM25(cat.Texts()), zeroSemantic(3), cat)
	require.NoError(t, err)

	var trace Trace
	results, err := f.RankWithMonitor(context.Background(), "java under 30", &trace)
	require.NoError(t, err)

	assert.Equal(t, "java under 30", trace.Query)
	assert.Len(t, trace.Lexical, 3)
	assert.Equal(t, []float64{0, 0, 0}, trace.Semantic)
	assert.True(t, trace.Bounded)
	assert.Equal(t, 30, trace.MaxMinutes)
	assert.Len(t, trace.Fused, 3, "fused holds every candidate before filtering")
	assert.Equal(t, results, trace.Results)
	assert.Equal(t, []string{"Java", "OPQ"}, names(results))
}
