package ranking

import "github.com/poiesic/assessrec/core"

// RankingMonitor provides hooks to observe the ranking process.
// Implement this interface to inspect intermediate scores for a single query.
// Hooks are called sequentially from the ranking goroutine.
type RankingMonitor interface {
	Start(query string)
	AfterLexicalScoring(scores []float64)
	AfterSemanticScoring(scores []float64)
	AfterDurationExtraction(maxMinutes int, bounded bool)
	AfterFusion(candidates []core.ScoredCandidate)
	Finish(results []core.ScoredCandidate)
}

// noopMonitor is a no-op implementation of RankingMonitor
type noopMonitor struct{}

var _ RankingMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                        {}
func (n *noopMonitor) AfterLexicalScoring(_ []float64)       {}
func (n *noopMonitor) AfterSemanticScoring(_ []float64)      {}
func (n *noopMonitor) AfterDurationExtraction(_ int, _ bool) {}
func (n *noopMonitor) AfterFusion(_ []core.ScoredCandidate)  {}
func (n *noopMonitor) Finish(_ []core.ScoredCandidate)       {}

// Trace is a RankingMonitor that records every stage of one ranking call.
type Trace struct {
	Query      string
	Lexical    []float64 // raw BM25 scores
	Semantic   []float64 // raw cosine scores
	MaxMinutes int
	Bounded    bool
	Fused      []core.ScoredCandidate // every candidate, before filtering
	Results    []core.ScoredCandidate
}

var _ RankingMonitor = (*Trace)(nil)

func (t *Trace) Start(query string)                    { t.Query = query }
func (t *Trace) AfterLexicalScoring(scores []float64)  { t.Lexical = scores }
func (t *Trace) AfterSemanticScoring(scores []float64) { t.Semantic = scores }
func (t *Trace) AfterDurationExtraction(maxMinutes int, bounded bool) {
	t.MaxMinutes, t.Bounded = maxMinutes, bounded
}
func (t *Trace) AfterFusion(candidates []core.ScoredCandidate) { t.Fused = candidates }
func (t *Trace) Finish(results []core.ScoredCandidate)         { t.Results = results }
