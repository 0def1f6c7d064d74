package lexical

import (
	"math"
	"strings"
)

// Default Okapi BM25 parameters.
const (
	DefaultK1      = 1.5
	DefaultB       = 0.75
	DefaultEpsilon = 0.25
)

// BM25 is an Okapi BM25 index over a fixed corpus.
// It is immutable after construction and safe for concurrent Score calls.
type BM25 struct {
	k1      float64
	b       float64
	epsilon float64

	docFreqs []map[string]int // term frequencies per document
	docLens  []int
	avgDL    float64
	idf      map[string]float64
}

// Option configures a BM25 index.
type Option func(*BM25)

// WithK1 sets the term frequency saturation parameter.
func WithK1(k1 float64) Option {
	return func(m *BM25) {
		m.k1 = k1
	}
}

// WithB sets the document length normalization parameter.
func WithB(b float64) Option {
	return func(m *BM25) {
		m.b = b
	}
}

// WithEpsilon sets the floor applied to negative IDF values, as a fraction of the mean IDF.
func WithEpsilon(epsilon float64) Option {
	return func(m *BM25) {
		m.epsilon = epsilon
	}
}

// Tokenize lower-cases text and splits it on whitespace.
// No stemming or stop-word removal is applied.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// NewBM25 tokenizes and indexes docs.
// An empty corpus yields an index whose Score always returns an empty slice.
func NewBM25(docs []string, opts ...Option) *BM25 {
	m := &BM25{
		k1:       DefaultK1,
		b:        DefaultB,
		epsilon:  DefaultEpsilon,
		docFreqs: make([]map[string]int, len(docs)),
		docLens:  make([]int, len(docs)),
		idf:      make(map[string]float64),
	}
	for _, opt := range opts {
		opt(m)
	}

	// Number of documents containing each term
	nd := make(map[string]int)
	totalLen := 0
	for i, doc := range docs {
		tokens := Tokenize(doc)
		freqs := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freqs[tok]++
		}
		for tok := range freqs {
			nd[tok]++
		}
		m.docFreqs[i] = freqs
		m.docLens[i] = len(tokens)
		totalLen += len(tokens)
	}
	if len(docs) > 0 {
		m.avgDL = float64(totalLen) / float64(len(docs))
	}

	m.computeIDF(nd, len(docs))
	return m
}

// computeIDF fills the idf table. Terms present in more than half the corpus get a
// negative raw IDF; those are replaced by epsilon times the mean IDF.
func (m *BM25) computeIDF(nd map[string]int, corpusSize int) {
	if len(nd) == 0 {
		return
	}

	n := float64(corpusSize)
	var idfSum float64
	var negative []string
	for term, freq := range nd {
		f := float64(freq)
		idf := math.Log(n-f+0.5) - math.Log(f+0.5)
		m.idf[term] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, term)
		}
	}

	floor := m.epsilon * (idfSum / float64(len(m.idf)))
	for _, term := range negative {
		m.idf[term] = floor
	}
}

// Len returns the number of indexed documents.
func (m *BM25) Len() int {
	return len(m.docLens)
}

// Score returns the BM25 score of every document for query, index-aligned with the corpus.
// Tokens absent from the corpus contribute nothing, so a query with no known tokens scores zero everywhere.
func (m *BM25) Score(query string) []float64 {
	scores := make([]float64, len(m.docLens))
	for _, term := range Tokenize(query) {
		idf, ok := m.idf[term]
		if !ok {
			continue
		}
		for i, freqs := range m.docFreqs {
			tf := float64(freqs[term])
			if tf == 0 {
				continue
			}
			scores[i] += idf * (tf * (m.k1 + 1)) / (tf + m.k1*m.lengthNorm(i))
		}
	}
	return scores
}

// lengthNorm is the (1 - b + b*|d|/avgdl) factor. An all-empty corpus normalizes to 1.
func (m *BM25) lengthNorm(doc int) float64 {
	if m.avgDL == 0 {
		return 1
	}
	return 1 - m.b + m.b*float64(m.docLens[doc])/m.avgDL
}
