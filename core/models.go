package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier.
// Catalog embeddings are cached under the ID of the text they were computed from.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Assessment is a single catalog entry.
// Assessments are loaded once at startup and never mutated afterwards.
type Assessment struct {
	Index                int    // Position in the catalog; ties in ranking resolve to the lower index
	Name                 string // Display and link label
	URL                  string // Product link
	Duration             int    // Minutes, never negative
	TestType             string // Category tag
	RemoteTestingSupport string // "Yes"/"No" style flag, passed through verbatim
	Description          string // Free text, used for scoring only
}

// CleanText returns the text both scorers index: name and description joined by a space.
func (a *Assessment) CleanText() string {
	return a.Name + " " + a.Description
}

// Recommendation projects the assessment onto the fields returned to callers.
func (a *Assessment) Recommendation() Recommendation {
	return Recommendation{
		Name:                 a.Name,
		URL:                  a.URL,
		Duration:             a.Duration,
		TestType:             a.TestType,
		RemoteTestingSupport: a.RemoteTestingSupport,
	}
}

// Recommendation is the caller-facing view of a ranked assessment.
type Recommendation struct {
	Name                 string `json:"name"`
	URL                  string `json:"url"`
	Duration             int    `json:"duration"`
	TestType             string `json:"test_type"`
	RemoteTestingSupport string `json:"remote_testing_support"`
}

// ScoredCandidate carries the per-request scores of one assessment.
// It lives only for the duration of a single ranking call.
type ScoredCandidate struct {
	Assessment    *Assessment
	LexicalScore  float64 // Normalized BM25 score in [0, 1]
	SemanticScore float64 // Normalized cosine score in [0, 1]
	FinalScore    float64 // Weighted sum of the two
}

// Recommendations projects candidates onto caller-facing records, preserving order.
// The result is never nil.
func Recommendations(candidates []ScoredCandidate) []Recommendation {
	out := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Assessment.Recommendation())
	}
	return out
}
