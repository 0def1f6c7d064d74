package catalog

import (
	"github.com/poiesic/assessrec/core"
)

// Catalog is the immutable, ordered set of assessments.
// It is safe for concurrent use because nothing mutates it after Load returns.
type Catalog struct {
	assessments []core.Assessment
	texts       []string
}

// New builds a catalog from already-parsed assessments.
// Indices are reassigned to match slice order.
func New(assessments []core.Assessment) (*Catalog, error) {
	items := make([]core.Assessment, len(assessments))
	texts := make([]string, len(assessments))
	for i := range assessments {
		items[i] = assessments[i]
		items[i].Index = i
		if err := core.ValidateAssessment(&items[i]); err != nil {
			return nil, newLoadError(i+1, err)
		}
		texts[i] = items[i].CleanText()
	}
	return &Catalog{assessments: items, texts: texts}, nil
}

// Len returns the number of assessments.
func (c *Catalog) Len() int {
	return len(c.assessments)
}

// Assessment returns the assessment at position i.
// The returned pointer must be treated as read-only.
func (c *Catalog) Assessment(i int) *core.Assessment {
	return &c.assessments[i]
}

// Texts returns the clean text of every assessment, index-aligned with the catalog.
func (c *Catalog) Texts() []string {
	out := make([]string, len(c.texts))
	copy(out, c.texts)
	return out
}
