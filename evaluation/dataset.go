package evaluation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyDataset is returned when a dataset holds no usable queries.
	ErrEmptyDataset = errors.New("dataset has no queries")

	// ErrInvalidK is returned for a cutoff below 1.
	ErrInvalidK = errors.New("k must be positive")
)

// Case is one labelled query.
type Case struct {
	Query    string   `yaml:"query"`
	Relevant []string `yaml:"relevant"` // assessment URLs judged relevant
}

// Dataset is a set of labelled queries.
type Dataset struct {
	K     int    `yaml:"k,omitempty"` // cutoff, 0 means use the caller's default
	Cases []Case `yaml:"queries"`
}

// LoadDataset reads a YAML dataset from path.
func LoadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read dataset %s: %w", path, err)
	}
	defer f.Close()

	ds, err := ParseDataset(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return ds, nil
}

// ParseDataset decodes a YAML dataset and validates it.
// Cases with a blank query are rejected.
func ParseDataset(r io.Reader) (*Dataset, error) {
	var ds Dataset
	if err := yaml.NewDecoder(r).Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDataset
		}
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	if len(ds.Cases) == 0 {
		return nil, ErrEmptyDataset
	}
	if ds.K < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, ds.K)
	}
	for i, c := range ds.Cases {
		if strings.TrimSpace(c.Query) == "" {
			return nil, fmt.Errorf("case %d: query is blank", i+1)
		}
	}
	return &ds, nil
}
