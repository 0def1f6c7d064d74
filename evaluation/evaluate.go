package evaluation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/assessrec/core"
)

// DefaultK is the cutoff used when neither the caller nor the dataset sets one.
const DefaultK = 10

// Recommender produces ranked recommendations for a query.
type Recommender interface {
	Recommend(ctx context.Context, query string) ([]core.Recommendation, error)
}

// Result is the score of one labelled query.
type Result struct {
	Query            string
	Retrieved        []string
	Recall           float64
	AveragePrecision float64
}

// Report aggregates per-query results.
type Report struct {
	K          int
	Results    []Result
	MeanRecall float64
	MAP        float64
}

// Evaluate runs every case through rec and scores the retrieved URLs at cutoff k.
// A k of 0 uses the dataset's cutoff, then DefaultK.
func Evaluate(ctx context.Context, rec Recommender, ds *Dataset, k int) (*Report, error) {
	if ds == nil || len(ds.Cases) == 0 {
		return nil, ErrEmptyDataset
	}
	if k == 0 {
		k = ds.K
	}
	if k == 0 {
		k = DefaultK
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}

	logger := slog.Default().With("component", "evaluation")
	report := &Report{K: k, Results: make([]Result, 0, len(ds.Cases))}
	recalls := make([]float64, 0, len(ds.Cases))
	precisions := make([]float64, 0, len(ds.Cases))

	for _, c := range ds.Cases {
		recs, err := rec.Recommend(ctx, c.Query)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", c.Query, err)
		}

		urls := make([]string, len(recs))
		for i, r := range recs {
			urls[i] = r.URL
		}

		res := Result{
			Query:            c.Query,
			Retrieved:        urls,
			Recall:           RecallAtK(urls, c.Relevant, k),
			AveragePrecision: AveragePrecisionAtK(urls, c.Relevant, k),
		}
		logger.Debug("evaluated query", "query", c.Query, "recall", res.Recall, "ap", res.AveragePrecision)

		report.Results = append(report.Results, res)
		recalls = append(recalls, res.Recall)
		precisions = append(precisions, res.AveragePrecision)
	}

	report.MeanRecall = Mean(recalls)
	report.MAP = Mean(precisions)
	return report, nil
}
