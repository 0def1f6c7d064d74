package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/poiesic/assessrec/core"
	"github.com/poiesic/assessrec/ranking"
	"github.com/urfave/cli/v2"
)

func recommendCommand() *cli.Command {
	flags := withFlags(
		&cli.BoolFlag{
			Name:  "explain",
			Usage: "Show the lexical, semantic and final score of each result",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print results as JSON",
		},
	)
	return &cli.Command{
		Name:      "recommend",
		Usage:     "Rank assessments for a single query",
		ArgsUsage: "<query...>",
		Flags:     flags,
		Before:    loadConfigFile(flags),
		Action:    recommendAction,
	}
}

func recommendAction(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a query is required")
	}

	rec, err := buildRecommender(c.Context, c)
	if err != nil {
		return err
	}
	defer rec.Close()

	var trace ranking.Trace
	results, err := rec.Explain(c.Context, query, &trace)
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	out := c.App.Writer
	switch {
	case c.Bool("json"):
		return writeResultsJSON(out, results)
	case c.Bool("explain"):
		return writeExplanation(out, &trace)
	default:
		return writeResults(out, results)
	}
}

func writeResults(w io.Writer, results []core.ScoredCandidate) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No recommendations found.")
		return err
	}
	for i, r := range results {
		a := r.Assessment
		if _, err := fmt.Fprintf(w, "%d. %s\n   Duration: %d mins | Type: %s | Remote: %s\n   %s\n",
			i+1, a.Name, a.Duration, a.TestType, a.RemoteTestingSupport, a.URL); err != nil {
			return err
		}
	}
	return nil
}

func writeResultsJSON(w io.Writer, results []core.ScoredCandidate) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string][]core.Recommendation{
		"recommendations": core.Recommendations(results),
	})
}

func writeExplanation(w io.Writer, trace *ranking.Trace) error {
	if trace.Bounded {
		fmt.Fprintf(w, "Duration bound: %d minutes\n", trace.MaxMinutes)
	} else {
		fmt.Fprintln(w, "Duration bound: none")
	}
	fmt.Fprintf(w, "Candidates: %d, returned: %d\n\n", len(trace.Fused), len(trace.Results))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tMIN\tBM25\tCOSINE\tLEX\tSEM\tFINAL")
	for i, r := range trace.Results {
		idx := r.Assessment.Index
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.4f\t%.4f\t%.3f\t%.3f\t%.3f\n",
			i+1, r.Assessment.Name, r.Assessment.Duration,
			trace.Lexical[idx], trace.Semantic[idx],
			r.LexicalScore, r.SemanticScore, r.FinalScore)
	}
	return tw.Flush()
}
