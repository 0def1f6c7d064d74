package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/poiesic/assessrec/evaluation"
	"github.com/urfave/cli/v2"
)

func evaluateCommand() *cli.Command {
	flags := withFlags(
		&cli.StringFlag{
			Name:     "dataset",
			Aliases:  []string{"d"},
			Usage:    "YAML file of labelled queries",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "k",
			Usage: "Cutoff for Recall@K and MAP@K (0 uses the dataset's, then 10)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Print per-query scores",
		},
	)
	return &cli.Command{
		Name:   "evaluate",
		Usage:  "Report Mean Recall@K and MAP@K over a labelled dataset",
		Flags:  flags,
		Before: loadConfigFile(flags),
		Action: evaluateAction,
	}
}

func evaluateAction(c *cli.Context) error {
	ds, err := evaluation.LoadDataset(c.String("dataset"))
	if err != nil {
		return err
	}

	rec, err := buildRecommender(c.Context, c)
	if err != nil {
		return err
	}
	defer rec.Close()

	report, err := evaluation.Evaluate(c.Context, rec, ds, c.Int("k"))
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	out := c.App.Writer
	if c.Bool("verbose") {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "QUERY\tRECALL@%d\tAP@%d\n", report.K, report.K)
		for _, r := range report.Results {
			fmt.Fprintf(tw, "%s\t%.4f\t%.4f\n", r.Query, r.Recall, r.AveragePrecision)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "Queries: %d\n", len(report.Results))
	fmt.Fprintf(out, "Mean Recall@%d: %.4f\n", report.K, report.MeanRecall)
	fmt.Fprintf(out, "MAP@%d: %.4f\n", report.K, report.MAP)
	return nil
}
