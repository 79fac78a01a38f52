package main

import (
	"fmt"
	"log/slog"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/L-Martinell/AdvancedStatistics-Project/bayes"
	"github.com/L-Martinell/AdvancedStatistics-Project/internal/dataset"
)

func newEvaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <corpus.tsv>",
		Short: "Fit on a seeded train split and report held-out accuracy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, labels, err := loadCorpus(activeCfg, args[0])
			if err != nil {
				return err
			}

			split, err := dataset.Partition(docs, labels, activeCfg.Data.TestFraction, activeCfg.Data.SplitSeed)
			if err != nil {
				return err
			}
			slog.Info("corpus partitioned",
				"train", len(split.TrainDocs),
				"test", len(split.TestDocs),
				"seed", activeCfg.Data.SplitSeed,
			)

			pipelineCfg, err := pipelineConfig(activeCfg)
			if err != nil {
				return err
			}
			classifier, err := bayes.NewClassifier(pipelineCfg)
			if err != nil {
				return err
			}
			if err := classifier.Fit(cmd.Context(), split.TrainDocs, split.TrainLabels); err != nil {
				return err
			}

			preds, err := classifier.PredictBatch(cmd.Context(), split.TestDocs)
			if err != nil {
				return err
			}

			correct := 0
			confusion := make(map[string]map[string]int)
			for i, pred := range preds {
				actual := split.TestLabels[i]
				if confusion[actual] == nil {
					confusion[actual] = make(map[string]int)
				}
				confusion[actual][pred.Label]++
				if pred.Label == actual {
					correct++
				}
			}

			accuracy := float64(correct) / float64(len(preds))
			fmt.Fprintf(cmd.OutOrStdout(), "accuracy: %.4f (%d/%d)\n\n", accuracy, correct, len(preds))

			classes := classifier.Model().Classes()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprint(w, "actual\\predicted")
			for _, c := range classes {
				fmt.Fprintf(w, "\t%s", c)
			}
			fmt.Fprintln(w)

			actuals := make([]string, 0, len(confusion))
			for actual := range confusion {
				actuals = append(actuals, actual)
			}
			sort.Strings(actuals)
			for _, actual := range actuals {
				fmt.Fprint(w, actual)
				for _, c := range classes {
					fmt.Fprintf(w, "\t%d", confusion[actual][c])
				}
				fmt.Fprintln(w)
			}
			return w.Flush()
		},
	}
}
