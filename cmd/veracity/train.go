package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/L-Martinell/AdvancedStatistics-Project/bayes"
)

func newTrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train <corpus.tsv>",
		Short: "Fit a model on a labeled TSV corpus and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, labels, err := loadCorpus(activeCfg, args[0])
			if err != nil {
				return err
			}

			pipelineCfg, err := pipelineConfig(activeCfg)
			if err != nil {
				return err
			}
			classifier, err := bayes.NewClassifier(pipelineCfg)
			if err != nil {
				return err
			}

			if err := classifier.Fit(cmd.Context(), docs, labels); err != nil {
				return err
			}

			model := classifier.Model()
			slog.Info("model trained",
				"documents", len(docs),
				"classes", len(model.Classes()),
				"vocabulary", model.Vocabulary().Len(),
				"alpha", model.Alpha(),
			)

			if err := classifier.SaveToFile(activeCfg.Model.Path); err != nil {
				return err
			}
			slog.Info("model saved", "path", activeCfg.Model.Path)
			return nil
		},
	}
}
