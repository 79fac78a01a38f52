package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/L-Martinell/AdvancedStatistics-Project/bayes"
	"github.com/L-Martinell/AdvancedStatistics-Project/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve a saved model over the classification HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier, err := bayes.NewClassifier(bayes.DefaultConfig())
			if err != nil {
				return err
			}
			if err := classifier.LoadFromFile(activeCfg.Model.Path); err != nil {
				return err
			}

			model := classifier.Model()
			slog.Info("model loaded",
				"path", activeCfg.Model.Path,
				"classes", len(model.Classes()),
				"vocabulary", model.Vocabulary().Len(),
			)

			api := server.New(classifier)
			return api.Run(activeCfg.Server.ListenAddr)
		},
	}
}
