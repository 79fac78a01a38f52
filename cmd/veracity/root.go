package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/L-Martinell/AdvancedStatistics-Project/bayes"
	"github.com/L-Martinell/AdvancedStatistics-Project/internal/config"
	"github.com/L-Martinell/AdvancedStatistics-Project/internal/dataset"
	"github.com/L-Martinell/AdvancedStatistics-Project/tokenizer"
)

var (
	cfgFile   string
	activeCfg config.Config
)

// NewRootCmd assembles the veracity CLI.
func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "veracity",
		Short:         "Train and serve a Naive Bayes truthfulness classifier",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			setupLogger(loaded.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newTrainCmd())
	cmd.AddCommand(newClassifyCmd())
	cmd.AddCommand(newEvaluateCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	var lvl slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

// pipelineConfig translates CLI configuration into pipeline settings,
// loading the stopword file when one is configured.
func pipelineConfig(cfg config.Config) (bayes.Config, error) {
	mode, err := tokenizer.ParseMode(cfg.Pipeline.NormalizationMode)
	if err != nil {
		return bayes.Config{}, err
	}

	var stopwords []string
	if cfg.Pipeline.StopwordsFile != "" {
		stopwords, err = tokenizer.ReadStopwordsFile(cfg.Pipeline.StopwordsFile)
		if err != nil {
			return bayes.Config{}, err
		}
	}

	return bayes.Config{
		Stopwords:         stopwords,
		NormalizationMode: mode,
		MinDocFrequency:   cfg.Pipeline.MinDocFrequency,
		Alpha:             cfg.Model.Alpha,
	}, nil
}

// loadCorpus reads the TSV corpus configured for the data commands.
func loadCorpus(cfg config.Config, path string) ([]bayes.Document, []string, error) {
	docs, labels, err := dataset.Load(path, dataset.Options{
		LabelColumn: cfg.Data.LabelColumn,
		TextColumns: cfg.Data.TextColumns,
	})
	if err != nil {
		return nil, nil, err
	}
	if len(docs) == 0 {
		return nil, nil, fmt.Errorf("corpus %s is empty", path)
	}
	return docs, labels, nil
}
