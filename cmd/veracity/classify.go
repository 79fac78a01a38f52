package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/L-Martinell/AdvancedStatistics-Project/bayes"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify text from arguments or stdin with a saved model",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			classifier, err := bayes.NewClassifier(bayes.DefaultConfig())
			if err != nil {
				return err
			}
			if err := classifier.LoadFromFile(activeCfg.Model.Path); err != nil {
				return err
			}

			pred, err := classifier.Predict(bayes.Doc(text))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), pred.Label)

			classes := make([]string, 0, len(pred.Scores))
			for class := range pred.Scores {
				classes = append(classes, class)
			}
			sort.Strings(classes)
			for _, class := range classes {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %.4f\n", class, pred.Scores[class])
			}
			return nil
		},
	}
}
