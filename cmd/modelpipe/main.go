// Command modelpipe runs a configuration-driven training or scoring
// pipeline. The project directory must contain a model.yml plus the train
// and test CSV files it references.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/modelpipe/modelpipe/config"
	"github.com/modelpipe/modelpipe/pipeline"
	pkglog "github.com/modelpipe/modelpipe/pkg/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dir   string
		score bool
	)

	cmd := &cobra.Command{
		Use:   "modelpipe",
		Short: "Train and score supervised-learning models from a project directory",
		Long: `modelpipe reads model.yml from the project directory, prepares the
train and test tables, and either trains the configured algorithms and
persists the best model, or scores the test data with the most recently
persisted model.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}
			cfg.Scoring = score

			pkglog.SetupLogger(cfg.LogLevel)
			logger := slog.Default()

			if err := pipeline.Run(cfg, logger); err != nil {
				logger.Error("pipeline failed", pkglog.ErrAttr(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "project directory containing model.yml")
	cmd.Flags().BoolVar(&score, "score", false, "score with the latest persisted model instead of training")
	return cmd
}
