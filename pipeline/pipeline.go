package pipeline

import (
	"log/slog"
	"time"

	"github.com/modelpipe/modelpipe/config"
	pkglog "github.com/modelpipe/modelpipe/pkg/log"
)

// Run executes a full pipeline run: the data stage always, then either the
// scoring path or the training path depending on the configured mode.
func Run(cfg *config.ModelConfig, logger *slog.Logger) error {
	state := NewState(cfg, logger)
	start := time.Now()

	state.Log.Info("pipeline started",
		slog.String("model.type", string(cfg.ModelType)),
		slog.Bool("scoring", cfg.Scoring))

	if err := state.runData(); err != nil {
		return err
	}

	var err error
	if cfg.Scoring {
		err = state.runScore()
	} else {
		err = state.runModel()
	}
	if err != nil {
		return err
	}

	state.Log.Info("pipeline finished",
		slog.Int64(pkglog.DurationMsKey, time.Since(start).Milliseconds()))
	return nil
}
