package pipeline

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/modelpipe/modelpipe/config"
	"github.com/modelpipe/modelpipe/core/model"
	"github.com/modelpipe/modelpipe/frame"
	"github.com/modelpipe/modelpipe/persist"
	"github.com/modelpipe/modelpipe/pkg/errors"
	pkglog "github.com/modelpipe/modelpipe/pkg/log"
)

// runScore loads the most recent persisted model and predicts over the
// current test features. No training and no evaluation happen here.
func (s *State) runScore() error {
	logger := s.Log.With(slog.String(pkglog.StageKey, "score"))

	art, err := persist.LoadLatest(s.Cfg.Directory)
	if err != nil {
		return errors.NewPipelineError("score", "load model", err)
	}
	logger.Info("model loaded",
		slog.String(pkglog.AlgorithmKey, art.Algorithm),
		slog.Int(pkglog.ColumnsKey, len(art.Features)))

	// The test table must still carry every column the model was trained
	// on; order follows the persisted feature list.
	indices := make([]int, len(art.Features))
	for i, name := range art.Features {
		idx, ok := s.Test.ColumnIndex(name)
		if !ok {
			return errors.NewPipelineError("score", "align features",
				errors.NewColumnNotFoundError("pipeline.runScore", name, "test"))
		}
		indices[i] = idx
	}
	aligned, err := s.Test.Select(indices)
	if err != nil {
		return errors.NewPipelineError("score", "align features", err)
	}

	pred, err := art.Estimator.Predict(aligned.Matrix())
	if err != nil {
		return errors.NewPipelineError("score", "predict", err)
	}
	logger.Info("predictions computed", slog.Int(pkglog.RowsKey, pred.Len()))

	if art.ModelType == config.Classification {
		if prob, ok := art.Estimator.(model.ProbabilityPredictor); ok {
			proba, err := prob.PredictProba(aligned.Matrix())
			if err != nil {
				return errors.NewPipelineError("score", "predict probabilities", err)
			}
			logger.Info("positive-class probabilities computed",
				slog.Int(pkglog.RowsKey, proba.Len()))
		}
	}

	outDir := filepath.Join(s.Cfg.Directory, "output")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.NewPipelineError("score", "create output directory", err)
	}
	csvPath := filepath.Join(outDir, "scores.csv")
	if err := frame.WriteCSV(csvPath, s.Test, "prediction", pred); err != nil {
		return errors.NewPipelineError("score", "export predictions", err)
	}
	logger.Info("predictions exported", slog.String("path", csvPath))
	return nil
}
