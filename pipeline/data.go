package pipeline

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/config"
	"github.com/modelpipe/modelpipe/features"
	"github.com/modelpipe/modelpipe/frame"
	"github.com/modelpipe/modelpipe/pkg/errors"
	pkglog "github.com/modelpipe/modelpipe/pkg/log"
)

// runData executes the feature-engineering stage: load, drop, statistics,
// concat, then the transform rounds over the unified table. Each round must
// preserve the row count; the unified table is re-split at the recorded
// split point and snapshotted back into the state after every round.
func (s *State) runData() error {
	logger := s.Log.With(slog.String(pkglog.StageKey, "data"))

	train, trainY, err := frame.ReadCSV(s.Cfg.TrainFile, s.Cfg.Target)
	if err != nil {
		return errors.NewPipelineError("data", "load train", err)
	}
	if trainY == nil {
		return errors.NewPipelineError("data", "load train",
			errors.NewColumnNotFoundError("pipeline.runData", s.Cfg.Target, "train"))
	}
	test, testY, err := frame.ReadCSV(s.Cfg.TestFile, s.Cfg.Target)
	if err != nil {
		return errors.NewPipelineError("data", "load test", err)
	}

	if len(s.Cfg.Drop) > 0 {
		if train, err = train.Drop(s.Cfg.Drop, "train"); err != nil {
			return errors.NewPipelineError("data", "drop columns", err)
		}
		if test, err = test.Drop(s.Cfg.Drop, "test"); err != nil {
			return errors.NewPipelineError("data", "drop columns", err)
		}
	}

	s.Train, s.Test = train, test
	s.TrainY, s.TestY = trainY, testY
	s.logFeatureStats(logger)

	if !train.SameColumns(test) {
		return errors.NewPipelineError("data", "column parity",
			errors.NewShapeMismatchError("pipeline.runData",
				train.Rows(), train.Cols(), test.Rows(), test.Cols()))
	}

	union, err := frame.Concat(train, test)
	if err != nil {
		return errors.NewPipelineError("data", "concat", err)
	}
	s.SplitPoint = train.Rows()
	logger.Info("tables concatenated",
		slog.Int(pkglog.RowsKey, union.Rows()),
		slog.Int(pkglog.ColumnsKey, union.Cols()),
		slog.Int(pkglog.SplitPointKey, s.SplitPoint))

	rounds := []struct {
		name    string
		enabled bool
		apply   func(*frame.Table) (*frame.Table, error)
	}{
		{"derive features", true, features.CreateFeatures},
		{"interactions", s.Cfg.Interactions, features.CreateInteractions},
		{"variance filter", s.Cfg.VarianceThreshold >= 0, func(t *frame.Table) (*frame.Table, error) {
			return features.RemoveLowVariance(t, s.Cfg.VarianceThreshold)
		}},
	}

	for _, round := range rounds {
		if !round.enabled {
			continue
		}
		out, err := round.apply(union)
		if err != nil {
			return errors.NewPipelineError("data", round.name, err)
		}
		if out.Rows() != union.Rows() {
			return errors.NewPipelineError("data", round.name,
				errors.NewDimensionError("pipeline.runData", union.Rows(), out.Rows(), 0))
		}
		union = out

		if s.Train, s.Test, err = union.SplitAt(s.SplitPoint); err != nil {
			return errors.NewPipelineError("data", round.name, err)
		}
		logger.Info("transform applied",
			slog.String(pkglog.OperationKey, round.name),
			slog.Int(pkglog.ColumnsKey, union.Cols()))
	}

	return nil
}

// logFeatureStats reports table shapes and, for classification runs, the
// distinct target values. Test-side target logging additionally requires the
// labels to be present.
func (s *State) logFeatureStats(logger *slog.Logger) {
	logger.Info("train table loaded",
		slog.Int(pkglog.RowsKey, s.Train.Rows()),
		slog.Int(pkglog.ColumnsKey, s.Train.Cols()))
	logger.Info("test table loaded",
		slog.Int(pkglog.RowsKey, s.Test.Rows()),
		slog.Int(pkglog.ColumnsKey, s.Test.Cols()))

	if s.Cfg.ModelType != config.Classification {
		return
	}
	logger.Info("train target values",
		slog.Any("unique", uniqueValues(s.TrainY)))
	if s.Cfg.TestLabels && s.TestY != nil {
		logger.Info("test target values",
			slog.Any("unique", uniqueValues(s.TestY)))
	}
}

func uniqueValues(y *mat.VecDense) map[float64]int {
	counts := make(map[float64]int)
	for i := 0; i < y.Len(); i++ {
		counts[y.AtVec(i)]++
	}
	return counts
}
