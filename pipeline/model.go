package pipeline

import (
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/config"
	"github.com/modelpipe/modelpipe/core/model"
	"github.com/modelpipe/modelpipe/estimator"
	"github.com/modelpipe/modelpipe/features"
	"github.com/modelpipe/modelpipe/frame"
	"github.com/modelpipe/modelpipe/metrics"
	"github.com/modelpipe/modelpipe/optimize"
	"github.com/modelpipe/modelpipe/persist"
	"github.com/modelpipe/modelpipe/plots"
	"github.com/modelpipe/modelpipe/pkg/errors"
	pkglog "github.com/modelpipe/modelpipe/pkg/log"
)

const (
	splitTrain = "train"
	splitTest  = "test"
)

// runModel executes the training stage over the prepared features: shuffle
// and sampling, the per-algorithm loop, blending, evaluation, plotting and
// persistence of the winner.
func (s *State) runModel() error {
	logger := s.Log.With(slog.String(pkglog.StageKey, "model"))
	cfg := s.Cfg

	if err := s.prepareTraining(logger); err != nil {
		return err
	}

	// An unknown scoring metric is fatal before any estimator is fitted.
	scorer, ok := metrics.Resolve(cfg.Scorer, cfg.ModelType)
	if !ok {
		return errors.NewScorerNotFoundError(cfg.Scorer, string(cfg.ModelType))
	}

	registry := estimator.NewRegistry(cfg.ModelType)
	var failures []error
	for _, id := range cfg.Algorithms {
		entry, ok := registry.Resolve(id)
		if !ok {
			warn := errors.NewAlgorithmSkipWarning(id, "not registered for "+string(cfg.ModelType))
			errors.Warn(warn)
			logger.Warn("algorithm skipped",
				slog.String(pkglog.AlgorithmKey, id),
				slog.String("reason", warn.Reason))
			continue
		}
		if err := s.trainOne(logger, entry, scorer); err != nil {
			failures = append(failures, err)
			errors.Warn(errors.NewAlgorithmSkipWarning(id, "training failed"))
			logger.Warn("algorithm failed",
				slog.String(pkglog.AlgorithmKey, id),
				pkglog.ErrAttr(err))
		}
	}
	for _, err := range failures {
		logger.Warn("training failure recorded", pkglog.ErrAttr(err))
	}
	if len(s.Artifacts) == 0 {
		return errors.NewPipelineError("model", "training loop",
			errors.NewValueError("pipeline.runModel", "no algorithm produced a fitted model"))
	}

	if len(s.Order) >= 2 {
		if err := s.blend(logger); err != nil {
			errors.Warn(errors.NewAlgorithmSkipWarning(BlendID, "blending failed"))
			logger.Warn("blending failed", pkglog.ErrAttr(err))
		}
	}

	s.evaluate(logger)
	if err := s.selectBest(logger, scorer); err != nil {
		return err
	}
	s.drawPlots(logger)
	return s.persistBest(logger)
}

// prepareTraining applies shuffle, class balancing and sample weights to the
// train split. Sampling and weights are classification-only stages.
func (s *State) prepareTraining(logger *slog.Logger) error {
	cfg := s.Cfg
	var err error

	if cfg.Shuffle {
		if s.Train, s.TrainY, err = features.Shuffle(s.Train, s.TrainY, cfg.Seed); err != nil {
			return errors.NewPipelineError("model", "shuffle", err)
		}
		logger.Info("training rows shuffled", slog.Int64("seed", cfg.Seed))
	}
	if cfg.ModelType != config.Classification {
		return nil
	}

	if cfg.Sampling {
		if s.Train, s.TrainY, err = features.Balance(s.Train, s.TrainY, cfg.Seed); err != nil {
			return errors.NewPipelineError("model", "sampling", err)
		}
		logger.Info("classes balanced", slog.Int(pkglog.RowsKey, s.Train.Rows()))
	}

	if s.SampleWeights, err = features.SampleWeights(s.TrainY); err != nil {
		return errors.NewPipelineError("model", "sample weights", err)
	}
	return nil
}

// trainOne runs one algorithm through selection, fitting, elimination, grid
// search, calibration and prediction. Panics and errors stay contained to
// this algorithm.
func (s *State) trainOne(logger *slog.Logger, entry estimator.Entry, scorer metrics.Scorer) (err error) {
	defer errors.Recover(&err, "train "+entry.ID)

	cfg := s.Cfg
	logger = logger.With(slog.String(pkglog.AlgorithmKey, entry.ID))
	kf := optimize.KFold{NSplits: cfg.CVFolds, Seed: cfg.Seed}

	// Univariate selection narrows the shared tables, so algorithms later
	// in the list see the columns this pass kept.
	if cfg.FeatureSelection {
		train, test, err := features.SelectFeatures(s.Train, s.Test, s.TrainY, cfg.SelectionPercentile)
		if err != nil {
			return err
		}
		s.Train, s.Test = train, test
		logger.Info("features selected", slog.Int(pkglog.ColumnsKey, s.Train.Cols()))
	}

	trainTable, testTable := s.Train, s.Test
	trainX, testX := trainTable.Matrix(), testTable.Matrix()

	est := entry.New()
	s.attachWeights(est)
	if err := est.Fit(trainX, s.TrainY); err != nil {
		return err
	}

	var support []int
	if cfg.RFE {
		switch {
		case entry.Caps.Has(estimator.CapCrossValScoring):
			support, err = optimize.RFECV(entry.New, trainX, s.TrainY, scorer, kf)
		case entry.Caps.Has(estimator.CapCoefficients):
			support, err = optimize.RFE(entry.New, trainX, s.TrainY)
		default:
			errors.Warn(errors.NewEliminationSkipWarning(entry.ID))
			logger.Info("feature elimination skipped")
		}
		if err != nil {
			return err
		}
		if support != nil && len(support) < trainTable.Cols() {
			if trainTable, err = trainTable.Select(support); err != nil {
				return err
			}
			if testTable, err = testTable.Select(support); err != nil {
				return err
			}
			trainX, testX = trainTable.Matrix(), testTable.Matrix()

			est = entry.New()
			s.attachWeights(est)
			if err := est.Fit(trainX, s.TrainY); err != nil {
				return err
			}
			logger.Info("features eliminated", slog.Int(pkglog.ColumnsKey, len(support)))
		}
	}

	if cfg.GridSearch && len(entry.Grid) > 0 {
		result, err := optimize.GridSearch(entry.New, entry.Grid, trainX, s.TrainY, scorer, kf, cfg.GridIterations)
		if err != nil {
			return err
		}
		tuned := entry.New()
		if err := tuned.(model.ParamSpace).SetParams(result.Params); err != nil {
			return err
		}
		s.attachWeights(tuned)
		if err := tuned.Fit(trainX, s.TrainY); err != nil {
			return err
		}
		est = tuned
		logger.Info("grid search finished",
			slog.Int("combinations", result.Tried),
			slog.Float64(pkglog.ScoreKey, result.Score),
			slog.Any("params", result.Params))
	}

	art := &Artifact{
		Algorithm: entry.ID,
		Support:   support,
		Features:  trainTable.Names(),
	}

	if cfg.ModelType == config.Classification && entry.Caps.Has(estimator.CapProbability) {
		if cfg.Calibration {
			cal, err := estimator.Calibrate(est, trainX, s.TrainY)
			if err != nil {
				return err
			}
			est = cal
			logger.Info("probabilities calibrated")
		}
		prob := est.(model.ProbabilityPredictor)
		if art.TrainProba, err = prob.PredictProba(trainX); err != nil {
			return err
		}
		if art.TestProba, err = prob.PredictProba(testX); err != nil {
			return err
		}
	}

	art.Estimator = est
	if art.TrainPred, err = est.Predict(trainX); err != nil {
		return err
	}
	if art.TestPred, err = est.Predict(testX); err != nil {
		return err
	}

	s.addArtifact(art)
	attrs := []any{slog.Int(pkglog.ColumnsKey, trainTable.Cols())}
	if sc, ok := est.(model.Scorer); ok {
		if self, serr := sc.Score(trainX, s.TrainY); serr == nil {
			attrs = append(attrs, slog.Float64(pkglog.ScoreKey, self))
		}
	}
	logger.Info("algorithm trained", attrs...)
	return nil
}

func (s *State) attachWeights(est model.Estimator) {
	if s.SampleWeights == nil {
		return
	}
	if wf, ok := est.(model.WeightedFitter); ok {
		wf.SetSampleWeights(s.SampleWeights)
	}
}

// blend stacks every trained algorithm under a meta-learner and stores the
// result like a regular artifact. Bases whose feature columns were narrowed
// away by a later selection pass are left out.
func (s *State) blend(logger *slog.Logger) error {
	var (
		bases    []model.Estimator
		supports [][]int
		useProba []bool
	)
	for _, id := range s.Order {
		art := s.Artifacts[id]
		support, ok := columnsByName(s.Train, art.Features)
		if !ok {
			logger.Warn("base left out of blend",
				slog.String(pkglog.AlgorithmKey, id))
			continue
		}
		bases = append(bases, art.Estimator)
		supports = append(supports, support)
		useProba = append(useProba, art.TrainProba != nil)
	}

	var meta model.Estimator
	if s.Cfg.ModelType == config.Classification {
		meta = estimator.NewLogisticRegression()
	} else {
		meta = estimator.NewLinearRegression()
	}

	blend, err := estimator.NewBlend(bases, supports, useProba, meta)
	if err != nil {
		return err
	}
	if err := blend.Fit(s.Train.Matrix(), s.TrainY); err != nil {
		return err
	}

	art := &Artifact{
		Algorithm: BlendID,
		Estimator: blend,
		Features:  s.Train.Names(),
	}
	if art.TrainPred, err = blend.Predict(s.Train.Matrix()); err != nil {
		return err
	}
	if art.TestPred, err = blend.Predict(s.Test.Matrix()); err != nil {
		return err
	}
	if s.Cfg.ModelType == config.Classification {
		if art.TrainProba, err = blend.PredictProba(s.Train.Matrix()); err != nil {
			return err
		}
		if art.TestProba, err = blend.PredictProba(s.Test.Matrix()); err != nil {
			return err
		}
	}

	s.addArtifact(art)
	logger.Info("blend trained", slog.Int("bases", len(bases)))
	return nil
}

// columnsByName maps feature names to indices in the table; false when any
// name is missing.
func columnsByName(t *frame.Table, names []string) ([]int, bool) {
	indices := make([]int, len(names))
	all := len(names) == t.Cols()
	for i, name := range names {
		idx, ok := t.ColumnIndex(name)
		if !ok {
			return nil, false
		}
		indices[i] = idx
		if idx != i {
			all = false
		}
	}
	if all {
		return nil, true
	}
	return indices, true
}

// evaluate computes every registered metric for every artifact on the train
// split, and on the test split when its labels are available.
func (s *State) evaluate(logger *slog.Logger) {
	type split struct {
		name  string
		y     *mat.VecDense
		pred  func(*Artifact) *mat.VecDense
		proba func(*Artifact) *mat.VecDense
	}
	splits := []split{{
		name:  splitTrain,
		y:     s.TrainY,
		pred:  func(a *Artifact) *mat.VecDense { return a.TrainPred },
		proba: func(a *Artifact) *mat.VecDense { return a.TrainProba },
	}}
	if s.Cfg.TestLabels && s.TestY != nil {
		splits = append(splits, split{
			name:  splitTest,
			y:     s.TestY,
			pred:  func(a *Artifact) *mat.VecDense { return a.TestPred },
			proba: func(a *Artifact) *mat.VecDense { return a.TestProba },
		})
	}

	for _, id := range s.rankedAlgorithms() {
		art := s.Artifacts[id]
		for _, sp := range splits {
			for _, name := range metrics.ForTask(s.Cfg.ModelType) {
				scorer, _ := metrics.Resolve(name, s.Cfg.ModelType)
				pred := sp.pred(art)
				if scorer.NeedsProba {
					if pred = sp.proba(art); pred == nil {
						continue
					}
				}
				value, err := scorer.Fn(sp.y, pred)
				if err != nil {
					logger.Debug("metric unavailable",
						slog.String(pkglog.AlgorithmKey, id),
						slog.String(pkglog.SplitKey, sp.name),
						slog.String(pkglog.MetricKey, name),
						pkglog.ErrAttr(err))
					continue
				}
				s.recordMetric(id, sp.name, name, value)
				logger.Info("metric",
					slog.String(pkglog.AlgorithmKey, id),
					slog.String(pkglog.SplitKey, sp.name),
					slog.String(pkglog.MetricKey, name),
					slog.Float64(pkglog.ScoreKey, value))
			}
		}
	}
}

// selectBest picks the artifact with the best primary metric. Test scores
// decide when test labels exist, train scores otherwise. Ties keep the
// earlier algorithm in ranking order, so the blend never wins a tie.
func (s *State) selectBest(logger *slog.Logger, scorer metrics.Scorer) error {
	split := splitTrain
	if s.Cfg.TestLabels && s.TestY != nil {
		split = splitTest
	}

	best := ""
	var bestScore float64
	for _, id := range s.rankedAlgorithms() {
		value, ok := s.Metrics[id][split][scorer.Name]
		if !ok {
			continue
		}
		if best == "" || strictlyBetter(value, bestScore, scorer.Maximize) {
			best, bestScore = id, value
		}
	}
	if best == "" {
		return errors.NewPipelineError("model", "best selection",
			errors.NewValueError("pipeline.selectBest",
				"no artifact has a "+scorer.Name+" score on the "+split+" split"))
	}

	s.BestAlgorithm = best
	logger.Info("best model selected",
		slog.String(pkglog.BestAlgorithmKey, best),
		slog.String(pkglog.SplitKey, split),
		slog.String(pkglog.MetricKey, scorer.Name),
		slog.Float64(pkglog.ScoreKey, bestScore))
	return nil
}

func strictlyBetter(value, best float64, maximize bool) bool {
	if maximize {
		return value > best
	}
	return value < best
}

// drawPlots renders diagnostics for the winning artifact. Failures are
// reported as warnings and never abort the run.
func (s *State) drawPlots(logger *slog.Logger) {
	art := s.Artifacts[s.BestAlgorithm]
	dir := s.Cfg.Directory

	type plotJob struct {
		name  string
		split string
		draw  func() error
	}
	var jobs []plotJob

	addRegression := func(split string, y, pred *mat.VecDense) {
		jobs = append(jobs,
			plotJob{"predicted_actual", split, func() error {
				return plots.PredictedActual(dir, art.Algorithm, split, y, pred)
			}},
			plotJob{"residuals", split, func() error {
				return plots.ResidualHistogram(dir, art.Algorithm, split, y, pred)
			}})
	}
	addClassification := func(split string, y, proba *mat.VecDense) {
		if proba == nil {
			return
		}
		jobs = append(jobs, plotJob{"probabilities", split, func() error {
			return plots.ProbabilityHistogram(dir, art.Algorithm, split, proba)
		}})
		if y != nil {
			jobs = append(jobs, plotJob{"roc", split, func() error {
				return plots.ROCCurve(dir, art.Algorithm, split, y, proba)
			}})
		}
	}

	if s.Cfg.ModelType == config.Classification {
		addClassification(splitTrain, s.TrainY, art.TrainProba)
		if s.Cfg.TestLabels && s.TestY != nil {
			addClassification(splitTest, s.TestY, art.TestProba)
		} else {
			addClassification(splitTest, nil, art.TestProba)
		}
	} else {
		addRegression(splitTrain, s.TrainY, art.TrainPred)
		if s.Cfg.TestLabels && s.TestY != nil {
			addRegression(splitTest, s.TestY, art.TestPred)
		}
	}

	for _, job := range jobs {
		if err := job.draw(); err != nil {
			errors.Warn(errors.NewPlotWarning(job.name, job.split, err))
			logger.Warn("plot failed",
				slog.String("plot", job.name),
				slog.String(pkglog.SplitKey, job.split),
				pkglog.ErrAttr(err))
		}
	}
}

// persistBest saves the winning artifact with a timestamped file name and
// exports its test predictions next to it.
func (s *State) persistBest(logger *slog.Logger) error {
	art := s.Artifacts[s.BestAlgorithm]

	path, err := persist.Save(s.Cfg.Directory, &persist.Artifact{
		Algorithm: art.Algorithm,
		ModelType: s.Cfg.ModelType,
		Target:    s.Cfg.Target,
		Features:  art.Features,
		Estimator: art.Estimator,
	})
	if err != nil {
		return errors.NewPipelineError("model", "save model", err)
	}
	logger.Info("model saved",
		slog.String(pkglog.BestAlgorithmKey, art.Algorithm),
		slog.String("path", path))

	outDir := filepath.Join(s.Cfg.Directory, "output")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.NewPipelineError("model", "create output directory", err)
	}
	csvPath := filepath.Join(outDir, "predictions.csv")
	if err := frame.WriteCSV(csvPath, s.Test, "prediction", art.TestPred); err != nil {
		return errors.NewPipelineError("model", "export predictions", err)
	}
	logger.Info("predictions exported", slog.String("path", csvPath))
	return nil
}
