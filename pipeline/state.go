// Package pipeline orchestrates a full training or scoring run: data
// preparation, the per-algorithm training loop, blending, evaluation,
// plotting and persistence of the winner.
package pipeline

import (
	"log/slog"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/config"
	"github.com/modelpipe/modelpipe/core/model"
	"github.com/modelpipe/modelpipe/frame"
	pkglog "github.com/modelpipe/modelpipe/pkg/log"
)

// BlendID is the synthetic algorithm id of the blended meta-model. It is
// treated like any listed algorithm downstream but always ranks after them
// on exact metric ties.
const BlendID = "BLEND"

// Artifact holds everything produced for one algorithm during training.
type Artifact struct {
	Algorithm string
	Estimator model.Estimator

	// Support lists the column indices the estimator was fitted on after
	// recursive feature elimination; nil means all columns.
	Support []int
	// Features names the columns the estimator consumes, for scoring runs.
	Features []string

	TrainPred  *mat.VecDense
	TestPred   *mat.VecDense
	TrainProba *mat.VecDense
	TestProba  *mat.VecDense
}

// State is the shared mutable state threaded through the pipeline stages.
type State struct {
	Cfg   *config.ModelConfig
	Log   *slog.Logger
	RunID string

	Train  *frame.Table
	Test   *frame.Table
	TrainY *mat.VecDense
	TestY  *mat.VecDense

	// SplitPoint is the row where the unified table splits back into
	// train and test. Set at the concat, asserted at every re-split.
	SplitPoint int

	SampleWeights []float64

	// Artifacts by algorithm id; order preserves creation sequence.
	Artifacts map[string]*Artifact
	Order     []string

	// Metrics[algorithm][split][metric] = value.
	Metrics map[string]map[string]map[string]float64

	BestAlgorithm string
}

// NewState prepares an empty run state with a fresh run id.
func NewState(cfg *config.ModelConfig, logger *slog.Logger) *State {
	runID := uuid.NewString()
	return &State{
		Cfg:       cfg,
		Log:       logger.With(slog.String(pkglog.RunIDKey, runID)),
		RunID:     runID,
		Artifacts: make(map[string]*Artifact),
		Metrics:   make(map[string]map[string]map[string]float64),
	}
}

func (s *State) addArtifact(art *Artifact) {
	s.Artifacts[art.Algorithm] = art
	s.Order = append(s.Order, art.Algorithm)
}

func (s *State) recordMetric(algorithm, split, metric string, value float64) {
	if s.Metrics[algorithm] == nil {
		s.Metrics[algorithm] = make(map[string]map[string]float64)
	}
	if s.Metrics[algorithm][split] == nil {
		s.Metrics[algorithm][split] = make(map[string]float64)
	}
	s.Metrics[algorithm][split][metric] = value
}

// rankedAlgorithms returns artifact ids in ranking order: the configured
// algorithm list first, the blend last.
func (s *State) rankedAlgorithms() []string {
	ranked := make([]string, 0, len(s.Artifacts))
	for _, id := range s.Cfg.Algorithms {
		if _, ok := s.Artifacts[id]; ok {
			ranked = append(ranked, id)
		}
	}
	if _, ok := s.Artifacts[BlendID]; ok {
		ranked = append(ranked, BlendID)
	}
	return ranked
}
