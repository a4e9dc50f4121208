// Package estimator provides the estimator registry and the concrete
// trainable models the pipeline's algorithm identifiers resolve to. Each
// registry entry declares its capabilities as explicit tags; the training
// loop branches on the tag set instead of probing for methods at runtime.
package estimator

import (
	"github.com/modelpipe/modelpipe/config"
	"github.com/modelpipe/modelpipe/core/model"
)

// Capabilities is the tag set a registry entry declares for its estimator.
type Capabilities uint8

const (
	// CapCrossValScoring marks estimators that can score themselves on
	// held-out folds, enabling cross-validated feature elimination.
	CapCrossValScoring Capabilities = 1 << iota

	// CapCoefficients marks linear estimators exposing per-feature
	// weights, enabling coefficient-based feature elimination.
	CapCoefficients

	// CapProbability marks classifiers exposing positive-class
	// probability estimates.
	CapProbability
)

// Has reports whether all the given capability bits are set.
func (c Capabilities) Has(flags Capabilities) bool {
	return c&flags == flags
}

// Entry describes one resolvable algorithm: its identifier, capability tags,
// hyperparameter search grid, and a factory producing unfitted instances.
type Entry struct {
	ID   string
	Caps Capabilities

	// Grid lists candidate values per numeric hyperparameter for search.
	// A nil grid means the estimator has nothing to tune.
	Grid map[string][]float64

	// New returns a fresh unfitted estimator.
	New func() model.Estimator
}

// Registry resolves algorithm identifiers for one model type.
type Registry struct {
	task    config.ModelType
	entries map[string]Entry
}

// NewRegistry builds the registry of all estimators available for a task.
func NewRegistry(task config.ModelType) *Registry {
	r := &Registry{task: task, entries: make(map[string]Entry)}

	switch task {
	case config.Classification:
		r.add(Entry{
			ID:   "LOGR",
			Caps: CapCrossValScoring | CapCoefficients | CapProbability,
			Grid: map[string][]float64{"c": {0.01, 0.1, 1, 10}},
			New:  func() model.Estimator { return NewLogisticRegression() },
		})
		r.add(Entry{
			ID:   "KNN",
			Caps: CapProbability,
			Grid: map[string][]float64{"k": {3, 5, 7, 9}},
			New:  func() model.Estimator { return NewKNNClassifier(5) },
		})
		r.add(Entry{
			ID:   "NB",
			Caps: CapCrossValScoring | CapProbability,
			New:  func() model.Estimator { return NewGaussianNB() },
		})
	case config.Regression:
		r.add(Entry{
			ID:   "LINR",
			Caps: CapCrossValScoring | CapCoefficients,
			New:  func() model.Estimator { return NewLinearRegression() },
		})
		r.add(Entry{
			ID:   "RIDGE",
			Caps: CapCoefficients,
			Grid: map[string][]float64{"alpha": {0.01, 0.1, 1, 10}},
			New:  func() model.Estimator { return NewRidge(1.0) },
		})
		r.add(Entry{
			ID:   "KNNR",
			Grid: map[string][]float64{"k": {3, 5, 7, 9}},
			New:  func() model.Estimator { return NewKNNRegressor(5) },
		})
	}
	return r
}

func (r *Registry) add(e Entry) {
	r.entries[e.ID] = e
}

// Resolve looks up an algorithm identifier. The boolean result is the normal
// branch the training loop consumes; a miss is never an error.
func (r *Registry) Resolve(id string) (Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Task returns the model type this registry serves.
func (r *Registry) Task() config.ModelType {
	return r.task
}
