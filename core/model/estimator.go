// Package model defines the estimator interfaces the pipeline trains against
// and the persistence and fitted-state plumbing shared by all estimators.
package model

import "gonum.org/v1/gonum/mat"

// Fitter is a model that can be trained.
type Fitter interface {
	// Fit trains the model on features X and target y.
	Fit(X mat.Matrix, y *mat.VecDense) error
}

// Predictor is a model that can produce point predictions.
type Predictor interface {
	// Predict returns one prediction per row of X.
	Predict(X mat.Matrix) (*mat.VecDense, error)
}

// Estimator is the trainable object the registry resolves algorithm
// identifiers to.
type Estimator interface {
	Fitter
	Predictor

	// Name returns the estimator's display name.
	Name() string

	// Clone returns an unfitted copy with the same hyperparameters.
	Clone() Estimator
}

// ProbabilityPredictor is implemented by classifiers that expose
// positive-class probability estimates.
type ProbabilityPredictor interface {
	// PredictProba returns the positive-class probability per row of X.
	PredictProba(X mat.Matrix) (*mat.VecDense, error)
}

// Coefficienter is implemented by linear models that expose per-feature
// coefficients, enabling coefficient-based feature elimination.
type Coefficienter interface {
	// Coefficients returns one weight per input feature.
	Coefficients() []float64
}

// Scorer is implemented by estimators that can score themselves against a
// dataset with their default metric. The training loop reports this
// self-score for every fitted model that provides one.
type Scorer interface {
	// Score returns the estimator's default metric on (X, y):
	// accuracy for classifiers, R² for regressors.
	Score(X mat.Matrix, y *mat.VecDense) (float64, error)
}

// WeightedFitter is implemented by estimators that accept per-sample weights
// for the next Fit call.
type WeightedFitter interface {
	// SetSampleWeights sets the weights applied on the next Fit. A nil
	// slice restores uniform weighting.
	SetSampleWeights(w []float64)
}

// ParamSpace is implemented by estimators whose numeric hyperparameters can
// be inspected and replaced, enabling hyperparameter search.
type ParamSpace interface {
	// Params returns the current numeric hyperparameters by name.
	Params() map[string]float64

	// SetParams replaces the named hyperparameters. Unknown names error.
	SetParams(params map[string]float64) error
}
