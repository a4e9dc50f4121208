package estimator

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/core/model"
	"github.com/modelpipe/modelpipe/pkg/errors"
)

// PlattCalibrator wraps a fitted probabilistic classifier and rescales its
// probability estimates with a sigmoid fit on the training split: calibrated
// probability = sigmoid(A·logit(p) + B). Fields are exported for gob encoding.
type PlattCalibrator struct {
	State *model.StateManager

	Base model.Estimator
	A    float64
	B    float64
}

// Calibrate fits a Platt sigmoid over the base classifier's probabilities on
// (X, y) and returns the calibrated wrapper. The base estimator must already
// be fitted and expose probabilities.
func Calibrate(base model.Estimator, X mat.Matrix, y *mat.VecDense) (*PlattCalibrator, error) {
	prob, ok := base.(model.ProbabilityPredictor)
	if !ok {
		return nil, errors.NewValueError("estimator.Calibrate", base.Name()+" does not expose probabilities")
	}
	if err := validateBinaryTarget("estimator.Calibrate", y); err != nil {
		return nil, err
	}

	p, err := prob.PredictProba(X)
	if err != nil {
		return nil, err
	}
	n := p.Len()
	if y.Len() != n {
		return nil, errors.NewDimensionError("estimator.Calibrate", n, y.Len(), 0)
	}

	// Work on logits of the base probabilities.
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		z[i] = logit(p.AtVec(i))
	}

	// Gradient descent on the log loss of sigmoid(A·z + B).
	a, b := 1.0, 0.0
	const (
		iters = 200
		rate  = 0.1
	)
	for iter := 0; iter < iters; iter++ {
		var gradA, gradB float64
		for i := 0; i < n; i++ {
			diff := sigmoid(a*z[i]+b) - y.AtVec(i)
			gradA += diff * z[i]
			gradB += diff
		}
		a -= rate * gradA / float64(n)
		b -= rate * gradB / float64(n)
	}

	cal := &PlattCalibrator{
		State: model.NewStateManager(),
		Base:  base,
		A:     a,
		B:     b,
	}
	cal.State.SetFitted()
	return cal, nil
}

func logit(p float64) float64 {
	const eps = 1e-15
	p = math.Min(math.Max(p, eps), 1-eps)
	return math.Log(p / (1 - p))
}

// Name returns the wrapper's display name.
func (pc *PlattCalibrator) Name() string {
	return "Calibrated(" + pc.Base.Name() + ")"
}

// Clone returns an unfitted copy over a clone of the base estimator.
func (pc *PlattCalibrator) Clone() model.Estimator {
	return &PlattCalibrator{State: model.NewStateManager(), Base: pc.Base.Clone(), A: 1}
}

// Fit refits the base estimator; the sigmoid parameters are only set through
// Calibrate.
func (pc *PlattCalibrator) Fit(X mat.Matrix, y *mat.VecDense) error {
	return pc.Base.Fit(X, y)
}

// PredictProba returns the calibrated positive-class probabilities.
func (pc *PlattCalibrator) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	if err := pc.State.RequireFitted(pc.Name(), "PredictProba"); err != nil {
		return nil, err
	}
	prob := pc.Base.(model.ProbabilityPredictor)
	p, err := prob.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := mat.NewVecDense(p.Len(), nil)
	for i := 0; i < p.Len(); i++ {
		out.SetVec(i, sigmoid(pc.A*logit(p.AtVec(i))+pc.B))
	}
	return out, nil
}

// Predict returns hard 0/1 labels from the calibrated probabilities.
func (pc *PlattCalibrator) Predict(X mat.Matrix) (*mat.VecDense, error) {
	proba, err := pc.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := mat.NewVecDense(proba.Len(), nil)
	for i := 0; i < proba.Len(); i++ {
		if proba.AtVec(i) >= 0.5 {
			out.SetVec(i, 1)
		}
	}
	return out, nil
}
