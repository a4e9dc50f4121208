package estimator

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/core/model"
	"github.com/modelpipe/modelpipe/pkg/errors"
)

// LogisticRegression is a binary classifier trained by full-batch gradient
// descent with L2 regularization. Fields are exported for gob encoding.
type LogisticRegression struct {
	State *model.StateManager

	// Hyperparameters
	C            float64 // inverse regularization strength
	LearningRate float64
	MaxIter      int
	Tol          float64

	// Fitted parameters
	Weights   []float64
	Intercept float64
	NFeatures int

	sampleWeights []float64
}

// LogisticRegressionOption is a functional option for LogisticRegression.
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new binary logistic regression classifier.
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		State:        model.NewStateManager(),
		C:            1.0,
		LearningRate: 0.1,
		MaxIter:      500,
		Tol:          1e-6,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithC sets the inverse regularization strength.
func WithC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithMaxIter sets the iteration cap for gradient descent.
func WithMaxIter(n int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.MaxIter = n
	}
}

// WithLearningRate sets the gradient descent step size.
func WithLearningRate(rate float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.LearningRate = rate
	}
}

// Name returns the estimator's display name.
func (lr *LogisticRegression) Name() string { return "LogisticRegression" }

// Clone returns an unfitted copy with the same hyperparameters.
func (lr *LogisticRegression) Clone() model.Estimator {
	return NewLogisticRegression(
		WithC(lr.C),
		WithMaxIter(lr.MaxIter),
		WithLearningRate(lr.LearningRate),
	)
}

// SetSampleWeights sets per-sample weights for the next Fit call.
func (lr *LogisticRegression) SetSampleWeights(w []float64) {
	lr.sampleWeights = w
}

// Fit minimizes the weighted, L2-penalized log loss by gradient descent.
// Weights start at zero so the fit is deterministic.
func (lr *LogisticRegression) Fit(X mat.Matrix, y *mat.VecDense) error {
	r, c, err := validateFitInputs("LogisticRegression.Fit", X, y)
	if err != nil {
		return err
	}
	if err := validateBinaryTarget("LogisticRegression.Fit", y); err != nil {
		return err
	}
	if lr.sampleWeights != nil && len(lr.sampleWeights) != r {
		return errors.NewDimensionError("LogisticRegression.Fit", r, len(lr.sampleWeights), 0)
	}

	w := make([]float64, c)
	b := 0.0
	lambda := 1.0 / (lr.C * float64(r))

	var totalWeight float64
	if lr.sampleWeights != nil {
		for _, sw := range lr.sampleWeights {
			totalWeight += sw
		}
	} else {
		totalWeight = float64(r)
	}

	gradW := make([]float64, c)
	for iter := 0; iter < lr.MaxIter; iter++ {
		for j := range gradW {
			gradW[j] = 0
		}
		gradB := 0.0

		for i := 0; i < r; i++ {
			z := b
			for j := 0; j < c; j++ {
				z += w[j] * X.At(i, j)
			}
			diff := sigmoid(z) - y.AtVec(i)
			if lr.sampleWeights != nil {
				diff *= lr.sampleWeights[i]
			}
			for j := 0; j < c; j++ {
				gradW[j] += diff * X.At(i, j)
			}
			gradB += diff
		}

		maxStep := 0.0
		for j := 0; j < c; j++ {
			g := gradW[j]/totalWeight + lambda*w[j]
			step := lr.LearningRate * g
			w[j] -= step
			if s := math.Abs(step); s > maxStep {
				maxStep = s
			}
		}
		stepB := lr.LearningRate * gradB / totalWeight
		b -= stepB
		if s := math.Abs(stepB); s > maxStep {
			maxStep = s
		}

		if maxStep < lr.Tol {
			break
		}
	}

	lr.Weights = w
	lr.Intercept = b
	lr.NFeatures = c
	lr.State.SetDimensions(c, r)
	lr.State.SetFitted()
	return nil
}

// PredictProba returns the positive-class probability per row.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	if err := lr.State.RequireFitted(lr.Name(), "PredictProba"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.PredictProba", lr.NFeatures, c, 1)
	}

	out := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		z := lr.Intercept
		for j := 0; j < c; j++ {
			z += lr.Weights[j] * X.At(i, j)
		}
		out.SetVec(i, sigmoid(z))
	}
	return out, nil
}

// Predict returns hard 0/1 labels at the 0.5 threshold.
func (lr *LogisticRegression) Predict(X mat.Matrix) (*mat.VecDense, error) {
	proba, err := lr.PredictProba(X)
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

// Coefficients returns the fitted per-feature weights.
func (lr *LogisticRegression) Coefficients() []float64 {
	return append([]float64(nil), lr.Weights...)
}

// Score returns accuracy on (X, y).
func (lr *LogisticRegression) Score(X mat.Matrix, y *mat.VecDense) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return accuracyOf(y, pred), nil
}

// Params returns the tunable hyperparameters.
func (lr *LogisticRegression) Params() map[string]float64 {
	return map[string]float64{"c": lr.C}
}

// SetParams replaces the named hyperparameters.
func (lr *LogisticRegression) SetParams(params map[string]float64) error {
	for name, v := range params {
		switch name {
		case "c":
			lr.C = v
		default:
			return errors.NewValueError("LogisticRegression.SetParams", "unknown parameter "+name)
		}
	}
	return nil
}
