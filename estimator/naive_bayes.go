package estimator

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/core/model"
	"github.com/modelpipe/modelpipe/pkg/errors"
)

// varSmoothing keeps per-feature variances away from zero.
const varSmoothing = 1e-9

// GaussianNB is a binary Gaussian naive Bayes classifier. Fields are exported
// for gob encoding.
type GaussianNB struct {
	State *model.StateManager

	// Per-class statistics, index 0 for the negative class, 1 for the
	// positive class.
	Priors    [2]float64
	Means     [2][]float64
	Variances [2][]float64
	NFeatures int
}

// NewGaussianNB creates a new unfitted Gaussian naive Bayes classifier.
func NewGaussianNB() *GaussianNB {
	return &GaussianNB{State: model.NewStateManager()}
}

// Name returns the estimator's display name.
func (nb *GaussianNB) Name() string { return "GaussianNB" }

// Clone returns an unfitted copy.
func (nb *GaussianNB) Clone() model.Estimator {
	return NewGaussianNB()
}

// Fit estimates per-class priors and per-feature Gaussian statistics.
func (nb *GaussianNB) Fit(X mat.Matrix, y *mat.VecDense) error {
	r, c, err := validateFitInputs("GaussianNB.Fit", X, y)
	if err != nil {
		return err
	}
	if err := validateBinaryTarget("GaussianNB.Fit", y); err != nil {
		return err
	}

	var counts [2]float64
	for i := 0; i < r; i++ {
		counts[int(y.AtVec(i))]++
	}
	if counts[0] == 0 || counts[1] == 0 {
		return errors.NewValueError("GaussianNB.Fit", "both classes must be present in the training data")
	}

	for cls := 0; cls < 2; cls++ {
		nb.Priors[cls] = counts[cls] / float64(r)
		nb.Means[cls] = make([]float64, c)
		nb.Variances[cls] = make([]float64, c)
	}

	for i := 0; i < r; i++ {
		cls := int(y.AtVec(i))
		for j := 0; j < c; j++ {
			nb.Means[cls][j] += X.At(i, j)
		}
	}
	for cls := 0; cls < 2; cls++ {
		for j := 0; j < c; j++ {
			nb.Means[cls][j] /= counts[cls]
		}
	}

	for i := 0; i < r; i++ {
		cls := int(y.AtVec(i))
		for j := 0; j < c; j++ {
			d := X.At(i, j) - nb.Means[cls][j]
			nb.Variances[cls][j] += d * d
		}
	}
	for cls := 0; cls < 2; cls++ {
		for j := 0; j < c; j++ {
			nb.Variances[cls][j] = nb.Variances[cls][j]/counts[cls] + varSmoothing
		}
	}

	nb.NFeatures = c
	nb.State.SetDimensions(c, r)
	nb.State.SetFitted()
	return nil
}

// logLikelihood returns log P(class) + Σⱼ log N(xⱼ; μ, σ²).
func (nb *GaussianNB) logLikelihood(X mat.Matrix, i, cls int) float64 {
	ll := math.Log(nb.Priors[cls])
	for j := 0; j < nb.NFeatures; j++ {
		mean := nb.Means[cls][j]
		variance := nb.Variances[cls][j]
		d := X.At(i, j) - mean
		ll += -0.5*math.Log(2*math.Pi*variance) - d*d/(2*variance)
	}
	return ll
}

// PredictProba returns normalized positive-class probabilities.
func (nb *GaussianNB) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	if err := nb.State.RequireFitted(nb.Name(), "PredictProba"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if c != nb.NFeatures {
		return nil, errors.NewDimensionError("GaussianNB.PredictProba", nb.NFeatures, c, 1)
	}

	out := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		ll0 := nb.logLikelihood(X, i, 0)
		ll1 := nb.logLikelihood(X, i, 1)
		// Normalize in log space to avoid underflow.
		m := math.Max(ll0, ll1)
		p0 := math.Exp(ll0 - m)
		p1 := math.Exp(ll1 - m)
		out.SetVec(i, p1/(p0+p1))
	}
	return out, nil
}

// Predict returns the class with the larger posterior.
func (nb *GaussianNB) Predict(X mat.Matrix) (*mat.VecDense, error) {
	proba, err := nb.PredictProba(X)
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

// Score returns accuracy on (X, y).
func (nb *GaussianNB) Score(X mat.Matrix, y *mat.VecDense) (float64, error) {
	pred, err := nb.Predict(X)
	if err != nil {
		return 0, err
	}
	return accuracyOf(y, pred), nil
}

// Params returns the tunable hyperparameters; GaussianNB has none.
func (nb *GaussianNB) Params() map[string]float64 {
	return map[string]float64{}
}

// SetParams replaces hyperparameters; GaussianNB accepts none.
func (nb *GaussianNB) SetParams(params map[string]float64) error {
	for name := range params {
		return errors.NewValueError("GaussianNB.SetParams", "unknown parameter "+name)
	}
	return nil
}
