package estimator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/core/model"
	"github.com/modelpipe/modelpipe/pkg/errors"
)

// LinearRegression is an ordinary least-squares regressor solved by QR.
// Fields are exported for gob encoding.
type LinearRegression struct {
	State *model.StateManager

	Weights   []float64 // one per feature, intercept excluded
	Intercept float64
	NFeatures int

	sampleWeights []float64
}

// NewLinearRegression creates a new unfitted ordinary least-squares model.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{State: model.NewStateManager()}
}

// Name returns the estimator's display name.
func (lr *LinearRegression) Name() string { return "LinearRegression" }

// Clone returns an unfitted copy.
func (lr *LinearRegression) Clone() model.Estimator {
	return NewLinearRegression()
}

// SetSampleWeights sets per-sample weights for the next Fit call.
func (lr *LinearRegression) SetSampleWeights(w []float64) {
	lr.sampleWeights = w
}

// Fit solves the least-squares problem min ||[1,X]β - y||² for β.
func (lr *LinearRegression) Fit(X mat.Matrix, y *mat.VecDense) error {
	r, c, err := validateFitInputs("LinearRegression.Fit", X, y)
	if err != nil {
		return err
	}

	X1 := addIntercept(X)
	target := y
	if lr.sampleWeights != nil {
		X1, target, err = applyRowWeights(X1, y, lr.sampleWeights)
		if err != nil {
			return err
		}
	}

	var beta mat.VecDense
	if err := beta.SolveVec(X1, target); err != nil {
		return errors.Wrap(errors.ErrSingularMatrix, "LinearRegression.Fit")
	}

	lr.Intercept = beta.AtVec(0)
	lr.Weights = make([]float64, c)
	for j := 0; j < c; j++ {
		lr.Weights[j] = beta.AtVec(j + 1)
	}
	lr.NFeatures = c
	lr.State.SetDimensions(c, r)
	lr.State.SetFitted()
	return nil
}

// Predict returns Xβ + intercept per row.
func (lr *LinearRegression) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if err := lr.State.RequireFitted(lr.Name(), "Predict"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	out := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v := lr.Intercept
		for j := 0; j < c; j++ {
			v += lr.Weights[j] * X.At(i, j)
		}
		out.SetVec(i, v)
	}
	return out, nil
}

// Coefficients returns the fitted per-feature weights.
func (lr *LinearRegression) Coefficients() []float64 {
	return append([]float64(nil), lr.Weights...)
}

// Score returns R² on (X, y).
func (lr *LinearRegression) Score(X mat.Matrix, y *mat.VecDense) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return r2Of(y, pred), nil
}

// Params returns the tunable hyperparameters; OLS has none.
func (lr *LinearRegression) Params() map[string]float64 {
	return map[string]float64{}
}

// SetParams replaces hyperparameters; OLS accepts none.
func (lr *LinearRegression) SetParams(params map[string]float64) error {
	for name := range params {
		return errors.NewValueError("LinearRegression.SetParams", "unknown parameter "+name)
	}
	return nil
}

// Ridge is an L2-regularized least-squares regressor solved in closed form.
// The intercept is not penalized. Fields are exported for gob encoding.
type Ridge struct {
	State *model.StateManager

	Alpha     float64
	Weights   []float64
	Intercept float64
	NFeatures int

	sampleWeights []float64
}

// NewRidge creates a ridge regressor with the given regularization strength.
func NewRidge(alpha float64) *Ridge {
	return &Ridge{State: model.NewStateManager(), Alpha: alpha}
}

// Name returns the estimator's display name.
func (rd *Ridge) Name() string { return "Ridge" }

// Clone returns an unfitted copy with the same alpha.
func (rd *Ridge) Clone() model.Estimator {
	return NewRidge(rd.Alpha)
}

// SetSampleWeights sets per-sample weights for the next Fit call.
func (rd *Ridge) SetSampleWeights(w []float64) {
	rd.sampleWeights = w
}

// Fit solves (XᵀX + αI)β = Xᵀy with the intercept column unpenalized.
func (rd *Ridge) Fit(X mat.Matrix, y *mat.VecDense) error {
	r, c, err := validateFitInputs("Ridge.Fit", X, y)
	if err != nil {
		return err
	}

	X1 := addIntercept(X)
	target := y
	if rd.sampleWeights != nil {
		X1, target, err = applyRowWeights(X1, y, rd.sampleWeights)
		if err != nil {
			return err
		}
	}

	var xtx mat.Dense
	xtx.Mul(X1.T(), X1)
	for j := 1; j <= c; j++ {
		xtx.Set(j, j, xtx.At(j, j)+rd.Alpha)
	}

	var xty mat.VecDense
	xty.MulVec(X1.T(), target)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return errors.Wrap(errors.ErrSingularMatrix, "Ridge.Fit")
	}

	rd.Intercept = beta.AtVec(0)
	rd.Weights = make([]float64, c)
	for j := 0; j < c; j++ {
		rd.Weights[j] = beta.AtVec(j + 1)
	}
	rd.NFeatures = c
	rd.State.SetDimensions(c, r)
	rd.State.SetFitted()
	return nil
}

// Predict returns Xβ + intercept per row.
func (rd *Ridge) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if err := rd.State.RequireFitted(rd.Name(), "Predict"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if c != rd.NFeatures {
		return nil, errors.NewDimensionError("Ridge.Predict", rd.NFeatures, c, 1)
	}

	out := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v := rd.Intercept
		for j := 0; j < c; j++ {
			v += rd.Weights[j] * X.At(i, j)
		}
		out.SetVec(i, v)
	}
	return out, nil
}

// Coefficients returns the fitted per-feature weights.
func (rd *Ridge) Coefficients() []float64 {
	return append([]float64(nil), rd.Weights...)
}

// Params returns the tunable hyperparameters.
func (rd *Ridge) Params() map[string]float64 {
	return map[string]float64{"alpha": rd.Alpha}
}

// SetParams replaces the named hyperparameters.
func (rd *Ridge) SetParams(params map[string]float64) error {
	for name, v := range params {
		switch name {
		case "alpha":
			rd.Alpha = v
		default:
			return errors.NewValueError("Ridge.SetParams", "unknown parameter "+name)
		}
	}
	return nil
}
