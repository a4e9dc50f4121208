package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/core/model"
)

// separableData is linearly separable on the first feature.
func separableData() (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(8, 2, []float64{
		-2, 0.1,
		-1.5, -0.2,
		-1, 0.3,
		-0.5, -0.1,
		0.5, 0.2,
		1, -0.3,
		1.5, 0.1,
		2, -0.2,
	})
	y := mat.NewVecDense(8, []float64{0, 0, 0, 0, 1, 1, 1, 1})
	return X, y
}

func TestLogisticRegressionSeparable(t *testing.T) {
	X, y := separableData()

	lr := NewLogisticRegression(WithMaxIter(2000))
	require.NoError(t, lr.Fit(X, y))

	pred, err := lr.Predict(X)
	require.NoError(t, err)
	for i := 0; i < y.Len(); i++ {
		assert.Equal(t, y.AtVec(i), pred.AtVec(i), "row %d", i)
	}

	score, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestLogisticRegressionProbaOrdering(t *testing.T) {
	X, y := separableData()
	lr := NewLogisticRegression(WithMaxIter(2000))
	require.NoError(t, lr.Fit(X, y))

	proba, err := lr.PredictProba(mat.NewDense(2, 2, []float64{-3, 0, 3, 0}))
	require.NoError(t, err)
	assert.Less(t, proba.AtVec(0), 0.5)
	assert.Greater(t, proba.AtVec(1), 0.5)
}

func TestLogisticRegressionRejectsNonBinary(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewVecDense(3, []float64{0, 1, 2})

	lr := NewLogisticRegression()
	assert.Error(t, lr.Fit(X, y))
}

func TestLogisticRegressionDeterministic(t *testing.T) {
	X, y := separableData()

	a := NewLogisticRegression()
	require.NoError(t, a.Fit(X, y))
	b := NewLogisticRegression()
	require.NoError(t, b.Fit(X, y))

	assert.Equal(t, a.Weights, b.Weights)
	assert.Equal(t, a.Intercept, b.Intercept)
}

func TestGaussianNB(t *testing.T) {
	X, y := separableData()

	nb := NewGaussianNB()
	require.NoError(t, nb.Fit(X, y))

	pred, err := nb.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y.AtVec(0), pred.AtVec(0))
	assert.Equal(t, y.AtVec(7), pred.AtVec(7))

	proba, err := nb.PredictProba(X)
	require.NoError(t, err)
	for i := 0; i < proba.Len(); i++ {
		assert.GreaterOrEqual(t, proba.AtVec(i), 0.0)
		assert.LessOrEqual(t, proba.AtVec(i), 1.0)
	}
}

func TestGaussianNBOneClass(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewVecDense(3, []float64{1, 1, 1})

	nb := NewGaussianNB()
	assert.Error(t, nb.Fit(X, y))
}

func TestCalibrate(t *testing.T) {
	X, y := separableData()
	lr := NewLogisticRegression(WithMaxIter(2000))
	require.NoError(t, lr.Fit(X, y))

	cal, err := Calibrate(lr, X, y)
	require.NoError(t, err)

	proba, err := cal.PredictProba(X)
	require.NoError(t, err)
	pred, err := cal.Predict(X)
	require.NoError(t, err)

	for i := 0; i < y.Len(); i++ {
		assert.GreaterOrEqual(t, proba.AtVec(i), 0.0)
		assert.LessOrEqual(t, proba.AtVec(i), 1.0)
		assert.Equal(t, y.AtVec(i), pred.AtVec(i))
	}
}

func TestCalibrateRequiresProbabilities(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{0, 1, 2})
	y := mat.NewVecDense(3, []float64{0, 1, 1})

	lin := NewLinearRegression()
	require.NoError(t, lin.Fit(X, y))

	_, err := Calibrate(lin, X, y)
	assert.Error(t, err)
}

var _ model.ProbabilityPredictor = (*LogisticRegression)(nil)
var _ model.ProbabilityPredictor = (*GaussianNB)(nil)
var _ model.ProbabilityPredictor = (*PlattCalibrator)(nil)
var _ model.Scorer = (*GaussianNB)(nil)
