package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestKNNClassifier(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{0, 0.1, 0.2, 10, 10.1, 10.2})
	y := mat.NewVecDense(6, []float64{0, 0, 0, 1, 1, 1})

	knn := NewKNNClassifier(3)
	require.NoError(t, knn.Fit(X, y))

	pred, err := knn.Predict(mat.NewDense(2, 1, []float64{0.05, 10.05}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.AtVec(0))
	assert.Equal(t, 1.0, pred.AtVec(1))

	proba, err := knn.PredictProba(mat.NewDense(1, 1, []float64{10.05}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, proba.AtVec(0))
}

func TestKNNRegressor(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 10, 11})
	y := mat.NewVecDense(4, []float64{0, 2, 20, 22})

	knn := NewKNNRegressor(2)
	require.NoError(t, knn.Fit(X, y))

	pred, err := knn.Predict(mat.NewDense(1, 1, []float64{0.5}))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, pred.AtVec(0), 1e-9)
}

func TestKNNKExceedsRows(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{0, 1})
	y := mat.NewVecDense(2, []float64{0, 1})

	knn := NewKNNClassifier(5)
	assert.Error(t, knn.Fit(X, y))
}

func TestKNNParams(t *testing.T) {
	knn := NewKNNRegressor(5)
	assert.Equal(t, map[string]float64{"k": 5}, knn.Params())

	require.NoError(t, knn.SetParams(map[string]float64{"k": 3}))
	assert.Equal(t, 3, knn.K)

	assert.Error(t, knn.SetParams(map[string]float64{"k": 0}))
	assert.Error(t, knn.SetParams(map[string]float64{"radius": 2}))
}
