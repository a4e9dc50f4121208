package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/core/model"
	"github.com/modelpipe/modelpipe/estimator"
	"github.com/modelpipe/modelpipe/metrics"
	"github.com/modelpipe/modelpipe/pkg/errors"
)

func TestKFoldSplit(t *testing.T) {
	kf := KFold{NSplits: 3, Seed: 42}
	folds, err := kf.Split(10)
	require.NoError(t, err)
	require.Len(t, folds, 3)

	seen := make(map[int]int)
	for _, fold := range folds {
		assert.Equal(t, 10, len(fold.Train)+len(fold.Test))
		for _, i := range fold.Test {
			seen[i]++
		}
	}
	// Every row held out exactly once.
	require.Len(t, seen, 10)
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
}

func TestKFoldTooFewRows(t *testing.T) {
	kf := KFold{NSplits: 5, Seed: 1}
	_, err := kf.Split(3)
	assert.Error(t, err)

	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))
}

func TestKFoldBadSplits(t *testing.T) {
	kf := KFold{NSplits: 1, Seed: 1}
	_, err := kf.Split(10)
	assert.Error(t, err)
}

// regressionData builds y = 2*x0 with two noise columns.
func regressionData(n int) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(n, 3, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x := float64(i)
		X.Set(i, 0, x)
		X.Set(i, 1, float64((i*7)%5))
		X.Set(i, 2, float64((i*3)%4))
		y.SetVec(i, 2*x)
	}
	return X, y
}

func TestCrossValScoreLinearFit(t *testing.T) {
	X, y := regressionData(30)
	scorer, ok := metrics.Resolve("r2", "regression")
	require.True(t, ok)

	score, err := CrossValScore(func() model.Estimator {
		return estimator.NewLinearRegression()
	}, X, y, scorer, KFold{NSplits: 3, Seed: 42})
	require.NoError(t, err)
	assert.Greater(t, score, 0.99)
}

func TestCrossValScoreTargetMismatch(t *testing.T) {
	X, _ := regressionData(10)
	y := mat.NewVecDense(5, nil)
	scorer, _ := metrics.Resolve("r2", "regression")

	_, err := CrossValScore(func() model.Estimator {
		return estimator.NewLinearRegression()
	}, X, y, scorer, KFold{NSplits: 2, Seed: 1})
	assert.Error(t, err)
}

func TestRFEKeepsInformativeFeature(t *testing.T) {
	X, y := regressionData(40)

	support, err := RFE(func() model.Estimator {
		return estimator.NewLinearRegression()
	}, X, y)
	require.NoError(t, err)
	assert.Contains(t, support, 0)
	assert.Less(t, len(support), 3)
}

func TestRFEWithoutCoefficients(t *testing.T) {
	X, y := regressionData(40)

	_, err := RFE(func() model.Estimator {
		return estimator.NewKNNRegressor(3)
	}, X, y)
	assert.Error(t, err)
}

func TestRFECVKeepsInformativeFeature(t *testing.T) {
	X, y := regressionData(40)
	scorer, _ := metrics.Resolve("r2", "regression")

	support, err := RFECV(func() model.Estimator {
		return estimator.NewLinearRegression()
	}, X, y, scorer, KFold{NSplits: 3, Seed: 42})
	require.NoError(t, err)
	assert.Contains(t, support, 0)
}

func TestGridSearchRidgeAlpha(t *testing.T) {
	X, y := regressionData(30)
	scorer, _ := metrics.Resolve("r2", "regression")

	result, err := GridSearch(func() model.Estimator {
		return estimator.NewRidge(1.0)
	}, map[string][]float64{"alpha": {0.001, 1, 1000}}, X, y, scorer, KFold{NSplits: 3, Seed: 42}, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Tried)
	require.NotNil(t, result.Params)
	// Noise-free linear data: the lightest penalty wins.
	assert.Equal(t, 0.001, result.Params["alpha"])
}

func TestGridSearchIterationCap(t *testing.T) {
	X, y := regressionData(30)
	scorer, _ := metrics.Resolve("r2", "regression")

	result, err := GridSearch(func() model.Estimator {
		return estimator.NewRidge(1.0)
	}, map[string][]float64{"alpha": {0.01, 0.1, 1, 10, 100}}, X, y, scorer, KFold{NSplits: 3, Seed: 42}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Tried)
}

func TestGridSearchEmptyGrid(t *testing.T) {
	X, y := regressionData(10)
	scorer, _ := metrics.Resolve("r2", "regression")

	_, err := GridSearch(func() model.Estimator {
		return estimator.NewRidge(1.0)
	}, nil, X, y, scorer, KFold{NSplits: 2, Seed: 1}, 0)
	assert.Error(t, err)
}

func TestExpandGridDeterministicOrder(t *testing.T) {
	combos := expandGrid(map[string][]float64{
		"b": {1, 2},
		"a": {10},
	})
	require.Len(t, combos, 2)
	assert.Equal(t, map[string]float64{"a": 10, "b": 1}, combos[0])
	assert.Equal(t, map[string]float64{"a": 10, "b": 2}, combos[1])
}
