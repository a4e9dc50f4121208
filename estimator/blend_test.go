package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/core/model"
)

var (
	_ model.Estimator            = (*Blend)(nil)
	_ model.ProbabilityPredictor = (*Blend)(nil)
)

func TestBlendRegression(t *testing.T) {
	// y = 2*x0, with a noise column that only the second base sees.
	X := mat.NewDense(10, 2, nil)
	y := mat.NewVecDense(10, nil)
	for i := 0; i < 10; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64((i*3)%5))
		y.SetVec(i, 2*float64(i))
	}

	base1 := NewLinearRegression()
	require.NoError(t, base1.Fit(X.Slice(0, 10, 0, 1), y))
	base2 := NewLinearRegression()
	require.NoError(t, base2.Fit(X, y))

	blend, err := NewBlend(
		[]model.Estimator{base1, base2},
		[][]int{{0}, nil},
		[]bool{false, false},
		NewLinearRegression(),
	)
	require.NoError(t, err)
	require.NoError(t, blend.Fit(X, y))

	pred, err := blend.Predict(mat.NewDense(1, 2, []float64{6, 1}))
	require.NoError(t, err)
	assert.InDelta(t, 12, pred.AtVec(0), 1e-6)
}

func TestBlendClassificationProba(t *testing.T) {
	X, y := separableData()

	base1 := NewLogisticRegression()
	require.NoError(t, base1.Fit(X, y))
	base2 := NewKNNClassifier(3)
	require.NoError(t, base2.Fit(X, y))

	blend, err := NewBlend(
		[]model.Estimator{base1, base2},
		[][]int{nil, nil},
		[]bool{true, true},
		NewLogisticRegression(),
	)
	require.NoError(t, err)
	require.NoError(t, blend.Fit(X, y))

	proba, err := blend.PredictProba(X)
	require.NoError(t, err)
	for i := 0; i < proba.Len(); i++ {
		v := proba.AtVec(i)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}

	pred, err := blend.Predict(X)
	require.NoError(t, err)
	correct := 0
	for i := 0; i < pred.Len(); i++ {
		if pred.AtVec(i) == y.AtVec(i) {
			correct++
		}
	}
	assert.Greater(t, float64(correct)/float64(pred.Len()), 0.9)
}

func TestBlendNeedsTwoBases(t *testing.T) {
	base := NewLinearRegression()
	_, err := NewBlend([]model.Estimator{base}, [][]int{nil}, []bool{false}, NewLinearRegression())
	assert.Error(t, err)
}

func TestBlendUnfittedPredict(t *testing.T) {
	blend, err := NewBlend(
		[]model.Estimator{NewLinearRegression(), NewRidge(1)},
		[][]int{nil, nil},
		[]bool{false, false},
		NewLinearRegression(),
	)
	require.NoError(t, err)

	_, err = blend.Predict(mat.NewDense(1, 1, []float64{1}))
	assert.Error(t, err)
}
