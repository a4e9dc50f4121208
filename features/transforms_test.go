package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/frame"
)

func table(t *testing.T, names []string, rows [][]float64) *frame.Table {
	t.Helper()
	tbl, err := frame.FromRows(names, rows)
	require.NoError(t, err)
	return tbl
}

func TestCreateFeaturesStandardizes(t *testing.T) {
	tbl := table(t, []string{"a", "b"}, [][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
		{4, 40},
	})

	out, err := CreateFeatures(tbl)
	require.NoError(t, err)
	assert.Equal(t, tbl.Rows(), out.Rows())
	assert.Equal(t, tbl.Names(), out.Names())

	col := make([]float64, out.Rows())
	for j := 0; j < out.Cols(); j++ {
		mat.Col(col, j, out.Matrix())
		sum := 0.0
		for _, v := range col {
			sum += v
		}
		assert.InDelta(t, 0, sum/float64(len(col)), 1e-10)
	}
}

func TestCreateFeaturesImputesNaN(t *testing.T) {
	tbl := table(t, []string{"a"}, [][]float64{
		{1}, {math.NaN()}, {3}, {5},
	})

	out, err := CreateFeatures(tbl)
	require.NoError(t, err)
	for i := 0; i < out.Rows(); i++ {
		assert.False(t, math.IsNaN(out.Matrix().At(i, 0)))
	}
}

func TestCreateInteractions(t *testing.T) {
	tbl := table(t, []string{"a", "b", "c"}, [][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})

	out, err := CreateInteractions(tbl)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "a*b", "a*c", "b*c"}, out.Names())
	assert.Equal(t, 2, out.Rows())

	ab, err := out.Column("a*b")
	require.NoError(t, err)
	assert.Equal(t, 2.0, ab.AtVec(0))
	assert.Equal(t, 20.0, ab.AtVec(1))
}

func TestCreateInteractionsSingleColumn(t *testing.T) {
	tbl := table(t, []string{"a"}, [][]float64{{1}, {2}})
	out, err := CreateInteractions(tbl)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, out.Names())
}

func TestRemoveLowVariance(t *testing.T) {
	tbl := table(t, []string{"flat", "varies"}, [][]float64{
		{5, 1},
		{5, 9},
		{5, 4},
	})

	out, err := RemoveLowVariance(tbl, 0.0)
	require.NoError(t, err)
	assert.Equal(t, []string{"varies"}, out.Names())
	assert.Equal(t, 3, out.Rows())
}

func TestRemoveLowVarianceKeepsOneColumn(t *testing.T) {
	tbl := table(t, []string{"a", "b"}, [][]float64{
		{1, 1},
		{2, 5},
	})

	out, err := RemoveLowVariance(tbl, 1e9)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Cols())
	assert.Equal(t, []string{"b"}, out.Names())
}

func TestSelectFeatures(t *testing.T) {
	// "signal" tracks the target exactly; "noise" is uncorrelated.
	train := table(t, []string{"noise", "signal"}, [][]float64{
		{3, 0},
		{1, 1},
		{4, 0},
		{1, 1},
		{5, 0},
		{9, 1},
	})
	test := table(t, []string{"noise", "signal"}, [][]float64{
		{2, 0},
		{6, 1},
	})
	y := mat.NewVecDense(6, []float64{0, 1, 0, 1, 0, 1})

	selTrain, selTest, err := SelectFeatures(train, test, y, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"signal"}, selTrain.Names())
	assert.Equal(t, []string{"signal"}, selTest.Names())
	assert.Equal(t, 6, selTrain.Rows())
	assert.Equal(t, 2, selTest.Rows())
}

func TestSelectFeaturesFullPercentileKeepsAll(t *testing.T) {
	train := table(t, []string{"a", "b"}, [][]float64{{1, 2}, {3, 4}})
	test := table(t, []string{"a", "b"}, [][]float64{{5, 6}})
	y := mat.NewVecDense(2, []float64{0, 1})

	selTrain, _, err := SelectFeatures(train, test, y, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, selTrain.Names())
}

func TestSelectFeaturesBadPercentile(t *testing.T) {
	train := table(t, []string{"a"}, [][]float64{{1}, {2}})
	test := table(t, []string{"a"}, [][]float64{{3}})
	y := mat.NewVecDense(2, []float64{0, 1})

	_, _, err := SelectFeatures(train, test, y, 0)
	assert.Error(t, err)
}
