package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestShuffleKeepsRowTargetPairs(t *testing.T) {
	// Column value encodes the target, so the pairing survives any permutation.
	train := table(t, []string{"x"}, [][]float64{{0}, {1}, {2}, {3}, {4}})
	y := mat.NewVecDense(5, []float64{0, 1, 2, 3, 4})

	shuffled, target, err := Shuffle(train, y, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, shuffled.Rows())
	for i := 0; i < 5; i++ {
		assert.Equal(t, shuffled.Matrix().At(i, 0), target.AtVec(i))
	}
}

func TestShuffleDeterministic(t *testing.T) {
	train := table(t, []string{"x"}, [][]float64{{0}, {1}, {2}, {3}})
	y := mat.NewVecDense(4, []float64{0, 1, 2, 3})

	a, _, err := Shuffle(train, y, 42)
	require.NoError(t, err)
	b, _, err := Shuffle(train, y, 42)
	require.NoError(t, err)
	assert.True(t, mat.Equal(a.Matrix(), b.Matrix()))
}

func TestBalanceOversamplesMinority(t *testing.T) {
	train := table(t, []string{"x"}, [][]float64{{1}, {2}, {3}, {4}, {5}})
	y := mat.NewVecDense(5, []float64{0, 0, 0, 0, 1})

	balanced, target, err := Balance(train, y, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, balanced.Rows())

	var pos, neg int
	for i := 0; i < target.Len(); i++ {
		if target.AtVec(i) == 1 {
			pos++
		} else {
			neg++
		}
	}
	assert.Equal(t, pos, neg)
}

func TestBalanceAlreadyBalanced(t *testing.T) {
	train := table(t, []string{"x"}, [][]float64{{1}, {2}})
	y := mat.NewVecDense(2, []float64{0, 1})

	balanced, _, err := Balance(train, y, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, balanced.Rows())
}

func TestBalanceSingleClass(t *testing.T) {
	train := table(t, []string{"x"}, [][]float64{{1}, {2}})
	y := mat.NewVecDense(2, []float64{1, 1})

	_, _, err := Balance(train, y, 1)
	assert.Error(t, err)
}

func TestSampleWeights(t *testing.T) {
	y := mat.NewVecDense(4, []float64{0, 0, 0, 1})

	w, err := SampleWeights(y)
	require.NoError(t, err)
	require.Len(t, w, 4)

	// 4/(2*3) for negatives, 4/(2*1) for the positive.
	assert.InDelta(t, 2.0/3.0, w[0], 1e-12)
	assert.InDelta(t, 2.0, w[3], 1e-12)

	total := 0.0
	for _, v := range w {
		total += v
	}
	assert.InDelta(t, 4.0, total, 1e-12)
}

func TestSampleWeightsNonBinary(t *testing.T) {
	y := mat.NewVecDense(2, []float64{0, 2})
	_, err := SampleWeights(y)
	assert.Error(t, err)
}
