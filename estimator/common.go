package estimator

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/core/parallel"
	"github.com/modelpipe/modelpipe/pkg/errors"
)

// Row count below which row-parallel loops run sequentially.
const parallelThreshold = 1000

// addIntercept returns [1, X]: X with a leading column of ones.
func addIntercept(X mat.Matrix) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(r, c+1, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			out.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				out.Set(i, j+1, X.At(i, j))
			}
		}
	})
	return out
}

// applyRowWeights scales each row of X and each entry of y by sqrt(w), which
// turns an ordinary least-squares solve into a weighted one.
func applyRowWeights(X *mat.Dense, y *mat.VecDense, w []float64) (*mat.Dense, *mat.VecDense, error) {
	r, c := X.Dims()
	if len(w) != r {
		return nil, nil, errors.NewDimensionError("estimator.applyRowWeights", r, len(w), 0)
	}
	outX := mat.NewDense(r, c, nil)
	outY := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		s := math.Sqrt(w[i])
		for j := 0; j < c; j++ {
			outX.Set(i, j, X.At(i, j)*s)
		}
		outY.SetVec(i, y.AtVec(i)*s)
	}
	return outX, outY, nil
}

// validateFitInputs checks the common Fit preconditions.
func validateFitInputs(op string, X mat.Matrix, y *mat.VecDense) (rows, cols int, err error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return 0, 0, errors.Wrap(errors.ErrEmptyData, op)
	}
	if y == nil || y.Len() != r {
		got := 0
		if y != nil {
			got = y.Len()
		}
		return 0, 0, errors.NewDimensionError(op, r, got, 0)
	}
	return r, c, nil
}

// validateBinaryTarget checks that every label is 0 or 1.
func validateBinaryTarget(op string, y *mat.VecDense) error {
	for i := 0; i < y.Len(); i++ {
		v := y.AtVec(i)
		if v != 0 && v != 1 {
			return errors.NewValueError(op, "labels must be 0 or 1")
		}
	}
	return nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// accuracyOf is the default classifier score.
func accuracyOf(yTrue, yPred *mat.VecDense) float64 {
	var hits float64
	for i := 0; i < yTrue.Len(); i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			hits++
		}
	}
	return hits / float64(yTrue.Len())
}

// r2Of is the default regressor score.
func r2Of(yTrue, yPred *mat.VecDense) float64 {
	var mean float64
	n := yTrue.Len()
	for i := 0; i < n; i++ {
		mean += yTrue.AtVec(i)
	}
	mean /= float64(n)

	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		d := yTrue.AtVec(i) - yPred.AtVec(i)
		ssRes += d * d
		t := yTrue.AtVec(i) - mean
		ssTot += t * t
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
