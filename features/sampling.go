package features

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/frame"
	"github.com/modelpipe/modelpipe/pkg/errors"
)

// Shuffle permutes the train rows and target together using the run seed.
func Shuffle(train *frame.Table, y *mat.VecDense, seed int64) (*frame.Table, *mat.VecDense, error) {
	if y.Len() != train.Rows() {
		return nil, nil, errors.NewDimensionError("features.Shuffle", train.Rows(), y.Len(), 0)
	}
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(train.Rows())

	shuffled, err := train.TakeRows(perm)
	if err != nil {
		return nil, nil, err
	}
	target := mat.NewVecDense(y.Len(), nil)
	for i, src := range perm {
		target.SetVec(i, y.AtVec(src))
	}
	return shuffled, target, nil
}

// Balance oversamples the minority class by duplicating randomly chosen
// minority rows until both classes have equal counts. Binary targets only.
func Balance(train *frame.Table, y *mat.VecDense, seed int64) (*frame.Table, *mat.VecDense, error) {
	if y.Len() != train.Rows() {
		return nil, nil, errors.NewDimensionError("features.Balance", train.Rows(), y.Len(), 0)
	}

	var pos, neg []int
	for i := 0; i < y.Len(); i++ {
		switch y.AtVec(i) {
		case 1:
			pos = append(pos, i)
		case 0:
			neg = append(neg, i)
		default:
			return nil, nil, errors.NewValueError("features.Balance", "target values must be 0 or 1")
		}
	}
	if len(pos) == 0 || len(neg) == 0 {
		return nil, nil, errors.NewValueError("features.Balance", "both classes must be present")
	}
	if len(pos) == len(neg) {
		return train.Clone(), mat.VecDenseCopyOf(y), nil
	}

	minority, deficit := pos, len(neg)-len(pos)
	if len(neg) < len(pos) {
		minority, deficit = neg, len(pos)-len(neg)
	}

	rng := rand.New(rand.NewSource(seed))
	idx := make([]int, 0, train.Rows()+deficit)
	for i := 0; i < train.Rows(); i++ {
		idx = append(idx, i)
	}
	for i := 0; i < deficit; i++ {
		idx = append(idx, minority[rng.Intn(len(minority))])
	}

	balanced, err := train.TakeRows(idx)
	if err != nil {
		return nil, nil, err
	}
	target := mat.NewVecDense(len(idx), nil)
	for i, src := range idx {
		target.SetVec(i, y.AtVec(src))
	}
	return balanced, target, nil
}

// SampleWeights returns balanced per-row weights n/(2*count(class)) for a
// binary target, so each class contributes equally to the fit.
func SampleWeights(y *mat.VecDense) ([]float64, error) {
	n := y.Len()
	var nPos, nNeg int
	for i := 0; i < n; i++ {
		switch y.AtVec(i) {
		case 1:
			nPos++
		case 0:
			nNeg++
		default:
			return nil, errors.NewValueError("features.SampleWeights", "target values must be 0 or 1")
		}
	}
	if nPos == 0 || nNeg == 0 {
		return nil, errors.NewValueError("features.SampleWeights", "both classes must be present")
	}

	wPos := float64(n) / (2 * float64(nPos))
	wNeg := float64(n) / (2 * float64(nNeg))
	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		if y.AtVec(i) == 1 {
			weights[i] = wPos
		} else {
			weights[i] = wNeg
		}
	}
	return weights, nil
}
