// Package optimize provides cross-validation, recursive feature elimination
// and grid search over estimator parameter grids.
package optimize

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/core/model"
	"github.com/modelpipe/modelpipe/metrics"
	"github.com/modelpipe/modelpipe/pkg/errors"
)

// KFold yields deterministic shuffled train/test index splits.
type KFold struct {
	NSplits int
	Seed    int64
}

// Fold holds the row indices of one cross-validation split.
type Fold struct {
	Train []int
	Test  []int
}

// Split partitions n rows into NSplits folds. Rows are shuffled with the
// seed first so ordered inputs do not produce degenerate folds.
func (k KFold) Split(n int) ([]Fold, error) {
	if k.NSplits < 2 {
		return nil, errors.NewValueError("optimize.KFold", "number of splits must be at least 2")
	}
	if n < k.NSplits {
		return nil, errors.NewValueError("optimize.KFold", "more splits than rows")
	}

	rng := rand.New(rand.NewSource(k.Seed))
	perm := rng.Perm(n)

	folds := make([]Fold, k.NSplits)
	base := n / k.NSplits
	extra := n % k.NSplits
	start := 0
	for f := 0; f < k.NSplits; f++ {
		size := base
		if f < extra {
			size++
		}
		test := perm[start : start+size]
		train := make([]int, 0, n-size)
		train = append(train, perm[:start]...)
		train = append(train, perm[start+size:]...)
		folds[f] = Fold{Train: train, Test: test}
		start += size
	}
	return folds, nil
}

// CrossValScore fits a fresh estimator per fold and returns the mean score
// over the held-out rows.
func CrossValScore(newEst func() model.Estimator, X mat.Matrix, y *mat.VecDense, scorer metrics.Scorer, kf KFold) (float64, error) {
	r, _ := X.Dims()
	if y.Len() != r {
		return 0, errors.NewDimensionError("optimize.CrossValScore", r, y.Len(), 0)
	}

	folds, err := kf.Split(r)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, fold := range folds {
		trainX, trainY := takeRows(X, y, fold.Train)
		testX, testY := takeRows(X, y, fold.Test)

		est := newEst()
		if err := est.Fit(trainX, trainY); err != nil {
			return 0, errors.Wrapf(err, "cross-validation fold fit for %s", est.Name())
		}

		pred, err := foldPredictions(est, testX, scorer)
		if err != nil {
			return 0, err
		}
		score, err := scorer.Fn(testY, pred)
		if err != nil {
			return 0, err
		}
		total += score
	}
	return total / float64(len(folds)), nil
}

func foldPredictions(est model.Estimator, X mat.Matrix, scorer metrics.Scorer) (*mat.VecDense, error) {
	if scorer.NeedsProba {
		prob, ok := est.(model.ProbabilityPredictor)
		if !ok {
			return nil, errors.NewValueError("optimize.CrossValScore",
				"scorer needs probabilities but estimator cannot produce them")
		}
		return prob.PredictProba(X)
	}
	return est.Predict(X)
}

func takeRows(X mat.Matrix, y *mat.VecDense, idx []int) (*mat.Dense, *mat.VecDense) {
	_, c := X.Dims()
	outX := mat.NewDense(len(idx), c, nil)
	outY := mat.NewVecDense(len(idx), nil)
	for i, src := range idx {
		for j := 0; j < c; j++ {
			outX.Set(i, j, X.At(src, j))
		}
		outY.SetVec(i, y.AtVec(src))
	}
	return outX, outY
}

func selectColumns(X mat.Matrix, cols []int) *mat.Dense {
	r, _ := X.Dims()
	out := mat.NewDense(r, len(cols), nil)
	for i := 0; i < r; i++ {
		for j, src := range cols {
			out.Set(i, j, X.At(i, src))
		}
	}
	return out
}
