package optimize

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/modelpipe/modelpipe/core/model"
	"github.com/modelpipe/modelpipe/metrics"
	"github.com/modelpipe/modelpipe/pkg/errors"
)

// RFE recursively refits the estimator and drops the feature with the
// smallest absolute coefficient until half the features remain. The returned
// support lists the surviving column indices in ascending order.
func RFE(newEst func() model.Estimator, X mat.Matrix, y *mat.VecDense) ([]int, error) {
	_, c := X.Dims()
	if c == 0 {
		return nil, errors.ErrEmptyData
	}

	target := c / 2
	if target < 1 {
		target = 1
	}

	support := make([]int, c)
	for j := range support {
		support[j] = j
	}

	for len(support) > target {
		sub := selectColumns(X, support)
		est := newEst()
		if err := est.Fit(sub, y); err != nil {
			return nil, errors.Wrapf(err, "feature elimination fit for %s", est.Name())
		}
		coefEst, ok := est.(model.Coefficienter)
		if !ok {
			return nil, errors.NewValueError("optimize.RFE",
				"estimator does not expose coefficients")
		}
		coefs := coefEst.Coefficients()

		weakest := 0
		for j := 1; j < len(coefs); j++ {
			if math.Abs(coefs[j]) < math.Abs(coefs[weakest]) {
				weakest = j
			}
		}
		support = append(support[:weakest], support[weakest+1:]...)
	}

	sort.Ints(support)
	return support, nil
}

// RFECV ranks features and cross-validates every prefix size, keeping the
// subset with the best mean score. Estimators exposing coefficients are
// ranked by recursive elimination; the rest fall back to absolute
// correlation with the target.
func RFECV(newEst func() model.Estimator, X mat.Matrix, y *mat.VecDense, scorer metrics.Scorer, kf KFold) ([]int, error) {
	_, c := X.Dims()
	if c == 0 {
		return nil, errors.ErrEmptyData
	}

	ranked, err := rankFeatures(newEst, X, y)
	if err != nil {
		return nil, err
	}

	bestScore := math.Inf(-1)
	if !scorer.Maximize {
		bestScore = math.Inf(1)
	}
	var bestSupport []int

	for size := c; size >= 1; size-- {
		support := append([]int(nil), ranked[:size]...)
		sort.Ints(support)

		score, err := CrossValScore(newEst, selectColumns(X, support), y, scorer, kf)
		if err != nil {
			return nil, err
		}
		if better(score, bestScore, scorer.Maximize) {
			bestScore = score
			bestSupport = support
		}
	}
	return bestSupport, nil
}

func better(score, best float64, maximize bool) bool {
	if maximize {
		return score > best
	}
	return score < best
}

// rankFeatures orders column indices from strongest to weakest.
func rankFeatures(newEst func() model.Estimator, X mat.Matrix, y *mat.VecDense) ([]int, error) {
	_, c := X.Dims()

	if _, ok := newEst().(model.Coefficienter); ok {
		return rankByElimination(newEst, X, y)
	}

	// Correlation fallback for estimators without coefficients.
	r, _ := X.Dims()
	target := make([]float64, y.Len())
	for i := range target {
		target[i] = y.AtVec(i)
	}
	col := make([]float64, r)
	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, c)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		corr := stat.Correlation(col, target, nil)
		if math.IsNaN(corr) {
			corr = 0
		}
		scores[j] = scored{idx: j, score: math.Abs(corr)}
	}
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	ranked := make([]int, c)
	for i, s := range scores {
		ranked[i] = s.idx
	}
	return ranked, nil
}

// rankByElimination removes the weakest coefficient one feature at a time;
// elimination order reversed gives the strength ranking.
func rankByElimination(newEst func() model.Estimator, X mat.Matrix, y *mat.VecDense) ([]int, error) {
	_, c := X.Dims()
	support := make([]int, c)
	for j := range support {
		support[j] = j
	}

	eliminated := make([]int, 0, c)
	for len(support) > 1 {
		sub := selectColumns(X, support)
		est := newEst()
		if err := est.Fit(sub, y); err != nil {
			return nil, errors.Wrapf(err, "feature ranking fit for %s", est.Name())
		}
		coefs := est.(model.Coefficienter).Coefficients()

		weakest := 0
		for j := 1; j < len(coefs); j++ {
			if math.Abs(coefs[j]) < math.Abs(coefs[weakest]) {
				weakest = j
			}
		}
		eliminated = append(eliminated, support[weakest])
		support = append(support[:weakest], support[weakest+1:]...)
	}

	ranked := make([]int, 0, c)
	ranked = append(ranked, support[0])
	for i := len(eliminated) - 1; i >= 0; i-- {
		ranked = append(ranked, eliminated[i])
	}
	return ranked, nil
}
