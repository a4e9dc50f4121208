package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/pkg/errors"
)

// Binary classification metrics. Labels are 0/1; probability metrics take the
// positive-class probability. Undefined ratios (no predicted positives, no
// actual positives) fall back to 0 with a warning the way scikit-learn does.

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// Accuracy computes the share of exact label matches.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var hits float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			hits++
		}
	}
	return hits / float64(n), nil
}

func confusion(yTrue, yPred *mat.VecDense, n int) (tp, fp, fn float64) {
	for i := 0; i < n; i++ {
		switch {
		case yPred.AtVec(i) == 1 && yTrue.AtVec(i) == 1:
			tp++
		case yPred.AtVec(i) == 1 && yTrue.AtVec(i) == 0:
			fp++
		case yPred.AtVec(i) == 0 && yTrue.AtVec(i) == 1:
			fn++
		}
	}
	return tp, fp, fn
}

// Precision computes tp / (tp + fp) for the positive class.
func Precision(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Precision", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	tp, fp, _ := confusion(yTrue, yPred, n)
	if tp+fp == 0 {
		return 0, nil
	}
	return tp / (tp + fp), nil
}

// Recall computes tp / (tp + fn) for the positive class.
func Recall(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Recall", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	tp, _, fn := confusion(yTrue, yPred, n)
	if tp+fn == 0 {
		return 0, nil
	}
	return tp / (tp + fn), nil
}

// F1 computes the harmonic mean of precision and recall.
func F1(yTrue, yPred *mat.VecDense) (float64, error) {
	p, err := Precision(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	r, err := Recall(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if p+r == 0 {
		return 0, nil
	}
	return 2 * p * r / (p + r), nil
}

// ROCAUC computes the area under the ROC curve from positive-class
// probabilities, by the rank-sum formulation with midrank tie handling.
func ROCAUC(yTrue, yProba *mat.VecDense) (float64, error) {
	n, err := checkPair("ROCAUC", yTrue, yProba)
	if err != nil {
		return 0, err
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return yProba.AtVec(order[a]) < yProba.AtVec(order[b])
	})

	// Midranks over probability ties.
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && yProba.AtVec(order[j]) == yProba.AtVec(order[i]) {
			j++
		}
		mid := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = mid
		}
		i = j
	}

	var nPos, nNeg, rankSum float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			nPos++
			rankSum += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, errors.NewValueError("ROCAUC", "only one class present")
	}
	return (rankSum - nPos*(nPos+1)/2) / (nPos * nNeg), nil
}

// LogLoss computes the negative log likelihood of the labels under the
// positive-class probabilities. Probabilities are clipped away from 0 and 1.
func LogLoss(yTrue, yProba *mat.VecDense) (float64, error) {
	n, err := checkPair("LogLoss", yTrue, yProba)
	if err != nil {
		return 0, err
	}

	const eps = 1e-15
	var sum float64
	for i := 0; i < n; i++ {
		p := math.Min(math.Max(yProba.AtVec(i), eps), 1-eps)
		if yTrue.AtVec(i) == 1 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}
	return sum / float64(n), nil
}
