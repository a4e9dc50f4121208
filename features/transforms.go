// Package features implements the feature-engineering transforms the data
// pipeline applies to the unified train+test table, and the shuffling and
// sampling steps of the model pipeline. Transforms never change the row
// count; the pipeline enforces that invariant after every call.
package features

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/modelpipe/modelpipe/frame"
	"github.com/modelpipe/modelpipe/pkg/errors"
)

// CreateFeatures derives the base feature set from the raw columns: missing
// values are imputed with the column median and every column is standardized.
// Statistics are computed over the whole unified table so train and test see
// identical transforms.
func CreateFeatures(t *frame.Table) (*frame.Table, error) {
	r := t.Rows()
	c := t.Cols()
	data := mat.NewDense(r, c, nil)

	for j := 0; j < c; j++ {
		col := make([]float64, r)
		mat.Col(col, j, t.Matrix())

		med := median(col)
		for i := range col {
			if math.IsNaN(col[i]) {
				col[i] = med
			}
		}

		mean, std := stat.MeanStdDev(col, nil)
		if std < 1e-8 || math.IsNaN(std) {
			std = 1.0
		}
		for i := range col {
			data.Set(i, j, (col[i]-mean)/std)
		}
	}

	return frame.New(t.Names(), data)
}

func median(values []float64) float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return 0
	}
	sort.Float64s(clean)
	mid := len(clean) / 2
	if len(clean)%2 == 0 {
		return (clean[mid-1] + clean[mid]) / 2
	}
	return clean[mid]
}

// CreateInteractions appends pairwise product columns for every feature pair,
// named "a*b". The input columns are kept.
func CreateInteractions(t *frame.Table) (*frame.Table, error) {
	c := t.Cols()
	if c < 2 {
		return t.Clone(), nil
	}
	r := t.Rows()
	names := t.Names()

	nPairs := c * (c - 1) / 2
	pairNames := make([]string, 0, nPairs)
	products := mat.NewDense(r, nPairs, nil)

	k := 0
	for a := 0; a < c; a++ {
		for b := a + 1; b < c; b++ {
			pairNames = append(pairNames, fmt.Sprintf("%s*%s", names[a], names[b]))
			for i := 0; i < r; i++ {
				products.Set(i, k, t.Matrix().At(i, a)*t.Matrix().At(i, b))
			}
			k++
		}
	}

	return t.AppendColumns(pairNames, products)
}

// RemoveLowVariance drops columns whose variance over the unified table is at
// or below the threshold. The decision is global across train+test so both
// sides retain identical columns. At least one column always survives.
func RemoveLowVariance(t *frame.Table, threshold float64) (*frame.Table, error) {
	r := t.Rows()
	keep := make([]int, 0, t.Cols())
	col := make([]float64, r)

	for j := 0; j < t.Cols(); j++ {
		mat.Col(col, j, t.Matrix())
		if stat.Variance(col, nil) > threshold {
			keep = append(keep, j)
		}
	}

	if len(keep) == 0 {
		// Keep the single highest-variance column rather than emptying
		// the table.
		best, bestVar := 0, math.Inf(-1)
		for j := 0; j < t.Cols(); j++ {
			mat.Col(col, j, t.Matrix())
			if v := stat.Variance(col, nil); v > bestVar {
				best, bestVar = j, v
			}
		}
		keep = []int{best}
	}

	return t.Select(keep)
}

// SelectFeatures performs univariate selection: columns are ranked by the
// absolute Pearson correlation of the train rows with the target and the top
// percentile share is kept on both train and test. Ties and degenerate
// correlations rank by original column order.
func SelectFeatures(train, test *frame.Table, y *mat.VecDense, percentile int) (*frame.Table, *frame.Table, error) {
	if !train.SameColumns(test) {
		return nil, nil, errors.NewShapeMismatchError("features.SelectFeatures",
			train.Rows(), train.Cols(), test.Rows(), test.Cols())
	}
	if y == nil || y.Len() != train.Rows() {
		got := 0
		if y != nil {
			got = y.Len()
		}
		return nil, nil, errors.NewDimensionError("features.SelectFeatures", train.Rows(), got, 0)
	}
	if percentile < 1 || percentile > 100 {
		return nil, nil, errors.NewValueError("features.SelectFeatures", "percentile must be in [1, 100]")
	}

	c := train.Cols()
	nKeep := c * percentile / 100
	if nKeep < 1 {
		nKeep = 1
	}
	if nKeep >= c {
		return train.Clone(), test.Clone(), nil
	}

	target := make([]float64, y.Len())
	for i := range target {
		target[i] = y.AtVec(i)
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, c)
	col := make([]float64, train.Rows())
	for j := 0; j < c; j++ {
		mat.Col(col, j, train.Matrix())
		corr := stat.Correlation(col, target, nil)
		if math.IsNaN(corr) {
			corr = 0
		}
		scores[j] = scored{idx: j, score: math.Abs(corr)}
	}
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	keep := make([]int, nKeep)
	for i := 0; i < nKeep; i++ {
		keep[i] = scores[i].idx
	}
	sort.Ints(keep)

	selTrain, err := train.Select(keep)
	if err != nil {
		return nil, nil, err
	}
	selTest, err := test.Select(keep)
	if err != nil {
		return nil, nil, err
	}
	return selTrain, selTest, nil
}
