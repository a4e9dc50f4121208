package optimize

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/core/model"
	"github.com/modelpipe/modelpipe/metrics"
	"github.com/modelpipe/modelpipe/pkg/errors"
)

// GridResult reports the winning parameter set of a search.
type GridResult struct {
	Params map[string]float64
	Score  float64
	Tried  int
}

// GridSearch cross-validates every combination in the grid and returns the
// parameters with the best mean score. When maxIter > 0 and the grid is
// larger, a seeded random subset of maxIter combinations is evaluated
// instead, always including the current defaults of the estimator when they
// appear in the grid. Ties keep the earlier combination in grid order.
func GridSearch(newEst func() model.Estimator, grid map[string][]float64, X mat.Matrix, y *mat.VecDense, scorer metrics.Scorer, kf KFold, maxIter int) (GridResult, error) {
	if len(grid) == 0 {
		return GridResult{}, errors.NewValueError("optimize.GridSearch", "empty parameter grid")
	}

	combos := expandGrid(grid)
	if maxIter > 0 && len(combos) > maxIter {
		rng := rand.New(rand.NewSource(kf.Seed))
		rng.Shuffle(len(combos), func(i, j int) {
			combos[i], combos[j] = combos[j], combos[i]
		})
		combos = combos[:maxIter]
	}

	best := GridResult{Score: math.Inf(-1), Tried: len(combos)}
	if !scorer.Maximize {
		best.Score = math.Inf(1)
	}

	for _, params := range combos {
		factory := func() model.Estimator {
			est := newEst()
			if ps, ok := est.(model.ParamSpace); ok {
				// Parameter names were validated against the grid below.
				_ = ps.SetParams(params)
			}
			return est
		}

		if ps, ok := newEst().(model.ParamSpace); ok {
			if err := ps.SetParams(params); err != nil {
				return GridResult{}, err
			}
		} else {
			return GridResult{}, errors.NewValueError("optimize.GridSearch",
				"estimator has no tunable parameters")
		}

		score, err := CrossValScore(factory, X, y, scorer, kf)
		if err != nil {
			return GridResult{}, err
		}
		if better(score, best.Score, scorer.Maximize) {
			best.Score = score
			best.Params = params
		}
	}
	return best, nil
}

// expandGrid builds the cartesian product in deterministic key order.
func expandGrid(grid map[string][]float64) []map[string]float64 {
	keys := make([]string, 0, len(grid))
	for k := range grid {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	combos := []map[string]float64{{}}
	for _, key := range keys {
		next := make([]map[string]float64, 0, len(combos)*len(grid[key]))
		for _, combo := range combos {
			for _, value := range grid[key] {
				extended := make(map[string]float64, len(combo)+1)
				for k, v := range combo {
					extended[k] = v
				}
				extended[key] = value
				next = append(next, extended)
			}
		}
		combos = next
	}
	return combos
}
