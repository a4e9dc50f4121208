package estimator

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/core/model"
	"github.com/modelpipe/modelpipe/core/parallel"
	"github.com/modelpipe/modelpipe/pkg/errors"
)

// KNNBase memorizes the training set and answers nearest-neighbor queries by
// Euclidean distance. The training rows are stored row-major in a plain
// slice so the fitted state survives gob round trips.
type KNNBase struct {
	State *model.StateManager

	K         int
	TrainX    []float64
	TrainY    []float64
	NFeatures int
}

func newKNNBase(k int) KNNBase {
	if k < 1 {
		k = 5
	}
	return KNNBase{State: model.NewStateManager(), K: k}
}

func (kb *KNNBase) fit(op string, X mat.Matrix, y *mat.VecDense) error {
	r, c, err := validateFitInputs(op, X, y)
	if err != nil {
		return err
	}
	if kb.K > r {
		return errors.NewValueError(op, "k exceeds the number of training rows")
	}

	kb.TrainX = make([]float64, r*c)
	kb.TrainY = make([]float64, r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			kb.TrainX[i*c+j] = X.At(i, j)
		}
		kb.TrainY[i] = y.AtVec(i)
	}
	kb.NFeatures = c
	kb.State.SetDimensions(c, r)
	kb.State.SetFitted()
	return nil
}

// neighborValues returns, for each query row, the target values of its K
// nearest training rows. Query rows are processed in parallel.
func (kb *KNNBase) neighborValues(op string, X mat.Matrix) ([][]float64, error) {
	r, c := X.Dims()
	if c != kb.NFeatures {
		return nil, errors.NewDimensionError(op, kb.NFeatures, c, 1)
	}
	nTrain := len(kb.TrainY)

	out := make([][]float64, r)
	parallel.ParallelizeWithThreshold(r, 100, func(start, end int) {
		type distIdx struct {
			dist float64
			idx  int
		}
		for i := start; i < end; i++ {
			dists := make([]distIdx, nTrain)
			for t := 0; t < nTrain; t++ {
				var sum float64
				for j := 0; j < c; j++ {
					d := X.At(i, j) - kb.TrainX[t*c+j]
					sum += d * d
				}
				dists[t] = distIdx{dist: math.Sqrt(sum), idx: t}
			}
			sort.Slice(dists, func(a, b int) bool {
				if dists[a].dist != dists[b].dist {
					return dists[a].dist < dists[b].dist
				}
				return dists[a].idx < dists[b].idx
			})
			vals := make([]float64, kb.K)
			for n := 0; n < kb.K; n++ {
				vals[n] = kb.TrainY[dists[n].idx]
			}
			out[i] = vals
		}
	})
	return out, nil
}

func (kb *KNNBase) params() map[string]float64 {
	return map[string]float64{"k": float64(kb.K)}
}

func (kb *KNNBase) setParams(op string, params map[string]float64) error {
	for name, v := range params {
		switch name {
		case "k":
			if v < 1 {
				return errors.NewValueError(op, "k must be at least 1")
			}
			kb.K = int(v)
		default:
			return errors.NewValueError(op, "unknown parameter "+name)
		}
	}
	return nil
}

// KNNClassifier is a k-nearest-neighbors majority-vote classifier.
type KNNClassifier struct {
	KNNBase
}

// NewKNNClassifier creates a classifier voting over the k nearest rows.
func NewKNNClassifier(k int) *KNNClassifier {
	return &KNNClassifier{KNNBase: newKNNBase(k)}
}

// Name returns the estimator's display name.
func (kc *KNNClassifier) Name() string { return "KNNClassifier" }

// Clone returns an unfitted copy with the same k.
func (kc *KNNClassifier) Clone() model.Estimator {
	return NewKNNClassifier(kc.K)
}

// Fit memorizes the training set.
func (kc *KNNClassifier) Fit(X mat.Matrix, y *mat.VecDense) error {
	if err := validateBinaryTarget("KNNClassifier.Fit", y); err != nil {
		return err
	}
	return kc.fit("KNNClassifier.Fit", X, y)
}

// PredictProba returns the share of positive labels among the k neighbors.
func (kc *KNNClassifier) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	if err := kc.State.RequireFitted(kc.Name(), "PredictProba"); err != nil {
		return nil, err
	}
	neighbors, err := kc.neighborValues("KNNClassifier.PredictProba", X)
	if err != nil {
		return nil, err
	}

	out := mat.NewVecDense(len(neighbors), nil)
	for i, vals := range neighbors {
		var pos float64
		for _, v := range vals {
			if v == 1 {
				pos++
			}
		}
		out.SetVec(i, pos/float64(len(vals)))
	}
	return out, nil
}

// Predict returns the majority label among the k neighbors.
func (kc *KNNClassifier) Predict(X mat.Matrix) (*mat.VecDense, error) {
	proba, err := kc.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := mat.NewVecDense(proba.Len(), nil)
	for i := 0; i < proba.Len(); i++ {
		if proba.AtVec(i) >= 0.5 {
			out.SetVec(i, 1)
		}
	}
	return out, nil
}

// Params returns the tunable hyperparameters.
func (kc *KNNClassifier) Params() map[string]float64 { return kc.params() }

// SetParams replaces the named hyperparameters.
func (kc *KNNClassifier) SetParams(params map[string]float64) error {
	return kc.setParams("KNNClassifier.SetParams", params)
}

// KNNRegressor is a k-nearest-neighbors mean regressor.
type KNNRegressor struct {
	KNNBase
}

// NewKNNRegressor creates a regressor averaging the k nearest rows.
func NewKNNRegressor(k int) *KNNRegressor {
	return &KNNRegressor{KNNBase: newKNNBase(k)}
}

// Name returns the estimator's display name.
func (kr *KNNRegressor) Name() string { return "KNNRegressor" }

// Clone returns an unfitted copy with the same k.
func (kr *KNNRegressor) Clone() model.Estimator {
	return NewKNNRegressor(kr.K)
}

// Fit memorizes the training set.
func (kr *KNNRegressor) Fit(X mat.Matrix, y *mat.VecDense) error {
	return kr.fit("KNNRegressor.Fit", X, y)
}

// Predict returns the mean target of the k nearest training rows.
func (kr *KNNRegressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if err := kr.State.RequireFitted(kr.Name(), "Predict"); err != nil {
		return nil, err
	}
	neighbors, err := kr.neighborValues("KNNRegressor.Predict", X)
	if err != nil {
		return nil, err
	}

	out := mat.NewVecDense(len(neighbors), nil)
	for i, vals := range neighbors {
		var sum float64
		for _, v := range vals {
			sum += v
		}
		out.SetVec(i, sum/float64(len(vals)))
	}
	return out, nil
}

// Params returns the tunable hyperparameters.
func (kr *KNNRegressor) Params() map[string]float64 { return kr.params() }

// SetParams replaces the named hyperparameters.
func (kr *KNNRegressor) SetParams(params map[string]float64) error {
	return kr.setParams("KNNRegressor.SetParams", params)
}
