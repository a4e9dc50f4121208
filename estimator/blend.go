package estimator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/core/model"
	"github.com/modelpipe/modelpipe/pkg/errors"
)

// Blend stacks fitted base estimators under a meta-learner. Each base reads
// its own column subset of the input, its predictions (or probabilities)
// become one meta-feature, and the meta-learner is fitted over those.
// Persisting a Blend persists the whole ensemble, so a blended winner can be
// scored like any single estimator.
type Blend struct {
	State *model.StateManager

	Bases []model.Estimator
	// Supports[i] lists the input columns base i consumes; nil means all.
	Supports [][]int
	// UseProba[i] selects probabilities over labels as base i's meta-feature.
	UseProba []bool
	Meta     model.Estimator
}

// NewBlend assembles a blend over already-fitted bases. The meta-learner is
// fitted later via Fit.
func NewBlend(bases []model.Estimator, supports [][]int, useProba []bool, meta model.Estimator) (*Blend, error) {
	if len(bases) < 2 {
		return nil, errors.NewValueError("estimator.NewBlend", "blending needs at least two base estimators")
	}
	if len(supports) != len(bases) || len(useProba) != len(bases) {
		return nil, errors.NewValueError("estimator.NewBlend", "supports and useProba must match the base count")
	}
	return &Blend{
		State:    model.NewStateManager(),
		Bases:    bases,
		Supports: supports,
		UseProba: useProba,
		Meta:     meta,
	}, nil
}

// Name returns the estimator's display name.
func (b *Blend) Name() string { return "Blend" }

// Clone returns a blend over clones of the bases and meta-learner. Base
// clones are unfitted, so a cloned blend must be rebuilt before use.
func (b *Blend) Clone() model.Estimator {
	bases := make([]model.Estimator, len(b.Bases))
	for i, base := range b.Bases {
		bases[i] = base.Clone()
	}
	supports := make([][]int, len(b.Supports))
	for i, s := range b.Supports {
		supports[i] = append([]int(nil), s...)
	}
	clone, _ := NewBlend(bases, supports, append([]bool(nil), b.UseProba...), b.Meta.Clone())
	return clone
}

// metaFeatures runs every base over its column subset and assembles the
// meta-feature matrix, one column per base.
func (b *Blend) metaFeatures(X mat.Matrix) (*mat.Dense, error) {
	r, _ := X.Dims()
	meta := mat.NewDense(r, len(b.Bases), nil)

	for i, base := range b.Bases {
		var sub mat.Matrix = X
		if b.Supports[i] != nil {
			sub = pickColumns(X, b.Supports[i])
		}

		var col *mat.VecDense
		var err error
		if b.UseProba[i] {
			prob, ok := base.(model.ProbabilityPredictor)
			if !ok {
				return nil, errors.NewValueError("estimator.Blend",
					base.Name()+" cannot produce probabilities")
			}
			col, err = prob.PredictProba(sub)
		} else {
			col, err = base.Predict(sub)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "blend base %s", base.Name())
		}
		meta.SetCol(i, col.RawVector().Data)
	}
	return meta, nil
}

// Fit builds meta-features from the already-fitted bases and fits the
// meta-learner on them.
func (b *Blend) Fit(X mat.Matrix, y *mat.VecDense) error {
	meta, err := b.metaFeatures(X)
	if err != nil {
		return err
	}
	if err := b.Meta.Fit(meta, y); err != nil {
		return errors.Wrap(err, "blend meta-learner fit")
	}
	r, c := X.Dims()
	b.State.SetDimensions(c, r)
	b.State.SetFitted()
	return nil
}

// Predict runs the bases and the meta-learner over the input.
func (b *Blend) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if err := b.State.RequireFitted(b.Name(), "Predict"); err != nil {
		return nil, err
	}
	meta, err := b.metaFeatures(X)
	if err != nil {
		return nil, err
	}
	return b.Meta.Predict(meta)
}

// PredictProba returns the meta-learner's probabilities when it produces
// them.
func (b *Blend) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	if err := b.State.RequireFitted(b.Name(), "PredictProba"); err != nil {
		return nil, err
	}
	prob, ok := b.Meta.(model.ProbabilityPredictor)
	if !ok {
		return nil, errors.NewValueError("estimator.Blend",
			b.Meta.Name()+" cannot produce probabilities")
	}
	meta, err := b.metaFeatures(X)
	if err != nil {
		return nil, err
	}
	return prob.PredictProba(meta)
}

func pickColumns(X mat.Matrix, cols []int) *mat.Dense {
	r, _ := X.Dims()
	out := mat.NewDense(r, len(cols), nil)
	for i := 0; i < r; i++ {
		for j, src := range cols {
			out.Set(i, j, X.At(i, src))
		}
	}
	return out
}
