// Package plots renders the diagnostic charts of a training run as PNG files
// under the project plots directory. Plot failures never abort a run; the
// pipeline reports them as warnings.
package plots

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/modelpipe/modelpipe/pkg/errors"
)

const plotSubdir = "plots"

func outputPath(dir, name, algorithm, split string) (string, error) {
	plotDir := filepath.Join(dir, plotSubdir)
	if err := os.MkdirAll(plotDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "plots: create %s", plotDir)
	}
	return filepath.Join(plotDir, fmt.Sprintf("%s_%s_%s.png", name, algorithm, split)), nil
}

// PredictedActual draws predictions against true values with the identity
// line for reference.
func PredictedActual(dir, algorithm, split string, y, pred *mat.VecDense) error {
	if y.Len() != pred.Len() {
		return errors.NewDimensionError("plots.PredictedActual", y.Len(), pred.Len(), 0)
	}

	pts := make(plotter.XYs, y.Len())
	lo, hi := y.AtVec(0), y.AtVec(0)
	for i := 0; i < y.Len(); i++ {
		pts[i].X = y.AtVec(i)
		pts[i].Y = pred.AtVec(i)
		if y.AtVec(i) < lo {
			lo = y.AtVec(i)
		}
		if y.AtVec(i) > hi {
			hi = y.AtVec(i)
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Predicted vs Actual (%s, %s)", algorithm, split)
	p.X.Label.Text = "actual"
	p.Y.Label.Text = "predicted"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "plots.PredictedActual: scatter")
	}
	p.Add(scatter)

	identity := plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}}
	line, err := plotter.NewLine(identity)
	if err != nil {
		return errors.Wrap(err, "plots.PredictedActual: identity line")
	}
	p.Add(line)

	return save(p, dir, "predicted_actual", algorithm, split)
}

// ResidualHistogram draws the distribution of prediction residuals.
func ResidualHistogram(dir, algorithm, split string, y, pred *mat.VecDense) error {
	if y.Len() != pred.Len() {
		return errors.NewDimensionError("plots.ResidualHistogram", y.Len(), pred.Len(), 0)
	}

	residuals := make(plotter.Values, y.Len())
	for i := 0; i < y.Len(); i++ {
		residuals[i] = y.AtVec(i) - pred.AtVec(i)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Residuals (%s, %s)", algorithm, split)
	p.X.Label.Text = "residual"

	hist, err := plotter.NewHist(residuals, 20)
	if err != nil {
		return errors.Wrap(err, "plots.ResidualHistogram: histogram")
	}
	p.Add(hist)

	return save(p, dir, "residuals", algorithm, split)
}

// ProbabilityHistogram draws the distribution of predicted positive-class
// probabilities.
func ProbabilityHistogram(dir, algorithm, split string, proba *mat.VecDense) error {
	values := make(plotter.Values, proba.Len())
	for i := 0; i < proba.Len(); i++ {
		values[i] = proba.AtVec(i)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Predicted Probabilities (%s, %s)", algorithm, split)
	p.X.Label.Text = "probability"
	p.X.Min, p.X.Max = 0, 1

	hist, err := plotter.NewHist(values, 20)
	if err != nil {
		return errors.Wrap(err, "plots.ProbabilityHistogram: histogram")
	}
	p.Add(hist)

	return save(p, dir, "probabilities", algorithm, split)
}

// ROCCurve draws the receiver operating characteristic of a binary
// classifier from its positive-class probabilities.
func ROCCurve(dir, algorithm, split string, y, proba *mat.VecDense) error {
	if y.Len() != proba.Len() {
		return errors.NewDimensionError("plots.ROCCurve", y.Len(), proba.Len(), 0)
	}

	var nPos, nNeg float64
	for i := 0; i < y.Len(); i++ {
		if y.AtVec(i) == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return errors.NewValueError("plots.ROCCurve", "both classes must be present")
	}

	order := make([]int, y.Len())
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return proba.AtVec(order[a]) > proba.AtVec(order[b])
	})

	pts := make(plotter.XYs, 0, y.Len()+1)
	pts = append(pts, plotter.XY{X: 0, Y: 0})
	var tp, fp float64
	for _, i := range order {
		if y.AtVec(i) == 1 {
			tp++
		} else {
			fp++
		}
		pts = append(pts, plotter.XY{X: fp / nNeg, Y: tp / nPos})
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("ROC Curve (%s, %s)", algorithm, split)
	p.X.Label.Text = "false positive rate"
	p.Y.Label.Text = "true positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "plots.ROCCurve: line")
	}
	p.Add(line)

	chance, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return errors.Wrap(err, "plots.ROCCurve: chance line")
	}
	p.Add(chance)

	return save(p, dir, "roc", algorithm, split)
}

func save(p *plot.Plot, dir, name, algorithm, split string) error {
	path, err := outputPath(dir, name, algorithm, split)
	if err != nil {
		return err
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "plots: save %s", path)
	}
	return nil
}
