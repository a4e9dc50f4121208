package plots

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestPredictedActualWritesFile(t *testing.T) {
	dir := t.TempDir()
	y := mat.NewVecDense(5, []float64{1, 2, 3, 4, 5})
	pred := mat.NewVecDense(5, []float64{1.1, 1.9, 3.2, 3.8, 5.1})

	require.NoError(t, PredictedActual(dir, "LINR", "test", y, pred))
	assert.FileExists(t, filepath.Join(dir, "plots", "predicted_actual_LINR_test.png"))
}

func TestPredictedActualLengthMismatch(t *testing.T) {
	err := PredictedActual(t.TempDir(), "LINR", "test",
		mat.NewVecDense(3, nil), mat.NewVecDense(2, nil))
	assert.Error(t, err)
}

func TestResidualHistogramWritesFile(t *testing.T) {
	dir := t.TempDir()
	y := mat.NewVecDense(6, []float64{1, 2, 3, 4, 5, 6})
	pred := mat.NewVecDense(6, []float64{1.5, 1.5, 3.5, 3.5, 5.5, 5.5})

	require.NoError(t, ResidualHistogram(dir, "RIDGE", "train", y, pred))
	assert.FileExists(t, filepath.Join(dir, "plots", "residuals_RIDGE_train.png"))
}

func TestProbabilityHistogramWritesFile(t *testing.T) {
	dir := t.TempDir()
	proba := mat.NewVecDense(6, []float64{0.1, 0.2, 0.4, 0.6, 0.8, 0.9})

	require.NoError(t, ProbabilityHistogram(dir, "LOGR", "test", proba))
	assert.FileExists(t, filepath.Join(dir, "plots", "probabilities_LOGR_test.png"))
}

func TestROCCurveWritesFile(t *testing.T) {
	dir := t.TempDir()
	y := mat.NewVecDense(6, []float64{0, 0, 0, 1, 1, 1})
	proba := mat.NewVecDense(6, []float64{0.1, 0.3, 0.6, 0.4, 0.8, 0.9})

	require.NoError(t, ROCCurve(dir, "LOGR", "test", y, proba))
	assert.FileExists(t, filepath.Join(dir, "plots", "roc_LOGR_test.png"))
}

func TestROCCurveSingleClass(t *testing.T) {
	y := mat.NewVecDense(3, []float64{1, 1, 1})
	proba := mat.NewVecDense(3, []float64{0.2, 0.5, 0.8})
	assert.Error(t, ROCCurve(t.TempDir(), "LOGR", "test", y, proba))
}
