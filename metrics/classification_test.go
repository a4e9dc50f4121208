package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/config"
)

func vec(values ...float64) *mat.VecDense {
	return mat.NewVecDense(len(values), values)
}

func TestAccuracy(t *testing.T) {
	got, err := Accuracy(vec(1, 0, 1, 1), vec(1, 0, 0, 1))
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got, 1e-12)
}

func TestPrecisionRecallF1(t *testing.T) {
	yTrue := vec(1, 1, 0, 0, 1)
	yPred := vec(1, 0, 1, 0, 1)

	p, err := Precision(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, p, 1e-12)

	r, err := Recall(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, r, 1e-12)

	f, err := F1(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, f, 1e-12)
}

func TestPrecisionNoPredictedPositives(t *testing.T) {
	p, err := Precision(vec(1, 0, 1), vec(0, 0, 0))
	require.NoError(t, err)
	assert.Zero(t, p)
}

func TestROCAUC(t *testing.T) {
	// Perfect separation.
	auc, err := ROCAUC(vec(0, 0, 1, 1), vec(0.1, 0.2, 0.8, 0.9))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, auc, 1e-12)

	// Reversed ranking.
	auc, err = ROCAUC(vec(1, 1, 0, 0), vec(0.1, 0.2, 0.8, 0.9))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, auc, 1e-12)

	// All probabilities tied: chance level.
	auc, err = ROCAUC(vec(0, 1, 0, 1), vec(0.5, 0.5, 0.5, 0.5))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, auc, 1e-12)
}

func TestROCAUCOneClass(t *testing.T) {
	_, err := ROCAUC(vec(1, 1, 1), vec(0.1, 0.5, 0.9))
	assert.Error(t, err)
}

func TestLogLoss(t *testing.T) {
	// Confident correct predictions give a small loss.
	small, err := LogLoss(vec(1, 0), vec(0.99, 0.01))
	require.NoError(t, err)

	big, err := LogLoss(vec(1, 0), vec(0.4, 0.6))
	require.NoError(t, err)
	assert.Less(t, small, big)

	// Clipping keeps hard 0/1 probabilities finite.
	clipped, err := LogLoss(vec(1, 0), vec(0.0, 1.0))
	require.NoError(t, err)
	assert.False(t, math.IsInf(clipped, 1))
}

func TestLengthMismatch(t *testing.T) {
	_, err := Accuracy(vec(1, 0), vec(1))
	assert.Error(t, err)
	_, err = ROCAUC(vec(1, 0), vec(1))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	s, ok := Resolve("roc_auc", config.Classification)
	require.True(t, ok)
	assert.True(t, s.Maximize)
	assert.True(t, s.NeedsProba)

	s, ok = Resolve("log_loss", config.Classification)
	require.True(t, ok)
	assert.False(t, s.Maximize)

	// Regression scorer under classification task does not resolve.
	_, ok = Resolve("r2", config.Classification)
	assert.False(t, ok)

	_, ok = Resolve("gini", config.Classification)
	assert.False(t, ok)
}

func TestForTask(t *testing.T) {
	names := ForTask(config.Regression)
	assert.ElementsMatch(t, []string{"mse", "rmse", "mae", "r2"}, names)
}
