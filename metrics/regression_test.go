package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMSE(t *testing.T) {
	got, err := MSE(vec(1, 2, 3), vec(1, 2, 3))
	require.NoError(t, err)
	assert.Zero(t, got)

	got, err = MSE(vec(1, 2, 3), vec(2, 3, 4))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12)
}

func TestRMSE(t *testing.T) {
	got, err := RMSE(vec(0, 0), vec(3, 4))
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(12.5), got, 1e-12)
}

func TestMAE(t *testing.T) {
	got, err := MAE(vec(1, 2, 3), vec(2, 0, 3))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12)
}

func TestR2Score(t *testing.T) {
	got, err := R2Score(vec(1, 2, 3, 4), vec(1, 2, 3, 4))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12)

	// Predicting the mean gives 0.
	got, err = R2Score(vec(1, 2, 3, 4), vec(2.5, 2.5, 2.5, 2.5))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got, 1e-12)

	// Constant target: 0 by convention.
	got, err = R2Score(vec(2, 2, 2), vec(1, 2, 3))
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestRegressionDimensionMismatch(t *testing.T) {
	_, err := MSE(vec(1, 2), vec(1))
	assert.Error(t, err)
	_, err = R2Score(vec(1, 2), vec(1))
	assert.Error(t, err)
}
