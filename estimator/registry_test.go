package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelpipe/modelpipe/config"
	"github.com/modelpipe/modelpipe/core/model"
)

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry(config.Classification)

	entry, ok := reg.Resolve("LOGR")
	require.True(t, ok)
	assert.True(t, entry.Caps.Has(CapCrossValScoring))
	assert.True(t, entry.Caps.Has(CapCoefficients))
	assert.True(t, entry.Caps.Has(CapProbability))
	assert.NotNil(t, entry.Grid)

	entry, ok = reg.Resolve("KNN")
	require.True(t, ok)
	assert.True(t, entry.Caps.Has(CapProbability))
	assert.False(t, entry.Caps.Has(CapCoefficients))
	assert.False(t, entry.Caps.Has(CapCrossValScoring))

	// Regression ids do not resolve under classification.
	_, ok = reg.Resolve("LINR")
	assert.False(t, ok)

	_, ok = reg.Resolve("XGB")
	assert.False(t, ok)
}

func TestRegistryFactoriesMatchCapabilities(t *testing.T) {
	for _, task := range []config.ModelType{config.Classification, config.Regression} {
		reg := NewRegistry(task)
		for _, id := range []string{"LOGR", "KNN", "NB", "LINR", "RIDGE", "KNNR"} {
			entry, ok := reg.Resolve(id)
			if !ok {
				continue
			}
			est := entry.New()
			require.NotNil(t, est, id)

			if entry.Caps.Has(CapProbability) {
				_, ok := est.(model.ProbabilityPredictor)
				assert.True(t, ok, "%s declares probability but does not implement it", id)
			}
			if entry.Caps.Has(CapCoefficients) {
				_, ok := est.(model.Coefficienter)
				assert.True(t, ok, "%s declares coefficients but does not implement them", id)
			}
			if entry.Caps.Has(CapCrossValScoring) {
				_, ok := est.(model.Scorer)
				assert.True(t, ok, "%s declares scoring but does not implement it", id)
			}
		}
	}
}

func TestCapabilitiesHas(t *testing.T) {
	caps := CapCoefficients | CapProbability
	assert.True(t, caps.Has(CapCoefficients))
	assert.True(t, caps.Has(CapCoefficients|CapProbability))
	assert.False(t, caps.Has(CapCrossValScoring))
}
