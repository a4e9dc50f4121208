package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelpipe/modelpipe/pkg/errors"
)

const validYAML = `
project:
  directory: /tmp/run
model:
  type: classification
  algorithms: [LOGR, KNN]
  scorer: roc_auc
  target: label
data:
  train_file: train.csv
  test_file: test.csv
  drop: [id]
  test_labels: true
features:
  selection: true
  selection_percentile: 60
  interactions: true
  variance_threshold: 0.01
pipeline:
  rfe: true
  grid_search: true
  cv_folds: 5
  seed: 7
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeConfig(t, validYAML)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, Classification, cfg.ModelType)
	assert.Equal(t, []string{"LOGR", "KNN"}, cfg.Algorithms)
	assert.Equal(t, "roc_auc", cfg.Scorer)
	assert.Equal(t, "label", cfg.Target)
	assert.Equal(t, []string{"id"}, cfg.Drop)
	assert.True(t, cfg.TestLabels)
	assert.Equal(t, 60, cfg.SelectionPercentile)
	assert.Equal(t, 5, cfg.CVFolds)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.False(t, cfg.Scoring)
}

func TestLoadDefaults(t *testing.T) {
	dir := writeConfig(t, `
model:
  type: regression
  algorithms: [LINR]
  target: y
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "r2", cfg.Scorer)
	assert.Equal(t, dir, cfg.Directory)
	assert.Equal(t, filepath.Join(dir, "train.csv"), cfg.TrainFile)
	assert.Equal(t, 3, cfg.CVFolds)
	assert.Equal(t, 50, cfg.SelectionPercentile)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	dir := writeConfig(t, `
project:
  log_level: verbose
model:
  type: regression
  algorithms: [LINR]
  target: y
`)

	_, err := Load(dir)
	require.Error(t, err)

	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "project.log_level", valErr.ParamName)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *ModelConfig {
		return &ModelConfig{
			ModelType:           Classification,
			LogLevel:            "info",
			Algorithms:          []string{"LOGR"},
			Target:              "label",
			Scorer:              "accuracy",
			SelectionPercentile: 50,
			CVFolds:             3,
		}
	}

	tests := []struct {
		name   string
		mutate func(*ModelConfig)
		param  string
	}{
		{"unknown model type", func(c *ModelConfig) { c.ModelType = "ranking" }, "model.type"},
		{"unknown log level", func(c *ModelConfig) { c.LogLevel = "verbose" }, "project.log_level"},
		{"empty algorithms", func(c *ModelConfig) { c.Algorithms = nil }, "model.algorithms"},
		{"duplicate algorithm", func(c *ModelConfig) { c.Algorithms = []string{"LOGR", "LOGR"} }, "model.algorithms"},
		{"empty target", func(c *ModelConfig) { c.Target = "" }, "model.target"},
		{"bad percentile", func(c *ModelConfig) { c.SelectionPercentile = 101 }, "features.selection_percentile"},
		{"bad folds", func(c *ModelConfig) { c.CVFolds = 1 }, "pipeline.cv_folds"},
		{"negative variance", func(c *ModelConfig) { c.VarianceThreshold = -1 }, "features.variance_threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, tt.param, valErr.ParamName)
		})
	}

	assert.NoError(t, base().Validate())
}
