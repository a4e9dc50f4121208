// Package config loads and validates the model.yml project configuration.
// A configuration directory holds a model.yml file with project, data,
// features, and pipeline sections; Load resolves it into a flat ModelConfig
// that is immutable once the pipeline starts.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/modelpipe/modelpipe/pkg/errors"
)

// ModelType selects between the two supported learning tasks.
type ModelType string

const (
	Classification ModelType = "classification"
	Regression     ModelType = "regression"
)

// FileName is the configuration file expected inside the config directory.
const FileName = "model.yml"

// ModelConfig is the resolved, validated option set consumed by the pipeline.
// Stages read it and never write it.
type ModelConfig struct {
	// Project
	Directory string // persistence and output directory
	LogLevel  string

	// Model
	ModelType  ModelType
	Algorithms []string // ordered candidate identifiers, duplicates forbidden
	Scorer     string   // primary scoring metric name
	Target     string   // target column name

	// Data
	TrainFile  string
	TestFile   string
	Drop       []string // columns to drop on both sides
	TestLabels bool     // whether the test file carries labels
	Shuffle    bool
	Sampling   bool

	// Features
	FeatureSelection    bool
	SelectionPercentile int     // share of columns kept by univariate selection
	Interactions        bool    // pairwise polynomial interactions
	VarianceThreshold   float64 // low-variance filter cutoff

	// Pipeline
	RFE            bool
	GridSearch     bool
	GridIterations int // cap on grid candidates, 0 = exhaustive
	Calibration    bool
	CVFolds        int
	Seed           int64

	// Mode, set by the CLI rather than the file.
	Scoring bool
}

// fileConfig mirrors the on-disk YAML layout.
type fileConfig struct {
	Project struct {
		Directory string `yaml:"directory"`
		LogLevel  string `yaml:"log_level"`
	} `yaml:"project"`
	Model struct {
		Type       string   `yaml:"type"`
		Algorithms []string `yaml:"algorithms"`
		Scorer     string   `yaml:"scorer"`
		Target     string   `yaml:"target"`
	} `yaml:"model"`
	Data struct {
		TrainFile  string   `yaml:"train_file"`
		TestFile   string   `yaml:"test_file"`
		Drop       []string `yaml:"drop"`
		TestLabels bool     `yaml:"test_labels"`
		Shuffle    bool     `yaml:"shuffle"`
		Sampling   bool     `yaml:"sampling"`
	} `yaml:"data"`
	Features struct {
		Selection           bool    `yaml:"selection"`
		SelectionPercentile int     `yaml:"selection_percentile"`
		Interactions        bool    `yaml:"interactions"`
		VarianceThreshold   float64 `yaml:"variance_threshold"`
	} `yaml:"features"`
	Pipeline struct {
		RFE            bool  `yaml:"rfe"`
		GridSearch     bool  `yaml:"grid_search"`
		GridIterations int   `yaml:"grid_iterations"`
		Calibration    bool  `yaml:"calibration"`
		CVFolds        int   `yaml:"cv_folds"`
		Seed           int64 `yaml:"seed"`
	} `yaml:"pipeline"`
}

// Load reads and resolves model.yml from the given directory.
func Load(dir string) (*ModelConfig, error) {
	path := filepath.Join(dir, FileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config.Load: read %s", path)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, errors.Wrapf(err, "config.Load: parse %s", path)
	}

	cfg := &ModelConfig{
		Directory:           fc.Project.Directory,
		LogLevel:            fc.Project.LogLevel,
		ModelType:           ModelType(fc.Model.Type),
		Algorithms:          fc.Model.Algorithms,
		Scorer:              fc.Model.Scorer,
		Target:              fc.Model.Target,
		TrainFile:           fc.Data.TrainFile,
		TestFile:            fc.Data.TestFile,
		Drop:                fc.Data.Drop,
		TestLabels:          fc.Data.TestLabels,
		Shuffle:             fc.Data.Shuffle,
		Sampling:            fc.Data.Sampling,
		FeatureSelection:    fc.Features.Selection,
		SelectionPercentile: fc.Features.SelectionPercentile,
		Interactions:        fc.Features.Interactions,
		VarianceThreshold:   fc.Features.VarianceThreshold,
		RFE:                 fc.Pipeline.RFE,
		GridSearch:          fc.Pipeline.GridSearch,
		GridIterations:      fc.Pipeline.GridIterations,
		Calibration:         fc.Pipeline.Calibration,
		CVFolds:             fc.Pipeline.CVFolds,
		Seed:                fc.Pipeline.Seed,
	}
	cfg.applyDefaults(dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ModelConfig) applyDefaults(dir string) {
	if c.Directory == "" {
		c.Directory = dir
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.TrainFile == "" {
		c.TrainFile = filepath.Join(dir, "train.csv")
	}
	if c.TestFile == "" {
		c.TestFile = filepath.Join(dir, "test.csv")
	}
	if c.SelectionPercentile == 0 {
		c.SelectionPercentile = 50
	}
	if c.CVFolds == 0 {
		c.CVFolds = 3
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.Scorer == "" {
		if c.ModelType == Regression {
			c.Scorer = "r2"
		} else {
			c.Scorer = "accuracy"
		}
	}
}

// Validate checks the resolved option set. Validation failures are fatal
// before any data is touched.
func (c *ModelConfig) Validate() error {
	if c.ModelType != Classification && c.ModelType != Regression {
		return errors.NewValidationError("model.type",
			"must be classification or regression", string(c.ModelType))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.NewValidationError("project.log_level",
			"must be one of debug, info, warn, error", c.LogLevel)
	}
	if len(c.Algorithms) == 0 {
		return errors.NewValidationError("model.algorithms", "must not be empty", c.Algorithms)
	}
	seen := make(map[string]bool, len(c.Algorithms))
	for _, algo := range c.Algorithms {
		if algo == "" {
			return errors.NewValidationError("model.algorithms", "empty identifier", c.Algorithms)
		}
		if seen[algo] {
			return errors.NewValidationError("model.algorithms", "duplicate identifier", algo)
		}
		seen[algo] = true
	}
	if c.Target == "" {
		return errors.NewValidationError("model.target", "must not be empty", c.Target)
	}
	if c.SelectionPercentile < 1 || c.SelectionPercentile > 100 {
		return errors.NewValidationError("features.selection_percentile",
			"must be in [1, 100]", c.SelectionPercentile)
	}
	if c.VarianceThreshold < 0 {
		return errors.NewValidationError("features.variance_threshold",
			"must be non-negative", c.VarianceThreshold)
	}
	if c.CVFolds < 2 {
		return errors.NewValidationError("pipeline.cv_folds", "must be at least 2", c.CVFolds)
	}
	if c.GridIterations < 0 {
		return errors.NewValidationError("pipeline.grid_iterations",
			"must be non-negative", c.GridIterations)
	}
	return nil
}
