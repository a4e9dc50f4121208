// Package persist stores fitted predictors under the project model
// directory and loads the most recent one back for scoring runs.
package persist

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/modelpipe/modelpipe/config"
	"github.com/modelpipe/modelpipe/core/model"
	"github.com/modelpipe/modelpipe/estimator"
	"github.com/modelpipe/modelpipe/pkg/errors"
)

const modelSubdir = "models"

func init() {
	gob.Register(&estimator.LinearRegression{})
	gob.Register(&estimator.Ridge{})
	gob.Register(&estimator.LogisticRegression{})
	gob.Register(&estimator.KNNClassifier{})
	gob.Register(&estimator.KNNRegressor{})
	gob.Register(&estimator.GaussianNB{})
	gob.Register(&estimator.PlattCalibrator{})
	gob.Register(&estimator.Blend{})
}

// Artifact is everything a scoring run needs to reproduce predictions:
// the fitted predictor plus the feature columns and task it was trained on.
type Artifact struct {
	Algorithm string
	ModelType config.ModelType
	Target    string
	Features  []string
	Estimator model.Estimator
}

// Save writes the artifact to <dir>/models/model_<timestamp>.gob and
// returns the file path.
func Save(dir string, art *Artifact) (string, error) {
	return saveAt(dir, art, time.Now())
}

func saveAt(dir string, art *Artifact, now time.Time) (string, error) {
	modelDir := filepath.Join(dir, modelSubdir)
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "persist.Save: create %s", modelDir)
	}

	path := filepath.Join(modelDir, fmt.Sprintf("model_%s.gob", now.Format("20060102_150405")))
	if err := model.SaveModel(art, path); err != nil {
		return "", err
	}
	return path, nil
}

// LoadLatest decodes the most recently saved artifact under the directory.
// Timestamped file names sort lexically, so the last name is the newest.
func LoadLatest(dir string) (*Artifact, error) {
	modelDir := filepath.Join(dir, modelSubdir)
	entries, err := os.ReadDir(modelDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewModelNotFoundError(modelDir)
		}
		return nil, errors.Wrapf(err, "persist.LoadLatest: read %s", modelDir)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, "model_") && strings.HasSuffix(name, ".gob") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, errors.NewModelNotFoundError(modelDir)
	}
	sort.Strings(names)

	art := &Artifact{}
	path := filepath.Join(modelDir, names[len(names)-1])
	if err := model.LoadModel(art, path); err != nil {
		return nil, err
	}
	return art, nil
}
