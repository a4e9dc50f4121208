// Package modelpipe is a configuration-driven pipeline for supervised
// learning on tabular data. A project directory with a model.yml plus train
// and test CSV files fully describes a run: the pipeline engineers features
// over the unified table, trains every configured algorithm, blends them,
// evaluates the results and persists the best model for later scoring.
//
// # Quick Start
//
// Describe the run in model.yml:
//
//	project:
//	  directory: .
//	model:
//	  type: classification
//	  algorithms: [LOGR, KNN, NB]
//	  scorer: roc_auc
//	  target: label
//	data:
//	  test_labels: true
//
// then train and score from the command line:
//
//	modelpipe -d ./project
//	modelpipe -d ./project --score
//
// # Packages
//
//   - pipeline: run orchestration (data stage, training loop, scoring path)
//   - frame: named-column tables over gonum matrices, CSV ingestion
//   - config: model.yml loading, defaulting and validation
//   - estimator: the algorithm registry and built-in estimators
//   - features: feature derivation, interactions, selection and sampling
//   - optimize: cross-validation, feature elimination, grid search
//   - metrics: scoring functions and the scorer registry
//   - persist: timestamped model persistence
//   - plots: PNG diagnostics for a finished run
//
// Estimators follow a fit/predict contract over gonum matrices; everything
// an algorithm produced during training travels in a single artifact, and
// the winning artifact round-trips through gob so scoring runs reproduce
// training-time predictions exactly.
package modelpipe
