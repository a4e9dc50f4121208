// Package errors provides the structured error and warning types used across
// the pipeline. Fatal precondition failures carry the offending shapes and
// names, and every constructor attaches a stack trace via cockroachdb/errors.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("modelpipe-warning: %v\n", w)
	}
	// zerolog sink, set lazily to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler overrides how non-fatal warnings are reported.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc routes warnings through zerolog once a logger exists.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn reports a non-fatal condition. Warnings never abort the run; they exist
// so that a skipped sub-stage is distinguishable in logs from a completed one.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types (recoverable, per-algorithm)
//
// ===========================================================================

// AlgorithmSkipWarning is raised when a configured algorithm identifier cannot
// be resolved against the estimator registry. The run continues without it.
type AlgorithmSkipWarning struct {
	Algorithm string
	Reason    string
}

func (w *AlgorithmSkipWarning) Error() string {
	return fmt.Sprintf("algorithm %s skipped: %s", w.Algorithm, w.Reason)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *AlgorithmSkipWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Str("reason", w.Reason).
		Str("type", "AlgorithmSkipWarning")
}

// NewAlgorithmSkipWarning creates a new AlgorithmSkipWarning.
func NewAlgorithmSkipWarning(algorithm, reason string) *AlgorithmSkipWarning {
	return &AlgorithmSkipWarning{Algorithm: algorithm, Reason: reason}
}

// EliminationSkipWarning is raised when neither cross-validated nor
// coefficient-based feature elimination applies to an estimator.
type EliminationSkipWarning struct {
	Algorithm string
}

func (w *EliminationSkipWarning) Error() string {
	return fmt.Sprintf("no feature elimination available for %s", w.Algorithm)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *EliminationSkipWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Str("type", "EliminationSkipWarning")
}

// NewEliminationSkipWarning creates a new EliminationSkipWarning.
func NewEliminationSkipWarning(algorithm string) *EliminationSkipWarning {
	return &EliminationSkipWarning{Algorithm: algorithm}
}

// PlotWarning is raised when plot generation fails. Plotting is fire-and-forget
// and never affects the persisted model.
type PlotWarning struct {
	Plot  string
	Split string
	Err   error
}

func (w *PlotWarning) Error() string {
	return fmt.Sprintf("plot %s (%s split) failed: %v", w.Plot, w.Split, w.Err)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *PlotWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("plot", w.Plot).
		Str("split", w.Split).
		AnErr("cause", w.Err).
		Str("type", "PlotWarning")
}

// NewPlotWarning creates a new PlotWarning.
func NewPlotWarning(plot, split string, err error) *PlotWarning {
	return &PlotWarning{Plot: plot, Split: split, Err: err}
}

// ===========================================================================
//
//	Fatal precondition errors
//
// ===========================================================================

// ShapeMismatchError reports a train/test feature-table mismatch. Column
// parity of the two tables is a hard precondition of every pipeline stage.
type ShapeMismatchError struct {
	Op        string
	TrainRows int
	TrainCols int
	TestRows  int
	TestCols  int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("modelpipe: %s: train and test shapes [%dx%d, %dx%d] must have matching columns",
		e.Op, e.TrainRows, e.TrainCols, e.TestRows, e.TestCols)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *ShapeMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("train_rows", e.TrainRows).
		Int("train_cols", e.TrainCols).
		Int("test_rows", e.TestRows).
		Int("test_cols", e.TestCols).
		Str("type", "ShapeMismatchError")
}

// NewShapeMismatchError creates a ShapeMismatchError with a stack trace.
func NewShapeMismatchError(op string, trainRows, trainCols, testRows, testCols int) error {
	err := &ShapeMismatchError{
		Op:        op,
		TrainRows: trainRows,
		TrainCols: trainCols,
		TestRows:  testRows,
		TestCols:  testCols,
	}
	return errors.WithStack(err)
}

// DimensionError reports a size mismatch between two collaborating inputs,
// such as a transform returning a different row count than it was given.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns
}

func (e *DimensionError) Error() string {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("modelpipe: %s: dimension mismatch on axis %d (%s). Expected %d, got %d",
		e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ColumnNotFoundError reports a column name that does not exist in a table,
// e.g. a configured drop column unknown on one side of the split.
type ColumnNotFoundError struct {
	Op     string
	Column string
	Table  string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("modelpipe: %s: column %q not found in %s table", e.Op, e.Column, e.Table)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *ColumnNotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Column).
		Str("table", e.Table).
		Str("type", "ColumnNotFoundError")
}

// NewColumnNotFoundError creates a ColumnNotFoundError with a stack trace.
func NewColumnNotFoundError(op, column, table string) error {
	err := &ColumnNotFoundError{Op: op, Column: column, Table: table}
	return errors.WithStack(err)
}

// ModelNotFoundError reports that no persisted model exists at the configured
// location. The scoring path fails fatally on this before any prediction.
type ModelNotFoundError struct {
	Directory string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("modelpipe: no persisted model found in %s", e.Directory)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *ModelNotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("directory", e.Directory).
		Str("type", "ModelNotFoundError")
}

// NewModelNotFoundError creates a ModelNotFoundError with a stack trace.
func NewModelNotFoundError(directory string) error {
	err := &ModelNotFoundError{Directory: directory}
	return errors.WithStack(err)
}

// ScorerNotFoundError reports an unknown scoring metric name. Scorer
// resolution happens before any training and an unknown name is fatal.
type ScorerNotFoundError struct {
	Scorer    string
	ModelType string
}

func (e *ScorerNotFoundError) Error() string {
	return fmt.Sprintf("modelpipe: scorer %q not found for model type %s", e.Scorer, e.ModelType)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *ScorerNotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("scorer", e.Scorer).
		Str("model_type", e.ModelType).
		Str("type", "ScorerNotFoundError")
}

// NewScorerNotFoundError creates a ScorerNotFoundError with a stack trace.
func NewScorerNotFoundError(scorer, modelType string) error {
	err := &ScorerNotFoundError{Scorer: scorer, ModelType: modelType}
	return errors.WithStack(err)
}

// NotFittedError reports a Predict or Transform call on an unfitted estimator.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("modelpipe: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// ValidationError reports an invalid configuration option.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("modelpipe: validation failed for option %q: %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is unusable for an operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("modelpipe: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// PipelineError wraps a failure inside a named pipeline stage.
type PipelineError struct {
	Stage string
	Op    string
	Err   error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("modelpipe: %s: %s: %v", e.Stage, e.Op, e.Err)
	}
	return fmt.Sprintf("modelpipe: %s: %s", e.Stage, e.Op)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError creates a PipelineError with a stack trace.
func NewPipelineError(stage, op string, err error) error {
	pipeErr := &PipelineError{Stage: stage, Op: op, Err: err}
	return errors.WithStack(pipeErr)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain assignable to target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an empty table or vector is supplied.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix is returned when a linear solve hits a singular matrix.
	ErrSingularMatrix = New("singular matrix")
)
