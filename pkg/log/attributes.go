// Standard attribute keys for pipeline logging. Using these keys consistently
// makes runs filterable by stage, algorithm, and split.

package log

// Run and stage context.
const (
	// RunIDKey carries the unique identifier stamped on each pipeline run.
	RunIDKey = "run.id"

	// StageKey names the pipeline stage emitting the record.
	// Values: "data", "model", "blend", "metrics", "selection", "scoring"
	StageKey = "pipeline.stage"

	// AlgorithmKey identifies the candidate algorithm being processed.
	AlgorithmKey = "algorithm"

	// SplitKey names the data partition. Values: "train", "test"
	SplitKey = "split"

	// OperationKey names the operation within a stage.
	// Values: "fit", "predict", "rfe", "grid_search", "calibrate", "blend"
	OperationKey = "operation"
)

// Data shape context.
const (
	// RowsKey is the number of rows in the table being processed.
	RowsKey = "data.rows"

	// ColumnsKey is the number of feature columns.
	ColumnsKey = "data.columns"

	// SplitPointKey is the row index separating train from test in a
	// merged feature table.
	SplitPointKey = "data.split_point"
)

// Result context.
const (
	// MetricKey names a scoring metric.
	MetricKey = "metric"

	// ScoreKey carries a metric value.
	ScoreKey = "score"

	// BestAlgorithmKey carries the winning algorithm after selection.
	BestAlgorithmKey = "best.algorithm"

	// DurationMsKey records operation time in milliseconds.
	DurationMsKey = "perf.duration_ms"
)
