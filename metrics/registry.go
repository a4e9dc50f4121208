package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/modelpipe/modelpipe/config"
)

// Scorer pairs a metric function with its selection semantics: the task it
// applies to, whether larger values are better, and whether the function
// consumes probabilities instead of hard predictions.
type Scorer struct {
	Name       string
	Task       config.ModelType
	Maximize   bool
	NeedsProba bool
	Fn         func(yTrue, yPred *mat.VecDense) (float64, error)
}

var registry = map[string]Scorer{
	"accuracy":  {Name: "accuracy", Task: config.Classification, Maximize: true, Fn: Accuracy},
	"precision": {Name: "precision", Task: config.Classification, Maximize: true, Fn: Precision},
	"recall":    {Name: "recall", Task: config.Classification, Maximize: true, Fn: Recall},
	"f1":        {Name: "f1", Task: config.Classification, Maximize: true, Fn: F1},
	"roc_auc":   {Name: "roc_auc", Task: config.Classification, Maximize: true, NeedsProba: true, Fn: ROCAUC},
	"log_loss":  {Name: "log_loss", Task: config.Classification, Maximize: false, NeedsProba: true, Fn: LogLoss},
	"mse":       {Name: "mse", Task: config.Regression, Maximize: false, Fn: MSE},
	"rmse":      {Name: "rmse", Task: config.Regression, Maximize: false, Fn: RMSE},
	"mae":       {Name: "mae", Task: config.Regression, Maximize: false, Fn: MAE},
	"r2":        {Name: "r2", Task: config.Regression, Maximize: true, Fn: R2Score},
}

// Resolve looks up a scorer by name for the given task. The second return
// value reports whether the name resolved; the caller treats a miss as fatal.
func Resolve(name string, task config.ModelType) (Scorer, bool) {
	s, ok := registry[name]
	if !ok || s.Task != task {
		return Scorer{}, false
	}
	return s, true
}

// ForTask returns the names of every scorer registered for a task, used to
// compute the full metric suite per split.
func ForTask(task config.ModelType) []string {
	names := make([]string, 0, len(registry))
	for name, s := range registry {
		if s.Task == task {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
