package training

import (
	"fmt"
	"math"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/evaluation"
)

// PositiveClass is the class precision, recall and F1 are computed for
const PositiveClass = ClassBad

// Metrics summarises a model's predictions on labelled rows
type Metrics struct {
	Model     string
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	Confusion evaluation.ConfusionMatrix
}

// Evaluate compares predictions against the classes of ref. Undefined
// ratios (no predicted or no actual positives) are reported as 0.
func Evaluate(model string, ref, predictions base.FixedDataGrid) (Metrics, error) {
	cm, err := evaluation.GetConfusionMatrix(ref, predictions)
	if err != nil {
		return Metrics{}, fmt.Errorf("%s: confusion matrix: %w", model, err)
	}
	return Metrics{
		Model:     model,
		Accuracy:  finite(evaluation.GetAccuracy(cm)),
		Precision: finite(evaluation.GetPrecision(PositiveClass, cm)),
		Recall:    finite(evaluation.GetRecall(PositiveClass, cm)),
		F1:        finite(evaluation.GetF1Score(PositiveClass, cm)),
		Confusion: cm,
	}, nil
}

// Count returns how many rows of class actual were predicted as predicted
func (m Metrics) Count(actual, predicted string) int {
	return m.Confusion[actual][predicted]
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
