package training

import (
	"fmt"
	"io"
	"os"

	chart "github.com/wcharczuk/go-chart"

	apperrors "creditrisk/internal/errors"
)

// renderComparisonChart draws one bar per model and metric, coloured by metric
func renderComparisonChart(path string, results []Metrics) error {
	var bars []chart.Value
	for _, m := range results {
		values := []float64{m.Accuracy, m.Precision, m.Recall, m.F1}
		for j, v := range values {
			color := chart.GetAlternateColor(j)
			bars = append(bars, chart.Value{
				Label: fmt.Sprintf("%s %s %.2f", m.Model, metricHeaders[j+1], v),
				Value: v,
				Style: chart.Style{FillColor: color, StrokeColor: color},
			})
		}
	}
	if len(bars) == 0 {
		return apperrors.NewAppValidationError("no model results to plot")
	}

	graph := chart.BarChart{
		Title:      "Model Performance Comparison",
		TitleStyle: chart.StyleShow(),
		Width:      max(1024, 80*len(bars)+200),
		Height:     600,
		BarWidth:   60,
		BarSpacing: 20,
		XAxis:      chart.StyleShow(),
		YAxis: chart.YAxis{
			Name:  "Score",
			Style: chart.StyleShow(),
			Range: &chart.ContinuousRange{Min: 0, Max: 1.05},
		},
		Bars: bars,
	}

	return writeChart(path, graph.Render)
}

// MaxImportanceBars caps the features drawn in the importance chart
const MaxImportanceBars = 15

// renderImportanceChart draws the most important features, highest first.
// Features whose shuffle improved accuracy are drawn at zero height.
func renderImportanceChart(path string, importances []FeatureImportance) error {
	if len(importances) == 0 {
		return apperrors.NewAppValidationError("no feature importances to plot")
	}
	top := importances[:min(len(importances), MaxImportanceBars)]

	bars := make([]chart.Value, len(top))
	hi := 0.0
	for i, fi := range top {
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%s (%.3f)", fi.Feature, fi.Importance),
			Value: max(fi.Importance, 0),
			Style: chart.Style{FillColor: chart.ColorBlue, StrokeColor: chart.ColorBlue},
		}
		hi = max(hi, fi.Importance)
	}
	if hi <= 0 {
		hi = 0.01
	}

	graph := chart.BarChart{
		Title:      fmt.Sprintf("Top %d Features by Importance (RandomForest)", len(top)),
		TitleStyle: chart.StyleShow(),
		Width:      max(1024, 60*len(bars)+200),
		Height:     768,
		BarWidth:   40,
		BarSpacing: 20,
		XAxis:      chart.StyleShow(),
		YAxis: chart.YAxis{
			Name:  "Accuracy drop",
			Style: chart.StyleShow(),
			Range: &chart.ContinuousRange{Min: 0, Max: hi * 1.1},
		},
		Bars: bars,
	}
	return writeChart(path, graph.Render)
}

func writeChart(path string, render func(chart.RendererProvider, io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create chart file", err).WithContext("path", path)
	}
	if err := render(chart.PNG, f); err != nil {
		f.Close()
		os.Remove(path)
		return apperrors.NewStorageError("failed to render chart", err).WithContext("path", path)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewStorageError("failed to close chart file", err).WithContext("path", path)
	}
	return nil
}
