package eda

import (
	"fmt"
	"io"
	"math"
	"os"

	chart "github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"

	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/table"
	"creditrisk/internal/validation"
	"creditrisk/pkg/contracts/domain"
)

var classLabels = map[int64]string{
	domain.TargetEncodedGood: "Good",
	domain.TargetEncodedBad:  "Bad",
}

// renderCorrelationChart draws one bar per feature in the given order.
// Bar height is the absolute correlation; red bars are positive, blue negative.
func renderCorrelationChart(path, target string, corrs []validation.FeatureCorrelation) error {
	if len(corrs) == 0 {
		return apperrors.NewAppValidationError("no numeric features to correlate").WithContext("target", target)
	}

	bars := make([]chart.Value, len(corrs))
	hi := 0.0
	for i, c := range corrs {
		color := chart.ColorBlue
		if c.Correlation > 0 {
			color = chart.ColorRed
		}
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%s (%.2f)", c.Feature, c.Correlation),
			Value: math.Abs(c.Correlation),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		}
		hi = math.Max(hi, math.Abs(c.Correlation))
	}

	graph := chart.BarChart{
		Title:      fmt.Sprintf("Feature Correlation with %s", target),
		TitleStyle: chart.StyleShow(),
		Width:      max(1024, 40*len(bars)+200),
		Height:     768,
		BarWidth:   24,
		BarSpacing: 16,
		XAxis:      chart.StyleShow(),
		YAxis:      chart.YAxis{Name: "|Correlation|", Style: chart.StyleShow(), Range: paddedRange(0, hi)},
		Bars:       bars,
	}
	return renderPNG(path, graph.Render)
}

func renderClassDistribution(path, target string, col *table.Column) error {
	counts := make(map[int64]int)
	total := 0
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		counts[col.Int(i)]++
		total++
	}

	var bars []chart.Value
	hi := 0.0
	for _, class := range []int64{domain.TargetEncodedGood, domain.TargetEncodedBad} {
		n := counts[class]
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(n) / float64(total)
		}
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s (%d): %d (%.1f%%)", classLabels[class], class, n, pct),
			Value: float64(n),
			Style: chart.Style{FillColor: classColor(class), StrokeColor: classColor(class)},
		})
		hi = math.Max(hi, float64(n))
	}

	graph := chart.BarChart{
		Title:      fmt.Sprintf("%s Distribution", target),
		TitleStyle: chart.StyleShow(),
		Width:      800,
		Height:     800,
		BarWidth:   120,
		BarSpacing: 100,
		XAxis:      chart.StyleShow(),
		YAxis:      chart.YAxis{Name: "Count", Style: chart.StyleShow(), Range: paddedRange(0, hi)},
		Bars:       bars,
	}
	return renderPNG(path, graph.Render)
}

func renderHistogram(path, feature, target string, col, targetCol *table.Column, bins int) error {
	byClass := map[int64][]float64{}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) || targetCol.IsNull(i) {
			continue
		}
		v := float64(col.Int(i))
		class := targetCol.Int(i)
		byClass[class] = append(byClass[class], v)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return apperrors.NewAppValidationError("no values to plot").WithContext("column", feature)
	}

	edges := binEdges(lo, hi, bins)
	centers := make([]float64, bins)
	for b := 0; b < bins; b++ {
		centers[b] = (edges[b] + edges[b+1]) / 2
	}

	var series []chart.Series
	for _, class := range []int64{domain.TargetEncodedGood, domain.TargetEncodedBad} {
		values := byClass[class]
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("%s Credit (mean %.2f)", classLabels[class], mean(values)),
			XValues: centers,
			YValues: histogram(values, edges),
			Style: chart.Style{
				Show:        true,
				StrokeColor: classColor(class),
				StrokeWidth: 2,
			},
		})
	}

	graph := chart.Chart{
		Title:      fmt.Sprintf("Distribution of %s by %s", feature, target),
		TitleStyle: chart.StyleShow(),
		Width:      1200,
		Height:     400,
		XAxis: chart.XAxis{
			Name:      feature,
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		YAxis: chart.YAxis{
			Name:      "Frequency",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}
	return renderPNG(path, graph.Render)
}

// binEdges splits [lo, hi] into bins equal-width intervals. A degenerate
// range is widened to one unit around lo.
func binEdges(lo, hi float64, bins int) []float64 {
	if hi <= lo {
		lo, hi = lo-0.5, lo+0.5
	}
	width := (hi - lo) / float64(bins)
	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi
	return edges
}

// histogram counts values per bin. Bins are half-open except the last,
// which includes hi.
func histogram(values, edges []float64) []float64 {
	bins := len(edges) - 1
	counts := make([]float64, bins)
	lo, hi := edges[0], edges[bins]
	width := (hi - lo) / float64(bins)
	for _, v := range values {
		b := int((v - lo) / width)
		if b >= bins {
			b = bins - 1
		}
		if b < 0 {
			b = 0
		}
		counts[b]++
	}
	return counts
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func paddedRange(lo, hi float64) *chart.ContinuousRange {
	if hi <= lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + (hi-lo)*0.1}
}

func classColor(class int64) drawing.Color {
	if class == domain.TargetEncodedBad {
		return chart.ColorRed
	}
	return chart.ColorBlue
}

func renderPNG(path string, render func(chart.RendererProvider, io.Writer) error) error {
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
