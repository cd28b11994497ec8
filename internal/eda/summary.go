package eda

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"creditrisk/internal/exporter"
	"creditrisk/internal/table"
)

// FeatureSummary describes the distribution of one numeric column
type FeatureSummary struct {
	Feature string
	Count   int
	Mean    float64
	Median  float64
	Std     float64
	Min     float64
	Max     float64
}

// GroupSummary describes one feature within one target class
type GroupSummary struct {
	Class   int64
	Feature string
	Mean    float64
	Median  float64
	Std     float64
}

// Summarize computes a FeatureSummary for every numeric column of t, in
// column order. Std is the sample standard deviation; it is NaN for a
// single value.
func Summarize(t *table.Table) ([]FeatureSummary, error) {
	var out []FeatureSummary
	for _, col := range t.Columns() {
		if !col.IsNumeric() {
			continue
		}
		data := present(col, nil)
		s := FeatureSummary{Feature: col.Name(), Count: len(data)}
		if len(data) > 0 {
			var err error
			if s.Mean, err = stats.Mean(data); err != nil {
				return nil, err
			}
			if s.Median, err = stats.Median(data); err != nil {
				return nil, err
			}
			if s.Min, err = stats.Min(data); err != nil {
				return nil, err
			}
			if s.Max, err = stats.Max(data); err != nil {
				return nil, err
			}
			s.Std = sampleStd(data)
		}
		out = append(out, s)
	}
	return out, nil
}

// GroupStatistics computes mean, median and std of features per value of target
func GroupStatistics(t *table.Table, target string, features []string) ([]GroupSummary, error) {
	y, ok := t.Column(target)
	if !ok {
		return nil, nil
	}
	classes := map[int64]bool{}
	for i := 0; i < y.Len(); i++ {
		if !y.IsNull(i) {
			classes[y.Int(i)] = true
		}
	}

	var out []GroupSummary
	for _, class := range sortedClasses(classes) {
		for _, feature := range features {
			col, ok := t.Column(feature)
			if !ok || !col.IsNumeric() {
				continue
			}
			data := present(col, func(i int) bool { return !y.IsNull(i) && y.Int(i) == class })
			g := GroupSummary{Class: class, Feature: feature}
			if len(data) > 0 {
				var err error
				if g.Mean, err = stats.Mean(data); err != nil {
					return nil, err
				}
				if g.Median, err = stats.Median(data); err != nil {
					return nil, err
				}
				g.Std = sampleStd(data)
			}
			out = append(out, g)
		}
	}
	return out, nil
}

func present(col *table.Column, keep func(i int) bool) stats.Float64Data {
	var data stats.Float64Data
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) || (keep != nil && !keep(i)) {
			continue
		}
		data = append(data, float64(col.Int(i)))
	}
	return data
}

func sampleStd(data stats.Float64Data) float64 {
	if len(data) < 2 {
		return math.NaN()
	}
	std, err := stats.StandardDeviationSample(data)
	if err != nil {
		return math.NaN()
	}
	return std
}

func sortedClasses(classes map[int64]bool) []int64 {
	out := make([]int64, 0, len(classes))
	for c := range classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func writeSummaries(path string, summaries []FeatureSummary) error {
	records := make([][]string, len(summaries))
	for i, s := range summaries {
		records[i] = []string{
			s.Feature,
			exporter.FormatInt(int64(s.Count)),
			exporter.FormatFloat(s.Mean, 4),
			exporter.FormatFloat(s.Median, 4),
			exporter.FormatFloat(s.Std, 4),
			exporter.FormatFloat(s.Min, 4),
			exporter.FormatFloat(s.Max, 4),
		}
	}
	return exporter.NewCSVWriter(nil).WriteSimpleCSV(path,
		[]string{"feature", "count", "mean", "median", "std", "min", "max"}, records)
}

func writeGroupStatistics(path string, groups []GroupSummary) error {
	records := make([][]string, len(groups))
	for i, g := range groups {
		records[i] = []string{
			exporter.FormatInt(g.Class),
			g.Feature,
			exporter.FormatFloat(g.Mean, 4),
			exporter.FormatFloat(g.Median, 4),
			exporter.FormatFloat(g.Std, 4),
		}
	}
	return exporter.NewCSVWriter(nil).WriteSimpleCSV(path,
		[]string{"class", "feature", "mean", "median", "std"}, records)
}
