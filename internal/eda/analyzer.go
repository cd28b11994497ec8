package eda

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/infrastructure"
	"creditrisk/internal/table"
	"creditrisk/internal/validation"
	"creditrisk/pkg/contracts/domain"
)

// Output file names
const (
	CorrelationChartFile  = "correlation_analysis.png"
	DistributionChartFile = "credit_standing_distribution.png"
	FeatureSummaryFile    = "feature_summary.csv"
	GroupStatisticsFile   = "group_statistics.csv"
)

// Bins is the histogram bin count of the feature distribution charts
const Bins = 30

// DistributionFeatures are the features plotted by class
var DistributionFeatures = []string{domain.ColDuration, domain.ColCreditAmount, domain.ColAge}

// Result lists what an analysis wrote
type Result struct {
	Correlations []validation.FeatureCorrelation
	Files        []string
}

// Analyzer writes the EDA outputs for a table
type Analyzer struct {
	outputDir string
	target    string
	features  []string
	logger    *slog.Logger
}

// NewAnalyzer creates an analyzer writing into outputDir
func NewAnalyzer(outputDir string, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Analyzer{
		outputDir: outputDir,
		target:    domain.ColCreditStanding,
		features:  DistributionFeatures,
		logger:    infrastructure.WithComponent(logger, "eda"),
	}
}

// FeatureChartFile returns the histogram file name of feature
func FeatureChartFile(feature string) string {
	r := strings.NewReplacer(" ", "_", "(", "", ")", "", "/", "_")
	return fmt.Sprintf("feature_distributions_%s.png", r.Replace(feature))
}

// Validate checks that t can be analysed: it must have rows, a numeric
// target and every distribution feature as a numeric column.
func (a *Analyzer) Validate(t *table.Table) error {
	if t == nil || t.NumRows() == 0 {
		return apperrors.NewAppValidationError("input table is empty")
	}
	required := append([]string{a.target}, a.features...)
	for _, name := range required {
		col, ok := t.Column(name)
		if !ok {
			return apperrors.NewSchemaMismatchError(fmt.Sprintf("required column %q not found", name)).
				WithContext("column", name)
		}
		if !col.IsNumeric() {
			return apperrors.NewSchemaTypeError(name, domain.KindInteger, col.Kind())
		}
	}
	return nil
}

// Run validates t and writes every output file
func (a *Analyzer) Run(ctx context.Context, t *table.Table) (*Result, error) {
	if err := a.Validate(t); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(a.outputDir, 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create output directory", err).WithContext("path", a.outputDir)
	}

	corrs, err := validation.TargetCorrelations(t, a.target)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(corrs, func(i, j int) bool { return corrs[i].Correlation > corrs[j].Correlation })

	result := &Result{Correlations: corrs}
	write := func(name string, render func(path string) error) error {
		path := filepath.Join(a.outputDir, name)
		if err := render(path); err != nil {
			return err
		}
		result.Files = append(result.Files, path)
		a.logger.InfoContext(ctx, "eda_output_written", slog.String("path", path))
		return nil
	}

	if err := write(CorrelationChartFile, func(p string) error { return renderCorrelationChart(p, a.target, corrs) }); err != nil {
		return nil, err
	}

	target, _ := t.Column(a.target)
	if err := write(DistributionChartFile, func(p string) error { return renderClassDistribution(p, a.target, target) }); err != nil {
		return nil, err
	}

	for _, feature := range a.features {
		col, _ := t.Column(feature)
		if err := write(FeatureChartFile(feature), func(p string) error {
			return renderHistogram(p, feature, a.target, col, target, Bins)
		}); err != nil {
			return nil, err
		}
	}

	summaries, err := Summarize(t)
	if err != nil {
		return nil, err
	}
	if err := write(FeatureSummaryFile, func(p string) error { return writeSummaries(p, summaries) }); err != nil {
		return nil, err
	}

	groups, err := GroupStatistics(t, a.target, a.features)
	if err != nil {
		return nil, err
	}
	if err := write(GroupStatisticsFile, func(p string) error { return writeGroupStatistics(p, groups) }); err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "eda_completed",
		slog.String("output_dir", a.outputDir),
		slog.Int("files", len(result.Files)))
	return result, nil
}
