package training

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"creditrisk/internal/config"
	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/exporter"
	"creditrisk/internal/infrastructure"
	"creditrisk/internal/table"
	"creditrisk/pkg/contracts/domain"
)

// Output file names
const (
	ComparisonCSVFile   = "model_comparison.csv"
	ComparisonXLSXFile  = "model_comparison.xlsx"
	ComparisonChartFile = "model_comparison.png"
	ImportanceCSVFile   = "feature_importance.csv"
	ImportanceChartFile = "feature_importance.png"
)

// MinRows is the smallest table the trainer accepts
const MinRows = 10

// Report is the outcome of a training run
type Report struct {
	TrainRows   int
	TestRows    int
	Results     []Metrics
	KNN         KNNCandidate
	KNNGrid     []KNNCandidate
	Forest      ForestCandidate
	ForestGrid  []ForestCandidate
	Importances []FeatureImportance
	Files       []string
}

// Trainer fits every model on one split and writes the comparison outputs
type Trainer struct {
	cfg       config.TrainingConfig
	outputDir string
	logger    *slog.Logger
}

// NewTrainer creates a trainer writing into outputDir
func NewTrainer(cfg config.TrainingConfig, outputDir string, logger *slog.Logger) *Trainer {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Trainer{cfg: cfg, outputDir: outputDir, logger: infrastructure.WithComponent(logger, "training")}
}

// ConfusionMatrixFile returns the confusion matrix file name of model
func ConfusionMatrixFile(model string) string {
	return strings.ToLower(model) + "_confusion_matrix.csv"
}

// Run trains and evaluates the models on t
func (tr *Trainer) Run(ctx context.Context, t *table.Table) (*Report, error) {
	ds, err := NewDataset(t, domain.ColCreditStanding)
	if err != nil {
		return nil, err
	}
	if ds.Len() < MinRows {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("need at least %d rows, got %d", MinRows, ds.Len()))
	}
	if err := os.MkdirAll(tr.outputDir, 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create output directory", err).WithContext("path", tr.outputDir)
	}

	trainRows, testRows := Split(ds.Len(), tr.cfg.TestRatio, tr.cfg.Seed)
	train, test := ds.Subset(trainRows), ds.Subset(testRows)
	ref, err := test.Instances()
	if err != nil {
		return nil, err
	}
	tr.logger.InfoContext(ctx, "training_started",
		slog.Int("train_rows", train.Len()),
		slog.Int("test_rows", test.Len()),
		slog.Int("features", len(ds.Features)))

	knnModel := NewKNN(tr.cfg.Neighbours, tr.cfg.ValidationRatio, tr.cfg.Seed)
	forestModel := NewRandomForest(tr.cfg.ForestSizes, tr.cfg.ValidationRatio, tr.cfg.Seed)
	models := []Model{NewBaseline(), knnModel, NewNaiveBayes(), forestModel}

	report := &Report{TrainRows: train.Len(), TestRows: test.Len()}
	for _, m := range models {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := m.Fit(train); err != nil {
			return nil, fmt.Errorf("failed to fit %s: %w", m.Name(), err)
		}
		pred, err := m.Predict(test, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to predict with %s: %w", m.Name(), err)
		}
		metrics, err := Evaluate(m.Name(), ref, pred)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, metrics)

		tr.logger.InfoContext(ctx, "model_evaluated",
			slog.String("model", m.Name()),
			slog.Float64("accuracy", metrics.Accuracy),
			slog.Float64("precision", metrics.Precision),
			slog.Float64("recall", metrics.Recall),
			slog.Float64("f1", metrics.F1))

		path := filepath.Join(tr.outputDir, ConfusionMatrixFile(m.Name()))
		if err := writeConfusionMatrix(path, metrics); err != nil {
			return nil, err
		}
		report.Files = append(report.Files, path)
	}
	report.KNN = knnModel.Best()
	report.KNNGrid = knnModel.Grid()
	tr.logger.InfoContext(ctx, "knn_selected",
		slog.Int("k", report.KNN.K),
		slog.String("distance", report.KNN.Distance),
		slog.Float64("validation_f1", report.KNN.F1))
	report.Forest = forestModel.Best()
	report.ForestGrid = forestModel.Grid()
	tr.logger.InfoContext(ctx, "random_forest_selected",
		slog.Int("trees", report.Forest.Trees),
		slog.Int("features_per_tree", report.Forest.Features),
		slog.Float64("validation_f1", report.Forest.F1))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report.Importances, err = PermutationImportance(forestModel, test, ImportanceRepeats, tr.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to compute feature importance: %w", err)
	}
	importanceCSV := filepath.Join(tr.outputDir, ImportanceCSVFile)
	if err := writeImportanceCSV(importanceCSV, report.Importances); err != nil {
		return nil, err
	}
	importancePNG := filepath.Join(tr.outputDir, ImportanceChartFile)
	if err := renderImportanceChart(importancePNG, report.Importances); err != nil {
		return nil, err
	}
	report.Files = append(report.Files, importanceCSV, importancePNG)

	csvPath := filepath.Join(tr.outputDir, ComparisonCSVFile)
	if err := writeComparisonCSV(csvPath, report.Results); err != nil {
		return nil, err
	}
	xlsxPath := filepath.Join(tr.outputDir, ComparisonXLSXFile)
	if err := writeComparisonWorkbook(xlsxPath, report); err != nil {
		return nil, err
	}
	pngPath := filepath.Join(tr.outputDir, ComparisonChartFile)
	if err := renderComparisonChart(pngPath, report.Results); err != nil {
		return nil, err
	}
	report.Files = append(report.Files, csvPath, xlsxPath, pngPath)

	tr.logger.InfoContext(ctx, "training_completed", slog.String("output_dir", tr.outputDir))
	return report, nil
}

var metricHeaders = []string{"model", "accuracy", "precision", "recall", "f1"}

func writeComparisonCSV(path string, results []Metrics) error {
	records := make([][]string, len(results))
	for i, m := range results {
		records[i] = []string{
			m.Model,
			exporter.FormatFloat(m.Accuracy, 4),
			exporter.FormatFloat(m.Precision, 4),
			exporter.FormatFloat(m.Recall, 4),
			exporter.FormatFloat(m.F1, 4),
		}
	}
	return exporter.NewCSVWriter(nil).WriteSimpleCSV(path, metricHeaders, records)
}

func writeImportanceCSV(path string, importances []FeatureImportance) error {
	records := make([][]string, len(importances))
	for i, fi := range importances {
		records[i] = []string{fi.Feature, exporter.FormatFloat(fi.Importance, 4)}
	}
	return exporter.NewCSVWriter(nil).WriteSimpleCSV(path, []string{"feature", "importance"}, records)
}

func writeConfusionMatrix(path string, m Metrics) error {
	classes := []string{ClassGood, ClassBad}
	records := make([][]string, len(classes))
	for i, actual := range classes {
		records[i] = []string{actual}
		for _, predicted := range classes {
			records[i] = append(records[i], exporter.FormatInt(int64(m.Count(actual, predicted))))
		}
	}
	return exporter.NewCSVWriter(nil).WriteSimpleCSV(path,
		[]string{"actual", "predicted_" + ClassGood, "predicted_" + ClassBad}, records)
}

func writeComparisonWorkbook(path string, report *Report) error {
	comparison := exporter.Sheet{Name: "comparison", Headers: metricHeaders}
	for _, m := range report.Results {
		comparison.Rows = append(comparison.Rows, []interface{}{m.Model, m.Accuracy, m.Precision, m.Recall, m.F1})
	}

	grid := exporter.Sheet{Name: "knn_grid", Headers: []string{"k", "distance", "validation_f1", "selected"}}
	for _, c := range report.KNNGrid {
		grid.Rows = append(grid.Rows, []interface{}{c.K, c.Distance, c.F1, c == report.KNN})
	}

	forest := exporter.Sheet{Name: "forest_grid", Headers: []string{"trees", "features_per_tree", "validation_f1", "selected"}}
	for _, c := range report.ForestGrid {
		forest.Rows = append(forest.Rows, []interface{}{c.Trees, c.Features, c.F1, c == report.Forest})
	}

	importance := exporter.Sheet{Name: "feature_importance", Headers: []string{"feature", "importance"}}
	for _, fi := range report.Importances {
		importance.Rows = append(importance.Rows, []interface{}{fi.Feature, fi.Importance})
	}

	split := exporter.Sheet{
		Name:    "split",
		Headers: []string{"train_rows", "test_rows"},
		Rows:    [][]interface{}{{report.TrainRows, report.TestRows}},
	}
	return exporter.WriteWorkbook(path, comparison, grid, forest, importance, split)
}
