package operations

import (
	"context"
	"log/slog"
	"time"

	"creditrisk/internal/config"
	"creditrisk/internal/download"
	"creditrisk/internal/eda"
	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/exporter"
	"creditrisk/internal/infrastructure"
	"creditrisk/internal/table"
	"creditrisk/internal/training"
	"creditrisk/internal/validation"
)

// Operation names of the remaining stages
const (
	OperationDownload = "download"
	OperationEDA      = "eda"
	OperationTrain    = "train"
)

// Step IDs of the remaining stages
const (
	StepFetch         = "fetch"
	StepLoadProcessed = "load_processed"
	StepAnalyze       = "analyze"
	StepTrain         = "train"
)

// Context keys of the remaining stages
const (
	ContextKeyProcessedTable = "processed_table"
	ContextKeyEDAResult      = "eda_result"
	ContextKeyTrainingReport = "training_report"
	ContextKeyBytesFetched   = "bytes_fetched"
)

// DownloadSteps fetches url into output
func DownloadSteps(url, output string, timeout time.Duration, tel *infrastructure.Telemetry, logger *slog.Logger) []Step {
	return []Step{
		&fetchStep{
			BaseStep:   NewBaseStep(StepFetch, "Download raw data"),
			url:        url,
			output:     output,
			downloader: download.NewDownloader(timeout, tel, logger),
		},
	}
}

// EDASteps loads the processed table at input and writes the EDA outputs into outputDir
func EDASteps(input, outputDir string, logger *slog.Logger) []Step {
	return []Step{
		newLoadProcessedStep(input, logger),
		&analyzeStep{
			BaseStep:  NewBaseStep(StepAnalyze, "Exploratory analysis"),
			outputDir: outputDir,
			files:     validation.NewFileValidator(logger),
			analyzer:  eda.NewAnalyzer(outputDir, logger),
		},
	}
}

// TrainingSteps loads the processed table at input and writes model results into outputDir
func TrainingSteps(input, outputDir string, cfg config.TrainingConfig, logger *slog.Logger) []Step {
	return []Step{
		newLoadProcessedStep(input, logger),
		&trainStep{
			BaseStep:  NewBaseStep(StepTrain, "Train models"),
			outputDir: outputDir,
			files:     validation.NewFileValidator(logger),
			trainer:   training.NewTrainer(cfg, outputDir, logger),
		},
	}
}

type fetchStep struct {
	BaseStep
	url        string
	output     string
	downloader *download.Downloader
}

func (s *fetchStep) Validate(state *OperationState) error {
	if s.url == "" {
		return apperrors.NewAppValidationError("download URL is required")
	}
	if s.output == "" {
		return apperrors.NewAppValidationError("output path is required")
	}
	return nil
}

func (s *fetchStep) Execute(ctx context.Context, state *OperationState) error {
	n, err := s.downloader.Fetch(ctx, s.url, s.output)
	if err != nil {
		return err
	}
	state.GetStep(s.ID()).SetMetadata("bytes", n)
	state.SetContext(ContextKeyBytesFetched, n)
	return nil
}

type loadProcessedStep struct {
	BaseStep
	path  string
	files *validation.FileValidator
}

func newLoadProcessedStep(path string, logger *slog.Logger) *loadProcessedStep {
	return &loadProcessedStep{
		BaseStep: NewBaseStep(StepLoadProcessed, "Load processed data"),
		path:     path,
		files:    validation.NewFileValidator(logger),
	}
}

func (s *loadProcessedStep) Validate(state *OperationState) error {
	if s.path == "" {
		return apperrors.NewAppValidationError("input path is required")
	}
	return nil
}

func (s *loadProcessedStep) Execute(ctx context.Context, state *OperationState) error {
	if err := s.files.ValidateCSVFile(s.path); err != nil {
		return err
	}
	t, err := exporter.ReadTable(s.path)
	if err != nil {
		return err
	}
	state.GetStep(s.ID()).SetMetadata("rows", t.NumRows())
	state.SetContext(ContextKeyProcessedTable, t)
	return nil
}

type analyzeStep struct {
	BaseStep
	outputDir string
	files     *validation.FileValidator
	analyzer  *eda.Analyzer
}

func (s *analyzeStep) Validate(state *OperationState) error {
	_, err := contextValue[*table.Table](state, ContextKeyProcessedTable)
	return err
}

func (s *analyzeStep) Execute(ctx context.Context, state *OperationState) error {
	t, err := contextValue[*table.Table](state, ContextKeyProcessedTable)
	if err != nil {
		return err
	}
	if err := s.files.ValidateOutputDirectory(s.outputDir); err != nil {
		return err
	}
	result, err := s.analyzer.Run(ctx, t)
	if err != nil {
		return err
	}
	state.GetStep(s.ID()).SetMetadata("files", len(result.Files))
	state.SetContext(ContextKeyEDAResult, result)
	return nil
}

type trainStep struct {
	BaseStep
	outputDir string
	files     *validation.FileValidator
	trainer   *training.Trainer
}

func (s *trainStep) Validate(state *OperationState) error {
	_, err := contextValue[*table.Table](state, ContextKeyProcessedTable)
	return err
}

func (s *trainStep) Execute(ctx context.Context, state *OperationState) error {
	t, err := contextValue[*table.Table](state, ContextKeyProcessedTable)
	if err != nil {
		return err
	}
	if err := s.files.ValidateOutputDirectory(s.outputDir); err != nil {
		return err
	}
	report, err := s.trainer.Run(ctx, t)
	if err != nil {
		return err
	}
	state.GetStep(s.ID()).SetMetadata("models", len(report.Results))
	state.SetContext(ContextKeyTrainingReport, report)
	return nil
}
