package operations

import (
	"context"
	"fmt"
	"log/slog"

	"creditrisk/internal/config"
	"creditrisk/internal/dataprocessing"
	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/exporter"
	"creditrisk/internal/infrastructure"
	"creditrisk/internal/table"
	"creditrisk/internal/validation"
	"creditrisk/pkg/contracts/domain"
)

// OperationPreprocess names the preprocess operation in logs, spans and metrics
const OperationPreprocess = "preprocess"

// Step IDs of the preprocess operation
const (
	StepLoad            = "load"
	StepValidateRaw     = "validate_raw"
	StepMapValues       = "map_values"
	StepEncode          = "encode"
	StepValidateEncoded = "validate_encoded"
	StepPersist         = "persist"
)

// Operation context keys
const (
	ContextKeyRawTable     = "raw_table"
	ContextKeyMappedTable  = "mapped_table"
	ContextKeyEncodedTable = "encoded_table"
	ContextKeyMappingGaps  = "mapping_gaps"
	ContextKeyReports      = "validation_reports"
)

// PreprocessOptions configures one preprocess run
type PreprocessOptions struct {
	InputPath  string
	OutputPath string
	// ReportPath, when set, receives an XLSX workbook of every check result
	ReportPath string
	Mappings   domain.MappingTable
	Validation config.ValidationConfig
	Schema     domain.Schema
}

// PreprocessResult is what a run produced, also on failure
type PreprocessResult struct {
	State       *OperationState
	Table       *table.Table
	MappingGaps []domain.MappingGap
	Reports     []validation.Report
	OutputPath  string
}

// PreprocessPipeline loads, validates, maps, encodes and writes the dataset
type PreprocessPipeline struct {
	opts    PreprocessOptions
	manager *Manager
	logger  *slog.Logger
}

// NewPreprocessPipeline creates the pipeline. A zero Schema means the German
// Credit schema and nil Mappings means the built-in mapping table.
func NewPreprocessPipeline(opts PreprocessOptions, tel *infrastructure.Telemetry, logger *slog.Logger) *PreprocessPipeline {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if opts.Schema.Len() == 0 {
		opts.Schema = domain.GermanCredit()
	}
	return &PreprocessPipeline{
		opts:    opts,
		manager: NewManager(tel, logger),
		logger:  infrastructure.WithComponent(logger, OperationPreprocess),
	}
}

// Steps returns the ordered steps of the operation
func (p *PreprocessPipeline) Steps() []Step {
	metrics := p.manager.Tracer().Metrics()
	return []Step{
		&loadStep{BaseStep: NewBaseStep(StepLoad, "Load raw data"), path: p.opts.InputPath,
			loader: dataprocessing.NewRawLoader(p.opts.Schema, p.logger), metrics: metrics},
		&validateStep{BaseStep: NewBaseStep(StepValidateRaw, "Validate raw data"), input: ContextKeyRawTable,
			suite: validation.RawSuite(p.opts.Schema, p.opts.Validation, p.logger), metrics: metrics},
		&mapStep{BaseStep: NewBaseStep(StepMapValues, "Map categorical values"), mappings: p.opts.Mappings,
			logger: p.logger, metrics: metrics},
		&encodeStep{BaseStep: NewBaseStep(StepEncode, "Encode features"),
			encoder: dataprocessing.NewEncoder(p.opts.Schema, p.logger)},
		&validateStep{BaseStep: NewBaseStep(StepValidateEncoded, "Validate encoded data"), input: ContextKeyEncodedTable,
			suite: validation.EncodedSuite(p.opts.Schema, p.opts.Validation, p.logger), metrics: metrics},
		&persistStep{BaseStep: NewBaseStep(StepPersist, "Write processed data"), path: p.opts.OutputPath,
			writer: exporter.NewCSVWriter(p.logger), metrics: metrics},
	}
}

// Run executes the pipeline. The output file is only written when every
// hard check passed; the report, if requested, is written either way.
func (p *PreprocessPipeline) Run(ctx context.Context) (*PreprocessResult, error) {
	if p.opts.Mappings == nil {
		m, err := config.DefaultMappings()
		if err != nil {
			return nil, NewFatalError("built-in mapping table is invalid", err)
		}
		p.opts.Mappings = m
	}

	state, err := p.manager.Execute(ctx, OperationPreprocess, p.Steps())

	result := &PreprocessResult{State: state}
	if t, cerr := contextValue[*table.Table](state, ContextKeyEncodedTable); cerr == nil {
		result.Table = t
	}
	if gaps, cerr := contextValue[[]domain.MappingGap](state, ContextKeyMappingGaps); cerr == nil {
		result.MappingGaps = gaps
	}
	if reports, cerr := contextValue[[]validation.Report](state, ContextKeyReports); cerr == nil {
		result.Reports = reports
	}
	if err == nil {
		result.OutputPath = p.opts.OutputPath
	}

	if p.opts.ReportPath != "" {
		if rerr := WriteValidationReport(p.opts.ReportPath, result); rerr != nil {
			p.logger.ErrorContext(ctx, "report_write_failed",
				slog.String("path", p.opts.ReportPath),
				slog.String("error", rerr.Error()))
			if err == nil {
				err = WrapError(rerr, "report")
			}
		} else {
			p.logger.InfoContext(ctx, "report_written", slog.String("path", p.opts.ReportPath))
		}
	}

	return result, err
}

// WriteValidationReport writes check results and mapping gaps to an XLSX workbook
func WriteValidationReport(path string, result *PreprocessResult) error {
	checks := exporter.Sheet{
		Name:    "checks",
		Headers: []string{"suite", "check", "severity", "passed", "column", "message"},
	}
	for _, report := range result.Reports {
		for _, res := range report.Results {
			checks.Rows = append(checks.Rows, []interface{}{
				report.Suite, res.Name, string(res.Severity), res.Passed, res.Column, res.Message,
			})
		}
	}

	gaps := exporter.Sheet{
		Name:    "mapping_gaps",
		Headers: []string{"column", "code", "rows"},
	}
	for _, g := range result.MappingGaps {
		gaps.Rows = append(gaps.Rows, []interface{}{g.Column, g.Code, g.Rows})
	}

	steps := exporter.Sheet{
		Name:    "steps",
		Headers: []string{"step", "name", "status", "duration_seconds", "message"},
	}
	if result.State != nil {
		for _, s := range result.State.Steps() {
			msg := s.Message
			if s.Error != nil {
				msg = s.Error.Error()
			}
			steps.Rows = append(steps.Rows, []interface{}{
				s.ID, s.Name, string(s.GetStatus()), s.Duration().Seconds(), msg,
			})
		}
	}

	return exporter.WriteWorkbook(path, checks, gaps, steps)
}

type loadStep struct {
	BaseStep
	path    string
	loader  *dataprocessing.RawLoader
	metrics *infrastructure.PipelineMetrics
}

func (s *loadStep) Validate(state *OperationState) error {
	if s.path == "" {
		return apperrors.NewAppValidationError("input path is required")
	}
	return nil
}

func (s *loadStep) Execute(ctx context.Context, state *OperationState) error {
	t, err := s.loader.Load(s.path)
	if err != nil {
		return err
	}
	s.metrics.RecordRows(ctx, s.ID(), t.NumRows())
	state.GetStep(s.ID()).SetMetadata("rows", t.NumRows())
	state.SetContext(ContextKeyRawTable, t)
	return nil
}

// validateStep runs a check suite over a table from the operation context.
// The first failed hard check fails the step.
type validateStep struct {
	BaseStep
	input   string
	suite   *validation.Suite
	metrics *infrastructure.PipelineMetrics
}

func (s *validateStep) Validate(state *OperationState) error {
	_, err := contextValue[*table.Table](state, s.input)
	return err
}

func (s *validateStep) Execute(ctx context.Context, state *OperationState) error {
	t, err := contextValue[*table.Table](state, s.input)
	if err != nil {
		return err
	}

	report := s.suite.Run(ctx, t)
	for _, res := range report.Results {
		s.metrics.RecordCheck(ctx, res.Name, string(res.Severity), res.Passed)
	}

	reports, _ := contextValue[[]validation.Report](state, ContextKeyReports)
	state.SetContext(ContextKeyReports, append(reports, report))

	stepState := state.GetStep(s.ID())
	stepState.SetMetadata("checks", len(s.suite.Checks()))
	stepState.SetMetadata("failures", len(report.Failures()))
	stepState.SetMetadata("warnings", len(report.Warnings()))

	if err := report.Err(); err != nil {
		return fmt.Errorf("%s check failed: %w", s.suite.Name(), err)
	}
	return nil
}

type mapStep struct {
	BaseStep
	mappings domain.MappingTable
	logger   *slog.Logger
	metrics  *infrastructure.PipelineMetrics
}

func (s *mapStep) Validate(state *OperationState) error {
	_, err := contextValue[*table.Table](state, ContextKeyRawTable)
	return err
}

func (s *mapStep) Execute(ctx context.Context, state *OperationState) error {
	t, err := contextValue[*table.Table](state, ContextKeyRawTable)
	if err != nil {
		return err
	}

	mapped, gaps := dataprocessing.ApplyMappings(t, s.mappings)
	for _, g := range gaps {
		s.logger.WarnContext(ctx, "mapping_gap",
			slog.String("column", g.Column),
			slog.String("code", g.Code),
			slog.Int("rows", g.Rows))
		s.metrics.RecordMappingGaps(ctx, g.Column, g.Rows)
	}

	state.GetStep(s.ID()).SetMetadata("mapping_gaps", len(gaps))
	state.SetContext(ContextKeyMappingGaps, gaps)
	state.SetContext(ContextKeyMappedTable, mapped)
	return nil
}

type encodeStep struct {
	BaseStep
	encoder *dataprocessing.Encoder
}

func (s *encodeStep) Validate(state *OperationState) error {
	_, err := contextValue[*table.Table](state, ContextKeyMappedTable)
	return err
}

func (s *encodeStep) Execute(ctx context.Context, state *OperationState) error {
	t, err := contextValue[*table.Table](state, ContextKeyMappedTable)
	if err != nil {
		return err
	}
	encoded, err := s.encoder.Encode(t)
	if err != nil {
		return err
	}
	state.GetStep(s.ID()).SetMetadata("columns", encoded.NumCols())
	state.SetContext(ContextKeyEncodedTable, encoded)
	return nil
}

type persistStep struct {
	BaseStep
	path    string
	writer  *exporter.CSVWriter
	metrics *infrastructure.PipelineMetrics
}

func (s *persistStep) Validate(state *OperationState) error {
	if s.path == "" {
		return apperrors.NewAppValidationError("output path is required")
	}
	_, err := contextValue[*table.Table](state, ContextKeyEncodedTable)
	return err
}

func (s *persistStep) Execute(ctx context.Context, state *OperationState) error {
	t, err := contextValue[*table.Table](state, ContextKeyEncodedTable)
	if err != nil {
		return err
	}
	if err := s.writer.WriteTable(s.path, t); err != nil {
		if _, ok := apperrors.TypeOf(err); ok {
			return err
		}
		return apperrors.NewStorageError("failed to write processed data", err).WithContext("path", s.path)
	}
	s.metrics.RecordRows(ctx, s.ID(), t.NumRows())
	return nil
}
