package operations

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"creditrisk/internal/config"
	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/exporter"
	"creditrisk/internal/infrastructure"
	"creditrisk/internal/shared/testutil"
	"creditrisk/pkg/contracts/domain"
)

func newTestPipeline(t *testing.T, input string) (*PreprocessPipeline, PreprocessOptions) {
	t.Helper()
	dir := t.TempDir()
	opts := PreprocessOptions{
		InputPath:  input,
		OutputPath: filepath.Join(dir, "processed", "german_processed.csv"),
		ReportPath: filepath.Join(dir, "report.xlsx"),
		Validation: config.Default().Validation,
	}
	return NewPreprocessPipeline(opts, infrastructure.NewNoopTelemetry(), testutil.DiscardLogger()), opts
}

func TestPreprocessPipeline_Success(t *testing.T) {
	input := testutil.WriteRawFile(t, t.TempDir(), testutil.RawRecords...)
	pipeline, opts := newTestPipeline(t, input)

	result, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, opts.OutputPath, result.OutputPath)
	assert.Empty(t, result.MappingGaps)
	require.Len(t, result.Reports, 2)
	assert.Equal(t, "raw", result.Reports[0].Suite)
	assert.Equal(t, "encoded", result.Reports[1].Suite)
	for _, s := range result.State.Steps() {
		assert.Equal(t, StepStatusCompleted, s.GetStatus(), s.ID)
	}

	out, err := exporter.ReadTable(opts.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, 4, out.NumRows())
	for _, col := range out.Columns() {
		assert.True(t, col.IsNumeric(), col.Name())
	}

	target, ok := out.Column(domain.ColCreditStanding)
	require.True(t, ok)
	for i, want := range []int64{0, 1, 0, 0} {
		assert.Equal(t, want, target.Int(i), "row %d", i)
	}

	// Categories of Checking_Acc_Status sorted: "0-200 DM", "< 0 DM", "No Checking Account"
	assert.True(t, out.Has("Checking_Acc_Status_< 0 DM"))
	assert.True(t, out.Has("Checking_Acc_Status_No Checking Account"))
	assert.False(t, out.Has("Checking_Acc_Status_0-200 DM"))
	assert.False(t, out.Has(domain.ColCheckingAccStatus))

	assert.FileExists(t, opts.ReportPath)
}

func TestPreprocessPipeline_MappingGapIsReported(t *testing.T) {
	records := append([]string(nil), testutil.RawRecords...)
	records[3] = strings.Replace(records[3], "A11 ", "A15 ", 1)
	input := testutil.WriteRawFile(t, t.TempDir(), records...)
	_, opts := newTestPipeline(t, input)
	logs := testutil.NewLogRecorder()
	pipeline := NewPreprocessPipeline(opts, infrastructure.NewNoopTelemetry(), logs.Logger())

	result, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.MappingGap{{Column: domain.ColCheckingAccStatus, Code: "A15", Rows: 1}}, result.MappingGaps)
	assert.Equal(t, 1, result.State.GetStep(StepMapValues).Metadata["mapping_gaps"])

	gaps := logs.Find("mapping_gap")
	require.Len(t, gaps, 1)
	assert.Equal(t, slog.LevelWarn, gaps[0].Level)
	assert.Equal(t, domain.ColCheckingAccStatus, gaps[0].Attrs["column"])
	assert.Equal(t, "A15", gaps[0].Attrs["code"])
}

// badTwin and goodTwin return line with its credit standing flipped
func badTwin(line string) string  { return strings.TrimSuffix(line, " 1") + " 2" }
func goodTwin(line string) string { return strings.TrimSuffix(line, " 2") + " 1" }

func TestPreprocessPipeline_TargetCorrelationAborts(t *testing.T) {
	input := testutil.WriteRawFile(t, t.TempDir(),
		testutil.RawRecords[0], badTwin(testutil.RawRecords[0]),
		testutil.RawRecords[2], badTwin(testutil.RawRecords[2]),
	)
	pipeline, opts := newTestPipeline(t, input)

	result, err := pipeline.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDataQuality), err.Error())

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "target_correlation", appErr.Context["check"])
	assert.Equal(t, domain.ColCreditStanding, appErr.Context["column"])

	assert.Equal(t, StepStatusFailed, result.State.GetStep(StepValidateEncoded).GetStatus())
	assert.Equal(t, StepStatusSkipped, result.State.GetStep(StepPersist).GetStatus())
	assert.NoFileExists(t, opts.OutputPath)

	require.Len(t, result.Reports, 2)
	assert.NoError(t, result.Reports[0].Err())
	assert.Equal(t, "target_correlation", result.Reports[1].Failures()[0].Name)
}

func TestPreprocessPipeline_Failures(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		missing  bool
		step     string
		errType  apperrors.ErrorType
		opType   ErrorType
		contains string
	}{
		{
			name:    "missing input file",
			missing: true,
			step:    StepLoad,
			errType: apperrors.ErrTypeNotFound,
			opType:  ErrorTypeExecution,
		},
		{
			name:    "short row",
			lines:   []string{testutil.RawRecords[0], "A11 6 A34"},
			step:    StepLoad,
			errType: apperrors.ErrTypeSchemaMismatch,
			opType:  ErrorTypeValidation,
		},
		{
			name:     "duplicate rows",
			lines:    []string{testutil.RawRecords[0], testutil.RawRecords[1], testutil.RawRecords[0]},
			step:     StepValidateRaw,
			errType:  apperrors.ErrTypeDataQuality,
			opType:   ErrorTypeValidation,
			contains: "duplicates",
		},
		{
			name: "age out of range after encoding",
			lines: []string{
				testutil.RawRecords[0],
				strings.Replace(testutil.RawRecords[1], " 22 ", " 17 ", 1),
			},
			step:     StepValidateEncoded,
			errType:  apperrors.ErrTypeDataQuality,
			opType:   ErrorTypeValidation,
			contains: domain.ColAge,
		},
		{
			name: "no feature correlates with target",
			lines: []string{
				testutil.RawRecords[0], badTwin(testutil.RawRecords[0]),
				testutil.RawRecords[1], goodTwin(testutil.RawRecords[1]),
			},
			step:     StepValidateEncoded,
			errType:  apperrors.ErrTypeDataQuality,
			opType:   ErrorTypeValidation,
			contains: "check=target_correlation",
		},
		{
			name:     "class imbalance",
			lines:    testutil.RawRecords[2:],
			step:     StepValidateEncoded,
			errType:  apperrors.ErrTypeDataQuality,
			opType:   ErrorTypeValidation,
			contains: "class_balance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := filepath.Join(t.TempDir(), "absent.data")
			if !tt.missing {
				input = testutil.WriteRawFile(t, t.TempDir(), tt.lines...)
			}
			pipeline, opts := newTestPipeline(t, input)

			result, err := pipeline.Run(context.Background())
			require.Error(t, err)

			var opErr *OperationError
			require.ErrorAs(t, err, &opErr)
			assert.Equal(t, tt.step, opErr.Step)
			assert.Equal(t, tt.opType, opErr.Type)
			assert.True(t, apperrors.IsType(err, tt.errType), err.Error())
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}

			assert.NoFileExists(t, opts.OutputPath)
			assert.Empty(t, result.OutputPath)
			assert.Equal(t, StepStatusSkipped, result.State.GetStep(StepPersist).GetStatus())
			assert.FileExists(t, opts.ReportPath)
		})
	}
}

func TestPreprocessPipeline_ReportContents(t *testing.T) {
	input := testutil.WriteRawFile(t, t.TempDir(), testutil.RawRecords[0], testutil.RawRecords[1], testutil.RawRecords[0])
	pipeline, opts := newTestPipeline(t, input)

	_, err := pipeline.Run(context.Background())
	require.Error(t, err)

	f, err := excelize.OpenFile(opts.ReportPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("checks")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"suite", "check", "severity", "passed", "column", "message"}, rows[0])

	var duplicates []string
	for _, row := range rows[1:] {
		if len(row) > 1 && row[1] == "duplicates" {
			duplicates = row
		}
	}
	require.NotNil(t, duplicates)
	assert.Equal(t, "raw", duplicates[0])
	assert.Equal(t, "hard", duplicates[2])
	assert.Equal(t, "FALSE", duplicates[3])

	steps, err := f.GetRows("steps")
	require.NoError(t, err)
	require.Len(t, steps, 7)
	assert.Equal(t, []string{StepValidateRaw, "Validate raw data", "failed"}, steps[2][:3])
	assert.Equal(t, "skipped", steps[3][2])
}

func TestPreprocessPipeline_NoReportWhenPathEmpty(t *testing.T) {
	input := testutil.WriteRawFile(t, t.TempDir(), testutil.RawRecords...)
	out := filepath.Join(t.TempDir(), "out.csv")

	pipeline := NewPreprocessPipeline(PreprocessOptions{
		InputPath:  input,
		OutputPath: out,
		Validation: config.Default().Validation,
	}, nil, testutil.DiscardLogger())

	result, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, out)
	assert.NotNil(t, result.Table)
}
