package validation

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditrisk/internal/config"
	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/table"
	"creditrisk/pkg/contracts/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func passing(name string, sev Severity) Check {
	return Check{Name: name, Severity: sev, Run: func(*table.Table) CheckResult {
		return CheckResult{Passed: true}
	}}
}

func failing(name string, sev Severity) Check {
	return Check{Name: name, Severity: sev, Run: func(*table.Table) CheckResult {
		return CheckResult{Column: "col_" + name, Message: name + " failed"}
	}}
}

func TestSuite_ReportOrderAndSeverity(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		t.Run(map[bool]string{false: "sequential", true: "concurrent"}[concurrent], func(t *testing.T) {
			suite := NewSuite("test", quietLogger(),
				passing("a", SeverityHard),
				failing("b", SeveritySoft),
				failing("c", SeverityHard),
				failing("d", SeverityHard),
				passing("e", SeveritySoft),
			).Concurrent(concurrent)

			report := suite.Run(context.Background(), table.MustNew(ints("x", 1)))

			require.Len(t, report.Results, 5)
			for i, name := range []string{"a", "b", "c", "d", "e"} {
				assert.Equal(t, name, report.Results[i].Name)
			}
			assert.Len(t, report.Failures(), 2)
			assert.Len(t, report.Warnings(), 1)

			err := report.Err()
			require.Error(t, err)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ErrTypeDataQuality, appErr.Type)
			assert.Equal(t, "c", appErr.Context["check"])
			assert.Equal(t, "col_c", appErr.Context["column"])
		})
	}
}

func TestSuite_OnlySoftFailuresIsNoError(t *testing.T) {
	report := NewSuite("soft", quietLogger(), failing("w", SeveritySoft)).
		Run(context.Background(), table.MustNew(ints("x", 1)))

	assert.NoError(t, report.Err())
	assert.Len(t, report.Warnings(), 1)
}

func encodedFixture(target []int64) *table.Table {
	n := len(target)
	col := func(name string, v int64) *table.Column {
		values := make([]int64, n)
		for i := range values {
			values[i] = v + int64(i)
		}
		return table.NewIntColumn(name, values)
	}
	return table.MustNew(
		col(domain.ColDuration, 6),
		col(domain.ColCreditAmount, 1000),
		col(domain.ColInstallmentRate, 1),
		col(domain.ColResidenceSince, 1),
		col(domain.ColAge, 20),
		col(domain.ColExistingCredits, 1),
		col(domain.ColNumPeopleMaintained, 1),
		table.NewIntColumn(domain.ColCreditStanding, target),
		table.NewIntColumn("Housing_Rent", []int64{0, 1, 0, 1, 0, 1, 0, 1, 0, 1}[:n]),
	)
}

func TestEncodedSuite(t *testing.T) {
	cfg := config.Default().Validation

	t.Run("valid table passes", func(t *testing.T) {
		tbl := encodedFixture([]int64{0, 1, 0, 0, 1, 0, 0, 1, 0, 0})
		report := EncodedSuite(domain.GermanCredit(), cfg, quietLogger()).Run(context.Background(), tbl)
		assert.NoError(t, report.Err())
		assert.Empty(t, report.Failures())
	})

	t.Run("all one class aborts", func(t *testing.T) {
		tbl := encodedFixture([]int64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
		report := EncodedSuite(domain.GermanCredit(), cfg, quietLogger()).Run(context.Background(), tbl)

		err := report.Err()
		require.Error(t, err)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "class_balance", appErr.Context["check"])
		assert.Equal(t, domain.ColCreditStanding, appErr.Context["column"])
		assert.Contains(t, err.Error(), "class imbalance")
	})

	t.Run("missing column aborts first", func(t *testing.T) {
		tbl := encodedFixture([]int64{0, 1}).Drop(domain.ColAge)
		report := EncodedSuite(domain.GermanCredit(), cfg, quietLogger()).Run(context.Background(), tbl)

		assert.True(t, apperrors.IsType(report.Err(), apperrors.ErrTypeSchemaMismatch))
		assert.Equal(t, "expected_columns", report.Failures()[0].Name)
	})

	t.Run("uncorrelated target aborts", func(t *testing.T) {
		tbl := encodedFixture([]int64{0, 1, 1, 0})
		report := EncodedSuite(domain.GermanCredit(), cfg, quietLogger()).Run(context.Background(), tbl)

		err := report.Err()
		require.Error(t, err)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrTypeDataQuality, appErr.Type)
		assert.Equal(t, "target_correlation", appErr.Context["check"])
		assert.Equal(t, domain.ColCreditStanding, appErr.Context["column"])
		assert.Equal(t, SeverityHard, report.Failures()[0].Severity)
		assert.Empty(t, report.Warnings())
	})

	t.Run("age out of range", func(t *testing.T) {
		tbl := encodedFixture([]int64{0, 1})
		tbl, err := tbl.With(table.NewIntColumn(domain.ColAge, []int64{17, 40}))
		require.NoError(t, err)

		report := EncodedSuite(domain.GermanCredit(), cfg, quietLogger()).Run(context.Background(), tbl)
		require.Error(t, report.Err())
		assert.Equal(t, "value_range", report.Failures()[0].Name)
	})
}

func TestRawSuite_DuplicatesAreHard(t *testing.T) {
	schema := domain.NewSchema("y",
		domain.ColumnSpec{Name: "a", Kind: domain.KindCategorical},
		domain.ColumnSpec{Name: domain.ColAge, Kind: domain.KindInteger},
		domain.ColumnSpec{Name: "y", Kind: domain.KindInteger},
	)
	tbl := table.MustNew(strs("a", "A1", "A1"), ints(domain.ColAge, 30, 30), ints("y", 1, 1))

	report := RawSuite(schema, config.Default().Validation, quietLogger()).Run(context.Background(), tbl)

	require.Len(t, report.Failures(), 1)
	assert.Equal(t, "duplicates", report.Failures()[0].Name)

	require.Len(t, report.Warnings(), 1)
	warning := report.Warnings()[0]
	assert.Equal(t, "zero_variance", warning.Name)
	assert.Equal(t, "a", warning.Column)
	assert.Contains(t, warning.Message, domain.ColAge)
}
