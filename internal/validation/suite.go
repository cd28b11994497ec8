package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"creditrisk/internal/config"
	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/table"
	"creditrisk/pkg/contracts/domain"
)

// Severity decides whether a failed check aborts the pipeline
type Severity string

const (
	SeverityHard Severity = "hard"
	SeveritySoft Severity = "soft"
)

// CheckResult is the outcome of one check
type CheckResult struct {
	Name     string
	Severity Severity
	Passed   bool
	Column   string
	Message  string
	// Err describes the failure; nil when Passed
	Err *apperrors.AppError
}

// Check is a named, independent rule over a table
type Check struct {
	Name     string
	Severity Severity
	Run      func(*table.Table) CheckResult
}

// WithSeverity returns a copy of c with a different severity
func (c Check) WithSeverity(s Severity) Check {
	c.Severity = s
	return c
}

// Report holds the results of a suite in check order
type Report struct {
	Suite   string
	Results []CheckResult
}

// Failures returns the failed hard checks
func (r Report) Failures() []CheckResult {
	return r.filter(SeverityHard)
}

// Warnings returns the failed soft checks
func (r Report) Warnings() []CheckResult {
	return r.filter(SeveritySoft)
}

func (r Report) filter(s Severity) []CheckResult {
	var out []CheckResult
	for _, res := range r.Results {
		if !res.Passed && res.Severity == s {
			out = append(out, res)
		}
	}
	return out
}

// Err returns the error of the first failed hard check, or nil
func (r Report) Err() error {
	for _, res := range r.Results {
		if !res.Passed && res.Severity == SeverityHard {
			return res.Err
		}
	}
	return nil
}

// Suite runs a fixed, ordered list of checks
type Suite struct {
	name       string
	checks     []Check
	concurrent bool
	logger     *slog.Logger
}

// NewSuite creates a suite running checks in the given order
func NewSuite(name string, logger *slog.Logger, checks ...Check) *Suite {
	if logger == nil {
		logger = slog.Default()
	}
	return &Suite{name: name, checks: checks, logger: logger}
}

// Concurrent makes Run evaluate checks in parallel. Results keep check order.
func (s *Suite) Concurrent(on bool) *Suite {
	s.concurrent = on
	return s
}

// Name returns the suite name
func (s *Suite) Name() string { return s.name }

// Checks returns the names of the checks in order
func (s *Suite) Checks() []string {
	names := make([]string, len(s.checks))
	for i, c := range s.checks {
		names[i] = c.Name
	}
	return names
}

// Run evaluates every check against t. Checks never modify t.
func (s *Suite) Run(ctx context.Context, t *table.Table) Report {
	results := make([]CheckResult, len(s.checks))

	if s.concurrent {
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i, c := range s.checks {
			g.Go(func() error {
				results[i] = evaluate(c, t)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, c := range s.checks {
			results[i] = evaluate(c, t)
		}
	}

	for _, res := range results {
		s.logResult(ctx, res)
	}
	return Report{Suite: s.name, Results: results}
}

func evaluate(c Check, t *table.Table) CheckResult {
	res := c.Run(t)
	res.Name = c.Name
	res.Severity = c.Severity
	if !res.Passed && res.Err == nil {
		res.Err = apperrors.NewDataQualityError(res.Message)
	}
	if res.Err != nil {
		res.Err.WithContext("check", c.Name)
		if res.Column != "" {
			res.Err.WithContext("column", res.Column)
		}
	}
	return res
}

func (s *Suite) logResult(ctx context.Context, res CheckResult) {
	attrs := []any{
		slog.String("suite", s.name),
		slog.String("check", res.Name),
		slog.String("severity", string(res.Severity)),
	}
	if res.Column != "" {
		attrs = append(attrs, slog.String("column", res.Column))
	}

	switch {
	case res.Passed:
		s.logger.DebugContext(ctx, "check_passed", attrs...)
	case res.Severity == SeveritySoft:
		s.logger.WarnContext(ctx, "check_failed", append(attrs, slog.String("message", res.Message))...)
	default:
		s.logger.ErrorContext(ctx, "check_failed", append(attrs, slog.String("message", res.Message))...)
	}
}

// Check constructors. Severities are the defaults for the encoded table.

// ExpectedColumnsCheck fails when any of columns is absent
func ExpectedColumnsCheck(columns []string) Check {
	return Check{Name: "expected_columns", Severity: SeverityHard, Run: func(t *table.Table) CheckResult {
		ok, missing := CheckExpectedColumns(t, columns)
		if ok {
			return CheckResult{Passed: true}
		}
		msg := fmt.Sprintf("missing columns: %s", strings.Join(missing, ", "))
		return CheckResult{
			Message: msg,
			Column:  missing[0],
			Err:     apperrors.NewSchemaMismatchError(msg).WithContext("missing", missing),
		}
	}}
}

// DataTypesCheck fails on the first column whose kind differs from expected
func DataTypesCheck(expected map[string]domain.ColumnKind) Check {
	return Check{Name: "data_types", Severity: SeverityHard, Run: func(t *table.Table) CheckResult {
		err := CheckDataTypes(t, expected)
		if err == nil {
			return CheckResult{Passed: true}
		}
		return failedWith(err)
	}}
}

// MissingValuesCheck fails when any cell is missing
func MissingValuesCheck() Check {
	return Check{Name: "missing_values", Severity: SeverityHard, Run: func(t *table.Table) CheckResult {
		counts := CheckMissingValues(t)
		var parts []string
		first := ""
		for _, name := range t.Names() {
			if n := counts[name]; n > 0 {
				if first == "" {
					first = name
				}
				parts = append(parts, fmt.Sprintf("%s=%d", name, n))
			}
		}
		if len(parts) == 0 {
			return CheckResult{Passed: true}
		}
		return CheckResult{Column: first, Message: "missing values: " + strings.Join(parts, ", ")}
	}}
}

// DuplicatesCheck fails when any row repeats an earlier one
func DuplicatesCheck(subset ...string) Check {
	return Check{Name: "duplicates", Severity: SeverityHard, Run: func(t *table.Table) CheckResult {
		n, err := CheckDuplicates(t, subset...)
		if err != nil {
			return failedWith(err)
		}
		if n == 0 {
			return CheckResult{Passed: true}
		}
		return CheckResult{Message: fmt.Sprintf("%d duplicate rows", n)}
	}}
}

// ValueRangeCheck fails when a cell of column lies outside [min, max]
func ValueRangeCheck(column string, min, max int64) Check {
	return Check{Name: "value_range", Severity: SeverityHard, Run: func(t *table.Table) CheckResult {
		ok, err := CheckValueRange(t, column, min, max)
		if err != nil {
			return failedWith(err)
		}
		if ok {
			return CheckResult{Passed: true, Column: column}
		}
		msg := fmt.Sprintf("values of %q outside [%d, %d]", column, min, max)
		return CheckResult{
			Column:  column,
			Message: msg,
			Err: apperrors.NewDataQualityError(msg).
				WithContext("expected", fmt.Sprintf("[%d, %d]", min, max)),
		}
	}}
}

// ZeroVarianceCheck fails when a column holds a single value
func ZeroVarianceCheck() Check {
	return Check{Name: "zero_variance", Severity: SeveritySoft, Run: func(t *table.Table) CheckResult {
		cols := CheckZeroVariance(t)
		if len(cols) == 0 {
			return CheckResult{Passed: true}
		}
		return CheckResult{Column: cols[0], Message: "zero variance columns: " + strings.Join(cols, ", ")}
	}}
}

// OutliersCheck fails when column has values above threshold
func OutliersCheck(column string, threshold int64) Check {
	return Check{Name: "outliers", Severity: SeveritySoft, Run: func(t *table.Table) CheckResult {
		n, err := CheckOutliers(t, column, threshold)
		if err != nil {
			return failedWith(err)
		}
		if n == 0 {
			return CheckResult{Passed: true, Column: column}
		}
		return CheckResult{Column: column, Message: fmt.Sprintf("%d values of %q above %d", n, column, threshold)}
	}}
}

// ClassBalanceCheck fails when one class exceeds threshold of the column
func ClassBalanceCheck(column string, threshold float64) Check {
	return Check{Name: "class_balance", Severity: SeverityHard, Run: func(t *table.Table) CheckResult {
		ok, share, err := CheckClassBalance(t, column, threshold)
		if err != nil {
			return failedWith(err)
		}
		if ok {
			return CheckResult{Passed: true, Column: column}
		}
		msg := fmt.Sprintf("class imbalance in %q: majority share %.3f exceeds %.3f", column, share, threshold)
		return CheckResult{
			Column:  column,
			Message: msg,
			Err: apperrors.NewDataQualityError(msg).
				WithContext("expected", fmt.Sprintf("<= %g", threshold)).
				WithContext("actual", share),
		}
	}}
}

// TargetCorrelationCheck fails when no feature reaches |r| >= minAbs with target
func TargetCorrelationCheck(target string, minAbs float64) Check {
	return Check{Name: "target_correlation", Severity: SeverityHard, Run: func(t *table.Table) CheckResult {
		ok, best, err := CheckTargetCorrelation(t, target, minAbs)
		if err != nil {
			return failedWith(err)
		}
		if ok {
			return CheckResult{Passed: true, Column: target}
		}
		msg := fmt.Sprintf("strongest correlation with %q is %.4f (%s), below %g", target, best.Correlation, best.Feature, minAbs)
		return CheckResult{
			Column:  target,
			Message: msg,
			Err: apperrors.NewDataQualityError(msg).
				WithContext("expected", fmt.Sprintf(">= %g", minAbs)).
				WithContext("actual", best.Correlation),
		}
	}}
}

func failedWith(err error) CheckResult {
	res := CheckResult{Message: err.Error()}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		res.Err = appErr
		if col, ok := appErr.Context["column"].(string); ok {
			res.Column = col
		}
	}
	return res
}

// RawSuite checks the freshly loaded table before any transformation
func RawSuite(schema domain.Schema, cfg config.ValidationConfig, logger *slog.Logger) *Suite {
	return NewSuite("raw", logger,
		ExpectedColumnsCheck(schema.Names()),
		DataTypesCheck(schema.ExpectedTypes()),
		MissingValuesCheck(),
		DuplicatesCheck(),
		ValueRangeCheck(domain.ColAge, cfg.AgeMin, cfg.AgeMax).WithSeverity(SeveritySoft),
		ZeroVarianceCheck(),
	).Concurrent(cfg.Concurrent)
}

// EncodedSuite checks the final numeric table before it is written
func EncodedSuite(schema domain.Schema, cfg config.ValidationConfig, logger *slog.Logger) *Suite {
	return NewSuite("encoded", logger,
		ExpectedColumnsCheck(schema.NamesOfKind(domain.KindInteger)),
		MissingValuesCheck(),
		DataTypesCheck(schema.ExpectedTypes()),
		ValueRangeCheck(domain.ColAge, cfg.AgeMin, cfg.AgeMax),
		ClassBalanceCheck(schema.Target(), cfg.ClassBalanceThreshold),
		ZeroVarianceCheck(),
		DuplicatesCheck().WithSeverity(SeveritySoft),
		OutliersCheck(domain.ColCreditAmount, cfg.CreditAmountOutlier),
		TargetCorrelationCheck(schema.Target(), cfg.MinTargetCorrelation),
	).Concurrent(cfg.Concurrent)
}
