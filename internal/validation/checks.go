package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/table"
	"creditrisk/pkg/contracts/domain"
)

// CheckMissingValues returns the number of missing cells per column.
// Fully populated columns map to 0.
func CheckMissingValues(t *table.Table) map[string]int {
	out := make(map[string]int, t.NumCols())
	for _, c := range t.Columns() {
		out[c.Name()] = c.NullCount()
	}
	return out
}

// CheckDataTypes compares column kinds with expected, visiting columns in
// name order, and returns the first mismatch as a SCHEMA_TYPE error.
// An expected column that is absent is a SCHEMA_MISMATCH error.
func CheckDataTypes(t *table.Table, expected map[string]domain.ColumnKind) error {
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		col, ok := t.Column(name)
		if !ok {
			return apperrors.NewSchemaMismatchError(fmt.Sprintf("column %q not found", name)).
				WithContext("column", name)
		}
		if col.Kind() != expected[name] {
			return apperrors.NewSchemaTypeError(name, expected[name], col.Kind())
		}
	}
	return nil
}

// CheckZeroVariance returns, in column order, the columns with at most one
// distinct non-null value. An empty table has none.
func CheckZeroVariance(t *table.Table) []string {
	if t.NumRows() == 0 {
		return nil
	}
	var out []string
	for _, c := range t.Columns() {
		if len(c.Distinct()) <= 1 {
			out = append(out, c.Name())
		}
	}
	return out
}

// CheckValueRange reports whether every cell of an integer column lies in
// [min, max]. A missing cell is out of range.
func CheckValueRange(t *table.Table, column string, min, max int64) (bool, error) {
	col, err := numericColumn(t, column)
	if err != nil {
		return false, err
	}
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			return false, nil
		}
		if v := col.Int(i); v < min || v > max {
			return false, nil
		}
	}
	return true, nil
}

// CheckDuplicates counts rows identical to an earlier row. With subset,
// only those columns are compared.
func CheckDuplicates(t *table.Table, subset ...string) (int, error) {
	cols := t.Columns()
	if len(subset) > 0 {
		cols = make([]*table.Column, len(subset))
		for i, name := range subset {
			c, ok := t.Column(name)
			if !ok {
				return 0, apperrors.NewSchemaMismatchError(fmt.Sprintf("column %q not found", name)).
					WithContext("column", name)
			}
			cols[i] = c
		}
	}

	seen := make(map[string]struct{}, t.NumRows())
	dups := 0
	var key strings.Builder
	for i := 0; i < t.NumRows(); i++ {
		key.Reset()
		for _, c := range cols {
			if c.IsNull(i) {
				key.WriteByte(0)
			} else {
				key.WriteString(c.Text(i))
			}
			key.WriteByte(0x1f)
		}
		k := key.String()
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups, nil
}

// CheckExpectedColumns reports whether every expected column is present,
// together with the missing ones in expected order. Extra columns are allowed.
func CheckExpectedColumns(t *table.Table, expected []string) (bool, []string) {
	var missing []string
	for _, name := range expected {
		if !t.Has(name) {
			missing = append(missing, name)
		}
	}
	return len(missing) == 0, missing
}

// CheckOutliers counts values strictly greater than threshold
func CheckOutliers(t *table.Table, column string, threshold int64) (int, error) {
	col, err := numericColumn(t, column)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := 0; i < col.Len(); i++ {
		if !col.IsNull(i) && col.Int(i) > threshold {
			n++
		}
	}
	return n, nil
}

// CheckClassBalance reports whether the most frequent value of column makes
// up at most threshold of its non-null cells. It also returns that share.
// A column without values is not balanced.
func CheckClassBalance(t *table.Table, column string, threshold float64) (bool, float64, error) {
	counts, err := t.CountBy(column)
	if err != nil {
		return false, 0, apperrors.NewSchemaMismatchError(err.Error()).WithContext("column", column)
	}

	total, top := 0, 0
	for _, n := range counts {
		total += n
		if n > top {
			top = n
		}
	}
	if total == 0 {
		return false, 0, nil
	}

	share := float64(top) / float64(total)
	return share <= threshold, share, nil
}

// FeatureCorrelation is the Pearson correlation of one feature with the target
type FeatureCorrelation struct {
	Feature     string
	Correlation float64
}

// TargetCorrelations correlates every other integer column with target,
// in column order, over the rows where both cells are present.
// Constant columns correlate 0.
func TargetCorrelations(t *table.Table, target string) ([]FeatureCorrelation, error) {
	y, err := numericColumn(t, target)
	if err != nil {
		return nil, err
	}

	var out []FeatureCorrelation
	for _, c := range t.Columns() {
		if c.Name() == target || !c.IsNumeric() {
			continue
		}
		var xs, ys stats.Float64Data
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) || y.IsNull(i) {
				continue
			}
			xs = append(xs, float64(c.Int(i)))
			ys = append(ys, float64(y.Int(i)))
		}
		r := 0.0
		if len(xs) > 0 {
			r, err = stats.Correlation(xs, ys)
			if err != nil {
				return nil, fmt.Errorf("correlation of %q: %w", c.Name(), err)
			}
		}
		if math.IsNaN(r) {
			r = 0
		}
		out = append(out, FeatureCorrelation{Feature: c.Name(), Correlation: r})
	}
	return out, nil
}

// CheckTargetCorrelation reports whether at least one feature has an
// absolute correlation with target of minAbs or more, and returns the
// strongest one.
func CheckTargetCorrelation(t *table.Table, target string, minAbs float64) (bool, FeatureCorrelation, error) {
	corrs, err := TargetCorrelations(t, target)
	if err != nil {
		return false, FeatureCorrelation{}, err
	}

	var best FeatureCorrelation
	for _, fc := range corrs {
		if math.Abs(fc.Correlation) > math.Abs(best.Correlation) || best.Feature == "" {
			best = fc
		}
	}
	return best.Feature != "" && math.Abs(best.Correlation) >= minAbs, best, nil
}

func numericColumn(t *table.Table, column string) (*table.Column, error) {
	col, ok := t.Column(column)
	if !ok {
		return nil, apperrors.NewSchemaMismatchError(fmt.Sprintf("column %q not found", column)).
			WithContext("column", column)
	}
	if !col.IsNumeric() {
		return nil, apperrors.NewSchemaTypeError(column, domain.KindInteger, col.Kind())
	}
	return col, nil
}
