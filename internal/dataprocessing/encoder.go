package dataprocessing

import (
	"fmt"
	"log/slog"

	"creditrisk/internal/table"
	"creditrisk/pkg/contracts/domain"
)

// Encoder turns a mapped table into a fully numeric one
type Encoder struct {
	schema domain.Schema
	logger *slog.Logger
}

// NewEncoder creates an encoder for tables following schema
func NewEncoder(schema domain.Schema, logger *slog.Logger) *Encoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Encoder{schema: schema, logger: logger}
}

// Encode one-hot encodes every categorical column except the target,
// dropping the lexicographically first category, and remaps the target
// from {1,2} to {0,1}. Output order is the non-categorical columns in
// their input order followed by the indicator columns.
//
// A target outside the raw domain becomes missing. A target that already
// holds {0,1} is left alone, so encoding an encoded table is a no-op.
func (e *Encoder) Encode(t *table.Table) (*table.Table, error) {
	target := e.schema.Target()

	var base, indicators []*table.Column
	for _, col := range t.Columns() {
		switch {
		case col.Name() == target:
			base = append(base, e.encodeTarget(col))
		case col.IsNumeric():
			base = append(base, col)
		default:
			indicators = append(indicators, oneHot(col)...)
		}
	}

	// Anything still categorical at this point gets integer codes
	for i, col := range base {
		if !col.IsNumeric() {
			e.logger.Warn("categorical column converted to codes",
				slog.String("column", col.Name()))
			base[i] = categoryCodes(col)
		}
	}

	out, err := table.New(append(base, indicators...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble encoded table: %w", err)
	}

	e.logger.Debug("table encoded",
		slog.Int("input_columns", t.NumCols()),
		slog.Int("output_columns", out.NumCols()),
		slog.Int("indicator_columns", len(indicators)))
	return out, nil
}

func (e *Encoder) encodeTarget(col *table.Column) *table.Column {
	if !col.IsNumeric() || isEncodedTarget(col) {
		return col
	}

	n := col.Len()
	values := make([]int64, n)
	null := make([]bool, n)
	unknown := 0
	for i := 0; i < n; i++ {
		if col.IsNull(i) {
			null[i] = true
			continue
		}
		v, ok := domain.TargetEncoding[col.Int(i)]
		if !ok {
			null[i] = true
			unknown++
			continue
		}
		values[i] = v
	}

	if unknown > 0 {
		e.logger.Warn("target values outside the raw domain set to missing",
			slog.String("column", col.Name()),
			slog.Int("rows", unknown))
	}
	return table.NewNullableIntColumn(col.Name(), values, null)
}

// isEncodedTarget reports whether col already holds the encoded domain.
// A column of only 1s is ambiguous and treated as raw.
func isEncodedTarget(col *table.Column) bool {
	hasZero := false
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		switch col.Int(i) {
		case domain.TargetEncodedGood:
			hasZero = true
		case domain.TargetEncodedBad:
		default:
			return false
		}
	}
	return hasZero
}

// oneHot expands col into one 0/1 column per category except the first.
// Missing cells are 0 in every indicator.
func oneHot(col *table.Column) []*table.Column {
	categories := col.Distinct()
	if len(categories) < 2 {
		return nil
	}

	out := make([]*table.Column, 0, len(categories)-1)
	for _, cat := range categories[1:] {
		values := make([]int64, col.Len())
		for i := range values {
			if !col.IsNull(i) && col.Text(i) == cat {
				values[i] = 1
			}
		}
		out = append(out, table.NewIntColumn(col.Name()+"_"+cat, values))
	}
	return out
}

// categoryCodes replaces labels with their index among the sorted
// categories; missing cells get -1
func categoryCodes(col *table.Column) *table.Column {
	code := make(map[string]int64)
	for i, cat := range col.Distinct() {
		code[cat] = int64(i)
	}

	values := make([]int64, col.Len())
	for i := range values {
		if col.IsNull(i) {
			values[i] = -1
			continue
		}
		values[i] = code[col.Text(i)]
	}
	return table.NewIntColumn(col.Name(), values)
}
