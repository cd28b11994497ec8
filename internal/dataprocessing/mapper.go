package dataprocessing

import (
	"sort"

	"creditrisk/internal/table"
	"creditrisk/pkg/contracts/domain"
)

// ApplyMappings replaces the codes of every column present in both t and m
// with their labels. Codes without a label become missing cells and are
// reported as gaps, ordered by column position then code. Columns of m that
// t does not have are skipped. t is not modified.
func ApplyMappings(t *table.Table, m domain.MappingTable) (*table.Table, []domain.MappingGap) {
	var (
		replaced []*table.Column
		gaps     []domain.MappingGap
	)

	for _, col := range t.Columns() {
		codes, ok := m[col.Name()]
		if !ok {
			continue
		}

		n := col.Len()
		labels := make([]string, n)
		null := make([]bool, n)
		missing := make(map[string]int)

		for i := 0; i < n; i++ {
			if col.IsNull(i) {
				null[i] = true
				continue
			}
			code := col.Text(i)
			label, found := codes[code]
			if !found {
				null[i] = true
				missing[code]++
				continue
			}
			labels[i] = label
		}

		replaced = append(replaced, table.NewNullableStringColumn(col.Name(), labels, null))
		gaps = append(gaps, sortedGaps(col.Name(), missing)...)
	}

	if len(replaced) == 0 {
		return t, nil
	}
	out, err := t.With(replaced...)
	if err != nil {
		// replacements reuse existing names and lengths
		panic(err)
	}
	return out, gaps
}

func sortedGaps(column string, missing map[string]int) []domain.MappingGap {
	if len(missing) == 0 {
		return nil
	}
	codes := make([]string, 0, len(missing))
	for c := range missing {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	gaps := make([]domain.MappingGap, len(codes))
	for i, c := range codes {
		gaps[i] = domain.MappingGap{Column: column, Code: c, Rows: missing[c]}
	}
	return gaps
}
