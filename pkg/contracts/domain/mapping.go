package domain

import "sort"

// MappingTable maps a column name to its raw code -> label substitutions
type MappingTable map[string]map[string]string

// Columns returns the mapped column names, sorted
func (m MappingTable) Columns() []string {
	cols := make([]string, 0, len(m))
	for c := range m {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Lookup returns the label for code in column
func (m MappingTable) Lookup(column, code string) (string, bool) {
	codes, ok := m[column]
	if !ok {
		return "", false
	}
	label, ok := codes[code]
	return label, ok
}

// Clone returns a deep copy
func (m MappingTable) Clone() MappingTable {
	out := make(MappingTable, len(m))
	for col, codes := range m {
		cp := make(map[string]string, len(codes))
		for k, v := range codes {
			cp[k] = v
		}
		out[col] = cp
	}
	return out
}

// MappingGap records a raw code that had no label in the mapping table
type MappingGap struct {
	Column string `json:"column"`
	Code   string `json:"code"`
	Rows   int    `json:"rows"`
}
