package table

import (
	"sort"
	"strconv"

	"creditrisk/pkg/contracts/domain"
)

// Column is an immutable, typed column of values with a null mask.
// Integer columns keep their values in ints, categorical columns in strs.
type Column struct {
	name string
	kind domain.ColumnKind
	ints []int64
	strs []string
	null []bool
}

// NewIntColumn creates a fully populated integer column
func NewIntColumn(name string, values []int64) *Column {
	return NewNullableIntColumn(name, values, nil)
}

// NewStringColumn creates a fully populated categorical column
func NewStringColumn(name string, values []string) *Column {
	return NewNullableStringColumn(name, values, nil)
}

// NewNullableIntColumn creates an integer column; null[i] marks a missing cell.
// A nil mask means no missing cells.
func NewNullableIntColumn(name string, values []int64, null []bool) *Column {
	c := &Column{name: name, kind: domain.KindInteger}
	c.ints = append([]int64(nil), values...)
	c.null = normalizeMask(null, len(values))
	return c
}

// NewNullableStringColumn creates a categorical column; null[i] marks a missing cell
func NewNullableStringColumn(name string, values []string, null []bool) *Column {
	c := &Column{name: name, kind: domain.KindCategorical}
	c.strs = append([]string(nil), values...)
	c.null = normalizeMask(null, len(values))
	return c
}

func normalizeMask(null []bool, n int) []bool {
	mask := make([]bool, n)
	copy(mask, null)
	return mask
}

// Name returns the column name
func (c *Column) Name() string { return c.name }

// Kind returns the column's logical type
func (c *Column) Kind() domain.ColumnKind { return c.kind }

// IsNumeric reports whether the column holds integers
func (c *Column) IsNumeric() bool { return c.kind == domain.KindInteger }

// Len returns the number of cells
func (c *Column) Len() int { return len(c.null) }

// IsNull reports whether cell i is missing
func (c *Column) IsNull(i int) bool { return c.null[i] }

// Int returns cell i of an integer column
func (c *Column) Int(i int) int64 {
	if c.kind != domain.KindInteger {
		panic("table: Int called on non-integer column " + c.name)
	}
	return c.ints[i]
}

// Text returns cell i formatted as text, "" when missing
func (c *Column) Text(i int) string {
	if c.null[i] {
		return ""
	}
	if c.kind == domain.KindInteger {
		return strconv.FormatInt(c.ints[i], 10)
	}
	return c.strs[i]
}

// NullCount returns the number of missing cells
func (c *Column) NullCount() int {
	n := 0
	for _, isNull := range c.null {
		if isNull {
			n++
		}
	}
	return n
}

// Float64s returns the non-null values of an integer column as float64
func (c *Column) Float64s() ([]float64, bool) {
	if !c.IsNumeric() {
		return nil, false
	}
	out := make([]float64, 0, len(c.ints))
	for i, v := range c.ints {
		if !c.null[i] {
			out = append(out, float64(v))
		}
	}
	return out, true
}

// Distinct returns the distinct non-null values as text, sorted.
// Integer columns sort numerically, categorical columns lexicographically.
func (c *Column) Distinct() []string {
	seen := make(map[string]struct{})
	var out []string
	var nums []int64
	for i := 0; i < c.Len(); i++ {
		if c.null[i] {
			continue
		}
		key := c.Text(i)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if c.IsNumeric() {
			nums = append(nums, c.ints[i])
		} else {
			out = append(out, key)
		}
	}
	if c.IsNumeric() {
		sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
		out = make([]string, len(nums))
		for i, v := range nums {
			out[i] = strconv.FormatInt(v, 10)
		}
		return out
	}
	sort.Strings(out)
	return out
}

func (c *Column) take(rows []int) *Column {
	out := &Column{name: c.name, kind: c.kind, null: make([]bool, len(rows))}
	if c.kind == domain.KindInteger {
		out.ints = make([]int64, len(rows))
	} else {
		out.strs = make([]string, len(rows))
	}
	for j, r := range rows {
		out.null[j] = c.null[r]
		if c.kind == domain.KindInteger {
			out.ints[j] = c.ints[r]
		} else {
			out.strs[j] = c.strs[r]
		}
	}
	return out
}
