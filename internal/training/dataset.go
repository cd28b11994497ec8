package training

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"github.com/sjwhitworth/golearn/base"

	apperrors "creditrisk/internal/errors"
	"creditrisk/internal/table"
	"creditrisk/pkg/contracts/domain"
)

// Class labels of the golearn class attribute
const (
	ClassGood = "good"
	ClassBad  = "bad"
)

// Dataset is the feature matrix and labels of a table
type Dataset struct {
	Features []string
	X        [][]float64
	Y        []string
}

// NewDataset extracts every column but target as a feature. All columns
// must be numeric and complete, and target must hold only 0 and 1.
func NewDataset(t *table.Table, target string) (*Dataset, error) {
	if t == nil || t.NumRows() == 0 {
		return nil, apperrors.NewAppValidationError("training table is empty")
	}
	y, ok := t.Column(target)
	if !ok {
		return nil, apperrors.NewSchemaMismatchError(fmt.Sprintf("target column %q not found", target)).
			WithContext("column", target)
	}

	ds := &Dataset{X: make([][]float64, t.NumRows()), Y: make([]string, t.NumRows())}
	for _, col := range t.Columns() {
		if !col.IsNumeric() {
			return nil, apperrors.NewSchemaTypeError(col.Name(), domain.KindInteger, col.Kind())
		}
		if n := col.NullCount(); n > 0 {
			return nil, apperrors.NewDataQualityError(fmt.Sprintf("%d missing values", n)).
				WithContext("column", col.Name())
		}
		if col.Name() != target {
			ds.Features = append(ds.Features, col.Name())
		}
	}
	if len(ds.Features) == 0 {
		return nil, apperrors.NewSchemaMismatchError("no feature columns")
	}

	for i := 0; i < t.NumRows(); i++ {
		switch y.Int(i) {
		case domain.TargetEncodedGood:
			ds.Y[i] = ClassGood
		case domain.TargetEncodedBad:
			ds.Y[i] = ClassBad
		default:
			return nil, apperrors.NewDataQualityError(fmt.Sprintf("target value %d is not 0 or 1", y.Int(i))).
				WithContext("column", target).
				WithContext("row", i)
		}
		row := make([]float64, len(ds.Features))
		for j, name := range ds.Features {
			col, _ := t.Column(name)
			row[j] = float64(col.Int(i))
		}
		ds.X[i] = row
	}
	return ds, nil
}

// Len returns the number of rows
func (d *Dataset) Len() int { return len(d.Y) }

// Subset returns the given rows
func (d *Dataset) Subset(rows []int) *Dataset {
	out := &Dataset{Features: d.Features, X: make([][]float64, len(rows)), Y: make([]string, len(rows))}
	for i, r := range rows {
		out.X[i] = d.X[r]
		out.Y[i] = d.Y[r]
	}
	return out
}

// Split shuffles row indices with seed and returns the first and second
// part, the second holding ratio of the rows (at least one, at most n-1).
func Split(n int, ratio float64, seed int64) ([]int, []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	k := int(math.Round(float64(n) * ratio))
	if k < 1 {
		k = 1
	}
	if k > n-1 {
		k = n - 1
	}
	return perm[k:], perm[:k]
}

// Scaler standardises features with statistics of the rows it was fitted on
type Scaler struct {
	Mean []float64
	Std  []float64
}

// FitScaler computes the population mean and standard deviation of every feature
func FitScaler(d *Dataset) (*Scaler, error) {
	s := &Scaler{Mean: make([]float64, len(d.Features)), Std: make([]float64, len(d.Features))}
	for j := range d.Features {
		col := make(stats.Float64Data, d.Len())
		for i := range d.X {
			col[i] = d.X[i][j]
		}
		mean, err := stats.Mean(col)
		if err != nil {
			return nil, fmt.Errorf("mean of %q: %w", d.Features[j], err)
		}
		std, err := stats.StandardDeviationPopulation(col)
		if err != nil {
			return nil, fmt.Errorf("std of %q: %w", d.Features[j], err)
		}
		s.Mean[j], s.Std[j] = mean, std
	}
	return s, nil
}

// Transform returns a standardised copy of d. Constant features become 0.
func (s *Scaler) Transform(d *Dataset) *Dataset {
	out := &Dataset{Features: d.Features, X: make([][]float64, d.Len()), Y: d.Y}
	for i, row := range d.X {
		scaled := make([]float64, len(row))
		for j, v := range row {
			if s.Std[j] > 0 {
				scaled[j] = (v - s.Mean[j]) / s.Std[j]
			}
		}
		out.X[i] = scaled
	}
	return out
}

// Instances converts d to golearn instances with float features and a
// categorical class attribute
func (d *Dataset) Instances() (*base.DenseInstances, error) {
	inst := base.NewDenseInstances()

	specs := make([]base.AttributeSpec, len(d.Features))
	for j, name := range d.Features {
		specs[j] = inst.AddAttribute(base.NewFloatAttribute(name))
	}

	class := base.NewCategoricalAttribute()
	class.SetName(domain.ColCreditStanding)
	class.GetSysValFromString(ClassGood)
	class.GetSysValFromString(ClassBad)
	classSpec := inst.AddAttribute(class)
	if err := inst.AddClassAttribute(class); err != nil {
		return nil, fmt.Errorf("failed to add class attribute: %w", err)
	}

	if err := inst.Extend(d.Len()); err != nil {
		return nil, fmt.Errorf("failed to allocate instances: %w", err)
	}
	for i, row := range d.X {
		for j, v := range row {
			inst.Set(specs[j], i, base.PackFloatToBytes(v))
		}
		inst.Set(classSpec, i, class.GetSysValFromString(d.Y[i]))
	}
	return inst, nil
}
