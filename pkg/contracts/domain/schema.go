package domain

// ColumnKind is the logical type of a dataset column
type ColumnKind string

const (
	// KindInteger columns hold whole numbers
	KindInteger ColumnKind = "int64"
	// KindCategorical columns hold short codes or labels
	KindCategorical ColumnKind = "string"
)

// ColumnSpec describes one column of the raw dataset
type ColumnSpec struct {
	Name string
	Kind ColumnKind
}

// Schema is an ordered, read-only list of column specs
type Schema struct {
	columns []ColumnSpec
	target  string
}

// Column names of the German Credit dataset, in file order
const (
	ColCheckingAccStatus   = "Checking_Acc_Status"
	ColDuration            = "Duration (in months)"
	ColCreditHistory       = "Credit_History"
	ColPurpose             = "Purpose"
	ColCreditAmount        = "Credit_Amount"
	ColSavingsAcc          = "Savings_Acc"
	ColEmployment          = "Employment"
	ColInstallmentRate     = "Installment_Rate"
	ColPersonalStatus      = "Personal_Status"
	ColOtherDebtors        = "Other_Debtors"
	ColResidenceSince      = "Residence_Since"
	ColProperty            = "Property"
	ColAge                 = "Age"
	ColOtherInstallment    = "Other_Installment"
	ColHousing             = "Housing"
	ColExistingCredits     = "Existing_Credits"
	ColJob                 = "Job"
	ColNumPeopleMaintained = "Num_People_Maintained"
	ColTelephone           = "Telephone"
	ColForeignWorker       = "Foreign_Worker"
	ColCreditStanding      = "Credit Standing"
)

// Raw and encoded values of the target column
const (
	TargetRawGood     int64 = 1
	TargetRawBad      int64 = 2
	TargetEncodedGood int64 = 0
	TargetEncodedBad  int64 = 1
)

// TargetEncoding maps raw target values to their encoded form
var TargetEncoding = map[int64]int64{
	TargetRawGood: TargetEncodedGood,
	TargetRawBad:  TargetEncodedBad,
}

var germanCredit = Schema{
	columns: []ColumnSpec{
		{ColCheckingAccStatus, KindCategorical},
		{ColDuration, KindInteger},
		{ColCreditHistory, KindCategorical},
		{ColPurpose, KindCategorical},
		{ColCreditAmount, KindInteger},
		{ColSavingsAcc, KindCategorical},
		{ColEmployment, KindCategorical},
		{ColInstallmentRate, KindInteger},
		{ColPersonalStatus, KindCategorical},
		{ColOtherDebtors, KindCategorical},
		{ColResidenceSince, KindInteger},
		{ColProperty, KindCategorical},
		{ColAge, KindInteger},
		{ColOtherInstallment, KindCategorical},
		{ColHousing, KindCategorical},
		{ColExistingCredits, KindInteger},
		{ColJob, KindCategorical},
		{ColNumPeopleMaintained, KindInteger},
		{ColTelephone, KindCategorical},
		{ColForeignWorker, KindCategorical},
		{ColCreditStanding, KindInteger},
	},
	target: ColCreditStanding,
}

// GermanCredit returns the fixed 21-column schema of the raw dataset
func GermanCredit() Schema {
	return germanCredit
}

// NewSchema builds a schema from specs; target must name one of them
func NewSchema(target string, specs ...ColumnSpec) Schema {
	cols := make([]ColumnSpec, len(specs))
	copy(cols, specs)
	return Schema{columns: cols, target: target}
}

// Len returns the number of columns
func (s Schema) Len() int {
	return len(s.columns)
}

// Columns returns a copy of the column specs in order
func (s Schema) Columns() []ColumnSpec {
	out := make([]ColumnSpec, len(s.columns))
	copy(out, s.columns)
	return out
}

// Names returns the column names in order
func (s Schema) Names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// Target returns the name of the label column
func (s Schema) Target() string {
	return s.target
}

// Kind returns the kind of the named column
func (s Schema) Kind(name string) (ColumnKind, bool) {
	for _, c := range s.columns {
		if c.Name == name {
			return c.Kind, true
		}
	}
	return "", false
}

// NamesOfKind returns the names of all columns of the given kind, in order
func (s Schema) NamesOfKind(kind ColumnKind) []string {
	var names []string
	for _, c := range s.columns {
		if c.Kind == kind {
			names = append(names, c.Name)
		}
	}
	return names
}

// ExpectedTypes returns the column -> kind expectations for the integer columns
func (s Schema) ExpectedTypes() map[string]ColumnKind {
	out := make(map[string]ColumnKind)
	for _, c := range s.columns {
		if c.Kind == KindInteger {
			out[c.Name] = c.Kind
		}
	}
	return out
}
