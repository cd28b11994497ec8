package training

import (
	"fmt"
	"math"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/ensemble"
	"github.com/sjwhitworth/golearn/filters"
	"github.com/sjwhitworth/golearn/knn"
	"github.com/sjwhitworth/golearn/naive"
)

// Model is a classifier that can be fitted and asked for predictions.
// Predict returns one predicted class per row of ref, where ref is test
// converted with Dataset.Instances.
type Model interface {
	Name() string
	Fit(train *Dataset) error
	Predict(test *Dataset, ref *base.DenseInstances) (base.FixedDataGrid, error)
}

// Baseline predicts the majority class of its training rows.
// Ties go to ClassGood.
type Baseline struct {
	majority string
}

func NewBaseline() *Baseline { return &Baseline{} }

func (b *Baseline) Name() string { return "Baseline" }

func (b *Baseline) Fit(train *Dataset) error {
	if train.Len() == 0 {
		return fmt.Errorf("baseline: no training rows")
	}
	bad := 0
	for _, y := range train.Y {
		if y == ClassBad {
			bad++
		}
	}
	b.majority = ClassGood
	if bad*2 > train.Len() {
		b.majority = ClassBad
	}
	return nil
}

func (b *Baseline) Predict(test *Dataset, ref *base.DenseInstances) (base.FixedDataGrid, error) {
	if b.majority == "" {
		return nil, fmt.Errorf("baseline: not fitted")
	}
	out := base.GeneratePredictionVector(ref)
	for i := 0; i < test.Len(); i++ {
		base.SetClass(out, i, b.majority)
	}
	return out, nil
}

// Majority returns the class the baseline predicts
func (b *Baseline) Majority() string { return b.majority }

// KNNCandidate is one point of the KNN parameter grid
type KNNCandidate struct {
	K        int
	Distance string
	F1       float64
}

// KNN is a k-nearest-neighbours classifier over standardised features.
// Fit picks k and the distance by F1 on a held-out part of the training rows.
type KNN struct {
	neighbours      []int
	distances       []string
	validationRatio float64
	seed            int64

	scaler *Scaler
	clf    *knn.KNNClassifier
	best   KNNCandidate
	grid   []KNNCandidate
}

// KNN distance functions searched by Fit
var KNNDistances = []string{"euclidean", "manhattan"}

func NewKNN(neighbours []int, validationRatio float64, seed int64) *KNN {
	return &KNN{
		neighbours:      neighbours,
		distances:       KNNDistances,
		validationRatio: validationRatio,
		seed:            seed,
	}
}

func (m *KNN) Name() string { return "KNN" }

// Best returns the selected parameters
func (m *KNN) Best() KNNCandidate { return m.best }

// Grid returns every evaluated candidate in search order
func (m *KNN) Grid() []KNNCandidate { return m.grid }

func (m *KNN) Fit(train *Dataset) error {
	scaler, err := FitScaler(train)
	if err != nil {
		return fmt.Errorf("knn: %w", err)
	}
	m.scaler = scaler
	scaled := scaler.Transform(train)

	fitRows, valRows := Split(scaled.Len(), m.validationRatio, m.seed)
	fitSet, valSet := scaled.Subset(fitRows), scaled.Subset(valRows)
	fitInst, err := fitSet.Instances()
	if err != nil {
		return fmt.Errorf("knn: %w", err)
	}
	valInst, err := valSet.Instances()
	if err != nil {
		return fmt.Errorf("knn: %w", err)
	}

	m.grid = nil
	m.best = KNNCandidate{F1: -1}
	for _, distance := range m.distances {
		for _, k := range m.neighbours {
			if k > fitSet.Len() {
				continue
			}
			clf := knn.NewKnnClassifier(distance, "linear", k)
			if err := clf.Fit(fitInst); err != nil {
				return fmt.Errorf("knn k=%d %s: %w", k, distance, err)
			}
			pred, err := clf.Predict(valInst)
			if err != nil {
				return fmt.Errorf("knn k=%d %s: %w", k, distance, err)
			}
			metrics, err := Evaluate(m.Name(), valInst, pred)
			if err != nil {
				return err
			}
			c := KNNCandidate{K: k, Distance: distance, F1: metrics.F1}
			m.grid = append(m.grid, c)
			if c.F1 > m.best.F1 {
				m.best = c
			}
		}
	}
	if len(m.grid) == 0 {
		return fmt.Errorf("knn: no k in %v fits %d training rows", m.neighbours, fitSet.Len())
	}

	inst, err := scaled.Instances()
	if err != nil {
		return fmt.Errorf("knn: %w", err)
	}
	m.clf = knn.NewKnnClassifier(m.best.Distance, "linear", m.best.K)
	return m.clf.Fit(inst)
}

func (m *KNN) Predict(test *Dataset, ref *base.DenseInstances) (base.FixedDataGrid, error) {
	if m.clf == nil {
		return nil, fmt.Errorf("knn: not fitted")
	}
	inst, err := m.scaler.Transform(test).Instances()
	if err != nil {
		return nil, fmt.Errorf("knn: %w", err)
	}
	return m.clf.Predict(inst)
}

// ForestCandidate is one point of the random forest parameter grid
type ForestCandidate struct {
	Trees    int
	Features int
	F1       float64
}

// RandomForest is a bagged ensemble of ID3 trees, each tree seeing
// round(sqrt(n)) randomly chosen features. Fit picks the forest size by F1
// on a held-out part of the training rows.
//
// Bootstrap samples come from the global math/rand source, so two fits on
// the same rows may differ.
type RandomForest struct {
	sizes           []int
	validationRatio float64
	seed            int64

	forest *ensemble.RandomForest
	best   ForestCandidate
	grid   []ForestCandidate
}

func NewRandomForest(sizes []int, validationRatio float64, seed int64) *RandomForest {
	return &RandomForest{sizes: sizes, validationRatio: validationRatio, seed: seed}
}

func (m *RandomForest) Name() string { return "RandomForest" }

// Best returns the selected parameters
func (m *RandomForest) Best() ForestCandidate { return m.best }

// Grid returns every evaluated candidate in search order
func (m *RandomForest) Grid() []ForestCandidate { return m.grid }

// TreeFeatures returns the number of features each tree is grown on
func TreeFeatures(n int) int {
	return max(1, int(math.Round(math.Sqrt(float64(n)))))
}

func (m *RandomForest) Fit(train *Dataset) error {
	if len(m.sizes) == 0 {
		return fmt.Errorf("random forest: no forest sizes")
	}
	features := TreeFeatures(len(train.Features))

	fitRows, valRows := Split(train.Len(), m.validationRatio, m.seed)
	fitInst, err := train.Subset(fitRows).Instances()
	if err != nil {
		return fmt.Errorf("random forest: %w", err)
	}
	valInst, err := train.Subset(valRows).Instances()
	if err != nil {
		return fmt.Errorf("random forest: %w", err)
	}

	m.grid = nil
	m.best = ForestCandidate{F1: -1}
	for _, trees := range m.sizes {
		rf := ensemble.NewRandomForest(trees, features)
		if err := rf.Fit(fitInst); err != nil {
			return fmt.Errorf("random forest trees=%d: %w", trees, err)
		}
		pred, err := rf.Predict(valInst)
		if err != nil {
			return fmt.Errorf("random forest trees=%d: %w", trees, err)
		}
		metrics, err := Evaluate(m.Name(), valInst, pred)
		if err != nil {
			return err
		}
		c := ForestCandidate{Trees: trees, Features: features, F1: metrics.F1}
		m.grid = append(m.grid, c)
		if c.F1 > m.best.F1 {
			m.best = c
		}
	}

	inst, err := train.Instances()
	if err != nil {
		return fmt.Errorf("random forest: %w", err)
	}
	m.forest = ensemble.NewRandomForest(m.best.Trees, m.best.Features)
	return m.forest.Fit(inst)
}

func (m *RandomForest) Predict(test *Dataset, ref *base.DenseInstances) (base.FixedDataGrid, error) {
	if m.forest == nil {
		return nil, fmt.Errorf("random forest: not fitted")
	}
	return m.forest.Predict(ref)
}

// NaiveBayes is a Bernoulli naive Bayes classifier. Features are binarised,
// any non-zero value counting as present.
type NaiveBayes struct {
	clf *naive.BernoulliNBClassifier
}

func NewNaiveBayes() *NaiveBayes { return &NaiveBayes{} }

func (m *NaiveBayes) Name() string { return "NaiveBayes" }

func (m *NaiveBayes) Fit(train *Dataset) error {
	inst, err := train.Instances()
	if err != nil {
		return fmt.Errorf("naive bayes: %w", err)
	}
	m.clf = naive.NewBernoulliNBClassifier()
	m.clf.Fit(binarize(inst))
	return nil
}

func (m *NaiveBayes) Predict(test *Dataset, ref *base.DenseInstances) (base.FixedDataGrid, error) {
	if m.clf == nil {
		return nil, fmt.Errorf("naive bayes: not fitted")
	}
	return m.clf.Predict(binarize(ref))
}

func binarize(src base.FixedDataGrid) base.FixedDataGrid {
	b := filters.NewBinaryConvertFilter()
	for _, a := range base.NonClassAttributes(src) {
		b.AddAttribute(a)
	}
	b.Train()
	return base.NewLazilyFilteredInstances(src, b)
}
