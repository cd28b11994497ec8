package training

import (
	"fmt"
	"math/rand"
	"sort"
)

// ImportanceRepeats is how often each feature is shuffled
const ImportanceRepeats = 5

// FeatureImportance is the mean accuracy a model loses when one feature
// is shuffled
type FeatureImportance struct {
	Feature    string
	Importance float64
}

// PermutationImportance shuffles every feature of test in turn, repeats
// times, and reports the mean drop in accuracy of the fitted model m.
// The result is sorted by importance, highest first.
func PermutationImportance(m Model, test *Dataset, repeats int, seed int64) ([]FeatureImportance, error) {
	if repeats < 1 {
		return nil, fmt.Errorf("importance: repeats must be positive, got %d", repeats)
	}
	reference, err := accuracy(m, test)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	out := make([]FeatureImportance, len(test.Features))
	for j, name := range test.Features {
		drop := 0.0
		for r := 0; r < repeats; r++ {
			acc, err := accuracy(m, test.shuffleFeature(j, rng))
			if err != nil {
				return nil, fmt.Errorf("importance of %q: %w", name, err)
			}
			drop += reference - acc
		}
		out[j] = FeatureImportance{Feature: name, Importance: drop / float64(repeats)}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Importance > out[b].Importance })
	return out, nil
}

func accuracy(m Model, d *Dataset) (float64, error) {
	ref, err := d.Instances()
	if err != nil {
		return 0, err
	}
	pred, err := m.Predict(d, ref)
	if err != nil {
		return 0, err
	}
	metrics, err := Evaluate(m.Name(), ref, pred)
	if err != nil {
		return 0, err
	}
	return metrics.Accuracy, nil
}

// shuffleFeature returns a copy of d with column j permuted
func (d *Dataset) shuffleFeature(j int, rng *rand.Rand) *Dataset {
	out := &Dataset{Features: d.Features, X: make([][]float64, d.Len()), Y: d.Y}
	perm := rng.Perm(d.Len())
	for i, row := range d.X {
		shuffled := append([]float64(nil), row...)
		shuffled[j] = d.X[perm[i]][j]
		out.X[i] = shuffled
	}
	return out
}
