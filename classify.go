package microstates

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Classifier reorders or relabels the winning prototypes for presentation.
// It is invoked exactly once, on the selected run's result, and must only
// permute state indices: every field keeps its meaning, and the assignment
// semantics are untouched.
type Classifier interface {
	Classify(res *Result) error
}

// ClassifierFunc adapts a plain function into a Classifier.
type ClassifierFunc func(res *Result) error

func (f ClassifierFunc) Classify(res *Result) error { return f(res) }

// GEVOrderClassifier is the default Classifier: it relabels states in
// descending order of their explained-variance contribution, so state 0 is
// always the dominant topography. Ties keep their original order.
type GEVOrderClassifier struct{}

func (GEVOrderClassifier) Classify(res *Result) error {
	k := len(res.Info.StateGEV)
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return res.Info.StateGEV[order[a]] > res.Info.StateGEV[order[b]]
	})
	permuteStates(res, order)
	return nil
}

// permuteStates applies a new state order to every state-indexed field of
// the result. order[newLabel] = oldLabel.
func permuteStates(res *Result, order []int) {
	nChannels, k := res.Microstates.Dims()

	reordered := mat.NewDense(nChannels, k, nil)
	col := make([]float64, nChannels)
	for newLabel, oldLabel := range order {
		mat.Col(col, oldLabel, res.Microstates)
		reordered.SetCol(newLabel, col)
	}
	res.Microstates = reordered

	relabel := make([]int, k)
	for newLabel, oldLabel := range order {
		relabel[oldLabel] = newLabel
	}
	for t, s := range res.Sequence {
		res.Sequence[t] = relabel[s]
	}

	res.Info.StateGEV = permuteFloats(res.Info.StateGEV, order)
	res.ExplainedVariance = permuteFloats(res.ExplainedVariance, order)
}

func permuteFloats(x []float64, order []int) []float64 {
	if x == nil {
		return nil
	}
	out := make([]float64, len(x))
	for newLabel, oldLabel := range order {
		out[newLabel] = x[oldLabel]
	}
	return out
}
