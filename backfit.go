package microstates

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Backfit assigns every sample of the full record to the prototype with the
// maximal absolute projection. Polarity is ignored: a topography and its
// negation compete as the same state, since microstate polarity carries no
// physiological meaning. Deterministic, O(channels × states × timepoints).
func Backfit(data, prototypes *mat.Dense) []int {
	_, nSamples := data.Dims()
	_, k := prototypes.Dims()

	// activation[j, t] = prototype_j · sample_t
	var activation mat.Dense
	activation.Mul(prototypes.T(), data)

	sequence := make([]int, nSamples)
	for t := 0; t < nSamples; t++ {
		best, bestAbs := 0, -1.0
		for j := 0; j < k; j++ {
			if a := math.Abs(activation.At(j, t)); a > bestAbs {
				best, bestAbs = j, a
			}
		}
		sequence[t] = best
	}
	return sequence
}
