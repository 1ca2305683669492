package microstates

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// GlobalExplainedVariance computes the fraction of total signal variance
// accounted for by the assigned prototypes, together with each state's
// contribution. Per sample the contribution is gfp² times the squared
// spatial correlation with the assigned prototype, normalized by the
// precomputed Σ gfp²; squaring makes the measure polarity-invariant and
// keeps the total in [0, 1]. gfp and gfpSumSq are taken as given rather
// than recomputed.
func GlobalExplainedVariance(data, prototypes *mat.Dense, sequence []int, gfp []float64, gfpSumSq float64) (total float64, perState []float64) {
	nChannels, _ := data.Dims()
	_, k := prototypes.Dims()
	perState = make([]float64, k)
	if gfpSumSq <= 0 {
		return 0, perState
	}

	protoCols := make([][]float64, k)
	for j := 0; j < k; j++ {
		protoCols[j] = colSlice(prototypes, j)
		normalize(protoCols[j])
	}

	col := make([]float64, nChannels)
	for t, j := range sequence {
		mat.Col(col, t, data)
		norm := floats.Norm(col, 2)
		if norm == 0 {
			continue
		}
		corr := floats.Dot(col, protoCols[j]) / norm
		perState[j] += gfp[t] * gfp[t] * corr * corr / gfpSumSq
	}
	return floats.Sum(perState), perState
}

// CrossValidationCriterion computes the penalized residual-variance
// statistic of Pascual-Marqui et al. (1995): the variance left unexplained
// by the assigned (unit-norm) prototypes, scaled by a complexity penalty in
// the number of channels and states. Lower is better. Channel and sample
// counts are taken as given rather than recomputed. When the model has too
// many states for the penalty to be defined (K >= channels - 1), the
// criterion is +Inf.
func CrossValidationCriterion(data, prototypes *mat.Dense, sequence []int, nChannels, nSamples int) float64 {
	_, k := prototypes.Dims()
	if nChannels-k-1 <= 0 {
		return math.Inf(1)
	}

	protoCols := make([][]float64, k)
	for j := 0; j < k; j++ {
		protoCols[j] = colSlice(prototypes, j)
		normalize(protoCols[j])
	}

	col := make([]float64, nChannels)
	var residual float64
	for t, j := range sequence {
		mat.Col(col, t, data)
		d := floats.Dot(col, protoCols[j])
		residual += floats.Dot(col, col) - d*d
	}

	variance := residual / (float64(nSamples) * float64(nChannels-1))
	penalty := float64(nChannels-1) / float64(nChannels-k-1)
	return variance * penalty * penalty
}
