package microstates

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// modifiedKMeans implements the modified k-means algorithm of
// Pascual-Marqui, Michel & Lehmann (1995). It alternates polarity-invariant
// assignment (each sample goes to the prototype with the largest absolute
// projection) with a prototype update that takes the dominant spatial
// pattern of the assigned samples, and stops when the summed absolute
// activation changes by less than the threshold.
type modifiedKMeans struct {
	k             int
	maxIterations int
	threshold     float64
}

func (c *modifiedKMeans) Stochastic() bool { return true }

func (c *modifiedKMeans) Cluster(obs *mat.Dense, rng *rand.Rand) (ClusterResult, error) {
	nChannels, nSamples := obs.Dims()
	if c.k > nSamples {
		return ClusterResult{}, fmt.Errorf("%w: NMicrostates %d exceeds %d training samples",
			ErrConfiguration, c.k, nSamples)
	}

	// Seed prototypes from k distinct training timepoints, drawn without
	// replacement, each normalized to unit length.
	prototypes := mat.NewDense(nChannels, c.k, nil)
	col := make([]float64, nChannels)
	for j, t := range rng.Perm(nSamples)[:c.k] {
		mat.Col(col, t, obs)
		normalize(col)
		prototypes.SetCol(j, col)
	}

	labels := make([]int, nSamples)
	prevCriterion := math.Inf(1)
	iterations := 0
	converged := false

	for iter := 0; iter < c.maxIterations; iter++ {
		iterations = iter + 1

		protoCols := make([][]float64, c.k)
		for j := range protoCols {
			protoCols[j] = colSlice(prototypes, j)
		}

		// Assignment and the summed absolute-activation criterion.
		var criterion float64
		members := make([][]int, c.k)
		for t := 0; t < nSamples; t++ {
			mat.Col(col, t, obs)
			best, bestAbs := 0, -1.0
			for j := 0; j < c.k; j++ {
				a := math.Abs(floats.Dot(col, protoCols[j]))
				if a > bestAbs {
					best, bestAbs = j, a
				}
			}
			labels[t] = best
			criterion += bestAbs
			members[best] = append(members[best], t)
		}

		if prevCriterion < math.Inf(1) && prevCriterion > 0 &&
			math.Abs(criterion-prevCriterion)/prevCriterion < c.threshold {
			converged = true
			break
		}
		prevCriterion = criterion

		// Prototype update: dominant spatial pattern per cluster. Empty
		// clusters are reseeded from a random training sample.
		for j := 0; j < c.k; j++ {
			if len(members[j]) == 0 {
				mat.Col(col, rng.IntN(nSamples), obs)
				normalize(col)
				prototypes.SetCol(j, col)
				continue
			}
			topo, err := dominantTopography(obs, members[j])
			if err != nil {
				return ClusterResult{}, err
			}
			prototypes.SetCol(j, topo)
		}
	}

	return ClusterResult{
		Prototypes:  prototypes,
		TrainLabels: labels,
		Iterations:  iterations,
		Converged:   converged,
	}, nil
}

// colSlice returns column j of m as a slice backed by a copy.
func colSlice(m *mat.Dense, j int) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	mat.Col(out, j, m)
	return out
}
