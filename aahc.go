package microstates

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// aahcClusterer implements atomize-and-agglomerate hierarchical clustering:
// every training sample starts as its own cluster, and the cluster whose
// removal loses the least explained variance is repeatedly dissolved, its
// members reassigned to the remaining cluster with the highest squared
// correlation, until K clusters remain. Deterministic given the data; the
// RNG parameter exists only for interface uniformity and is never consumed.
// Computationally the heaviest of the supported algorithms.
type aahcClusterer struct {
	k int
}

func (c *aahcClusterer) Stochastic() bool { return false }

func (c *aahcClusterer) Cluster(obs *mat.Dense, _ *rand.Rand) (ClusterResult, error) {
	nChannels, nSamples := obs.Dims()
	if c.k > nSamples {
		return ClusterResult{}, fmt.Errorf("%w: NMicrostates %d exceeds %d training samples",
			ErrConfiguration, c.k, nSamples)
	}

	cols := make([][]float64, nSamples)
	for t := 0; t < nSamples; t++ {
		cols[t] = colSlice(obs, t)
	}

	// Atomize: one singleton cluster per sample, prototype = the sample
	// itself, normalized.
	clusters := make([]*aahcCluster, nSamples)
	for t := 0; t < nSamples; t++ {
		topo := make([]float64, nChannels)
		copy(topo, cols[t])
		normalize(topo)
		clusters[t] = &aahcCluster{members: []int{t}, prototype: topo}
		clusters[t].updateFit(cols)
	}

	for len(clusters) > c.k {
		// Agglomerate: dissolve the cluster contributing the least explained
		// variance; ties go to the lowest index.
		worst := 0
		for i := 1; i < len(clusters); i++ {
			if clusters[i].fit < clusters[worst].fit {
				worst = i
			}
		}
		orphans := clusters[worst].members
		clusters = append(clusters[:worst], clusters[worst+1:]...)

		touched := map[*aahcCluster]bool{}
		for _, t := range orphans {
			best, bestFit := 0, -1.0
			for i, cl := range clusters {
				d := floats.Dot(cols[t], cl.prototype)
				if f := d * d; f > bestFit {
					best, bestFit = i, f
				}
			}
			clusters[best].members = append(clusters[best].members, t)
			touched[clusters[best]] = true
		}

		for cl := range touched {
			topo, err := dominantTopography(obs, cl.members)
			if err != nil {
				return ClusterResult{}, err
			}
			cl.prototype = topo
		}
		for cl := range touched {
			cl.updateFit(cols)
		}
	}

	prototypes := mat.NewDense(nChannels, c.k, nil)
	labels := make([]int, nSamples)
	for j, cl := range clusters {
		prototypes.SetCol(j, cl.prototype)
		for _, t := range cl.members {
			labels[t] = j
		}
	}

	return ClusterResult{
		Prototypes:  prototypes,
		TrainLabels: labels,
		Converged:   true,
	}, nil
}

type aahcCluster struct {
	members   []int
	prototype []float64
	fit       float64
}

// updateFit caches the cluster's explained-variance contribution: the summed
// squared projection of its members onto the (unit-norm) prototype.
func (cl *aahcCluster) updateFit(cols [][]float64) {
	var sum float64
	for _, t := range cl.members {
		d := floats.Dot(cols[t], cl.prototype)
		sum += d * d
	}
	cl.fit = sum
}
