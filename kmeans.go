package microstates

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// kmeansClusterer implements plain Lloyd k-means over the sample vectors
// with k-means++ seeding. Unlike the modified variant it is
// polarity-sensitive: centroids are means and assignment uses Euclidean
// distance.
type kmeansClusterer struct {
	k             int
	maxIterations int
}

func (c *kmeansClusterer) Stochastic() bool { return true }

func (c *kmeansClusterer) Cluster(obs *mat.Dense, rng *rand.Rand) (ClusterResult, error) {
	nChannels, nSamples := obs.Dims()
	if c.k > nSamples {
		return ClusterResult{}, fmt.Errorf("%w: NMicrostates %d exceeds %d training samples",
			ErrConfiguration, c.k, nSamples)
	}

	centroids := c.seedPlusPlus(obs, rng)
	col := make([]float64, nChannels)

	labels := make([]int, nSamples)
	prev := make([]int, nSamples)
	for i := range prev {
		prev[i] = -1
	}

	iterations := 0
	converged := false
	for iter := 0; iter < c.maxIterations; iter++ {
		iterations = iter + 1

		for t := 0; t < nSamples; t++ {
			labels[t] = c.nearest(obs, centroids, t)
		}
		if equalLabels(labels, prev) {
			converged = true
			break
		}
		copy(prev, labels)

		// Recompute centroids as member means; reseed empty clusters from a
		// random sample so k is preserved.
		counts := make([]int, c.k)
		sums := mat.NewDense(nChannels, c.k, nil)
		for t := 0; t < nSamples; t++ {
			j := labels[t]
			counts[j]++
			for ch := 0; ch < nChannels; ch++ {
				sums.Set(ch, j, sums.At(ch, j)+obs.At(ch, t))
			}
		}
		for j := 0; j < c.k; j++ {
			if counts[j] == 0 {
				mat.Col(col, rng.IntN(nSamples), obs)
				centroids.SetCol(j, col)
				continue
			}
			for ch := 0; ch < nChannels; ch++ {
				centroids.Set(ch, j, sums.At(ch, j)/float64(counts[j]))
			}
		}
	}

	return ClusterResult{
		Prototypes:  centroids,
		TrainLabels: labels,
		Iterations:  iterations,
		Converged:   converged,
	}, nil
}

// seedPlusPlus picks initial centroids with k-means++: the first uniformly,
// each subsequent one with probability proportional to its squared distance
// from the nearest centroid chosen so far.
func (c *kmeansClusterer) seedPlusPlus(obs *mat.Dense, rng *rand.Rand) *mat.Dense {
	nChannels, nSamples := obs.Dims()
	centroids := mat.NewDense(nChannels, c.k, nil)
	col := make([]float64, nChannels)

	mat.Col(col, rng.IntN(nSamples), obs)
	centroids.SetCol(0, col)

	dist := make([]float64, nSamples)
	for j := 1; j < c.k; j++ {
		var total float64
		for t := 0; t < nSamples; t++ {
			var d float64
			for ch := 0; ch < nChannels; ch++ {
				v := obs.At(ch, t) - centroids.At(ch, j-1)
				d += v * v
			}
			if j == 1 || d < dist[t] {
				dist[t] = d
			}
			total += dist[t]
		}
		pick := nSamples - 1
		if total > 0 {
			r := rng.Float64() * total
			var cum float64
			for t := 0; t < nSamples; t++ {
				cum += dist[t]
				if cum >= r {
					pick = t
					break
				}
			}
		} else {
			pick = rng.IntN(nSamples)
		}
		mat.Col(col, pick, obs)
		centroids.SetCol(j, col)
	}
	return centroids
}

// nearest returns the index of the centroid closest to sample t in squared
// Euclidean distance.
func (c *kmeansClusterer) nearest(obs, centroids *mat.Dense, t int) int {
	nChannels, _ := obs.Dims()
	best, bestDist := 0, 0.0
	for j := 0; j < c.k; j++ {
		var dist float64
		for ch := 0; ch < nChannels; ch++ {
			d := obs.At(ch, t) - centroids.At(ch, j)
			dist += d * d
		}
		if j == 0 || dist < bestDist {
			best, bestDist = j, dist
		}
	}
	return best
}

func equalLabels(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
