package microstates

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ClusterResult is the uniform output of one clustering attempt: K prototype
// topographies plus whatever bookkeeping the algorithm naturally produces.
// TrainLabels, when present, covers only the training columns; the caller
// always recomputes the full-length sequence by backfitting.
type ClusterResult struct {
	// Prototypes holds one topography per column, channels × K.
	Prototypes *mat.Dense

	// TrainLabels assigns each training sample to a prototype. Nil for
	// algorithms that do not label during fitting (PCA, ICA).
	TrainLabels []int

	// Iterations is the number of iterations performed; 0 for closed-form
	// algorithms.
	Iterations int

	// Converged is false when an iterative algorithm hit its iteration limit
	// before meeting the convergence threshold.
	Converged bool

	// ExplainedVariance and TotalExplainedVariance are per-component variance
	// ratios, populated by the PCA method only.
	ExplainedVariance      []float64
	TotalExplainedVariance float64
}

// Clusterer produces K topographic prototypes from training observations.
// obs is always channels × n_train; implementations transpose internally as
// needed, so callers never deal with orientation. The RNG is the run's own
// pre-seeded stream; deterministic algorithms accept it for interface
// uniformity and must not consume it.
type Clusterer interface {
	Cluster(obs *mat.Dense, rng *rand.Rand) (ClusterResult, error)

	// Stochastic reports whether repeated runs with fresh initializations can
	// differ. Deterministic algorithms are run once regardless of NRuns.
	Stochastic() bool
}

// newClusterer builds the Clusterer for a resolved method.
func newClusterer(method Method, cfg Config) Clusterer {
	switch method {
	case MethodModifiedKMeans:
		return &modifiedKMeans{
			k:             cfg.NMicrostates,
			maxIterations: cfg.MaxIterations,
			threshold:     cfg.Threshold,
		}
	case MethodPCA:
		return &pcaClusterer{k: cfg.NMicrostates}
	case MethodICA:
		return &icaClusterer{
			k:             cfg.NMicrostates,
			maxIterations: cfg.MaxIterations,
			tolerance:     1e-4,
		}
	case MethodAAHC:
		return &aahcClusterer{k: cfg.NMicrostates}
	default:
		return &kmeansClusterer{
			k:             cfg.NMicrostates,
			maxIterations: cfg.MaxIterations,
		}
	}
}

// trainingColumns copies the selected columns of a channels×time matrix into
// a channels×len(train) observation matrix.
func trainingColumns(data *mat.Dense, train []int) *mat.Dense {
	nChannels, _ := data.Dims()
	obs := mat.NewDense(nChannels, len(train), nil)
	col := make([]float64, nChannels)
	for j, t := range train {
		mat.Col(col, t, data)
		obs.SetCol(j, col)
	}
	return obs
}

// dominantTopography estimates the prototype of a group of samples as the
// leading eigenvector of their summed outer products. This is the
// polarity-invariant analogue of a centroid: sign flips within the group
// cancel instead of averaging to zero.
func dominantTopography(obs *mat.Dense, members []int) ([]float64, error) {
	nChannels, _ := obs.Dims()
	if len(members) == 0 {
		return nil, fmt.Errorf("microstates: cannot estimate a topography from an empty cluster")
	}

	sum := mat.NewSymDense(nChannels, nil)
	for _, t := range members {
		sum.SymRankOne(sum, 1, obs.ColView(t))
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sum, true); !ok {
		return nil, fmt.Errorf("microstates: eigendecomposition failed for a cluster of %d samples", len(members))
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// EigenSym orders eigenvalues ascending; the dominant pattern is last.
	topo := make([]float64, nChannels)
	mat.Col(topo, nChannels-1, &vecs)
	normalize(topo)
	return topo, nil
}

// normalize scales x to unit L2 norm in place. Zero vectors are left alone.
func normalize(x []float64) {
	n := floats.Norm(x, 2)
	if n > 0 {
		floats.Scale(1/n, x)
	}
}
