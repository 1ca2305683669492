package microstates

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// pcaClusterer takes the leading K principal components of the training
// samples as prototypes. Closed-form and deterministic; labeling happens
// entirely in the backfit step.
type pcaClusterer struct {
	k int
}

func (c *pcaClusterer) Stochastic() bool { return false }

func (c *pcaClusterer) Cluster(obs *mat.Dense, _ *rand.Rand) (ClusterResult, error) {
	nChannels, nSamples := obs.Dims()
	if c.k > nChannels {
		return ClusterResult{}, fmt.Errorf("%w: NMicrostates %d exceeds %d channels for PCA",
			ErrConfiguration, c.k, nChannels)
	}
	if nSamples <= nChannels {
		return ClusterResult{}, fmt.Errorf("%w: PCA needs more training samples than channels, got %d samples for %d channels",
			ErrConfiguration, nSamples, nChannels)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(obs.T(), nil); !ok {
		return ClusterResult{}, fmt.Errorf("microstates: principal component analysis failed on %d×%d training data",
			nSamples, nChannels)
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	prototypes := mat.NewDense(nChannels, c.k, nil)
	col := make([]float64, nChannels)
	for j := 0; j < c.k; j++ {
		mat.Col(col, j, &vecs)
		normalize(col)
		prototypes.SetCol(j, col)
	}

	total := floats.Sum(vars)
	explained := make([]float64, c.k)
	var explainedTotal float64
	if total > 0 {
		for j := 0; j < c.k; j++ {
			explained[j] = vars[j] / total
			explainedTotal += explained[j]
		}
	}

	return ClusterResult{
		Prototypes:             prototypes,
		Converged:              true,
		ExplainedVariance:      explained,
		TotalExplainedVariance: explainedTotal,
	}, nil
}
