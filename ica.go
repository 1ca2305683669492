package microstates

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// icaClusterer estimates K independent components of the training samples
// with FastICA (symmetric orthogonalization, tanh contrast) and uses the
// corresponding mixing topographies as prototypes. The unmixing matrix is
// initialized from the run RNG, so repeated runs explore different optima.
type icaClusterer struct {
	k             int
	maxIterations int
	tolerance     float64
}

func (c *icaClusterer) Stochastic() bool { return true }

func (c *icaClusterer) Cluster(obs *mat.Dense, rng *rand.Rand) (ClusterResult, error) {
	nChannels, nSamples := obs.Dims()
	if c.k > nChannels {
		return ClusterResult{}, fmt.Errorf("%w: NMicrostates %d exceeds %d channels for ICA",
			ErrConfiguration, c.k, nChannels)
	}

	// Center each channel, then whiten via thin SVD: z = √n diag(1/s) uᵀ x
	// has unit variance along each of the retained k directions.
	centered := mat.NewDense(nChannels, nSamples, nil)
	row := make([]float64, nSamples)
	for ch := 0; ch < nChannels; ch++ {
		mat.Row(row, ch, obs)
		mean := meanOf(row)
		for t, v := range row {
			centered.Set(ch, t, v-mean)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return ClusterResult{}, fmt.Errorf("microstates: SVD failed on %d×%d training data", nChannels, nSamples)
	}
	var u mat.Dense
	svd.UTo(&u)
	s := svd.Values(nil)
	if len(s) < c.k || s[c.k-1] <= s[0]*1e-12 {
		return ClusterResult{}, fmt.Errorf("microstates: training data has rank below %d, cannot extract %d independent components",
			c.k, c.k)
	}

	scale := math.Sqrt(float64(nSamples))
	z := mat.NewDense(c.k, nSamples, nil)
	for j := 0; j < c.k; j++ {
		for t := 0; t < nSamples; t++ {
			var dot float64
			for ch := 0; ch < nChannels; ch++ {
				dot += u.At(ch, j) * centered.At(ch, t)
			}
			z.Set(j, t, scale*dot/s[j])
		}
	}

	// Random orthogonal starting point for the unmixing matrix.
	w := mat.NewDense(c.k, c.k, nil)
	for i := 0; i < c.k; i++ {
		for j := 0; j < c.k; j++ {
			w.Set(i, j, rng.NormFloat64())
		}
	}
	if err := symmetricDecorrelate(w); err != nil {
		return ClusterResult{}, err
	}

	iterations := 0
	converged := false
	y := mat.NewDense(c.k, nSamples, nil)
	for iter := 0; iter < c.maxIterations; iter++ {
		iterations = iter + 1

		y.Mul(w, z)

		// Fixed-point update: w1 = E[g(y) zᵀ] - diag(E[g'(y)]) w.
		w1 := mat.NewDense(c.k, c.k, nil)
		for i := 0; i < c.k; i++ {
			var gPrimeMean float64
			for t := 0; t < nSamples; t++ {
				g := math.Tanh(y.At(i, t))
				gPrimeMean += 1 - g*g
				for j := 0; j < c.k; j++ {
					w1.Set(i, j, w1.At(i, j)+g*z.At(j, t))
				}
			}
			gPrimeMean /= float64(nSamples)
			for j := 0; j < c.k; j++ {
				w1.Set(i, j, w1.At(i, j)/float64(nSamples)-gPrimeMean*w.At(i, j))
			}
		}
		if err := symmetricDecorrelate(w1); err != nil {
			return ClusterResult{}, err
		}

		// Convergence: the new rows are (up to sign) the old rows.
		var delta mat.Dense
		delta.Mul(w1, w.T())
		maxDev := 0.0
		for i := 0; i < c.k; i++ {
			if d := math.Abs(1 - math.Abs(delta.At(i, i))); d > maxDev {
				maxDev = d
			}
		}
		w.Copy(w1)
		if maxDev < c.tolerance {
			converged = true
			break
		}
	}

	// Mixing topographies: x ≈ u diag(s/√n) wᵀ y, so up to the overall
	// scale the prototype for component i is u diag(s) applied to row i
	// of w; normalization absorbs the scale.
	prototypes := mat.NewDense(nChannels, c.k, nil)
	col := make([]float64, nChannels)
	for i := 0; i < c.k; i++ {
		for ch := 0; ch < nChannels; ch++ {
			var sum float64
			for j := 0; j < c.k; j++ {
				sum += u.At(ch, j) * s[j] * w.At(i, j)
			}
			col[ch] = sum
		}
		normalize(col)
		prototypes.SetCol(i, col)
	}

	return ClusterResult{
		Prototypes: prototypes,
		Iterations: iterations,
		Converged:  converged,
	}, nil
}

// symmetricDecorrelate replaces w with (w wᵀ)^(-1/2) w, making its rows
// orthonormal while preserving their span.
func symmetricDecorrelate(w *mat.Dense) error {
	k, _ := w.Dims()
	wwT := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			var sum float64
			for l := 0; l < k; l++ {
				sum += w.At(i, l) * w.At(j, l)
			}
			wwT.SetSym(i, j, sum)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(wwT, true); !ok {
		return fmt.Errorf("microstates: decorrelation eigendecomposition failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	inv := mat.NewDense(k, k, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			var sum float64
			for l := 0; l < k; l++ {
				if vals[l] <= 0 {
					return fmt.Errorf("microstates: singular unmixing matrix during decorrelation")
				}
				sum += vecs.At(i, l) * vecs.At(j, l) / math.Sqrt(vals[l])
			}
			inv.Set(i, j, sum)
		}
	}

	var out mat.Dense
	out.Mul(inv, w)
	w.Copy(&out)
	return nil
}
