package microstates

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// buildSignal builds a channels × (len(pattern)*segLen) record that steps
// through the given topographies per the pattern, with additive Gaussian
// noise from a fixed-seed generator. Returns the record and the
// ground-truth state per sample.
func buildSignal(topos [][]float64, pattern []int, segLen int, amplitude, noise float64, seed uint64) (*mat.Dense, []int) {
	nChannels := len(topos[0])
	nSamples := len(pattern) * segLen
	data := mat.NewDense(nChannels, nSamples, nil)
	truth := make([]int, nSamples)
	rng := rand.New(rand.NewPCG(seed, seed))

	t := 0
	for _, state := range pattern {
		for s := 0; s < segLen; s++ {
			for ch := 0; ch < nChannels; ch++ {
				data.Set(ch, t, amplitude*topos[state][ch]+noise*rng.NormFloat64())
			}
			truth[t] = state
			t++
		}
	}
	return data, truth
}

// fourChannelTopos returns three mutually orthogonal unit topographies on
// four channels, each with zero mean across channels.
func fourChannelTopos() [][]float64 {
	return [][]float64{
		{0.5, -0.5, 0.5, -0.5},
		{0.5, 0.5, -0.5, -0.5},
		{0.5, -0.5, -0.5, 0.5},
	}
}

// cyclePattern returns a pattern of n segments cycling through k states.
func cyclePattern(n, k int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i % k
	}
	return p
}

// labelMapping derives the predicted→truth label mapping by co-occurrence
// majority vote. Returns the mapping and the fraction of samples whose
// mapped label matches the truth.
func labelMapping(seq, truth []int, k int) (mapping []int, accuracy float64) {
	counts := make([][]int, k)
	for i := range counts {
		counts[i] = make([]int, k)
	}
	for t := range seq {
		counts[seq[t]][truth[t]]++
	}

	mapping = make([]int, k)
	for p := 0; p < k; p++ {
		best := 0
		for g := 1; g < k; g++ {
			if counts[p][g] > counts[p][best] {
				best = g
			}
		}
		mapping[p] = best
	}

	matched := 0
	for t := range seq {
		if mapping[seq[t]] == truth[t] {
			matched++
		}
	}
	return mapping, float64(matched) / float64(len(seq))
}

// isBijection reports whether mapping hits every label exactly once.
func isBijection(mapping []int) bool {
	seen := make([]bool, len(mapping))
	for _, m := range mapping {
		if m < 0 || m >= len(mapping) || seen[m] {
			return false
		}
		seen[m] = true
	}
	return true
}
