package microstates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSegmentRecoversKnownStates is the end-to-end check: a 4-channel,
// 1000-sample record built from three known alternating topographies plus
// small noise must be segmented back into those three states (up to label
// permutation) with high explained variance.
func TestSegmentRecoversKnownStates(t *testing.T) {
	topos := fourChannelTopos()
	data, truth := buildSignal(topos, cyclePattern(20, 3), 50, 1.0, 0.02, 42)
	_, nSamples := data.Dims()
	require.Equal(t, 1000, nSamples)

	cfg := DefaultConfig()
	cfg.NMicrostates = 3
	cfg.NRuns = 5
	cfg.Seed = 42

	result, err := Segment(data, cfg)
	require.NoError(t, err)

	require.Len(t, result.Sequence, nSamples)
	for _, s := range result.Sequence {
		require.GreaterOrEqual(t, s, 0)
		require.Less(t, s, 3)
	}

	assert.Greater(t, result.GEV, 0.8, "GEV")

	mapping, accuracy := labelMapping(result.Sequence, truth, 3)
	assert.True(t, isBijection(mapping), "label mapping must be a permutation: %v", mapping)
	assert.GreaterOrEqual(t, accuracy, 0.95, "segment-level recovery")
}

// TestSegmentGEVMonotonicInStates checks that granting the model more
// states never lowers the best achievable explained variance.
func TestSegmentGEVMonotonicInStates(t *testing.T) {
	topos := fourChannelTopos()
	data, _ := buildSignal(topos, cyclePattern(18, 3), 30, 1.0, 0.02, 10)

	var prev float64
	for _, k := range []int{2, 3} {
		cfg := DefaultConfig()
		cfg.NMicrostates = k
		cfg.NRuns = 10
		cfg.Seed = 10

		result, err := Segment(data, cfg)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.GEV+1e-9, prev,
			"GEV decreased when raising the state count to %d", k)
		prev = result.GEV
	}
}

// TestSegmentClassifierOrdersStates checks the default classifier: state 0
// carries the largest explained-variance share, and reordering preserves
// the fit.
func TestSegmentClassifierOrdersStates(t *testing.T) {
	topos := fourChannelTopos()
	// Uneven segment counts so the contributions differ clearly.
	pattern := []int{0, 1, 2, 0, 1, 0, 0, 1, 0, 2, 0, 0}
	data, _ := buildSignal(topos, pattern, 25, 1.0, 0.02, 12)

	cfg := DefaultConfig()
	cfg.NMicrostates = 3
	cfg.NRuns = 10
	cfg.Seed = 12

	result, err := Segment(data, cfg)
	require.NoError(t, err)

	require.Len(t, result.Info.StateGEV, 3)
	for j := 1; j < 3; j++ {
		assert.LessOrEqual(t, result.Info.StateGEV[j], result.Info.StateGEV[j-1]+1e-12,
			"StateGEV must be non-increasing after classification")
	}

	var sum float64
	for _, v := range result.Info.StateGEV {
		sum += v
	}
	assert.InDelta(t, result.GEV, sum, 1e-9, "state contributions must sum to the total GEV")
}

// TestSegmentCriterionSwitch verifies both scores are reported no matter
// which one drives selection.
func TestSegmentCriterionSwitch(t *testing.T) {
	topos := fourChannelTopos()[:2]
	data, _ := buildSignal(topos, cyclePattern(10, 2), 30, 1.0, 0.05, 14)

	base := DefaultConfig()
	base.NMicrostates = 2
	base.NRuns = 8
	base.Seed = 14

	byGEV, err := Segment(data, base)
	require.NoError(t, err)

	base.Criterion = CriterionCV
	byCV, err := Segment(data, base)
	require.NoError(t, err)

	for _, result := range []*Result{byGEV, byCV} {
		assert.False(t, result.GEV == 0 && result.CrossValidationCriterion == 0,
			"both scores must be populated")
		require.Len(t, result.Info.RunGEV, result.Info.NRuns)
		require.Len(t, result.Info.RunCV, result.Info.NRuns)
	}

	// Same seed, same runs: only the selection rule differs, so the chosen
	// indices must agree with a direct scan of the recorded scores.
	bestGEV := 0
	for i, v := range byGEV.Info.RunGEV {
		if v > byGEV.Info.RunGEV[bestGEV] {
			bestGEV = i
		}
	}
	assert.Equal(t, bestGEV, byGEV.Info.BestRun)

	bestCV := 0
	for i, v := range byCV.Info.RunCV {
		if v < byCV.Info.RunCV[bestCV] {
			bestCV = i
		}
	}
	assert.Equal(t, bestCV, byCV.Info.BestRun)
}
