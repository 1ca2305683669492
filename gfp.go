package microstates

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// GFPMethod computes the global field power of a single multichannel sample:
// a scalar, non-negative measure of how much signal is present at that
// instant. High-GFP moments have the best topographic signal-to-noise ratio
// and are the preferred training samples.
type GFPMethod interface {
	FieldPower(sample []float64) float64
}

// GFPFunc adapts a plain function into a GFPMethod.
type GFPFunc func(sample []float64) float64

func (f GFPFunc) FieldPower(sample []float64) float64 { return f(sample) }

// L1GFP measures field power as the mean absolute deviation from the mean
// across channels.
type L1GFP struct{}

func (L1GFP) FieldPower(sample []float64) float64 {
	if len(sample) == 0 {
		return 0
	}
	mean := meanOf(sample)
	var sum float64
	for _, v := range sample {
		sum += math.Abs(v - mean)
	}
	return sum / float64(len(sample))
}

// L2GFP measures field power as the standard deviation across channels.
type L2GFP struct{}

func (L2GFP) FieldPower(sample []float64) float64 {
	if len(sample) == 0 {
		return 0
	}
	mean := meanOf(sample)
	var sum float64
	for _, v := range sample {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(sample)))
}

func meanOf(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// GFPSeries computes the field power at every timepoint of a channels×time
// matrix.
func GFPSeries(data *mat.Dense, method GFPMethod) []float64 {
	nChannels, nSamples := data.Dims()
	out := make([]float64, nSamples)
	col := make([]float64, nChannels)
	for t := 0; t < nSamples; t++ {
		mat.Col(col, t, data)
		out[t] = method.FieldPower(col)
	}
	return out
}
