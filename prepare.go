package microstates

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// TrainSelector chooses which timepoints the clustering algorithm trains on.
type TrainSelector string

const (
	// TrainGFP trains on the local maxima of the global field power series,
	// the moments of highest topographic signal-to-noise ratio.
	TrainGFP TrainSelector = "gfp"
	// TrainAll trains on every timepoint.
	TrainAll TrainSelector = "all"
	// TrainSpaced trains on an evenly spaced subset of timepoints whose size
	// is given by Config.TrainSize (a count if > 1, a fraction if <= 1).
	TrainSpaced TrainSelector = "spaced"
)

// Preparer turns a raw channels×time record into the inputs the clustering
// core consumes: the (optionally standardized) data matrix, the training
// index set, and the global field power series. The returned matrix may be
// the input itself when no transformation is applied; the core never
// mutates it.
type Preparer interface {
	Prepare(data *mat.Dense, cfg Config) (prepared *mat.Dense, train []int, gfp []float64, err error)
}

// StandardPreparer is the default Preparer: optional per-channel z-scoring,
// GFP extraction via the configured GFPMethod, and training-index selection
// per the configured TrainSelector.
type StandardPreparer struct{}

func (StandardPreparer) Prepare(data *mat.Dense, cfg Config) (*mat.Dense, []int, []float64, error) {
	_, nSamples := data.Dims()

	prepared := data
	if cfg.Standardize {
		prepared = standardizeChannels(data)
	}

	gfp := GFPSeries(prepared, cfg.GFPMethod)

	var train []int
	switch cfg.Train {
	case TrainGFP:
		train = peakIndices(gfp)
	case TrainAll:
		train = make([]int, nSamples)
		for i := range train {
			train[i] = i
		}
	case TrainSpaced:
		count := int(math.Round(cfg.TrainSize))
		if cfg.TrainSize <= 1 {
			count = int(math.Round(cfg.TrainSize * float64(nSamples)))
		}
		if count < 1 || count > nSamples {
			return nil, nil, nil, fmt.Errorf("%w: TrainSize %v selects %d of %d samples",
				ErrConfiguration, cfg.TrainSize, count, nSamples)
		}
		train = spacedIndices(nSamples, count)
	default:
		return nil, nil, nil, fmt.Errorf("%w: unknown train selector %q", ErrConfiguration, cfg.Train)
	}

	if len(train) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: train selector %q produced no training samples",
			ErrConfiguration, cfg.Train)
	}
	return prepared, train, gfp, nil
}

// standardizeChannels z-scores each channel over time. Zero-variance
// channels are centered but not scaled.
func standardizeChannels(data *mat.Dense) *mat.Dense {
	nChannels, nSamples := data.Dims()
	out := mat.NewDense(nChannels, nSamples, nil)
	row := make([]float64, nSamples)
	for c := 0; c < nChannels; c++ {
		mat.Row(row, c, data)
		mean, std := stat.MeanStdDev(row, nil)
		for t, v := range row {
			if std > 0 {
				out.Set(c, t, (v-mean)/std)
			} else {
				out.Set(c, t, v-mean)
			}
		}
	}
	return out
}

// peakIndices returns the strict local maxima of the series. When the series
// has no interior peak (flat or monotonic signal), it falls back to every
// index so that training never starves.
func peakIndices(series []float64) []int {
	var peaks []int
	for t := 1; t < len(series)-1; t++ {
		if series[t] > series[t-1] && series[t] > series[t+1] {
			peaks = append(peaks, t)
		}
	}
	if len(peaks) == 0 {
		peaks = make([]int, len(series))
		for i := range peaks {
			peaks[i] = i
		}
	}
	return peaks
}

// spacedIndices returns count indices evenly spread over [0, n).
func spacedIndices(n, count int) []int {
	if count == 1 {
		return []int{n / 2}
	}
	idx := make([]int, count)
	step := float64(n-1) / float64(count-1)
	for i := range idx {
		idx[i] = int(math.Round(float64(i) * step))
	}
	return idx
}
