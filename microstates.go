package microstates

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Config controls microstate segmentation.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// NMicrostates is the number of unique microstates to find.
	// Must be >= 2. Default: 4.
	NMicrostates int

	// Train selects the timepoints the clustering algorithm trains on:
	// TrainGFP (peaks of the global field power), TrainAll, or TrainSpaced.
	// Default: TrainGFP.
	Train TrainSelector

	// TrainSize controls TrainSpaced: a sample count when > 1, a fraction of
	// the record when in (0, 1]. Ignored by the other selectors.
	TrainSize float64

	// Method is the clustering algorithm. Accepts the canonical names
	// (kmeans, kmod, pca, ica, aahc) and their long-form aliases,
	// case-insensitively. Default: plain k-means.
	Method Method

	// GFPMethod computes the global field power series: L1GFP (mean absolute
	// deviation) or L2GFP (standard deviation across channels), or any
	// custom GFPMethod. Default: L1GFP.
	GFPMethod GFPMethod

	// SamplingRate of the signal in Hz. Carried into Info as metadata; the
	// clustering itself is sampling-rate agnostic.
	SamplingRate float64

	// Standardize z-scores each channel over time before GFP extraction.
	// Default: false.
	Standardize bool

	// NRuns is the number of random initializations. The best run per the
	// Criterion wins; deterministic methods (pca, aahc) always run once.
	// Default: 10.
	NRuns int

	// MaxIterations bounds the iterative algorithms. A run that hits the
	// bound is still scored but flagged as non-converged. Default: 1000.
	MaxIterations int

	// Threshold is the relative change in the modified k-means activation
	// criterion below which the algorithm is considered converged.
	// Default: 1e-6.
	Threshold float64

	// Criterion drives best-run selection: CriterionGEV (maximize explained
	// variance) or CriterionCV (minimize the cross-validation criterion).
	// Both scores are always computed and reported. Default: CriterionGEV.
	Criterion Criterion

	// Seed for the master random stream. All runs draw from this one stream,
	// so a fixed seed makes results bit-identical across invocations.
	// 0 seeds from the global generator, giving a fresh stream each call.
	Seed uint64

	// Workers parallelizes whole runs. Per-run seeds are pre-drawn from the
	// master stream, so results do not depend on Workers. <= 1 runs
	// sequentially. Default: 0.
	Workers int

	// Preparer produces the prepared matrix, training indices, and GFP
	// series. Default: StandardPreparer.
	Preparer Preparer

	// Classifier reorders the winning prototypes for presentation.
	// Default: GEVOrderClassifier.
	Classifier Classifier

	// Logger receives per-run failure and convergence warnings.
	// Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		NMicrostates:  4,
		Train:         TrainGFP,
		Method:        MethodKMeans,
		GFPMethod:     L1GFP{},
		NRuns:         10,
		MaxIterations: 1000,
		Threshold:     1e-6,
		Criterion:     CriterionGEV,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.NMicrostates == 0 {
		cfg.NMicrostates = 4
	}
	if cfg.Train == "" {
		cfg.Train = TrainGFP
	}
	if cfg.GFPMethod == nil {
		cfg.GFPMethod = L1GFP{}
	}
	if cfg.NRuns == 0 {
		cfg.NRuns = 10
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 1000
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = 1e-6
	}
	if cfg.Preparer == nil {
		cfg.Preparer = StandardPreparer{}
	}
	if cfg.Classifier == nil {
		cfg.Classifier = GEVOrderClassifier{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive
// error if not. Method and criterion names are resolved separately.
func validateConfig(cfg *Config) error {
	if cfg.NMicrostates < 2 {
		return fmt.Errorf("%w: NMicrostates must be >= 2, got %d", ErrConfiguration, cfg.NMicrostates)
	}
	if cfg.NRuns < 1 {
		return fmt.Errorf("%w: NRuns must be >= 1, got %d", ErrConfiguration, cfg.NRuns)
	}
	if cfg.MaxIterations < 1 {
		return fmt.Errorf("%w: MaxIterations must be >= 1, got %d", ErrConfiguration, cfg.MaxIterations)
	}
	if cfg.Threshold <= 0 {
		return fmt.Errorf("%w: Threshold must be > 0, got %g", ErrConfiguration, cfg.Threshold)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: Workers must be >= 0, got %d", ErrConfiguration, cfg.Workers)
	}
	switch cfg.Train {
	case TrainGFP, TrainAll:
	case TrainSpaced:
		if cfg.TrainSize <= 0 {
			return fmt.Errorf("%w: TrainSpaced requires TrainSize > 0, got %g", ErrConfiguration, cfg.TrainSize)
		}
	default:
		return fmt.Errorf("%w: unknown train selector %q", ErrConfiguration, cfg.Train)
	}
	return nil
}

// Result contains the output of microstate segmentation.
type Result struct {
	// Microstates holds the winning prototype topographies, channels × K.
	// Column signs are arbitrary: a topography and its negation are the
	// same microstate.
	Microstates *mat.Dense

	// Sequence assigns each sample of the full record to a microstate,
	// values in [0, K).
	Sequence []int

	// GEV is the global explained variance of the winning run, nominally
	// in [0, 1].
	GEV float64

	// GFP is the global field power series of the (prepared) record.
	GFP []float64

	// CrossValidationCriterion is the winning run's cross-validation score,
	// reported regardless of which criterion drove selection.
	CrossValidationCriterion float64

	// ExplainedVariance and TotalExplainedVariance are per-component
	// variance ratios. Populated by the PCA method only; nil and 0
	// otherwise.
	ExplainedVariance      []float64
	TotalExplainedVariance float64

	// Info carries run diagnostics and metadata.
	Info Info
}

// Info carries diagnostics about the segmentation.
type Info struct {
	// Method is the resolved clustering algorithm.
	Method Method

	// NRuns is the number of runs actually executed (1 for deterministic
	// methods regardless of Config.NRuns).
	NRuns int

	// BestRun is the index of the winning run.
	BestRun int

	// RunGEV and RunCV hold both scores for every run; failed runs are NaN.
	RunGEV []float64
	RunCV  []float64

	// StateGEV is each state's contribution to the winning run's GEV.
	StateGEV []float64

	// Converged is false when the winning run hit MaxIterations before
	// meeting the convergence threshold.
	Converged bool

	// Iterations performed by the winning run; 0 for closed-form methods.
	Iterations int

	// TrainingSamples is the size of the training index set.
	TrainingSamples int

	// SamplingRate echoes Config.SamplingRate.
	SamplingRate float64
}

// Segment clusters a continuous channels×time record into microstates.
//
// The record is prepared (standardization, GFP extraction, training-sample
// selection), the chosen algorithm is fitted NRuns times with fresh random
// initializations drawn from one seeded stream, every fit is backfitted
// over the full record and scored by both GEV and the cross-validation
// criterion, the best run per the configured criterion is selected, and the
// winning prototypes are reordered by the Classifier.
//
// Parameter errors wrap ErrConfiguration and are raised before any run
// executes. Individual run failures are logged and skipped; if no run
// succeeds the error wraps ErrSegmentation.
func Segment(data *mat.Dense, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	method, err := resolveMethod(string(cfg.Method))
	if err != nil {
		return nil, err
	}
	criterion, err := resolveCriterion(string(cfg.Criterion))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: data must not be nil", ErrConfiguration)
	}
	nChannels, nSamples := data.Dims()
	if nChannels == 0 || nSamples == 0 {
		return nil, fmt.Errorf("%w: data must be non-empty, got %d×%d", ErrConfiguration, nChannels, nSamples)
	}

	logger := cfg.Logger.With(slog.String("component", "microstates"))

	prepared, train, gfp, err := cfg.Preparer.Prepare(data, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.NMicrostates > len(train) {
		return nil, fmt.Errorf("%w: NMicrostates %d exceeds %d available training samples",
			ErrConfiguration, cfg.NMicrostates, len(train))
	}

	var gfpSumSq float64
	for _, g := range gfp {
		gfpSumSq += g * g
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	master := rand.New(rand.NewPCG(seed, seed))

	obs := trainingColumns(prepared, train)
	clusterer := newClusterer(method, cfg)
	records := executeRuns(prepared, obs, gfp, gfpSumSq, clusterer, cfg, master, logger)

	best, err := selectBest(records, criterion)
	if err != nil {
		return nil, err
	}
	winner := records[best]

	runGEV := make([]float64, len(records))
	runCV := make([]float64, len(records))
	for i := range records {
		if records[i].err != nil {
			runGEV[i], runCV[i] = math.NaN(), math.NaN()
			continue
		}
		runGEV[i], runCV[i] = records[i].gev, records[i].cv
	}

	result := &Result{
		Microstates:              winner.prototypes,
		Sequence:                 winner.sequence,
		GEV:                      winner.gev,
		GFP:                      gfp,
		CrossValidationCriterion: winner.cv,
		ExplainedVariance:        winner.explainedVariance,
		TotalExplainedVariance:   winner.totalExplainedVariance,
		Info: Info{
			Method:          method,
			NRuns:           len(records),
			BestRun:         best,
			RunGEV:          runGEV,
			RunCV:           runCV,
			StateGEV:        winner.stateGEV,
			Converged:       winner.converged,
			Iterations:      winner.iterations,
			TrainingSamples: len(train),
			SamplingRate:    cfg.SamplingRate,
		},
	}

	if err := cfg.Classifier.Classify(result); err != nil {
		return nil, fmt.Errorf("microstates: classify: %w", err)
	}
	return result, nil
}
