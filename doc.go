// Package microstates segments continuous multichannel EEG/MEG recordings
// into microstates: brief, quasi-stable topographic patterns of the
// electric field.
//
// Channel-voltage vectors at informative timepoints (by default the peaks
// of the global field power, where topographic signal-to-noise is highest)
// are clustered into K prototype topographies, every sample of the record
// is backfitted to its best-matching prototype by maximal absolute spatial
// projection, and the best of several randomly initialized runs is selected
// by global explained variance or a cross-validation criterion.
//
// Basic usage:
//
//	cfg := microstates.DefaultConfig()
//	cfg.Method = microstates.MethodModifiedKMeans
//	cfg.Seed = 42
//	result, err := microstates.Segment(data, cfg)
//	// result.Microstates is the channels × K prototype matrix
//	// result.Sequence[t] is the microstate active at sample t
//	// result.GEV is the fraction of signal variance the model explains
//
// # Method selection
//
// Config.Method picks the clustering algorithm: plain k-means (the
// default), the polarity-invariant modified k-means of Pascual-Marqui et
// al. (1995), PCA, ICA (FastICA), or atomize-and-agglomerate hierarchical
// clustering:
//
//	cfg.Method = microstates.MethodKMeans
//	cfg.Method = microstates.MethodModifiedKMeans
//	cfg.Method = microstates.MethodPCA
//	cfg.Method = microstates.MethodICA
//	cfg.Method = microstates.MethodAAHC
//
// Topography polarity is not physiologically meaningful, so assignment and
// scoring treat a map and its negation as the same state throughout.
package microstates
