package microstates

import "errors"

// Package-level sentinel errors. All user-triggered failures wrap one of
// these, so callers can match with errors.Is while the message still names
// the offending parameter and its received value.
var (
	// ErrConfiguration indicates an invalid parameter: an unknown method or
	// criterion name, a cluster count exceeding the available training
	// samples, or a malformed input matrix. Raised before any run executes.
	ErrConfiguration = errors.New("microstates: invalid configuration")

	// ErrSegmentation indicates that every clustering run failed, leaving no
	// scored candidate to select. Partial results are never returned.
	ErrSegmentation = errors.New("microstates: segmentation failed")
)
