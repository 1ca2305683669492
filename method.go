package microstates

import (
	"fmt"
	"strings"
)

// Method selects the clustering algorithm.
type Method string

const (
	MethodKMeans         Method = "kmeans"
	MethodModifiedKMeans Method = "kmod"
	MethodPCA            Method = "pca"
	MethodICA            Method = "ica"
	MethodAAHC           Method = "aahc"
)

// resolveMethod maps a user-facing method name onto a canonical Method.
// Matching is case-insensitive and accepts the long-form aliases. An empty
// name resolves to plain k-means; anything unrecognized is a configuration
// error rather than a silent fallback.
func resolveMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "kmeans", "k-means":
		return MethodKMeans, nil
	case "kmod", "kmods", "kmeans modified", "modified kmeans":
		return MethodModifiedKMeans, nil
	case "pca", "principal component", "principal component analysis":
		return MethodPCA, nil
	case "ica", "independent component", "independent component analysis":
		return MethodICA, nil
	case "aahc", "atomize and agglomerate", "hierarchical":
		return MethodAAHC, nil
	}
	return "", fmt.Errorf("%w: unknown method %q", ErrConfiguration, name)
}

// Criterion selects which score drives best-run selection.
type Criterion string

const (
	// CriterionGEV selects the run with the highest global explained variance.
	CriterionGEV Criterion = "gev"
	// CriterionCV selects the run with the lowest cross-validation criterion.
	CriterionCV Criterion = "cv"
)

// resolveCriterion maps a user-facing criterion name onto a canonical
// Criterion. An empty name resolves to GEV.
func resolveCriterion(name string) (Criterion, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gev":
		return CriterionGEV, nil
	case "cv", "crossvalidation", "cross-validation":
		return CriterionCV, nil
	}
	return "", fmt.Errorf("%w: unknown criterion %q", ErrConfiguration, name)
}
