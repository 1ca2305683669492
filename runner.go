package microstates

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// runRecord holds the scored outcome of one clustering run. Records are
// ephemeral: the slice lives only until selection picks a winner.
type runRecord struct {
	prototypes             *mat.Dense
	sequence               []int
	gev                    float64
	stateGEV               []float64
	cv                     float64
	iterations             int
	converged              bool
	explainedVariance      []float64
	totalExplainedVariance float64
	err                    error
}

// executeRuns performs the configured number of clustering runs and scores
// each one. Per-run sub-seeds are drawn from the master stream up front, so
// the draws stay sequenced even when the runs themselves execute on a
// worker pool and results are identical for a given master seed regardless
// of Workers. Deterministic methods are run once: further initializations
// could only repeat the same record.
func executeRuns(data, obs *mat.Dense, gfp []float64, gfpSumSq float64,
	clusterer Clusterer, cfg Config, master *rand.Rand, logger *slog.Logger,
) []runRecord {
	nRuns := cfg.NRuns
	if !clusterer.Stochastic() {
		nRuns = 1
	}

	seeds := make([][2]uint64, nRuns)
	for i := range seeds {
		seeds[i] = [2]uint64{master.Uint64(), master.Uint64()}
	}

	records := make([]runRecord, nRuns)
	runOne := func(i int) {
		rng := rand.New(rand.NewPCG(seeds[i][0], seeds[i][1]))
		records[i] = scoreRun(data, obs, gfp, gfpSumSq, clusterer, rng)
		if records[i].err != nil {
			logger.Warn("clustering run failed", "run", i, "error", records[i].err)
		} else if !records[i].converged {
			logger.Warn("clustering run did not converge", "run", i, "iterations", records[i].iterations)
		}
	}

	if cfg.Workers <= 1 || nRuns == 1 {
		for i := 0; i < nRuns; i++ {
			runOne(i)
		}
		return records
	}

	// Chunk runs across workers; records are written at distinct indices, so
	// no synchronization beyond the WaitGroup is needed.
	var wg sync.WaitGroup
	runsPerWorker := (nRuns + cfg.Workers - 1) / cfg.Workers
	for w := 0; w < cfg.Workers; w++ {
		start := w * runsPerWorker
		end := min(start+runsPerWorker, nRuns)
		if start >= nRuns {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				runOne(i)
			}
		}(start, end)
	}
	wg.Wait()
	return records
}

// scoreRun performs one cluster → backfit → score cycle. Any sequence the
// engine produced over the training samples alone is discarded; the
// full-length sequence is always recomputed by backfitting.
func scoreRun(data, obs *mat.Dense, gfp []float64, gfpSumSq float64,
	clusterer Clusterer, rng *rand.Rand,
) runRecord {
	res, err := clusterer.Cluster(obs, rng)
	if err != nil {
		return runRecord{err: err}
	}

	nChannels, nSamples := data.Dims()
	sequence := Backfit(data, res.Prototypes)
	gev, stateGEV := GlobalExplainedVariance(data, res.Prototypes, sequence, gfp, gfpSumSq)
	cv := CrossValidationCriterion(data, res.Prototypes, sequence, nChannels, nSamples)

	return runRecord{
		prototypes:             res.Prototypes,
		sequence:               sequence,
		gev:                    gev,
		stateGEV:               stateGEV,
		cv:                     cv,
		iterations:             res.Iterations,
		converged:              res.Converged,
		explainedVariance:      res.ExplainedVariance,
		totalExplainedVariance: res.TotalExplainedVariance,
	}
}

// selectBest picks the winning run: argmax GEV or argmin CV depending on the
// criterion, ties broken by the lowest run index. Failed runs are excluded;
// if every run failed, the whole invocation fails.
func selectBest(records []runRecord, criterion Criterion) (int, error) {
	best := -1
	for i := range records {
		if records[i].err != nil {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		switch criterion {
		case CriterionCV:
			if records[i].cv < records[best].cv {
				best = i
			}
		default:
			if records[i].gev > records[best].gev {
				best = i
			}
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("%w: all %d runs failed", ErrSegmentation, len(records))
	}
	return best, nil
}
