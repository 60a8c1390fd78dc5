// Package sketch provides the concrete cardinality estimator backing a
// PerTaxonCounter's distinct-kmer count: a HyperLogLog sketch that accepts
// 64-bit keys (mixed through the MurmurHash3 finalizer before insertion),
// is idempotent under repeated identical keys, and merges associatively
// and commutatively across worker threads.
package sketch

import (
	"github.com/axiomhq/hyperloglog"

	"taxoclass-core/hash"
)

// Estimator wraps a HyperLogLog sketch sized for per-taxon distinct-kmer
// counting during a single classification run (thousands to low millions
// of distinct minimizers per taxon in realistic workloads).
type Estimator struct {
	hll *hyperloglog.Sketch
}

// NewEstimator returns a ready-to-use, empty Estimator.
func NewEstimator() *Estimator {
	return &Estimator{hll: hyperloglog.New16()}
}

// Add records the occurrence of a 64-bit key. The key is spread over all 64
// bits with the MurmurHash3 finalizer first, so small raw values such as
// minimizer codes still land in distinct sketch registers. Repeated calls
// with the same key do not change the estimate (idempotent).
func (e *Estimator) Add(key uint64) {
	e.hll.InsertHash(hash.MurmurFinalize64(key))
}

// Merge folds other's observations into e. Associative and commutative:
// merging a set of per-thread estimators in any order yields the same
// result.
func (e *Estimator) Merge(other *Estimator) error {
	if other == nil {
		return nil
	}
	return e.hll.Merge(other.hll)
}

// Estimate returns the estimated number of distinct keys added so far.
func (e *Estimator) Estimate() uint64 {
	return e.hll.Estimate()
}
