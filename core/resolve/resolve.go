// Package resolve implements TreeResolver: selecting the called taxon from
// per-taxon hit counts by root-to-leaf score summing with LCA tie-break,
// then climbing the tree until the accumulated clade score meets a
// required confidence threshold.
package resolve

import (
	"math"
	"sort"

	"taxoclass-core/hashid"
)

// TaxonId is re-exported from hashid for callers that only import resolve.
type TaxonId = hashid.TaxonId

// Oracle is the subset of TaxonomyOracle that TreeResolver needs.
type Oracle interface {
	Parent(t TaxonId) TaxonId
	IsAncestor(a, b TaxonId) bool
	LowestCommonAncestor(a, b TaxonId) TaxonId
}

// HitCounts maps TaxonId to observed occurrence count. Keys must exclude
// sentinels and zero.
type HitCounts map[TaxonId]uint32

// Resolve picks the called taxon via max root-to-leaf score with LCA
// tie-break, then climbs toward the root until the accumulated clade score
// meets the required confidence.
func Resolve(oracle Oracle, hits HitCounts, totalMinimizers int, threshold float64) TaxonId {
	if len(hits) == 0 {
		return hashid.NoTaxon
	}

	required := requiredScore(threshold, totalMinimizers)

	// Sort candidate taxa before phase-1 iteration so the LCA tie-break
	// chain is reproducible regardless of the backing map's rehashing.
	candidates := make([]TaxonId, 0, len(hits))
	for t := range hits {
		candidates = append(candidates, t)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

	// Phase 1: pick candidate by max RTL score, tie-break via LCA.
	var winner TaxonId
	var winnerScore uint64
	for _, t := range candidates {
		score := rtlScore(oracle, hits, t)
		switch {
		case winner == hashid.NoTaxon:
			winner, winnerScore = t, score
		case score > winnerScore:
			winner, winnerScore = t, score
		case score == winnerScore:
			winner = oracle.LowestCommonAncestor(winner, t)
			winnerScore = rtlScore(oracle, hits, winner)
		}
	}

	// Phase 2: climb for support.
	score := uint64(hits[winner])
	for winner != hashid.NoTaxon && score < required {
		score = rtlScore(oracle, hits, winner)
		if score >= required {
			return winner
		}
		winner = oracle.Parent(winner)
	}
	return winner
}

// rtlScore computes the root-to-leaf score for candidate t: the sum of hit
// counts over all observed taxa whose ancestor chain passes through t.
func rtlScore(oracle Oracle, hits HitCounts, t TaxonId) uint64 {
	if t == hashid.NoTaxon {
		return 0
	}
	var sum uint64
	for u, c := range hits {
		if oracle.IsAncestor(t, u) {
			sum += uint64(c)
		}
	}
	return sum
}

// requiredScore computes ceil(threshold * totalMinimizers).
func requiredScore(threshold float64, totalMinimizers int) uint64 {
	if totalMinimizers <= 0 {
		return 0
	}
	return uint64(math.Ceil(threshold * float64(totalMinimizers)))
}
