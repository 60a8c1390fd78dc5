// Package report aggregates per-worker classification output into a
// process-wide per-taxon summary: total reads assigned to each taxon, an
// estimate of distinct minimizers observed for each taxon, and the set of
// taxa that received at least one classified read (a RoaringBitmap membership set,
// grounded on the local-bitmap wrapper pattern used elsewhere in this
// codebase's ancestry for compact row-id filtering).
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"taxoclass-core/classify"
	"taxoclass-core/hashid"
)

// TaxonId is re-exported for callers that only import report.
type TaxonId = hashid.TaxonId

// Aggregate accumulates PerTaxonCounter values across every worker. Not
// safe for concurrent use; the driver folds each worker's Scratch counters
// into one Aggregate under its stats mutex.
type Aggregate struct {
	counters map[TaxonId]*classify.PerTaxonCounter
	seen     *roaring.Bitmap

	Processed  uint64
	Classified uint64
}

// NewAggregate returns an empty Aggregate.
func NewAggregate() *Aggregate {
	return &Aggregate{
		counters: make(map[TaxonId]*classify.PerTaxonCounter),
		seen:     roaring.New(),
	}
}

// Record folds the outcome of one fragment, classified or not, into the
// aggregate: processed/classified totals plus, for a classified fragment,
// the seen-taxa membership set.
func (a *Aggregate) Record(classified bool, called TaxonId) {
	a.Processed++
	if classified {
		a.Classified++
		a.seen.Add(uint32(called))
	}
}

// MergeCounters folds a worker's thread-local per-taxon counters (from
// classify.Scratch.Counters) into the aggregate. Safe to call with a nil
// map (report counters disabled).
func (a *Aggregate) MergeCounters(src map[TaxonId]*classify.PerTaxonCounter) error {
	for t, c := range src {
		dst, ok := a.counters[t]
		if !ok {
			a.counters[t] = c
			continue
		}
		dst.ReadCount += c.ReadCount
		if err := dst.DistinctKmers.Merge(c.DistinctKmers); err != nil {
			return err
		}
	}
	return nil
}

// SeenTaxa reports the number of distinct taxa that received at least one
// classified read.
func (a *Aggregate) SeenTaxa() uint64 {
	return a.seen.GetCardinality()
}

// Row is one line of the rendered per-taxon report.
type Row struct {
	Taxon         TaxonId
	ReadCount     uint64
	DistinctKmers uint64
}

// Rows returns the accumulated per-taxon counters as a slice sorted by
// TaxonId, for deterministic report rendering.
func (a *Aggregate) Rows() []Row {
	rows := make([]Row, 0, len(a.counters))
	for t, c := range a.counters {
		rows = append(rows, Row{Taxon: t, ReadCount: c.ReadCount, DistinctKmers: c.DistinctKmers.Estimate()})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Taxon < rows[j].Taxon })
	return rows
}

// NameFunc resolves a TaxonId to its display name, typically
// taxonomy.Taxonomy.Name.
type NameFunc func(TaxonId) string

// Render writes a minimal tab-separated per-taxon count table: taxon id,
// display name, classified read count, estimated distinct minimizers.
// This is deliberately not a full Kraken-style tree report (out of scope);
// it exists to let callers validate PerTaxonCounter end to end.
func (a *Aggregate) Render(w io.Writer, name NameFunc) error {
	if _, err := fmt.Fprintf(w, "taxon_id\tname\treads\tdistinct_minimizers\n"); err != nil {
		return err
	}
	for _, row := range a.Rows() {
		n := ""
		if name != nil {
			n = name(row.Taxon)
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", row.Taxon, n, row.ReadCount, row.DistinctKmers); err != nil {
			return err
		}
	}
	return nil
}
