// Package classify implements ClassifyOne: classification of a single
// fragment (one read or one mate pair) against a shared Taxonomy and
// Index, producing the called taxon, the per-read output line, and
// increments to per-taxon counters.
package classify

import (
	"fmt"
	"strconv"
	"strings"

	"taxoclass-core/hash"
	"taxoclass-core/hashid"
	"taxoclass-core/minimizer"
	"taxoclass-core/resolve"
	"taxoclass-core/seqio"
	"taxoclass-core/sketch"
	"taxoclass-core/translate"
)

// TaxonId re-exports hashid.TaxonId for callers of this package alone.
type TaxonId = hashid.TaxonId

const (
	noTaxon            = hashid.NoTaxon
	matePairBorder     = hashid.MatePairBorder
	readingFrameBorder = hashid.ReadingFrameBorder
	ambiguousSpan      = hashid.AmbiguousSpan
)

// Taxonomy is the subset of TaxonomyOracle ClassifyOne and TreeResolver
// need.
type Taxonomy interface {
	resolve.Oracle
	ExternalID(t TaxonId) uint64
	Name(t TaxonId) string
}

// Index is the subset of IndexProbe ClassifyOne needs.
type Index interface {
	Get(minimizer uint64) TaxonId
}

// IndexOptions carries the fields of core/index.Options that ClassifyOne
// consults directly (avoids a dependency on the index package's file I/O).
type IndexOptions struct {
	MinimumAcceptableHashValue uint64
}

// Options controls how a single fragment is classified.
type Options struct {
	PairedEnd            bool
	UseTranslatedSearch  bool
	QuickMode            bool
	MinimumHitGroups     int64
	ConfidenceThreshold  float64
	MinimumQualityScore  byte
	PrintScientificName  bool
	EmitReportCounters   bool
}

// PerTaxonCounter is the optional per-taxon report-mode counter.
type PerTaxonCounter struct {
	ReadCount     uint64
	DistinctKmers *sketch.Estimator
}

// Scratch holds the thread-local, reused-across-calls state ClassifyOne
// needs: a scanner, the taxa trail, hit counts, and (if reporting is
// enabled) a per-taxon counter map. One Scratch per worker.
type Scratch struct {
	Scanner   *minimizer.Scanner
	trail     []TaxonId
	hitCounts resolve.HitCounts
	counters  map[TaxonId]*PerTaxonCounter
	maskBuf   [2][]byte
}

// NewScratch constructs a Scratch bound to a scanner configured per the
// loaded IndexOptions.
func NewScratch(cfg minimizer.Config, reportCounters bool) *Scratch {
	s := &Scratch{
		Scanner:   minimizer.New(cfg),
		hitCounts: make(resolve.HitCounts, 32),
	}
	if reportCounters {
		s.counters = make(map[TaxonId]*PerTaxonCounter)
	}
	return s
}

// Counters returns the thread-local per-taxon counters accumulated since
// the Scratch was created (nil if report counters were not requested).
// Callers fold this into the aggregate under the driver's stats mutex.
func (s *Scratch) Counters() map[TaxonId]*PerTaxonCounter { return s.counters }

// ResetCounters clears the thread-local per-taxon counter map after its
// contents have been folded into the process-wide aggregate, so the next
// block starts counting fresh rather than accumulating forever.
func (s *Scratch) ResetCounters() {
	for k := range s.counters {
		delete(s.counters, k)
	}
}

func (s *Scratch) counterFor(t TaxonId) *PerTaxonCounter {
	c, ok := s.counters[t]
	if !ok {
		c = &PerTaxonCounter{DistinctKmers: sketch.NewEstimator()}
		s.counters[t] = c
	}
	return c
}

// Result is ClassifyOne's return value: the called taxon (0 = unclassified)
// plus the rendered output line and whether the line resulted
// in an incremented classified counter.
type Result struct {
	Called     TaxonId
	Line       string
	Classified bool
}

// One classifies a single fragment. s2 is nil for unpaired input.
func One(tax Taxonomy, idx Index, idxOpts IndexOptions, opts Options, readID string, s1 seqio.Sequence, s2 *seqio.Sequence, scratch *Scratch) Result {
	scratch.trail = scratch.trail[:0]
	for k := range scratch.hitCounts {
		delete(scratch.hitCounts, k)
	}

	mate1 := maskQuality(s1, opts.MinimumQualityScore, &scratch.maskBuf[0])
	var mate2 []byte
	if opts.PairedEnd && s2 != nil {
		mate2 = maskQuality(*s2, opts.MinimumQualityScore, &scratch.maskBuf[1])
	}

	var hitGroups int64
	hasLast := false
	var lastMinimizer uint64
	var lastTaxon TaxonId
	var call TaxonId
	quickHit := false

	mates := [][]byte{mate1}
	if opts.PairedEnd {
		mates = append(mates, mate2)
	}

scanLoop:
	for mi, mateSeq := range mates {
		frames := framesFor(mateSeq, opts.UseTranslatedSearch)
		for fi, frame := range frames {
			scratch.Scanner.LoadSequence(frame)
			for {
				mz, ok := scratch.Scanner.Next()
				if !ok {
					break
				}
				if scratch.Scanner.IsAmbiguous() {
					scratch.trail = append(scratch.trail, ambiguousSpan)
					continue
				}

				var t TaxonId
				if hasLast && mz == lastMinimizer {
					t = lastTaxon
				} else {
					if idxOpts.MinimumAcceptableHashValue > 0 && hash.MurmurFinalize64(mz) < idxOpts.MinimumAcceptableHashValue {
						t = noTaxon
					} else {
						t = idx.Get(mz)
					}
					lastMinimizer = mz
					lastTaxon = t
					hasLast = true
					if t != noTaxon {
						hitGroups++
						if opts.EmitReportCounters {
							scratch.counterFor(t).DistinctKmers.Add(scratch.Scanner.LastMinimizer())
						}
					}
				}

				if t != noTaxon {
					scratch.hitCounts[t]++
				}

				if opts.QuickMode && hitGroups >= opts.MinimumHitGroups {
					call = t
					quickHit = true
					break scanLoop
				}

				scratch.trail = append(scratch.trail, t)
			}
			if opts.UseTranslatedSearch && fi != len(frames)-1 {
				scratch.trail = append(scratch.trail, readingFrameBorder)
			}
		}
		if opts.PairedEnd && mi == 0 {
			scratch.trail = append(scratch.trail, matePairBorder)
		}
	}

	if !quickHit {
		total := totalMinimizers(scratch.trail, opts.PairedEnd, opts.UseTranslatedSearch)
		call = resolve.Resolve(tax, scratch.hitCounts, total, opts.ConfidenceThreshold)
		if call != noTaxon && hitGroups < opts.MinimumHitGroups {
			call = noTaxon
		}
	}

	classified := call != noTaxon
	if classified && opts.EmitReportCounters {
		scratch.counterFor(call).ReadCount++
	}

	line := renderLine(tax, opts, readID, call, s1, s2, scratch.trail, quickHit)
	return Result{Called: call, Line: line, Classified: classified}
}

// maskQuality implements the FASTQ quality pre-step: bases whose quality
// score falls below the threshold are replaced with 'x' (ambiguous to the
// scanner). FASTA sequences (empty Quals) pass through unmodified. buf is
// reused across calls to avoid per-read allocation.
func maskQuality(s seqio.Sequence, minQual byte, buf *[]byte) []byte {
	if len(s.Quals) == 0 {
		return s.Seq
	}
	if cap(*buf) < len(s.Seq) {
		*buf = make([]byte, len(s.Seq))
	}
	out := (*buf)[:len(s.Seq)]
	copy(out, s.Seq)
	for i := 0; i < len(s.Quals) && i < len(out); i++ {
		if s.Quals[i]-'!' < minQual {
			out[i] = 'x'
		}
	}
	return out
}

// framesFor returns either the single raw sequence or its six translated
// reading frames, per opts.UseTranslatedSearch.
func framesFor(seq []byte, translated bool) [][]byte {
	if !translated {
		return [][]byte{seq}
	}
	tr := translate.SixFrames(seq)
	out := make([][]byte, 6)
	for i := range tr {
		out[i] = []byte(tr[i])
	}
	return out
}

// totalMinimizers computes len(trail) minus 1 for the mate-pair border when
// paired, and minus 2 (unpaired) or 4 (paired) for reading-frame borders
// when translated. Ambiguous-span entries and the remaining reading-frame
// borders (five are pushed per translated mate) stay in the count.
func totalMinimizers(trail []TaxonId, paired, translated bool) int {
	n := len(trail)
	if paired {
		n--
	}
	if translated {
		if paired {
			n -= 4
		} else {
			n -= 2
		}
	}
	if n < 0 {
		n = 0
	}
	return n
}

func renderLine(tax Taxonomy, opts Options, readID string, call TaxonId, s1 seqio.Sequence, s2 *seqio.Sequence, trail []TaxonId, quickHit bool) string {
	status := "U"
	if call != noTaxon {
		status = "C"
	}

	id := readID
	if opts.PairedEnd {
		if strings.HasSuffix(id, "/1") || strings.HasSuffix(id, "/2") {
			id = id[:len(id)-2]
		}
	}

	display := taxonDisplay(tax, opts.PrintScientificName, call)

	lenInfo := strconv.Itoa(len(s1.Seq))
	if opts.PairedEnd && s2 != nil {
		lenInfo = fmt.Sprintf("%d|%d", len(s1.Seq), len(s2.Seq))
	}

	var hitlist string
	if quickHit {
		hitlist = fmt.Sprintf("%d:Q", tax.ExternalID(call))
	} else {
		hitlist = renderHitlist(tax, trail)
	}

	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\n", status, id, display, lenInfo, hitlist)
}

func taxonDisplay(tax Taxonomy, scientific bool, call TaxonId) string {
	if !scientific {
		return strconv.FormatUint(tax.ExternalID(call), 10)
	}
	if call == noTaxon {
		return "unclassified (taxid 0)"
	}
	return fmt.Sprintf("%s (taxid %d)", tax.Name(call), tax.ExternalID(call))
}

// renderHitlist run-length-encodes the trail.
func renderHitlist(tax Taxonomy, trail []TaxonId) string {
	if len(trail) == 0 {
		return "0:0"
	}

	var sb strings.Builder
	i := 0
	first := true
	writeRun := func(tok string) {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		sb.WriteString(tok)
	}

	for i < len(trail) {
		t := trail[i]
		switch t {
		case matePairBorder:
			writeRun("|:|")
			i++
		case readingFrameBorder:
			writeRun("-:-")
			i++
		case ambiguousSpan:
			j := i
			for j < len(trail) && trail[j] == ambiguousSpan {
				j++
			}
			writeRun(fmt.Sprintf("A:%d", j-i))
			i = j
		default:
			j := i
			for j < len(trail) && trail[j] == t {
				j++
			}
			writeRun(fmt.Sprintf("%d:%d", tax.ExternalID(t), j-i))
			i = j
		}
	}
	return sb.String()
}
