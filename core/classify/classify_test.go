package classify

import (
	"strings"
	"testing"

	"taxoclass-core/index"
	"taxoclass-core/minimizer"
	"taxoclass-core/seqio"
	"taxoclass-core/taxonomy"
	"taxoclass-core/translate"
)

// buildTax constructs a 3-node tree: root(1) -> child(2), for display and
// resolver tests. ExternalID mirrors TaxonId*100 so assertions can check it
// independent of internal numbering.
func buildTax() *taxonomy.Taxonomy {
	nodes := []taxonomy.Node{
		{}, // id 0 unused
		{Parent: 1, ExternalID: 100}, // root
		{Parent: 1, ExternalID: 200}, // child
	}
	names := []string{"", "Root", "Child"}
	return taxonomy.NewFromNodes(nodes, names)
}

func defaultOpts() Options {
	return Options{
		MinimumHitGroups:    1,
		ConfidenceThreshold: 0,
		PrintScientificName: false,
	}
}

func TestOneUnclassifiedAllMisses(t *testing.T) {
	tax := buildTax()
	idx := index.NewFromMap(map[uint64]TaxonId{}) // empty: every lookup misses
	cfg := minimizer.Config{K: 4, L: 3}
	scratch := NewScratch(cfg, false)

	s := seqio.Sequence{Header: "r1", Seq: []byte("ACGTACGT")}
	res := One(tax, idx, IndexOptions{}, defaultOpts(), "r1", s, nil, scratch)

	if res.Classified {
		t.Fatalf("expected unclassified, got called=%d", res.Called)
	}
	if !strings.HasPrefix(res.Line, "U\tr1\t0\t") {
		t.Fatalf("unexpected line: %q", res.Line)
	}
}

func TestOneClassifiesOnRepeatedHits(t *testing.T) {
	tax := buildTax()
	// Map every possible 3-mer code to taxon 2 so every window hits.
	m := map[uint64]TaxonId{}
	for v := uint64(0); v < 64; v++ {
		m[v] = 2
	}
	idx := index.NewFromMap(m)
	cfg := minimizer.Config{K: 4, L: 3, DNADB: true}
	scratch := NewScratch(cfg, false)

	opts := defaultOpts()
	s := seqio.Sequence{Header: "r1", Seq: []byte("ACGTACGTACGT")}
	res := One(tax, idx, IndexOptions{}, opts, "r1", s, nil, scratch)

	if !res.Classified || res.Called != 2 {
		t.Fatalf("expected call=2, got called=%d classified=%v", res.Called, res.Classified)
	}
	if !strings.HasPrefix(res.Line, "C\tr1\t200\t") {
		t.Fatalf("unexpected line: %q", res.Line)
	}
}

func TestOneQuickModeShortCircuitsWithQMarker(t *testing.T) {
	tax := buildTax()
	m := map[uint64]TaxonId{}
	for v := uint64(0); v < 64; v++ {
		m[v] = 2
	}
	idx := index.NewFromMap(m)
	cfg := minimizer.Config{K: 4, L: 3, DNADB: true}
	scratch := NewScratch(cfg, false)

	opts := defaultOpts()
	opts.QuickMode = true
	opts.MinimumHitGroups = 1

	s := seqio.Sequence{Header: "r1", Seq: []byte("ACGTACGTACGT")}
	res := One(tax, idx, IndexOptions{}, opts, "r1", s, nil, scratch)

	if !res.Classified || res.Called != 2 {
		t.Fatalf("expected quick-mode call=2, got %d", res.Called)
	}
	if !strings.Contains(res.Line, "200:Q") {
		t.Fatalf("expected quick-mode hitlist marker, got %q", res.Line)
	}
}

func TestOnePairedStripsMateSuffix(t *testing.T) {
	tax := buildTax()
	idx := index.NewFromMap(map[uint64]TaxonId{})
	cfg := minimizer.Config{K: 4, L: 3}
	scratch := NewScratch(cfg, false)

	opts := defaultOpts()
	opts.PairedEnd = true

	s1 := seqio.Sequence{Header: "frag/1", Seq: []byte("ACGTACGT")}
	s2 := seqio.Sequence{Header: "frag/2", Seq: []byte("ACGTACGT")}
	res := One(tax, idx, IndexOptions{}, opts, "frag/1", s1, &s2, scratch)

	if !strings.HasPrefix(res.Line, "U\tfrag\t0\t8|8\t") {
		t.Fatalf("unexpected paired line: %q", res.Line)
	}
}

func TestOneScientificNameDisplay(t *testing.T) {
	tax := buildTax()
	m := map[uint64]TaxonId{}
	for v := uint64(0); v < 64; v++ {
		m[v] = 2
	}
	idx := index.NewFromMap(m)
	cfg := minimizer.Config{K: 4, L: 3, DNADB: true}
	scratch := NewScratch(cfg, false)

	opts := defaultOpts()
	opts.PrintScientificName = true

	s := seqio.Sequence{Header: "r1", Seq: []byte("ACGTACGTACGT")}
	res := One(tax, idx, IndexOptions{}, opts, "r1", s, nil, scratch)

	if !strings.Contains(res.Line, "Child (taxid 200)") {
		t.Fatalf("expected scientific name display, got %q", res.Line)
	}
}

// TestOneTranslatedSearchClassifiesAminoAcidWindows drives UseTranslatedSearch
// end to end through ClassifyOne: a protein-alphabet index (DNADB false)
// built from the read's own six-frame translation must classify that read,
// which only holds if the scanner scans the translated frames in amino-acid
// space rather than nonsensically reverse-complementing them as nucleotides.
func TestOneTranslatedSearchClassifiesAminoAcidWindows(t *testing.T) {
	tax := buildTax()
	cfg := minimizer.Config{K: 4, L: 2, DNADB: false}

	dna := []byte("ATGGCTTGTGAACGTTAGCCTATGGGCTAA")

	m := map[uint64]TaxonId{}
	probe := minimizer.New(cfg)
	for _, frame := range translate.SixFrames(dna) {
		probe.LoadSequence([]byte(frame))
		for {
			mz, ok := probe.Next()
			if !ok {
				break
			}
			if !probe.IsAmbiguous() {
				m[mz] = 2
			}
		}
	}
	idx := index.NewFromMap(m)
	scratch := NewScratch(cfg, false)

	opts := defaultOpts()
	opts.UseTranslatedSearch = true

	s := seqio.Sequence{Header: "r1", Seq: dna}
	res := One(tax, idx, IndexOptions{}, opts, "r1", s, nil, scratch)

	if !res.Classified || res.Called != 2 {
		t.Fatalf("expected translated-search call=2, got called=%d classified=%v line=%q", res.Called, res.Classified, res.Line)
	}
	if !strings.Contains(res.Line, "-:-") {
		t.Fatalf("expected reading-frame border markers in hitlist, got %q", res.Line)
	}
}

func TestOneReportCountersAccumulate(t *testing.T) {
	tax := buildTax()
	m := map[uint64]TaxonId{}
	for v := uint64(0); v < 64; v++ {
		m[v] = 2
	}
	idx := index.NewFromMap(m)
	cfg := minimizer.Config{K: 4, L: 3, DNADB: true}
	scratch := NewScratch(cfg, true)

	opts := defaultOpts()
	opts.EmitReportCounters = true

	s := seqio.Sequence{Header: "r1", Seq: []byte("ACGTACGTACGT")}
	One(tax, idx, IndexOptions{}, opts, "r1", s, nil, scratch)

	counters := scratch.Counters()
	c, ok := counters[2]
	if !ok || c.ReadCount != 1 {
		t.Fatalf("expected one read counted against taxon 2, got %+v", c)
	}
	if c.DistinctKmers.Estimate() == 0 {
		t.Fatalf("expected nonzero distinct-kmer estimate")
	}
}
