package index

import "testing"

func TestGetHitsAndMisses(t *testing.T) {
	idx := NewFromMap(map[uint64]TaxonId{10: 1, 20: 2, 30: 3})

	if got := idx.Get(20); got != 2 {
		t.Fatalf("Get(20)=%d, want 2", got)
	}
	if got := idx.Get(25); got != 0 {
		t.Fatalf("Get(25)=%d, want 0 (miss)", got)
	}
	if idx.Len() != 3 {
		t.Fatalf("Len()=%d, want 3", idx.Len())
	}
}

func TestGetOnEmptyIndexAlwaysMisses(t *testing.T) {
	idx := NewFromMap(map[uint64]TaxonId{})
	if got := idx.Get(1); got != 0 {
		t.Fatalf("Get on empty index=%d, want 0", got)
	}
}

func TestOptionsValidate(t *testing.T) {
	ok := Options{K: 31, L: 15}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid options, got %v", err)
	}

	bad := Options{K: 10, L: 20}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error when L > K")
	}

	tooLong := Options{K: 40, L: 32}
	if err := tooLong.Validate(); err == nil {
		t.Fatalf("expected error when L > 31")
	}
}

func TestOptionsBytesRoundTrip(t *testing.T) {
	o := Options{K: 35, L: 31, SpacedSeedMask: 0xFF, ToggleMask: 0xAA, RevcomVersion: 1, DNADB: true, MinimumAcceptableHashValue: 42}
	parsed, err := ParseOptions(o.Bytes())
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if parsed != o {
		t.Fatalf("round trip mismatch: got %+v, want %+v", parsed, o)
	}
}
