package sketch

import "testing"

func TestAddIsIdempotentAndEstimateIsApproximatelyRight(t *testing.T) {
	e := NewEstimator()
	for i := 0; i < 1000; i++ {
		e.Add(uint64(i % 100))
	}
	got := e.Estimate()
	if got < 80 || got > 120 {
		t.Fatalf("Estimate()=%d, want approximately 100", got)
	}
}

func TestMergeCombinesDistinctCounts(t *testing.T) {
	a := NewEstimator()
	for i := uint64(0); i < 500; i++ {
		a.Add(i)
	}
	b := NewEstimator()
	for i := uint64(500); i < 1000; i++ {
		b.Add(i)
	}

	if err := a.Merge(b); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	got := a.Estimate()
	if got < 800 || got > 1200 {
		t.Fatalf("merged Estimate()=%d, want approximately 1000", got)
	}
}

func TestMergeNilIsNoop(t *testing.T) {
	a := NewEstimator()
	a.Add(1)
	if err := a.Merge(nil); err != nil {
		t.Fatalf("Merge(nil): %v", err)
	}
	if a.Estimate() != 1 {
		t.Fatalf("Estimate()=%d after Merge(nil), want 1", a.Estimate())
	}
}
