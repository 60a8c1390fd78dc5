package resolve

import "testing"

// fakeOracle is a minimal parent-pointer tree for resolver tests, avoiding
// a dependency on core/taxonomy so this package's tests stay self-contained.
type fakeOracle struct {
	parent map[TaxonId]TaxonId
}

func (f fakeOracle) Parent(t TaxonId) TaxonId {
	if t == 0 {
		return 0
	}
	p := f.parent[t]
	if p == t {
		return 0 // root is its own parent in the map; oracle reports no parent
	}
	return p
}

func (f fakeOracle) IsAncestor(a, b TaxonId) bool {
	if a == 0 || b == 0 {
		return false
	}
	for cur := b; ; {
		if cur == a {
			return true
		}
		next := f.Parent(cur)
		if next == 0 {
			return false
		}
		cur = next
	}
}

func (f fakeOracle) LowestCommonAncestor(a, b TaxonId) TaxonId {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	onA := map[TaxonId]bool{}
	for cur := a; cur != 0; cur = f.Parent(cur) {
		onA[cur] = true
	}
	for cur := b; ; {
		if onA[cur] {
			return cur
		}
		next := f.Parent(cur)
		if next == 0 {
			return 0
		}
		cur = next
	}
}

// Tree for tests:
//
//	P(1)
//	├── A(2)
//	└── B(3), C(4)  (B and C both children of P too)
func treeOracle() fakeOracle {
	return fakeOracle{parent: map[TaxonId]TaxonId{
		1: 1, // root
		2: 1,
		3: 1,
		4: 1,
	}}
}

func TestResolveTieByLCA(t *testing.T) {
	o := treeOracle()
	hits := HitCounts{2: 3, 3: 3} // A:3, B:3; LCA(A,B) = P(1)
	got := Resolve(o, hits, 6, 0)
	if got != 1 {
		t.Fatalf("Resolve = %d, want 1 (P)", got)
	}
}

func TestResolveConfidenceClimb(t *testing.T) {
	o := treeOracle()
	hits := HitCounts{2: 2, 3: 1, 4: 1} // A:2, B:1, C:1
	// total_minimizers=4, threshold=0.75 => required=3
	got := Resolve(o, hits, 4, 0.75)
	if got != 1 {
		t.Fatalf("Resolve = %d, want 1 (P, via climb)", got)
	}
}

func TestResolveZeroThresholdNeverClimbs(t *testing.T) {
	o := treeOracle()
	hits := HitCounts{2: 5}
	got := Resolve(o, hits, 100, 0)
	if got != 2 {
		t.Fatalf("Resolve = %d, want 2 (phase-1 winner, no climb)", got)
	}
}

func TestResolveThresholdOneRequiresFullClade(t *testing.T) {
	o := treeOracle()
	hits := HitCounts{2: 1, 3: 1}
	// total=2, threshold=1 => required=2; no single clade (A, B, or P) has
	// every hit except P itself (2 total at P).
	got := Resolve(o, hits, 2, 1)
	if got != 1 {
		t.Fatalf("Resolve = %d, want 1 (only P's clade covers all hits)", got)
	}
}

func TestResolveEmptyHitCountsReturnsZero(t *testing.T) {
	o := treeOracle()
	got := Resolve(o, HitCounts{}, 0, 0.5)
	if got != 0 {
		t.Fatalf("Resolve = %d, want 0 for empty hit counts", got)
	}
}

func TestResolveClimbOffRootReturnsZero(t *testing.T) {
	o := treeOracle()
	hits := HitCounts{2: 1}
	// required is impossibly high; climbing from A -> P -> off-root.
	got := Resolve(o, hits, 1000, 1.0)
	if got != 0 {
		t.Fatalf("Resolve = %d, want 0 after climbing off the root", got)
	}
}
