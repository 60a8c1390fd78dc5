package translate

import "testing"

func TestSixFramesForwardFrame0(t *testing.T) {
	// ATG GGC TAA -> M G *
	frames := SixFrames([]byte("ATGGGCTAA"))
	if frames[0] != "MG*" {
		t.Fatalf("frame 0 = %q, want MG*", frames[0])
	}
}

func TestSixFramesAmbiguousCodon(t *testing.T) {
	frames := SixFrames([]byte("ATGNNNTAA"))
	if frames[0] != "MX*" {
		t.Fatalf("frame 0 = %q, want MX*", frames[0])
	}
}

func TestSixFramesReverseComplement(t *testing.T) {
	// revcomp(ATGGGCTAA) = TTAGCCCAT; frame 0 codons: TTA GCC CAT -> L A H
	frames := SixFrames([]byte("ATGGGCTAA"))
	if frames[3] != "LAH" {
		t.Fatalf("frame 3 (revcomp frame 0) = %q, want LAH", frames[3])
	}
}

func TestSixFramesDropsIncompleteTrailingCodon(t *testing.T) {
	frames := SixFrames([]byte("ATGGGCTA")) // 8 bases: frame 0 has 2 full codons
	if frames[0] != "MG" {
		t.Fatalf("frame 0 = %q, want MG", frames[0])
	}
}
