// Package minimizer implements MinimizerScanner: a stateful iterator that
// walks a loaded sequence and yields the canonical minimizer of each
// k-window, flagging windows that overlap an unrecognized residue as
// ambiguous.
//
// A Scanner operates in one of two alphabets, selected once at
// construction by Config.DNADB: nucleotide windows are canonicalized
// against their reverse complement (DNADB true); amino-acid windows
// (fed by six-frame translation for translated search against a protein
// database, DNADB false) have no complement strand and are canonicalized
// as plain forward-strand codes over the full amino-acid alphabet.
//
// The bit-rolling mechanics of real production minimizer scanners are a
// closely-guarded performance detail; this package implements only the
// load/next/is-ambiguous/last contract against a straightforward, auditable
// sliding-window-minimum algorithm rather than reproducing an undocumented
// low-level derivation.
package minimizer

// Config configures a Scanner. Values come from the loaded index's Options
// at classifier startup and are shared read-only by all per-thread
// scanners. DNADB selects the scanner's alphabet and canonicalization: true
// scans nucleotide windows canonicalized against their reverse complement,
// false scans amino-acid windows (as produced by six-frame translation)
// with no reverse-complement step.
type Config struct {
	K              int
	L              int
	SpacedSeedMask uint64
	ToggleMask     uint64
	RevcomVersion  int
	DNADB          bool
}

var base2bit = [256]int8{}

func init() {
	for i := range base2bit {
		base2bit[i] = -1
	}
	base2bit['A'], base2bit['a'] = 0, 0
	base2bit['C'], base2bit['c'] = 1, 1
	base2bit['G'], base2bit['g'] = 2, 2
	base2bit['T'], base2bit['t'] = 3, 3
}

// complement2bit maps a 2-bit base code to its complement's 2-bit code
// (A<->T, C<->G), used when building the reverse-complement code of an
// l-mer for canonicalization.
var complement2bit = [4]uint64{3, 2, 1, 0}

// aa2bit maps the 20 standard amino-acid one-letter codes (as produced by
// core/translate.SixFrames) to a dense code; anything else (translation
// stops '*', ambiguous codons 'X') is left at -1 and treated as ambiguous,
// the same convention base2bit uses for non-ACGT bases.
var aa2bit = [256]int8{}

const aminoAcidAlphabet = "ACDEFGHIKLMNPQRSTVWY"

// aaHashMultiplier rolls amino-acid l-mers into a uint64 code. A 5-bit
// packed code (20 symbols) would overflow uint64 at the l values the
// nucleotide path allows, so the protein path uses a hash instead of a
// bit-packed code.
const aaHashMultiplier uint64 = 1099511628211 // FNV-1a's 64-bit prime

func init() {
	for i := range aa2bit {
		aa2bit[i] = -1
	}
	for i := 0; i < len(aminoAcidAlphabet); i++ {
		aa2bit[aminoAcidAlphabet[i]] = int8(i)
	}
}

// Scanner is a stateful minimizer iterator bound to one loaded sequence at
// a time. Not safe for concurrent use; callers keep one Scanner per worker
// and reuse it across reads via LoadSequence.
type Scanner struct {
	cfg Config

	seq       []byte
	ambigAt   []bool // per-base: true if base/residue is not recognized in cfg.DNADB's alphabet
	lmerCode  []uint64
	lmerValid []bool // false if window [i,i+L) contains an ambiguous base

	numLmers int
	pos      int // index of the next k-window to evaluate, 0-based

	lastMin       uint64
	lastAmbiguous bool
	done          bool
}

// New constructs a Scanner for the given configuration. The scanner holds
// no sequence until LoadSequence is called.
func New(cfg Config) *Scanner {
	return &Scanner{cfg: cfg}
}

// LoadSequence resets scanning state and binds a new input. In DNA mode
// (Config.DNADB true) seq should already have quality-masked bases replaced
// with a non-ACGT character by the caller's pre-classification step; any
// byte other than A/C/G/T (case insensitive) is treated as ambiguous. In
// protein mode (DNADB false) seq is an amino-acid frame from
// core/translate.SixFrames; any byte outside the 20-letter amino-acid
// alphabet (translation stops '*' and unresolved codons 'X' in particular)
// is treated as ambiguous.
func (s *Scanner) LoadSequence(seq []byte) {
	s.seq = seq
	s.pos = 0
	s.done = false
	s.lastMin = 0
	s.lastAmbiguous = false

	if !s.cfg.DNADB {
		s.loadProtein(seq)
		return
	}

	l := s.cfg.L
	n := len(seq)
	s.numLmers = n - l + 1
	if s.numLmers < 1 {
		s.numLmers = 0
		s.ambigAt = nil
		s.lmerCode = nil
		s.lmerValid = nil
		return
	}

	s.ambigAt = make([]bool, n)
	for i := 0; i < n; i++ {
		s.ambigAt[i] = base2bit[seq[i]] < 0
	}

	s.lmerCode = make([]uint64, s.numLmers)
	s.lmerValid = make([]bool, s.numLmers)

	var fwd, rc uint64
	lBits := uint(l) * 2
	mask := uint64(1)<<lBits - 1
	ambigCount := 0

	for i := 0; i < n; i++ {
		b := base2bit[seq[i]]
		if b < 0 {
			b = 0
			ambigCount++
		}
		fwd = ((fwd << 2) | uint64(b)) & mask
		rc = (rc >> 2) | (complement2bit[base2bit0(seq[i])] << (lBits - 2))

		if i >= l {
			if s.ambigAt[i-l] {
				ambigCount--
			}
		}
		if i >= l-1 {
			idx := i - (l - 1)
			s.lmerValid[idx] = ambigCount == 0
			s.lmerCode[idx] = canonical(fwd, rc, s.cfg.ToggleMask, s.cfg.SpacedSeedMask, s.cfg.RevcomVersion)
		}
	}
}

// loadProtein is LoadSequence's amino-acid counterpart: it has no
// complement strand to canonicalize against, so each l-mer's code is just
// a forward rolling hash over aa2bit codes, recomputed per window rather
// than bit-packed (translated-search l is small enough that this stays
// cheap, and it sidesteps the bit-packing overflow a 20-symbol alphabet
// would hit at the l values the nucleotide path allows).
func (s *Scanner) loadProtein(seq []byte) {
	l := s.cfg.L
	n := len(seq)
	s.numLmers = n - l + 1
	if s.numLmers < 1 {
		s.numLmers = 0
		s.ambigAt = nil
		s.lmerCode = nil
		s.lmerValid = nil
		return
	}

	s.ambigAt = make([]bool, n)
	aaCode := make([]uint64, n)
	for i := 0; i < n; i++ {
		b := aa2bit[seq[i]]
		s.ambigAt[i] = b < 0
		if b >= 0 {
			aaCode[i] = uint64(b)
		}
	}

	s.lmerCode = make([]uint64, s.numLmers)
	s.lmerValid = make([]bool, s.numLmers)

	ambigCount := 0
	for i := 0; i < l; i++ {
		if s.ambigAt[i] {
			ambigCount++
		}
	}
	for idx := 0; idx < s.numLmers; idx++ {
		if idx > 0 {
			if s.ambigAt[idx-1] {
				ambigCount--
			}
			if s.ambigAt[idx+l-1] {
				ambigCount++
			}
		}

		var code uint64
		for j := 0; j < l; j++ {
			code = code*aaHashMultiplier + aaCode[idx+j]
		}
		if s.cfg.SpacedSeedMask != 0 {
			code &= s.cfg.SpacedSeedMask
		}
		s.lmerCode[idx] = code ^ s.cfg.ToggleMask
		s.lmerValid[idx] = ambigCount == 0
	}
}

// base2bit0 is base2bit with ambiguous bases mapped to 0, used only for
// keeping the reverse-complement rolling code numerically defined; the
// corresponding window is marked invalid via ambigAt/ambigCount regardless.
func base2bit0(b byte) int8 {
	v := base2bit[b]
	if v < 0 {
		return 0
	}
	return v
}

// canonical folds a forward l-mer code and its reverse-complement code into
// a single canonical value, applying the toggle mask (to perturb which
// value wins ties across runs with different toggle configuration) and the
// spaced seed mask (selecting a subset of positions to participate in
// comparison, approximating a spaced seed).
func canonical(fwd, rc uint64, toggleMask, spacedSeedMask uint64, revcomVersion int) uint64 {
	f, r := fwd, rc
	if spacedSeedMask != 0 {
		f &= spacedSeedMask
		r &= spacedSeedMask
	}
	var v uint64
	switch revcomVersion {
	case 0:
		if f <= r {
			v = fwd
		} else {
			v = rc
		}
	default:
		if f < r {
			v = fwd
		} else {
			v = rc
		}
	}
	return v ^ toggleMask
}

// Next advances to the next k-window and returns its canonical minimizer.
// Returns (0, false) once every k-window in the loaded sequence has been
// consumed.
func (s *Scanner) Next() (uint64, bool) {
	k, l := s.cfg.K, s.cfg.L
	numKWindows := len(s.seq) - k + 1
	if s.pos >= numKWindows || numKWindows < 1 || s.numLmers < 1 {
		s.done = true
		return 0, false
	}

	start := s.pos         // first base of the k-window
	lmerLo := start         // first l-mer index in window
	lmerHi := start + k - l // last l-mer index in window (inclusive)

	best := uint64(0)
	bestValid := false
	ambiguous := false
	for i := lmerLo; i <= lmerHi; i++ {
		if !s.lmerValid[i] {
			ambiguous = true
			continue
		}
		if !bestValid || s.lmerCode[i] < best {
			best = s.lmerCode[i]
			bestValid = true
		}
	}
	if !bestValid {
		// every l-mer in the window was ambiguous
		ambiguous = true
		best = 0
	}

	s.lastMin = best
	s.lastAmbiguous = ambiguous
	s.pos++
	return best, true
}

// IsAmbiguous reports whether the window that produced the just-returned
// minimizer overlapped a non-canonical base. When true the caller must not
// use the returned value for lookup.
func (s *Scanner) IsAmbiguous() bool { return s.lastAmbiguous }

// LastMinimizer returns the canonical minimizer value for the most recently
// returned window, for HLL insertion regardless of ambiguity.
func (s *Scanner) LastMinimizer() uint64 { return s.lastMin }
