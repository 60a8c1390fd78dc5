// Package translate implements FrameTranslator: six-reading-frame amino
// acid translation of a DNA sequence, used when classification options
// request translated search.
package translate

import "strings"

// codonTable is the standard genetic code (NCBI translation table 1).
// Codons containing any non-ACGT base have no entry here and translate to
// 'X' (see translateFrame).
var codonTable = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

var complement = [256]byte{}

func init() {
	for i := range complement {
		complement[i] = 'N'
	}
	complement['A'], complement['a'] = 'T', 'T'
	complement['C'], complement['c'] = 'G', 'G'
	complement['G'], complement['g'] = 'C', 'C'
	complement['T'], complement['t'] = 'A', 'A'
}

func revComp(dna []byte) []byte {
	n := len(dna)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = complement[dna[n-1-i]]
	}
	return out
}

// translateFrame translates dna starting at offset, one codon at a time.
// Incomplete trailing codons are dropped. A codon with any ambiguous base
// (i.e. not found verbatim in codonTable) maps to 'X', which the scanner
// in turn recognizes as an ambiguous base.
func translateFrame(dna []byte, offset int) string {
	var sb strings.Builder
	for i := offset; i+3 <= len(dna); i += 3 {
		codon := strings.ToUpper(string(dna[i : i+3]))
		aa, ok := codonTable[codon]
		if !ok {
			aa = 'X'
		}
		sb.WriteByte(aa)
	}
	return sb.String()
}

// SixFrames produces the three forward-frame and three
// reverse-complement-frame amino acid translations of dna.
func SixFrames(dna []byte) [6]string {
	rc := revComp(dna)
	var out [6]string
	for f := 0; f < 3; f++ {
		out[f] = translateFrame(dna, f)
		out[3+f] = translateFrame(rc, f)
	}
	return out
}
