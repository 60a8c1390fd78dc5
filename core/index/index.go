// Package index implements IndexProbe: a read-only key->taxon map over
// 64-bit canonical minimizer values, backed by a sorted fixed-width record
// table that can be served directly from a memory-mapped file.
package index

import (
	"encoding/binary"
	"sort"

	"github.com/pkg/errors"

	"taxoclass-core/hashid"
	"taxoclass-core/internal/mmapfile"
)

// TaxonId is re-exported from hashid so callers need not import it
// separately when only touching this package's API.
type TaxonId = hashid.TaxonId

const fileMagic = "TXIDX1\x00\x00"
const recordSize = 8 + 4 // minimizer u64 + taxon u32

// Index is an immutable, read-only minimizer->taxon lookup table. Records
// are sorted by minimizer value to support binary search; building the
// sorted table from a genome database is out of this package's scope.
type Index struct {
	data []byte // recordSize-byte records, sorted by minimizer
	n    int
	mm   *mmapfile.File
}

// Open loads an index from path. When useMmap is true the record table is
// served directly from a memory-mapped region (no copy) and Close releases
// it; otherwise the file is read fully into heap memory.
func Open(path string, useMmap bool) (*Index, error) {
	if useMmap {
		mm, err := mmapfile.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "index: mmap open %s", path)
		}
		idx, err := parse(mm.Data)
		if err != nil {
			mm.Close()
			return nil, err
		}
		idx.mm = mm
		return idx, nil
	}

	data, err := mmapfile.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "index: read %s", path)
	}
	return parse(data)
}

// Close releases any memory mapping held by the Index.
func (idx *Index) Close() error {
	if idx == nil || idx.mm == nil {
		return nil
	}
	return idx.mm.Close()
}

func parse(data []byte) (*Index, error) {
	if len(data) < len(fileMagic)+8 {
		return nil, errors.New("index: truncated header")
	}
	if string(data[:8]) != fileMagic {
		return nil, errors.New("index: bad magic")
	}
	off := 8
	n := binary.LittleEndian.Uint64(data[off:])
	off += 8
	need := off + int(n)*recordSize
	if len(data) < need {
		return nil, errors.New("index: truncated record table")
	}
	return &Index{data: data[off:need], n: int(n)}, nil
}

// NewFromMap builds an in-memory Index from a plain map, for tests and for
// builders outside this package's scope.
func NewFromMap(m map[uint64]TaxonId) *Index {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	buf := make([]byte, len(keys)*recordSize)
	for i, k := range keys {
		o := i * recordSize
		binary.LittleEndian.PutUint64(buf[o:], k)
		binary.LittleEndian.PutUint32(buf[o+8:], uint32(m[k]))
	}
	return &Index{data: buf, n: len(keys)}
}

func (idx *Index) minimizerAt(i int) uint64 {
	return binary.LittleEndian.Uint64(idx.data[i*recordSize:])
}

func (idx *Index) taxonAt(i int) TaxonId {
	return TaxonId(binary.LittleEndian.Uint32(idx.data[i*recordSize+8:]))
}

// Get returns the taxon associated with minimizer, or hashid.NoTaxon on a
// miss. The minimum-acceptable-hash prefilter is applied by the caller
// (core/classify), not here, so that skipped-lookup accounting stays in
// the caller's control.
func (idx *Index) Get(minimizer uint64) TaxonId {
	lo, hi := 0, idx.n
	for lo < hi {
		mid := (lo + hi) / 2
		if idx.minimizerAt(mid) < minimizer {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < idx.n && idx.minimizerAt(lo) == minimizer {
		return idx.taxonAt(lo)
	}
	return hashid.NoTaxon
}

// Len reports the number of records in the index.
func (idx *Index) Len() int { return idx.n }
