// Package taxonomy implements the read-only taxonomy tree oracle: parent
// lookups, ancestor tests, and lowest-common-ancestor queries over a forest
// of taxon nodes loaded once and shared across classification workers.
package taxonomy

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"taxoclass-core/hashid"
	"taxoclass-core/internal/mmapfile"
)

// TaxonId identifies a node in the taxonomy, or a sentinel trail marker.
// Zero means "no taxon / unclassified".
type TaxonId = hashid.TaxonId

const (
	NoTaxon = hashid.NoTaxon

	// MatePairBorder, ReadingFrameBorder and AmbiguousSpan are reserved
	// sentinel values that must never appear as real taxon ids in an index
	// or taxonomy file.
	MatePairBorder     = hashid.MatePairBorder
	ReadingFrameBorder = hashid.ReadingFrameBorder
	AmbiguousSpan      = hashid.AmbiguousSpan
)

// Node is one taxonomy tree node: a parent pointer, an externally visible
// (e.g. NCBI) identifier, and an offset into the shared name blob.
type Node struct {
	Parent     TaxonId
	ExternalID uint64
	NameOffset uint64
}

// Taxonomy is an immutable, read-only forest of taxon nodes. The zero value
// is not usable; construct with Open or NewFromNodes.
type Taxonomy struct {
	nodes    []Node
	nameData []byte
	mm       *mmapfile.File
}

const fileMagic = "TAXO1\x00\x00\x00"

// Open loads a taxonomy from path. When useMmap is true the name blob is
// served directly from a memory-mapped region (no copy) while the node
// table is decoded into heap memory; the caller must keep the returned
// Taxonomy alive for as long as it is used, and call Close when done. When
// useMmap is false the file is read fully into heap memory.
func Open(path string, useMmap bool) (*Taxonomy, error) {
	if useMmap {
		mm, err := mmapfile.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "taxonomy: mmap open %s", path)
		}
		t, err := parse(mm.Data)
		if err != nil {
			mm.Close()
			return nil, err
		}
		t.mm = mm
		return t, nil
	}

	data, err := mmapfile.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "taxonomy: read %s", path)
	}
	return parse(data)
}

// Close releases any memory mapping held by the Taxonomy. Safe to call on a
// Taxonomy constructed without mmap or via NewFromNodes.
func (t *Taxonomy) Close() error {
	if t == nil || t.mm == nil {
		return nil
	}
	return t.mm.Close()
}

func parse(data []byte) (*Taxonomy, error) {
	if len(data) < len(fileMagic)+8 {
		return nil, errors.New("taxonomy: truncated header")
	}
	if string(data[:8]) != fileMagic {
		return nil, errors.New("taxonomy: bad magic")
	}
	off := 8
	nodeCount := binary.LittleEndian.Uint64(data[off:])
	off += 8

	const nodeSize = 4 + 8 + 8
	need := off + int(nodeCount)*nodeSize + 8
	if len(data) < need {
		return nil, errors.New("taxonomy: truncated node table")
	}

	nodes := make([]Node, nodeCount)
	for i := range nodes {
		nodes[i].Parent = TaxonId(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		nodes[i].ExternalID = binary.LittleEndian.Uint64(data[off:])
		off += 8
		nodes[i].NameOffset = binary.LittleEndian.Uint64(data[off:])
		off += 8
	}

	nameLen := binary.LittleEndian.Uint64(data[off:])
	off += 8
	if len(data) < off+int(nameLen) {
		return nil, errors.New("taxonomy: truncated name blob")
	}
	names := data[off : off+int(nameLen)]

	return &Taxonomy{nodes: nodes, nameData: names}, nil
}

// NewFromNodes builds an in-memory Taxonomy from an explicit node table and
// name list (names[i] is the display name for TaxonId(i)). It is the
// constructor used by tests and by index/taxonomy builders outside this
// package's scope.
func NewFromNodes(nodes []Node, names []string) *Taxonomy {
	var buf bytes.Buffer
	out := make([]Node, len(nodes))
	copy(out, nodes)
	for i := range out {
		out[i].NameOffset = uint64(buf.Len())
		if i < len(names) {
			buf.WriteString(names[i])
		}
		buf.WriteByte(0)
	}
	return &Taxonomy{nodes: out, nameData: buf.Bytes()}
}

// Nodes returns the underlying node table (read-only; callers must not
// mutate it).
func (t *Taxonomy) Nodes() []Node { return t.nodes }

// NameData returns the shared, NUL-delimited name blob backing Name.
func (t *Taxonomy) NameData() []byte { return t.nameData }

func (t *Taxonomy) valid(id TaxonId) bool {
	return id != NoTaxon && int(id) < len(t.nodes)
}

// Parent returns the parent of t, or NoTaxon if t is invalid or the root.
func (t *Taxonomy) Parent(id TaxonId) TaxonId {
	if !t.valid(id) {
		return NoTaxon
	}
	n := t.nodes[id]
	if n.Parent == id {
		// root is its own parent
		return NoTaxon
	}
	return n.Parent
}

// IsAncestor reports whether a lies on the parent chain of b, inclusive of
// b itself. a == NoTaxon is never an ancestor of anything.
func (t *Taxonomy) IsAncestor(a, b TaxonId) bool {
	if a == NoTaxon || !t.valid(b) {
		return false
	}
	cur := b
	for {
		if cur == a {
			return true
		}
		next := t.Parent(cur)
		if next == NoTaxon || next == cur {
			return cur == a
		}
		cur = next
	}
}

// LowestCommonAncestor returns the deepest taxon that is an ancestor of both
// a and b. If either is NoTaxon, the other is returned unchanged.
func (t *Taxonomy) LowestCommonAncestor(a, b TaxonId) TaxonId {
	if a == NoTaxon {
		return b
	}
	if b == NoTaxon {
		return a
	}
	if a == b {
		return a
	}

	onA := make(map[TaxonId]struct{}, 32)
	for cur := a; ; {
		onA[cur] = struct{}{}
		next := t.Parent(cur)
		if next == NoTaxon {
			break
		}
		cur = next
	}

	for cur := b; ; {
		if _, ok := onA[cur]; ok {
			return cur
		}
		next := t.Parent(cur)
		if next == NoTaxon {
			return NoTaxon
		}
		cur = next
	}
}

// ExternalID returns the externally visible id (e.g. NCBI taxid) for t, or
// 0 if t is invalid.
func (t *Taxonomy) ExternalID(id TaxonId) uint64 {
	if !t.valid(id) {
		return 0
	}
	return t.nodes[id].ExternalID
}

// Name returns the display name for t, or "unclassified" for NoTaxon.
func (t *Taxonomy) Name(id TaxonId) string {
	if id == NoTaxon {
		return "unclassified"
	}
	if !t.valid(id) {
		return ""
	}
	off := t.nodes[id].NameOffset
	if off >= uint64(len(t.nameData)) {
		return ""
	}
	end := bytes.IndexByte(t.nameData[off:], 0)
	if end < 0 {
		return string(t.nameData[off:])
	}
	return string(t.nameData[off : off+uint64(end)])
}
