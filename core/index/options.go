package index

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"taxoclass-core/internal/mmapfile"
)

// Options holds the index-building parameters, loaded once from a
// fixed-size binary blob alongside the index file itself.
type Options struct {
	K                          uint64
	L                          uint64
	SpacedSeedMask             uint64
	ToggleMask                 uint64
	RevcomVersion              uint64
	DNADB                      bool
	MinimumAcceptableHashValue uint64
}

// optionsSize is the on-disk width of Options: five uint64 fields, one bool
// (padded to 8 bytes for alignment), and the hash threshold.
const optionsSize = 8*5 + 8 + 8

// LoadOptions reads and validates an options blob. This implementation
// requires an exact, versioned layout and rejects anything shorter than
// sizeof(Options) rather than zero-filling missing trailing fields.
func LoadOptions(path string) (Options, error) {
	data, err := mmapfile.ReadFile(path)
	if err != nil {
		return Options{}, errors.Wrapf(err, "index: read options %s", path)
	}
	return ParseOptions(data)
}

// ParseOptions decodes an Options blob already read into memory.
func ParseOptions(data []byte) (Options, error) {
	if len(data) < optionsSize {
		return Options{}, errors.New("index: options blob too small")
	}
	var o Options
	o.K = binary.LittleEndian.Uint64(data[0:8])
	o.L = binary.LittleEndian.Uint64(data[8:16])
	o.SpacedSeedMask = binary.LittleEndian.Uint64(data[16:24])
	o.ToggleMask = binary.LittleEndian.Uint64(data[24:32])
	o.RevcomVersion = binary.LittleEndian.Uint64(data[32:40])
	o.DNADB = data[40] != 0
	o.MinimumAcceptableHashValue = binary.LittleEndian.Uint64(data[48:56])

	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Validate enforces the index's structural invariants: l <= k, l <= 31.
func (o Options) Validate() error {
	if o.L > o.K {
		return errors.Errorf("index: invalid options: l (%d) > k (%d)", o.L, o.K)
	}
	if o.L > 31 {
		return errors.Errorf("index: invalid options: l (%d) > 31", o.L)
	}
	return nil
}

// Bytes encodes Options back into the on-disk layout, for builders/tests.
func (o Options) Bytes() []byte {
	buf := make([]byte, optionsSize)
	binary.LittleEndian.PutUint64(buf[0:8], o.K)
	binary.LittleEndian.PutUint64(buf[8:16], o.L)
	binary.LittleEndian.PutUint64(buf[16:24], o.SpacedSeedMask)
	binary.LittleEndian.PutUint64(buf[24:32], o.ToggleMask)
	binary.LittleEndian.PutUint64(buf[32:40], o.RevcomVersion)
	if o.DNADB {
		buf[40] = 1
	}
	binary.LittleEndian.PutUint64(buf[48:56], o.MinimumAcceptableHashValue)
	return buf
}
