// Package seqio defines the Sequence record and the sequence-reader
// interface BatchDriver pulls from. FileReader provides one concrete,
// reasonably complete FASTA/FASTQ implementation so the rest of the
// pipeline has a real caller.
package seqio

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Format identifies the on-disk record framing of a sequence file.
type Format int

const (
	FASTA Format = iota
	FASTQ
)

// Sequence is one read (or one mate of a pair).
type Sequence struct {
	Header string
	Seq    []byte
	Quals  []byte // empty for FASTA
	Format Format
}

// Reader is the external collaborator BatchDriver pulls batches from: load
// a bounded chunk of input, then iterate the sequences it contains.
type Reader interface {
	// LoadBlock reads roughly byteHint bytes of sequence text (unpaired
	// mode). Returns false when the source is exhausted.
	LoadBlock(byteHint int) (bool, error)
	// LoadBatch reads n whole fragments (paired/interleaved modes).
	// Returns false when the source is exhausted.
	LoadBatch(n int) (bool, error)
	// Next returns the next sequence loaded by the most recent
	// LoadBlock/LoadBatch call, or (Sequence{}, false) when that batch is
	// exhausted.
	Next() (Sequence, bool)
	// FileFormat reports whether this source yields FASTA or FASTQ
	// records.
	FileFormat() Format
}

// FileReader implements Reader over a single (optionally gzipped) FASTA or
// FASTQ file, detecting format from the first record marker ('>' or '@').
type FileReader struct {
	br     *bufio.Reader
	closer io.Closer
	format Format
	// pending holds records loaded by the last LoadBlock/LoadBatch call
	// that Next has not yet drained.
	pending []Sequence
	next    int
}

// Open opens path (or stdin for "-"), transparently decompressing .gz, and
// sniffs FASTA vs FASTQ from the first non-empty byte.
func Open(path string) (*FileReader, error) {
	var rc io.ReadCloser
	if path == "-" {
		rc = io.NopCloser(os.Stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "seqio: open %s", path)
		}
		rc = f
	}
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, errors.Wrapf(err, "seqio: gzip %s", path)
		}
		rc = struct {
			io.Reader
			io.Closer
		}{Reader: gr, Closer: rc}
	}

	br := bufio.NewReader(rc)
	format := FASTA
	for i := 1; ; i++ {
		head, err := br.Peek(i)
		if err != nil || len(head) < i {
			break
		}
		if c := head[i-1]; c != '\n' && c != '\r' {
			if c == '@' {
				format = FASTQ
			}
			break
		}
	}
	return &FileReader{br: br, closer: rc, format: format}, nil
}

// Close releases the underlying file handle.
func (r *FileReader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func (r *FileReader) FileFormat() Format { return r.format }

// Next returns the next buffered sequence.
func (r *FileReader) Next() (Sequence, bool) {
	if r.next >= len(r.pending) {
		return Sequence{}, false
	}
	s := r.pending[r.next]
	r.next++
	return s, true
}

// LoadBatch reads up to n whole fragments.
func (r *FileReader) LoadBatch(n int) (bool, error) {
	r.pending = r.pending[:0]
	r.next = 0
	for i := 0; i < n; i++ {
		seq, ok, err := r.readOne()
		if err != nil {
			return false, err
		}
		if !ok {
			break
		}
		r.pending = append(r.pending, seq)
	}
	return len(r.pending) > 0, nil
}

// LoadBlock reads whole fragments until approximately byteHint bytes of
// sequence text have been accumulated (at least one fragment, so a single
// oversized record cannot stall the reader).
func (r *FileReader) LoadBlock(byteHint int) (bool, error) {
	r.pending = r.pending[:0]
	r.next = 0
	total := 0
	for total < byteHint || len(r.pending) == 0 {
		seq, ok, err := r.readOne()
		if err != nil {
			return false, err
		}
		if !ok {
			break
		}
		total += len(seq.Seq)
		r.pending = append(r.pending, seq)
		if total >= byteHint {
			break
		}
	}
	return len(r.pending) > 0, nil
}

func (r *FileReader) readOne() (Sequence, bool, error) {
	switch r.format {
	case FASTQ:
		return r.readFASTQ()
	default:
		return r.readFASTA()
	}
}

func (r *FileReader) readFASTA() (Sequence, bool, error) {
	header, err := r.readHeaderLine('>')
	if err != nil {
		return Sequence{}, false, err
	}
	if header == "" {
		return Sequence{}, false, nil
	}

	var seq bytes.Buffer
	for {
		peek, err := r.br.Peek(1)
		if err != nil || (len(peek) > 0 && peek[0] == '>') {
			break
		}
		line, rerr := r.br.ReadString('\n')
		seq.WriteString(strings.TrimRight(line, "\r\n"))
		if rerr != nil {
			break
		}
	}
	return Sequence{Header: header, Seq: bytes.ToUpper(seq.Bytes()), Format: FASTA}, true, nil
}

func (r *FileReader) readFASTQ() (Sequence, bool, error) {
	header, err := r.readHeaderLine('@')
	if err != nil {
		return Sequence{}, false, err
	}
	if header == "" {
		return Sequence{}, false, nil
	}

	seqLine, err := r.br.ReadString('\n')
	if err != nil && seqLine == "" {
		return Sequence{}, false, errors.Wrap(err, "seqio: truncated FASTQ record (missing sequence line)")
	}
	seq := bytes.ToUpper([]byte(strings.TrimRight(seqLine, "\r\n")))

	plusLine, err := r.br.ReadString('\n')
	if err != nil && plusLine == "" {
		return Sequence{}, false, errors.Wrap(err, "seqio: truncated FASTQ record (missing + line)")
	}

	qualLine, err := r.br.ReadString('\n')
	if err != nil && qualLine == "" {
		return Sequence{}, false, errors.Wrap(err, "seqio: truncated FASTQ record (missing quality line)")
	}
	quals := []byte(strings.TrimRight(qualLine, "\r\n"))

	if len(quals) != len(seq) {
		return Sequence{}, false, errors.Errorf(
			"seqio: FASTQ quality length mismatch in record %q: len(seq)=%d len(quals)=%d",
			header, len(seq), len(quals))
	}
	return Sequence{Header: header, Seq: seq, Quals: quals, Format: FASTQ}, true, nil
}

func (r *FileReader) readHeaderLine(marker byte) (string, error) {
	for {
		line, err := r.br.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			if err != nil {
				return "", nil
			}
			continue
		}
		if trimmed[0] != marker {
			return "", errors.Errorf("seqio: expected record starting with %q, got %q", marker, trimmed)
		}
		fields := strings.Fields(trimmed[1:])
		if len(fields) == 0 {
			return "", nil
		}
		return fields[0], nil
	}
}
