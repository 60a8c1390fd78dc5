package driver

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"taxoclass-core/seqio"
)

// Sinks holds the five output destinations a fragment can be written to:
// the normal per-read classification line, and the classified/unclassified
// sequence record streams for each mate. A nil Writer means that stream is
// not configured and nothing is written to it.
type Sinks struct {
	Normal io.Writer

	ClassifiedSeq1   io.Writer
	UnclassifiedSeq1 io.Writer
	ClassifiedSeq2   io.Writer
	UnclassifiedSeq2 io.Writer
}

// OpenSinks opens the normal-output file and, for each of classifiedPattern
// and unclassifiedPattern that is non-empty, the matching sequence-output
// file(s). "-" silences a stream (constructs an io.Discard sink instead of
// opening a file). When paired is true, a pattern must contain exactly one
// '#', which is replaced with "_1" and "_2" to produce the per-mate
// filenames; unpaired mode opens each pattern as the filename unchanged.
func OpenSinks(normalPath, classifiedPattern, unclassifiedPattern string, paired bool) (*Sinks, []io.Closer, error) {
	var closers []io.Closer
	s := &Sinks{}

	normal, c, err := openOne(normalPath)
	if err != nil {
		return nil, closers, err
	}
	s.Normal = normal
	if c != nil {
		closers = append(closers, c)
	}

	if classifiedPattern != "" {
		w1, w2, cs, err := openMateSinks(classifiedPattern, paired)
		if err != nil {
			return nil, closers, err
		}
		s.ClassifiedSeq1, s.ClassifiedSeq2 = w1, w2
		closers = append(closers, cs...)
	}

	if unclassifiedPattern != "" {
		w1, w2, cs, err := openMateSinks(unclassifiedPattern, paired)
		if err != nil {
			return nil, closers, err
		}
		s.UnclassifiedSeq1, s.UnclassifiedSeq2 = w1, w2
		closers = append(closers, cs...)
	}

	return s, closers, nil
}

// openMateSinks splits pattern on '#' for paired mode (one file per mate)
// or opens it directly for unpaired mode.
func openMateSinks(pattern string, paired bool) (w1, w2 io.Writer, closers []io.Closer, err error) {
	if !paired {
		w1, c, err := openOne(pattern)
		if err != nil {
			return nil, nil, nil, err
		}
		if c != nil {
			closers = append(closers, c)
		}
		return w1, nil, closers, nil
	}

	if pattern == "-" {
		return io.Discard, io.Discard, nil, nil
	}
	if strings.Count(pattern, "#") != 1 {
		return nil, nil, nil, errors.Errorf("driver: paired output filename %q must contain exactly one '#'", pattern)
	}
	p1 := strings.Replace(pattern, "#", "_1", 1)
	p2 := strings.Replace(pattern, "#", "_2", 1)

	f1, c1, err := openOne(p1)
	if err != nil {
		return nil, nil, nil, err
	}
	if c1 != nil {
		closers = append(closers, c1)
	}
	f2, c2, err := openOne(p2)
	if err != nil {
		return nil, nil, nil, err
	}
	if c2 != nil {
		closers = append(closers, c2)
	}
	return f1, f2, closers, nil
}

// OpenReportSink opens the per-taxon summary report destination, applying
// the same ""/"-" -> io.Discard convention as the other output sinks.
func OpenReportSink(path string) (io.Writer, io.Closer, error) {
	return openOne(path)
}

func openOne(path string) (io.Writer, io.Closer, error) {
	if path == "" || path == "-" {
		return io.Discard, nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "driver: create %s", path)
	}
	return f, f, nil
}

// formatRecord renders one sequence record in its native format, appending
// a " kraken:taxid|<external_id>" header suffix when classified.
func formatRecord(s seqio.Sequence, externalID uint64, classified bool) string {
	header := s.Header
	if classified {
		header = fmt.Sprintf("%s kraken:taxid|%d", header, externalID)
	}
	var sb strings.Builder
	switch s.Format {
	case seqio.FASTQ:
		sb.WriteByte('@')
		sb.WriteString(header)
		sb.WriteByte('\n')
		sb.Write(s.Seq)
		sb.WriteString("\n+\n")
		sb.Write(s.Quals)
		sb.WriteByte('\n')
	default:
		sb.WriteByte('>')
		sb.WriteString(header)
		sb.WriteByte('\n')
		sb.Write(s.Seq)
		sb.WriteByte('\n')
	}
	return sb.String()
}
