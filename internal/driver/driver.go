// Package driver implements BatchDriver: a fixed-size pool of worker
// goroutines that pull batches from one or two sequence readers, classify
// every fragment, and write output in strict input order via a reorder
// buffer, following the four-mutex discipline (input, stats, queue, writer
// token) laid out for this pipeline.
package driver

import (
	"container/heap"
	"context"
	"io"
	"strings"
	"sync"

	"taxoclass-core/classify"
	"taxoclass-core/hashid"
	"taxoclass-core/minimizer"
	"taxoclass-core/seqio"

	"taxoclass/internal/cfgerr"
	"taxoclass/internal/report"
)

// TaxonId is re-exported for callers that only import driver.
type TaxonId = hashid.TaxonId

const (
	unpairedBlockByteHint = 3 * 1024 * 1024
	pairedBatchFragments  = 10000
)

// Mode selects how the driver pulls fragments from its reader(s).
type Mode int

const (
	// Unpaired reads single fragments from reader1, block-sized by bytes.
	Unpaired Mode = iota
	// PairedTwoFiles reads matched batches of fragments from reader1 and
	// reader2, one mate-file each.
	PairedTwoFiles
	// PairedInterleaved reads alternating mate-1/mate-2 fragments from a
	// single reader1.
	PairedInterleaved
)

// Config controls batch sizing and classification behavior.
type Config struct {
	Threads      int
	Mode         Mode
	ClassifyOpts classify.Options
	IndexOpts    classify.IndexOptions
	ScannerCfg   minimizer.Config
}

// Driver drives end-to-end classification throughput while preserving
// input order on every output stream.
type Driver struct {
	reader1, reader2 seqio.Reader
	tax              classify.Taxonomy
	idx              classify.Index
	sinks            *Sinks
	cfg              Config

	inputMu        sync.Mutex
	nextInputBlock uint64

	statsMu    sync.Mutex
	agg        *report.Aggregate
	totalBases uint64

	queueMu         sync.Mutex
	queue           blockHeap
	nextOutputBlock uint64

	// writerTok is the sole mutex guarding output sink I/O, acquired only
	// after queueMu has been released (the two are never held nested).
	// nextToWrite/writeCond form a turnstile under writerTok: a worker that
	// wins the writerTok race out of turn (because it was descheduled
	// between popping its block and acquiring the token) waits on writeCond
	// instead of writing, so blocks still leave in strict blockID order.
	// See drain.
	writerTok   sync.Mutex
	writeCond   *sync.Cond
	nextToWrite uint64
}

// New constructs a Driver. reader2 is nil unless cfg.Mode is
// PairedTwoFiles.
func New(reader1, reader2 seqio.Reader, tax classify.Taxonomy, idx classify.Index, sinks *Sinks, cfg Config) *Driver {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	d := &Driver{
		reader1: reader1,
		reader2: reader2,
		tax:     tax,
		idx:     idx,
		sinks:   sinks,
		cfg:     cfg,
		agg:     report.NewAggregate(),
	}
	d.writeCond = sync.NewCond(&d.writerTok)
	return d
}

// Aggregate returns the process-wide per-taxon counters and run totals.
// Safe to call only after Run has returned.
func (d *Driver) Aggregate() *report.Aggregate { return d.agg }

// Stats mirrors the original classifier's end-of-run summary counters.
type Stats struct {
	TotalSequences  uint64
	TotalBases      uint64
	TotalClassified uint64
}

// Stats returns the run's summary counters. Safe to call only after Run has
// returned.
func (d *Driver) Stats() Stats {
	return Stats{
		TotalSequences:  d.agg.Processed,
		TotalBases:      d.totalBases,
		TotalClassified: d.agg.Classified,
	}
}

// Run drives the worker pool to completion: every goroutine reads batches
// until the reader(s) are exhausted, classifies them, and drains the
// reorder buffer. The first worker error cancels the others via ctx and is
// returned; a clean exhaustion returns nil.
func (d *Driver) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, d.cfg.Threads)

	for i := 0; i < d.cfg.Threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scratch := classify.NewScratch(d.cfg.ScannerCfg, d.cfg.ClassifyOpts.EmitReportCounters)
			if err := d.workerLoop(ctx, scratch); err != nil {
				errCh <- err
				cancel()
			}
		}()
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) workerLoop(ctx context.Context, scratch *classify.Scratch) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frags, blockID, ok, err := d.claimBatch()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		ob := d.classifyBatch(blockID, frags, scratch)
		if err := d.foldStats(ob, scratch); err != nil {
			return err
		}
		d.pushOutput(ob)
		if err := d.drain(); err != nil {
			return err
		}
	}
}

// fragment is one classifiable unit: a single read, or a mate pair.
type fragment struct {
	id string
	s1 seqio.Sequence
	s2 *seqio.Sequence
}

// claimBatch acquires the input mutex, reads one batch, and assigns it the
// next block id, matching the "acquire input mutex, read, claim id,
// release" per-worker loop step.
func (d *Driver) claimBatch() ([]fragment, uint64, bool, error) {
	d.inputMu.Lock()
	defer d.inputMu.Unlock()

	frags, ok, err := d.readBatchLocked()
	if err != nil {
		return nil, 0, false, cfgerr.Data(err, "reading sequence batch")
	}
	if !ok {
		return nil, 0, false, nil
	}
	blockID := d.nextInputBlock
	d.nextInputBlock++
	return frags, blockID, true, nil
}

func (d *Driver) readBatchLocked() ([]fragment, bool, error) {
	switch d.cfg.Mode {
	case PairedTwoFiles:
		ok1, err := d.reader1.LoadBatch(pairedBatchFragments)
		if err != nil {
			return nil, false, err
		}
		ok2, err := d.reader2.LoadBatch(pairedBatchFragments)
		if err != nil {
			return nil, false, err
		}
		if !ok1 || !ok2 {
			return nil, false, nil
		}
		var frags []fragment
		for {
			s1, has1 := d.reader1.Next()
			s2, has2 := d.reader2.Next()
			if !has1 || !has2 {
				break
			}
			mate2 := s2
			frags = append(frags, fragment{id: s1.Header, s1: s1, s2: &mate2})
		}
		return frags, len(frags) > 0, nil

	case PairedInterleaved:
		ok, err := d.reader1.LoadBatch(pairedBatchFragments * 2)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		var frags []fragment
		for {
			s1, has1 := d.reader1.Next()
			if !has1 {
				break
			}
			s2, has2 := d.reader1.Next()
			if !has2 {
				return nil, false, errInterleavedOddCount
			}
			mate2 := s2
			frags = append(frags, fragment{id: s1.Header, s1: s1, s2: &mate2})
		}
		return frags, len(frags) > 0, nil

	default: // Unpaired
		ok, err := d.reader1.LoadBlock(unpairedBlockByteHint)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		var frags []fragment
		for {
			s1, has := d.reader1.Next()
			if !has {
				break
			}
			frags = append(frags, fragment{id: s1.Header, s1: s1})
		}
		return frags, len(frags) > 0, nil
	}
}

var errInterleavedOddCount = errInterleaved{}

type errInterleaved struct{}

func (errInterleaved) Error() string {
	return "interleaved paired input has an odd number of fragments"
}

// classifyBatch runs ClassifyOne over every fragment in the batch and
// renders the five output strings for this block.
func (d *Driver) classifyBatch(blockID uint64, frags []fragment, scratch *classify.Scratch) *outputBlock {
	var normal, c1, u1, c2, u2 strings.Builder
	results := make([]fragResult, 0, len(frags))

	for _, f := range frags {
		res := classify.One(d.tax, d.idx, d.cfg.IndexOpts, d.cfg.ClassifyOpts, f.id, f.s1, f.s2, scratch)
		normal.WriteString(res.Line)

		bases := uint64(len(f.s1.Seq))
		if f.s2 != nil {
			bases += uint64(len(f.s2.Seq))
		}
		results = append(results, fragResult{classified: res.Classified, called: res.Called, bases: bases})

		extID := d.tax.ExternalID(res.Called)
		if res.Classified {
			c1.WriteString(formatRecord(f.s1, extID, true))
			if f.s2 != nil {
				c2.WriteString(formatRecord(*f.s2, extID, true))
			}
		} else {
			u1.WriteString(formatRecord(f.s1, extID, false))
			if f.s2 != nil {
				u2.WriteString(formatRecord(*f.s2, extID, false))
			}
		}
	}

	return &outputBlock{
		blockID:       blockID,
		normal:        normal.String(),
		classified1:   c1.String(),
		unclassified1: u1.String(),
		classified2:   c2.String(),
		unclassified2: u2.String(),
		results:       results,
	}
}

// foldStats folds this block's per-fragment outcomes and (if enabled)
// report counters into the process-wide aggregate under the stats mutex.
func (d *Driver) foldStats(ob *outputBlock, scratch *classify.Scratch) error {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()

	for _, r := range ob.results {
		d.agg.Record(r.classified, r.called)
		d.totalBases += r.bases
	}
	if d.cfg.ClassifyOpts.EmitReportCounters {
		if err := d.agg.MergeCounters(scratch.Counters()); err != nil {
			return cfgerr.Internal(err, "merging per-taxon counters")
		}
		scratch.ResetCounters()
	}
	return nil
}

// pushOutput pushes ob onto the reorder buffer under the queue mutex.
func (d *Driver) pushOutput(ob *outputBlock) {
	d.queueMu.Lock()
	heap.Push(&d.queue, ob)
	d.queueMu.Unlock()
}

// drain cooperatively writes every ready block at the head of the reorder
// buffer. The writer token is acquired only after the queue mutex has been
// released, so the two locks are never held nested -- but that gap is
// exactly where a worker can be descheduled after popping block N and
// before acquiring writerTok, letting a sibling worker pop block N+1 (already
// queued) and reach the token first. Popping in order is not the same as
// writing in order, so the writerTok holder re-checks, via writeCond, that
// its block is actually the one the turnstile is waiting for; an
// out-of-turn holder waits instead of writing, and is woken once the
// correct predecessor block has been written.
func (d *Driver) drain() error {
	for {
		d.queueMu.Lock()
		if len(d.queue) == 0 || d.queue[0].blockID != d.nextOutputBlock {
			d.queueMu.Unlock()
			return nil
		}
		ob := heap.Pop(&d.queue).(*outputBlock)
		d.nextOutputBlock++
		d.queueMu.Unlock()

		d.writerTok.Lock()
		for ob.blockID != d.nextToWrite {
			d.writeCond.Wait()
		}
		err := d.writeBlock(ob)
		d.nextToWrite++
		d.writeCond.Broadcast()
		d.writerTok.Unlock()
		if err != nil {
			return err
		}
	}
}

func (d *Driver) writeBlock(ob *outputBlock) error {
	if err := writeIfAny(d.sinks.Normal, ob.normal); err != nil {
		return cfgerr.IO(err, "writing normal output")
	}
	if err := writeIfAny(d.sinks.ClassifiedSeq1, ob.classified1); err != nil {
		return cfgerr.IO(err, "writing classified mate-1 output")
	}
	if err := writeIfAny(d.sinks.UnclassifiedSeq1, ob.unclassified1); err != nil {
		return cfgerr.IO(err, "writing unclassified mate-1 output")
	}
	if err := writeIfAny(d.sinks.ClassifiedSeq2, ob.classified2); err != nil {
		return cfgerr.IO(err, "writing classified mate-2 output")
	}
	if err := writeIfAny(d.sinks.UnclassifiedSeq2, ob.unclassified2); err != nil {
		return cfgerr.IO(err, "writing unclassified mate-2 output")
	}
	return nil
}

func writeIfAny(w io.Writer, s string) error {
	if w == nil || s == "" {
		return nil
	}
	_, err := io.WriteString(w, s)
	return err
}
