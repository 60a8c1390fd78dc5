// Package app wires the parsed CLI options into a running Driver: it
// loads the taxonomy/index/index-options files, opens the sequence
// reader(s) and output sinks, runs the driver to completion, renders the
// optional per-taxon report, and maps any error to a process exit code.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"taxoclass-core/classify"
	"taxoclass-core/index"
	"taxoclass-core/minimizer"
	"taxoclass-core/seqio"
	"taxoclass-core/taxonomy"

	"taxoclass/internal/cfgerr"
	"taxoclass/internal/cli"
	"taxoclass/internal/driver"
	"taxoclass/internal/logging"
	"taxoclass/internal/version"
)

// RunContext parses argv, runs the classifier, and returns a process exit
// code (0 on success). stdout/stderr carry the command's ordinary output
// and error/log reporting respectively.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	var code int
	run := func(opt cli.Options) error {
		err := execute(ctx, opt, stdout, stderr)
		code = cfgerr.ExitCodeFor(err)
		return err
	}

	cmd := cli.NewCommand(stdout, stderr, run)
	cmd.SetArgs(argv)
	if err := cmd.Execute(); err != nil {
		if code == 0 {
			// cobra's own flag-parsing errors never reach run(), so they
			// were never classified by cfgerr; treat them as config errors.
			code = cfgerr.ExitCodeFor(cfgerr.Config(err, "parsing command line"))
		}
		fmt.Fprintln(stderr, err)
	}
	return code
}

func execute(ctx context.Context, opt cli.Options, stdout, stderr io.Writer) error {
	log := newLogger(opt)

	if opt.Version {
		fmt.Fprintf(stdout, "taxoclass version %s\n", version.Version)
		return nil
	}
	if opt.TaxonomyPath == "" || opt.IndexPath == "" || opt.IndexOptsPath == "" {
		return cfgerr.Config(nil, "--taxonomy, --index and --index-options are required")
	}
	if opt.SeqFile1 == "" {
		return cfgerr.Config(nil, "a sequence file argument is required")
	}
	if opt.Interleaved {
		opt.Paired = true
	}
	if opt.Paired && !opt.Interleaved && opt.SeqFile2 == "" {
		return cfgerr.Config(nil, "--paired without --interleaved requires two sequence file arguments")
	}

	tax, err := taxonomy.Open(opt.TaxonomyPath, opt.UseMmap)
	if err != nil {
		return cfgerr.IO(err, "loading taxonomy")
	}
	defer tax.Close()

	idx, err := index.Open(opt.IndexPath, opt.UseMmap)
	if err != nil {
		return cfgerr.IO(err, "loading index")
	}
	defer idx.Close()

	idxOpts, err := index.LoadOptions(opt.IndexOptsPath)
	if err != nil {
		return cfgerr.IO(err, "loading index options")
	}

	log.LogIndexLoaded(ctx, len(tax.Nodes()), idx.Len(), nil)

	reader1, err := seqio.Open(opt.SeqFile1)
	if err != nil {
		return cfgerr.IO(err, "opening sequence file")
	}
	defer reader1.Close()

	var reader2 seqio.Reader
	mode := driver.Unpaired
	switch {
	case opt.Interleaved:
		mode = driver.PairedInterleaved
	case opt.Paired:
		mode = driver.PairedTwoFiles
		r2, err := seqio.Open(opt.SeqFile2)
		if err != nil {
			return cfgerr.IO(err, "opening second sequence file")
		}
		defer r2.Close()
		reader2 = r2
	}

	sinks, closers, err := driver.OpenSinks(opt.OutputPath, opt.ClassifiedOutPath, opt.UnclassifiedOutPath, opt.Paired)
	if err != nil {
		return cfgerr.IO(err, "opening output sinks")
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	cfg := driver.Config{
		Threads: opt.Threads,
		Mode:    mode,
		ClassifyOpts: classify.Options{
			PairedEnd:           opt.Paired,
			UseTranslatedSearch: opt.TranslatedSearch,
			QuickMode:           opt.QuickMode,
			MinimumHitGroups:    opt.MinimumHitGroups,
			ConfidenceThreshold: opt.Confidence,
			MinimumQualityScore: byte(opt.MinimumQuality),
			PrintScientificName: opt.PrintScientificName,
			EmitReportCounters:  opt.ReportPath != "",
		},
		IndexOpts: classify.IndexOptions{MinimumAcceptableHashValue: idxOpts.MinimumAcceptableHashValue},
		ScannerCfg: minimizer.Config{
			K:              int(idxOpts.K),
			L:              int(idxOpts.L),
			SpacedSeedMask: idxOpts.SpacedSeedMask,
			ToggleMask:     idxOpts.ToggleMask,
			RevcomVersion:  int(idxOpts.RevcomVersion),
			DNADB:          idxOpts.DNADB,
		},
	}

	d := driver.New(reader1, reader2, tax, idx, sinks, cfg)
	if err := d.Run(ctx); err != nil {
		return err
	}

	stats := d.Stats()
	log.LogRunComplete(ctx, stats.TotalSequences, stats.TotalClassified)

	if opt.ReportPath != "" {
		w, closer, err := driver.OpenReportSink(opt.ReportPath)
		if err != nil {
			return cfgerr.IO(err, "opening report output")
		}
		defer func() {
			if closer != nil {
				_ = closer.Close()
			}
		}()
		if err := d.Aggregate().Render(w, tax.Name); err != nil {
			return cfgerr.IO(err, "writing report")
		}
	}

	return nil
}

func newLogger(opt cli.Options) *logging.Logger {
	if opt.LogJSON {
		return logging.NewJSON(slog.LevelInfo)
	}
	return logging.NewText(slog.LevelInfo)
}
