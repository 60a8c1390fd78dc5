package cli

import (
	"bytes"
	"testing"
)

func mustParse(t *testing.T, args ...string) Options {
	t.Helper()
	var got Options
	var out, errBuf bytes.Buffer
	cmd := NewCommand(&out, &errBuf, func(o Options) error {
		got = o
		return nil
	})
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v (stderr=%q)", err, errBuf.String())
	}
	return got
}

func TestParsesRequiredPathsAndSeqFileArgument(t *testing.T) {
	o := mustParse(t,
		"--taxonomy", "tax.bin",
		"--index", "idx.bin",
		"--index-options", "idx.opts",
		"reads.fq",
	)
	if o.TaxonomyPath != "tax.bin" || o.IndexPath != "idx.bin" || o.IndexOptsPath != "idx.opts" {
		t.Fatalf("unexpected paths: %+v", o)
	}
	if o.SeqFile1 != "reads.fq" {
		t.Fatalf("expected positional arg as SeqFile1, got %q", o.SeqFile1)
	}
}

func TestParsesTwoSeqFileArgumentsForPairedMode(t *testing.T) {
	o := mustParse(t,
		"--taxonomy", "tax.bin", "--index", "idx.bin", "--index-options", "idx.opts",
		"--paired",
		"reads_1.fq", "reads_2.fq",
	)
	if !o.Paired || o.SeqFile1 != "reads_1.fq" || o.SeqFile2 != "reads_2.fq" {
		t.Fatalf("unexpected paired options: %+v", o)
	}
}

func TestDefaultsMmapOnAndThreadsOne(t *testing.T) {
	o := mustParse(t, "reads.fq")
	if !o.UseMmap {
		t.Errorf("expected --mmap to default true")
	}
	if o.Threads != 1 {
		t.Errorf("expected default threads=1, got %d", o.Threads)
	}
}

func TestQuickAndTranslatedFlags(t *testing.T) {
	o := mustParse(t, "--quick", "--translated", "--minimum-hit-groups", "3", "reads.fq")
	if !o.QuickMode || !o.TranslatedSearch || o.MinimumHitGroups != 3 {
		t.Fatalf("unexpected classify flags: %+v", o)
	}
}
