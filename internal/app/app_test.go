package app

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRunContextVersionExitsZero(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := RunContext(context.Background(), []string{"--version"}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr=%q)", code, errBuf.String())
	}
	if !strings.Contains(out.String(), "taxoclass version") {
		t.Fatalf("expected version banner, got %q", out.String())
	}
}

func TestRunContextMissingRequiredFlagsExitsConfigError(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := RunContext(context.Background(), []string{"reads.fq"}, &out, &errBuf)
	if code != 2 {
		t.Fatalf("expected config-error exit code 2, got %d (stderr=%q)", code, errBuf.String())
	}
}

func TestRunContextMissingSeqFileExitsConfigError(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := RunContext(context.Background(), []string{
		"--taxonomy", "t.bin", "--index", "i.bin", "--index-options", "o.bin",
	}, &out, &errBuf)
	if code != 2 {
		t.Fatalf("expected config-error exit code 2, got %d (stderr=%q)", code, errBuf.String())
	}
}

func TestRunContextNonexistentTaxonomyExitsIOError(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := RunContext(context.Background(), []string{
		"--taxonomy", "/nonexistent/tax.bin",
		"--index", "/nonexistent/idx.bin",
		"--index-options", "/nonexistent/idx.opts",
		"reads.fq",
	}, &out, &errBuf)
	if code != 3 {
		t.Fatalf("expected I/O-error exit code 3, got %d (stderr=%q)", code, errBuf.String())
	}
}
