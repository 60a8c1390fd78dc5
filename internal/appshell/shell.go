// Package appshell wires a RunContext-shaped entrypoint to the process:
// it arranges for SIGINT/SIGTERM to cancel the run's context, normalizes
// the exit code on cancellation, and calls os.Exit.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Main runs run with a context cancelled on SIGINT/SIGTERM, then exits the
// process with run's return code (or 130 if the run was cancelled and
// returned 0, matching the conventional SIGINT/SIGTERM exit status).
func Main(run func(context.Context, []string, io.Writer, io.Writer) int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	argv := os.Args[1:]
	if len(argv) == 0 {
		argv = []string{"-h"}
	}

	code := run(ctx, argv, os.Stdout, os.Stderr)
	if ctx.Err() != nil && code == 0 {
		// A classification run stopped mid-batch on signal still wrote
		// partial, correctly-ordered output through whatever block the
		// reorder buffer had reached — exit 130 tells the caller that was
		// an interruption, not a clean run over the full input.
		code = 130
	}

	os.Exit(code)
}
