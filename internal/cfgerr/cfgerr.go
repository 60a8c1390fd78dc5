// Package cfgerr defines the error-kind taxonomy the CLI entrypoint uses to
// pick a process exit code: configuration mistakes, I/O failures, malformed
// input data, and internal invariant violations each map to a distinct
// code, following the same "classify the error, then pick an exit code"
// shape the command wrappers in this codebase's ancestry use.
package cfgerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel kind markers. Wrap attaches one of these to a cause so callers
// can later recover the kind via errors.Is, while ExitCodeFor picks the
// process exit code.
var (
	ErrConfig   = errors.New("configuration error")
	ErrIO       = errors.New("i/o error")
	ErrData     = errors.New("data error")
	ErrInternal = errors.New("internal error")
)

// wrapped pairs a sentinel kind with the underlying cause and a
// human-readable detail, preserving pkg/errors' stack trace on cause.
type wrapped struct {
	kind   error
	cause  error
	detail string
}

func (w *wrapped) Error() string {
	if w.cause == nil {
		return fmt.Sprintf("%s: %s", w.detail, w.kind)
	}
	return fmt.Sprintf("%s: %s: %v", w.detail, w.kind, w.cause)
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As
// (multi-value Unwrap, supported since Go 1.20).
func (w *wrapped) Unwrap() []error { return []error{w.kind, w.cause} }

// Wrap attaches kind to cause with a human-readable detail string. cause
// may be nil, in which case the resulting error carries only kind and
// detail.
func Wrap(kind error, cause error, detail string) error {
	return &wrapped{kind: kind, cause: cause, detail: detail}
}

// Config wraps cause as a configuration error.
func Config(cause error, detail string) error { return Wrap(ErrConfig, cause, detail) }

// IO wraps cause as an I/O error.
func IO(cause error, detail string) error { return Wrap(ErrIO, cause, detail) }

// Data wraps cause as a data error, naming the offending record or file in
// detail.
func Data(cause error, detail string) error { return Wrap(ErrData, cause, detail) }

// Internal wraps cause as an internal invariant violation.
func Internal(cause error, detail string) error { return Wrap(ErrInternal, cause, detail) }

// ExitCodeFor maps err to the process exit code the CLI entrypoint
// returns, following sysexits.h convention for the internal-error case.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrConfig):
		return 2
	case errors.Is(err, ErrIO):
		return 3
	case errors.Is(err, ErrData):
		return 4
	default:
		return 70 // EX_SOFTWARE
	}
}
