package cfgerr

import (
	"errors"
	"testing"
)

func TestExitCodeForKinds(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{Config(errors.New("bad flag"), "parsing --k"), 2},
		{IO(errors.New("permission denied"), "opening index"), 3},
		{Data(errors.New("truncated record"), "read 42"), 4},
		{Internal(errors.New("nil oracle"), "resolve"), 70},
		{errors.New("unkinded"), 70},
	}
	for _, c := range cases {
		if got := ExitCodeFor(c.err); got != c.want {
			t.Errorf("ExitCodeFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestWrapPreservesIsChecks(t *testing.T) {
	err := Data(errors.New("cause"), "bad fastq")
	if !errors.Is(err, ErrData) {
		t.Fatalf("expected errors.Is(err, ErrData) to hold")
	}
	if errors.Is(err, ErrConfig) {
		t.Fatalf("did not expect errors.Is(err, ErrConfig) to hold")
	}
}
