package testutil_test

import (
	"os"
	"testing"

	"github.com/example/go-bytepair/internal/testutil"
)

func TestWriteCorpus(t *testing.T) {
	path := testutil.WriteCorpus(t, "aaaa")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if string(b) != "aaaa" {
		t.Errorf("corpus = %q; want %q", b, "aaaa")
	}
}

func TestRequireCorpus_PresentDoesNotSkip(t *testing.T) {
	path := testutil.WriteCorpus(t, "x")

	skipped := false
	fakeT := &skipTracker{TB: t, onSkip: func() { skipped = true }}
	testutil.RequireCorpus(fakeT, path)

	if skipped {
		t.Error("RequireCorpus skipped for an existing file")
	}
}

func TestRequireCorpus_SkipsWhenAbsent(t *testing.T) {
	skipped := false
	fakeT := &skipTracker{TB: t, onSkip: func() { skipped = true }}
	testutil.RequireCorpus(fakeT, "/nonexistent/training_text.txt")

	if !skipped {
		t.Error("expected RequireCorpus to skip when the file is absent")
	}
}

func TestRequireCorpus_SkipsDirectory(t *testing.T) {
	skipped := false
	fakeT := &skipTracker{TB: t, onSkip: func() { skipped = true }}
	testutil.RequireCorpus(fakeT, t.TempDir())

	if !skipped {
		t.Error("expected RequireCorpus to skip for a directory")
	}
}

func TestCorpusFromEnv_SkipsWhenUnset(t *testing.T) {
	t.Setenv(testutil.CorpusEnv, "")

	skipped := false
	fakeT := &skipTracker{TB: t, onSkip: func() { skipped = true }}
	testutil.CorpusFromEnv(fakeT)

	if !skipped {
		t.Error("expected CorpusFromEnv to skip when the variable is unset")
	}
}

func TestCorpusFromEnv_ReturnsPath(t *testing.T) {
	path := testutil.WriteCorpus(t, "the theater")
	t.Setenv(testutil.CorpusEnv, path)

	if got := testutil.CorpusFromEnv(t); got != path {
		t.Errorf("CorpusFromEnv = %q; want %q", got, path)
	}
}

// skipTracker is a minimal testing.TB implementation that intercepts Skip calls.
type skipTracker struct {
	testing.TB
	onSkip func()
}

func (s *skipTracker) Helper() {}

func (s *skipTracker) Skipf(_ string, _ ...any) {
	s.onSkip()
	// Do NOT call s.TB.Skip; that would skip the outer test.
}
