// Package testutil provides shared corpus fixtures and skip helpers for
// tests.
//
// Skip helpers call t.Skip with a clear human-readable reason when the named
// prerequisite is absent, so corpus-dependent tests remain runnable in
// partial environments without failing noisily.
//
// Typical usage:
//
//	func TestLargeCorpus(t *testing.T) {
//	    path := testutil.CorpusFromEnv(t)
//	    ...
//	}
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CorpusEnv names an optional large corpus used by slow tests.
const CorpusEnv = "BYTEPAIR_TEST_CORPUS"

// LongRun is a 42-byte corpus whose run of 40 '=' trains a doubling chain
// 256=('=','='), 257=(256,256), ..., 293=(292,292). Code 256+k expands to
// 2^(k+1) bytes, so code 293 stands for 2^38 bytes.
var LongRun = "x" + strings.Repeat("=", 40) + "\n"

// Samples are short training texts covering repeated runs, overlap, multibyte
// characters and the degenerate empty and single-byte inputs.
var Samples = []string{
	LongRun,
	"aaaabcdeaaaaghi",
	"aa",
	"aaa",
	"aaaa",
	"aabaab",
	"unfortunately the understanding was misunderstood",
	"café naïve résumé",
	"x",
	"",
	"the theater thermal theme",
}

// WriteCorpus writes content to training_text.txt in a fresh temp dir and
// returns its path.
func WriteCorpus(tb testing.TB, content string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "training_text.txt")

	err := os.WriteFile(path, []byte(content), 0o644)
	if err != nil {
		tb.Fatalf("write corpus: %v", err)
	}

	return path
}

// RequireCorpus skips the test if no regular file exists at path.
func RequireCorpus(tb testing.TB, path string) {
	tb.Helper()

	info, err := os.Stat(path)
	if err != nil {
		tb.Skipf("corpus not available at %q: %v", path, err)
		return
	}

	if !info.Mode().IsRegular() {
		tb.Skipf("corpus path %q is not a regular file", path)
	}
}

// CorpusFromEnv returns the corpus named by BYTEPAIR_TEST_CORPUS, skipping
// the test when the variable is unset or the file is missing.
func CorpusFromEnv(tb testing.TB) string {
	tb.Helper()

	path := os.Getenv(CorpusEnv)
	if path == "" {
		tb.Skipf("%s not set; skipping large-corpus test", CorpusEnv)
		return ""
	}

	RequireCorpus(tb, path)

	return path
}
