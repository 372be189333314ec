// Package doctor provides preflight checks for a bytepair training run.
package doctor

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/example/go-bytepair/internal/text"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// CorpusPath is reported in check output.
	CorpusPath string
	// ReadCorpus returns the corpus text.
	ReadCorpus func() (string, error)
	// NormalForm is the configured Unicode normal form name.
	NormalForm string
	// SelfTest trains on a built-in sample and checks the round trip.
	// Nil skips the check.
	SelfTest func() error
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- normal form ------------------------------------------------------
	if _, _, err := text.ParseForm(cfg.NormalForm); err != nil {
		res.fail(fmt.Sprintf("normal form: %v", err))
		fmt.Fprintf(w, "%s normal form: %v\n", FailMark, err)
	} else {
		fmt.Fprintf(w, "%s normal form: %s\n", PassMark, formName(cfg.NormalForm))
	}

	// ---- corpus -----------------------------------------------------------
	corpus, err := cfg.ReadCorpus()
	if err != nil {
		res.fail(fmt.Sprintf("corpus %q: %v", cfg.CorpusPath, err))
		fmt.Fprintf(w, "%s corpus %s: %v\n", FailMark, cfg.CorpusPath, err)
	} else {
		fmt.Fprintf(w, "%s corpus: %s (%d bytes)\n", PassMark, cfg.CorpusPath, len(corpus))

		if off := invalidUTF8Offset(corpus); off >= 0 {
			res.fail(fmt.Sprintf("corpus encoding: invalid UTF-8 at byte %d", off))
			fmt.Fprintf(w, "%s corpus encoding: invalid UTF-8 at byte %d\n", FailMark, off)
		} else {
			fmt.Fprintf(w, "%s corpus encoding: UTF-8\n", PassMark)
		}

		if len(corpus) < 2 {
			res.fail("corpus size: fewer than 2 bytes, nothing to merge")
			fmt.Fprintf(w, "%s corpus size: fewer than 2 bytes, nothing to merge\n", FailMark)
		}
	}

	// ---- self test --------------------------------------------------------
	if cfg.SelfTest == nil {
		fmt.Fprintf(w, "%s round trip: skipped\n", PassMark)
	} else if err := cfg.SelfTest(); err != nil {
		res.fail(fmt.Sprintf("round trip: %v", err))
		fmt.Fprintf(w, "%s round trip: %v\n", FailMark, err)
	} else {
		fmt.Fprintf(w, "%s round trip: ok\n", PassMark)
	}

	return res
}

func formName(name string) string {
	if name == "" {
		return "none"
	}
	return name
}

// invalidUTF8Offset returns the byte offset of the first invalid UTF-8
// sequence in s, or -1.
func invalidUTF8Offset(s string) int {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
