package doctor_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/example/go-bytepair/internal/doctor"
)

var errMissing = errors.New("corpus not found")

func corpusOf(s string) func() (string, error) {
	return func() (string, error) { return s, nil }
}

func hasFailureContaining(failures []string, substr string) bool {
	for _, f := range failures {
		if strings.Contains(f, substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// all-pass scenario
// ---------------------------------------------------------------------------

func TestRun_AllChecksPass(t *testing.T) {
	cfg := doctor.Config{
		CorpusPath: "training_text.txt",
		ReadCorpus: corpusOf("aaaabcdeaaaaghi"),
		NormalForm: "nfc",
		SelfTest:   func() error { return nil },
	}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if result.Failed() {
		t.Errorf("expected all checks to pass; failures: %v", result.Failures())
	}

	for _, want := range []string{"training_text.txt (15 bytes)", "UTF-8", "round trip: ok", doctor.PassMark} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	if strings.Contains(out.String(), doctor.FailMark) {
		t.Errorf("unexpected fail mark:\n%s", out.String())
	}
}

// ---------------------------------------------------------------------------
// failing checks
// ---------------------------------------------------------------------------

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name string
		cfg  doctor.Config
		want string
	}{
		{
			name: "missing corpus",
			cfg:  doctor.Config{CorpusPath: "nope.txt", ReadCorpus: func() (string, error) { return "", errMissing }},
			want: "nope.txt",
		},
		{
			name: "invalid utf8",
			cfg:  doctor.Config{ReadCorpus: corpusOf("ab\xffcd")},
			want: "invalid UTF-8 at byte 2",
		},
		{
			name: "too short",
			cfg:  doctor.Config{ReadCorpus: corpusOf("x")},
			want: "fewer than 2 bytes",
		},
		{
			name: "unknown normal form",
			cfg:  doctor.Config{ReadCorpus: corpusOf("aaaa"), NormalForm: "nfx"},
			want: "normal form",
		},
		{
			name: "self test",
			cfg: doctor.Config{
				ReadCorpus: corpusOf("aaaa"),
				SelfTest:   func() error { return errors.New("mismatch") },
			},
			want: "round trip: mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			result := doctor.Run(tt.cfg, &out)

			if !result.Failed() {
				t.Fatalf("expected failure; output:\n%s", out.String())
			}

			if !hasFailureContaining(result.Failures(), tt.want) {
				t.Errorf("expected failure containing %q, got: %v", tt.want, result.Failures())
			}

			if !strings.Contains(out.String(), doctor.FailMark) {
				t.Errorf("output should contain %s:\n%s", doctor.FailMark, out.String())
			}
		})
	}
}

func TestRun_SelfTestSkipped(t *testing.T) {
	var out strings.Builder
	doctor.Run(doctor.Config{ReadCorpus: corpusOf("aaaa")}, &out)

	if !strings.Contains(out.String(), "round trip: skipped") {
		t.Errorf("expected skipped self test:\n%s", out.String())
	}
}

func TestResult_AddFailureAndCopy(t *testing.T) {
	var r doctor.Result
	if r.Failed() {
		t.Fatal("zero Result should not be failed")
	}

	r.AddFailure("external check")

	got := r.Failures()
	got[0] = "mutated"

	if r.Failures()[0] != "external check" {
		t.Error("Failures should return a copy")
	}
}
