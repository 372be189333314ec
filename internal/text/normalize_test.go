package text

import (
	"errors"
	"testing"

	"golang.org/x/text/unicode/norm"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "clean input unchanged", input: "the theater", want: "the theater"},
		{name: "trims edges", input: "\t\n the theater \n\t", want: "the theater"},
		{name: "CRLF to LF", input: "aaaa\r\nbbbb", want: "aaaa\nbbbb"},
		{name: "bare CR to LF", input: "aaaa\rbbbb", want: "aaaa\nbbbb"},
		{name: "keeps internal spacing", input: " a  b ", want: "a  b"},
		{name: "keeps multibyte runes", input: " café naïve ", want: "café naïve"},
		{name: "empty", input: "", wantErr: ErrEmptyText},
		{name: "whitespace only", input: " \r\n\t ", wantErr: ErrEmptyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error %v, got nil", tt.wantErr)
				}

				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeLineEndings(t *testing.T) {
	got := NormalizeLineEndings("a\r\nb\rc\nd")
	if got != "a\nb\nc\nd" {
		t.Errorf("NormalizeLineEndings = %q; want %q", got, "a\nb\nc\nd")
	}
}

func TestParseForm(t *testing.T) {
	tests := []struct {
		name    string
		want    norm.Form
		wantOK  bool
		wantErr bool
	}{
		{"", 0, false, false},
		{"none", 0, false, false},
		{"nfc", norm.NFC, true, false},
		{"NFD", norm.NFD, true, false},
		{"nfkc", norm.NFKC, true, false},
		{" nfkd ", norm.NFKD, true, false},
		{"nfx", 0, false, true},
	}

	for _, tt := range tests {
		form, ok, err := ParseForm(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseForm(%q) error = %v; wantErr %v", tt.name, err, tt.wantErr)
			continue
		}

		if ok != tt.wantOK || (ok && form != tt.want) {
			t.Errorf("ParseForm(%q) = %v, %v; want %v, %v", tt.name, form, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPreprocess(t *testing.T) {
	// "e\u0301" is e + combining acute; NFC composes it to "\u00e9".
	tests := []struct {
		name  string
		input string
		opts  PreprocessOptions
		want  string
	}{
		{"no steps", "cafe\u0301\r\n", PreprocessOptions{}, "cafe\u0301\r\n"},
		{"line endings only", "cafe\u0301\r\n", PreprocessOptions{LineEndings: true}, "cafe\u0301\n"},
		{"nfc composes", "cafe\u0301\r\n", PreprocessOptions{Form: "nfc"}, "caf\u00e9\r\n"},
		{"both", "cafe\u0301\r\n", PreprocessOptions{LineEndings: true, Form: "nfc"}, "caf\u00e9\n"},
		{"nfkc folds fullwidth", "\uff43\uff41\uff46\uff45\u0301", PreprocessOptions{Form: "nfkc"}, "caf\u00e9"},
		{"nfd decomposes", "caf\u00e9", PreprocessOptions{Form: "nfd"}, "cafe\u0301"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Preprocess(tt.input, tt.opts)
			if err != nil {
				t.Fatalf("Preprocess: %v", err)
			}

			if got != tt.want {
				t.Errorf("Preprocess(%q, %+v) = %q; want %q", tt.input, tt.opts, got, tt.want)
			}
		})
	}
}

func TestPreprocess_UnknownForm(t *testing.T) {
	_, err := Preprocess("x", PreprocessOptions{Form: "nfx"})
	if err == nil {
		t.Fatal("Preprocess with unknown form = nil error; want error")
	}
}
