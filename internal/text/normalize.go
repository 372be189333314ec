package text

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyText is returned when the input text is empty or whitespace-only.
var ErrEmptyText = errors.New("text is empty")

// Normalize prepares command-line input text for encoding.
// It normalizes line endings to \n, trims surrounding whitespace,
// and rejects empty or whitespace-only input.
func Normalize(s string) (string, error) {
	s = strings.TrimSpace(NormalizeLineEndings(s))

	if s == "" {
		return "", ErrEmptyText
	}

	return s, nil
}

// NormalizeLineEndings converts CRLF and bare CR to LF.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// ParseForm maps a normal form name to a norm.Form. "none" and "" report
// ok=false, meaning the text is left as is.
func ParseForm(name string) (form norm.Form, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return 0, false, nil
	case "nfc":
		return norm.NFC, true, nil
	case "nfd":
		return norm.NFD, true, nil
	case "nfkc":
		return norm.NFKC, true, nil
	case "nfkd":
		return norm.NFKD, true, nil
	default:
		return 0, false, fmt.Errorf("unknown normal form %q", name)
	}
}

// PreprocessOptions selects corpus preprocessing steps.
type PreprocessOptions struct {
	LineEndings bool
	Form        string
}

// Preprocess applies the selected steps to a corpus. Merge rules stay
// byte-level; this only changes which bytes the tokenizer sees.
func Preprocess(s string, opts PreprocessOptions) (string, error) {
	if opts.LineEndings {
		s = NormalizeLineEndings(s)
	}

	form, ok, err := ParseForm(opts.Form)
	if err != nil {
		return "", err
	}
	if ok {
		s = form.String(s)
	}

	return s, nil
}
