package tokenizer

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidText is returned when decoded bytes are not valid UTF-8.
var ErrInvalidText = errors.New("decoded bytes are not valid UTF-8")

// ErrDecodeTooLarge is returned when codes would expand past the decode
// limit.
var ErrDecodeTooLarge = errors.New("decoded text exceeds size limit")

// InvalidTextPlaceholder is the text Decode returns alongside ErrInvalidText.
const InvalidTextPlaceholder = "ERROR: Invalid UTF-8"

// expand replaces merge codes with their pairs, one level per pass, until a
// pass expands nothing. Byte codes and codes missing from v are kept as is.
// It returns the expanded sequence and the number of passes that expanded
// at least one code.
func expand(codes []Code, v *Vocabulary) ([]Code, int) {
	seq := make([]Code, len(codes))
	copy(seq, codes)

	passes := 0
	for {
		out := make([]Code, 0, len(seq)*2)
		expanded := false
		for _, c := range seq {
			if c.IsByte() {
				out = append(out, c)
				continue
			}
			e, ok := v.Lookup(c)
			if !ok || !e.IsPair() {
				out = append(out, c)
				continue
			}
			out = append(out, e.Pair.First, e.Pair.Second)
			expanded = true
		}
		if !expanded {
			return seq, passes
		}
		seq = out
		passes++
	}
}

// checkDecodedLen rejects codes whose expansion is longer than limit.
// A limit <= 0 disables the check.
func checkDecodedLen(codes []Code, v *Vocabulary, limit int) error {
	if limit <= 0 {
		return nil
	}
	if n := v.DecodedLen(codes); n > limit {
		return fmt.Errorf("%w: %d codes expand to %d bytes, limit %d", ErrDecodeTooLarge, len(codes), n, limit)
	}
	return nil
}

// decodeBytes expands codes and packs the result into bytes. Codes that
// are still outside the byte range after expansion are an error, as is an
// expansion longer than limit.
func decodeBytes(codes []Code, v *Vocabulary, limit int) ([]byte, error) {
	if err := checkDecodedLen(codes, v, limit); err != nil {
		return nil, err
	}

	seq, _ := expand(codes, v)
	out := make([]byte, len(seq))
	for i, c := range seq {
		if !c.IsByte() {
			return nil, fmt.Errorf("%w: code %d at position %d has no expansion", ErrInvalidText, c, i)
		}
		out[i] = byte(c)
	}
	return out, nil
}

// decode expands codes into text. On failure it returns
// InvalidTextPlaceholder and an error wrapping ErrInvalidText or
// ErrDecodeTooLarge.
func decode(codes []Code, v *Vocabulary, limit int) (string, error) {
	b, err := decodeBytes(codes, v, limit)
	if err != nil {
		return InvalidTextPlaceholder, err
	}
	if !utf8.Valid(b) {
		return InvalidTextPlaceholder, fmt.Errorf("%w: %d bytes", ErrInvalidText, len(b))
	}
	return string(b), nil
}
