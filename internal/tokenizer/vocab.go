package tokenizer

import (
	"fmt"
	"math"
	"slices"
)

// Code identifies a token: a raw byte (0-255) or a learned merge (>= 256).
//
// Codes are 64-bit, so the sequential merge counter cannot realistically
// overflow; the hard ceiling is math.MaxInt64 merges.
type Code int64

const (
	// ByteCodes is the number of codes reserved for raw bytes.
	ByteCodes = 256

	// FirstMergeCode is the code assigned to the first learned merge.
	FirstMergeCode Code = ByteCodes

	// Deleted marks a position removed during an encode pass.
	Deleted Code = -1

	// DefaultMaxDecodeBytes bounds Expand and, unless Options says
	// otherwise, Decode.
	DefaultMaxDecodeBytes = 64 << 20
)

// IsByte reports whether c is in the raw byte range.
func (c Code) IsByte() bool {
	return c >= 0 && c < ByteCodes
}

// Pair is an ordered pair of adjacent codes.
type Pair struct {
	First  Code
	Second Code
}

func (p Pair) String() string {
	return fmt.Sprintf("(%d,%d)", p.First, p.Second)
}

// less orders pairs by First, then Second.
func (p Pair) less(o Pair) bool {
	if p.First != o.First {
		return p.First < o.First
	}
	return p.Second < o.Second
}

// EntryKind tags a vocabulary entry.
type EntryKind uint8

const (
	KindByte EntryKind = iota + 1
	KindPair
)

func (k EntryKind) String() string {
	switch k {
	case KindByte:
		return "byte"
	case KindPair:
		return "pair"
	default:
		return "unknown"
	}
}

// Entry is either a raw byte or a merge rule.
type Entry struct {
	Kind  EntryKind
	Value byte // valid for KindByte
	Pair  Pair // valid for KindPair
}

// ByteEntry returns the entry for a raw byte.
func ByteEntry(b byte) Entry {
	return Entry{Kind: KindByte, Value: b}
}

// PairEntry returns the entry for a merge rule.
func PairEntry(p Pair) Entry {
	return Entry{Kind: KindPair, Pair: p}
}

// IsPair reports whether e is a merge rule.
func (e Entry) IsPair() bool {
	return e.Kind == KindPair
}

// Vocabulary maps token codes to entries. It is populated by training and
// read-only afterwards; reads are safe from multiple goroutines once no
// writer remains.
//
// Overlapping merges let a run of one byte learn a doubling chain
// (c,c), (256,256), (257,257), ..., so expansion length grows
// exponentially in the number of merges. Lengths are tracked per code and
// saturate at math.MaxInt.
type Vocabulary struct {
	entries map[Code]Entry
	pairs   map[Pair]Code
	lengths map[Code]int
	next    Code
}

// NewVocabulary returns an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		entries: make(map[Code]Entry),
		pairs:   make(map[Pair]Code),
		lengths: make(map[Code]int),
		next:    FirstMergeCode,
	}
}

// Len returns the number of entries, bytes and merges together.
func (v *Vocabulary) Len() int {
	return len(v.entries)
}

// Merges returns the number of learned merge rules.
func (v *Vocabulary) Merges() int {
	return int(v.next - FirstMergeCode)
}

// NextCode returns the code the next merge would receive.
func (v *Vocabulary) NextCode() Code {
	return v.next
}

// Lookup returns the entry for code.
func (v *Vocabulary) Lookup(code Code) (Entry, bool) {
	e, ok := v.entries[code]
	return e, ok
}

// CodeFor returns the merge code whose rule is p.
func (v *Vocabulary) CodeFor(p Pair) (Code, bool) {
	c, ok := v.pairs[p]
	return c, ok
}

// Codes returns every code in ascending order.
func (v *Vocabulary) Codes() []Code {
	codes := make([]Code, 0, len(v.entries))
	for c := range v.entries {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}

// ExpandedLen returns the number of bytes code expands to, saturating at
// math.MaxInt.
func (v *Vocabulary) ExpandedLen(code Code) (int, bool) {
	if _, ok := v.entries[code]; !ok {
		return 0, false
	}
	if n, ok := v.lengths[code]; ok {
		return n, true
	}
	return 1, true
}

// DecodedLen returns the number of codes left after fully expanding codes,
// saturating at math.MaxInt. Codes missing from the vocabulary count as one,
// as decoding keeps them in place.
func (v *Vocabulary) DecodedLen(codes []Code) int {
	total := 0
	for _, c := range codes {
		n, ok := v.ExpandedLen(c)
		if !ok {
			n = 1
		}
		total = addSaturating(total, n)
	}
	return total
}

// Expand returns the raw bytes code stands for. Unknown codes and byte codes
// absent from the vocabulary are reported as an error, as are codes longer
// than DefaultMaxDecodeBytes.
func (v *Vocabulary) Expand(code Code) ([]byte, error) {
	if n, ok := v.ExpandedLen(code); ok && n > DefaultMaxDecodeBytes {
		return nil, fmt.Errorf("%w: code %d expands to %d bytes", ErrDecodeTooLarge, code, n)
	}
	return v.ExpandPrefix(code, DefaultMaxDecodeBytes)
}

// ExpandPrefix returns at most limit leading bytes of code's expansion.
func (v *Vocabulary) ExpandPrefix(code Code, limit int) ([]byte, error) {
	var out []byte
	stack := []Code{code}
	for len(stack) > 0 && len(out) < limit {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		e, ok := v.entries[c]
		if !ok {
			return nil, fmt.Errorf("code %d not in vocabulary", c)
		}
		if e.Kind == KindByte {
			out = append(out, e.Value)
			continue
		}
		stack = append(stack, e.Pair.Second, e.Pair.First)
	}
	return out, nil
}

// Validate checks that byte entries sit below FirstMergeCode and that every
// merge references only bytes or earlier merges present in the vocabulary.
func (v *Vocabulary) Validate() error {
	for _, c := range v.Codes() {
		e := v.entries[c]
		switch e.Kind {
		case KindByte:
			if !c.IsByte() || Code(e.Value) != c {
				return fmt.Errorf("byte entry %d has value %d", c, e.Value)
			}
		case KindPair:
			if c < FirstMergeCode {
				return fmt.Errorf("merge %s stored under byte code %d", e.Pair, c)
			}
			for _, part := range []Code{e.Pair.First, e.Pair.Second} {
				if part >= c {
					return fmt.Errorf("merge %d references later code %d", c, part)
				}
				if _, ok := v.entries[part]; !ok {
					return fmt.Errorf("merge %d references unknown code %d", c, part)
				}
			}
		default:
			return fmt.Errorf("code %d has invalid kind %d", c, e.Kind)
		}
	}
	return nil
}

// seedBytes adds a byte entry for every distinct byte of data.
func (v *Vocabulary) seedBytes(data []byte) {
	for _, b := range data {
		c := Code(b)
		if _, ok := v.entries[c]; !ok {
			v.entries[c] = ByteEntry(b)
			v.lengths[c] = 1
		}
	}
}

// addMerge records p under the next free code and returns that code.
func (v *Vocabulary) addMerge(p Pair) Code {
	code := v.next
	v.entries[code] = PairEntry(p)
	v.lengths[code] = addSaturating(v.partLen(p.First), v.partLen(p.Second))
	if _, ok := v.pairs[p]; !ok {
		v.pairs[p] = code
	}
	v.next++
	return code
}

// partLen is the expanded length of a merge constituent. Unknown codes
// count as one.
func (v *Vocabulary) partLen(c Code) int {
	if n, ok := v.lengths[c]; ok {
		return n
	}
	return 1
}

func addSaturating(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
