package tokenizer

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/example/go-bytepair/internal/testutil"
)

func TestVocabularyExpand(t *testing.T) {
	tok := trained(t, "aaaa", Options{})
	v := tok.Vocabulary()

	tests := []struct {
		code Code
		want string
	}{
		{'a', "a"},
		{256, "aa"},
		{257, "aaaa"},
	}

	for _, tt := range tests {
		got, err := v.Expand(tt.code)
		if err != nil {
			t.Errorf("Expand(%d): %v", tt.code, err)
			continue
		}

		if string(got) != tt.want {
			t.Errorf("Expand(%d) = %q; want %q", tt.code, got, tt.want)
		}
	}

	if _, err := v.Expand(300); err == nil {
		t.Error("Expand(300) = nil error; want error for unknown code")
	}
}

func TestVocabularyValidate(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Vocabulary
		wantErr string
	}{
		{
			name: "trained vocabulary",
			build: func() *Vocabulary {
				v := NewVocabulary()
				v.seedBytes([]byte("abab"))
				v.addMerge(Pair{First: 'a', Second: 'b'})
				return v
			},
		},
		{
			name: "unknown constituent",
			build: func() *Vocabulary {
				v := NewVocabulary()
				v.seedBytes([]byte("a"))
				v.addMerge(Pair{First: 'a', Second: 'z'})
				return v
			},
			wantErr: "unknown code",
		},
		{
			name: "forward reference",
			build: func() *Vocabulary {
				v := NewVocabulary()
				v.seedBytes([]byte("a"))
				v.addMerge(Pair{First: 'a', Second: 257})
				return v
			},
			wantErr: "later code",
		},
		{
			name: "byte stored under wrong code",
			build: func() *Vocabulary {
				v := NewVocabulary()
				v.entries[5] = ByteEntry(6)
				return v
			},
			wantErr: "byte entry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v; want nil", err)
				}

				return
			}

			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v; want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestVocabularyCounts(t *testing.T) {
	v := NewVocabulary()
	if v.Len() != 0 || v.Merges() != 0 || v.NextCode() != FirstMergeCode {
		t.Fatalf("empty vocabulary: Len=%d Merges=%d Next=%d", v.Len(), v.Merges(), v.NextCode())
	}

	v.seedBytes([]byte("hello"))
	if v.Len() != 4 {
		t.Errorf("Len after seeding %q = %d; want 4", "hello", v.Len())
	}

	code := v.addMerge(Pair{First: 'l', Second: 'l'})
	if code != FirstMergeCode {
		t.Errorf("first merge code = %d; want %d", code, FirstMergeCode)
	}

	if v.Merges() != 1 || v.Len() != 5 {
		t.Errorf("Merges/Len = %d/%d; want 1/5", v.Merges(), v.Len())
	}
}

func TestCodeIsByte(t *testing.T) {
	for _, c := range []Code{0, 97, 255} {
		if !c.IsByte() {
			t.Errorf("Code(%d).IsByte() = false", c)
		}
	}

	for _, c := range []Code{Deleted, 256, 1 << 40} {
		if c.IsByte() {
			t.Errorf("Code(%d).IsByte() = true", c)
		}
	}
}

func TestVocabularyExpandedLen_LongRun(t *testing.T) {
	tok := trained(t, testutil.LongRun, Options{})
	v := tok.Vocabulary()

	if v.Merges() != 38 {
		t.Fatalf("Merges = %d; want 38", v.Merges())
	}

	for k := range 38 {
		code := FirstMergeCode + Code(k)

		n, ok := v.ExpandedLen(code)
		if !ok || n != 1<<(k+1) {
			t.Errorf("ExpandedLen(%d) = %d, %v; want %d", code, n, ok, 1<<(k+1))
		}
	}

	if n, ok := v.ExpandedLen('x'); !ok || n != 1 {
		t.Errorf("ExpandedLen('x') = %d, %v; want 1, true", n, ok)
	}

	if _, ok := v.ExpandedLen(999); ok {
		t.Error("ExpandedLen(999) ok = true for unknown code")
	}

	if got := v.DecodedLen([]Code{293, 'x', 999}); got != 1<<38+2 {
		t.Errorf("DecodedLen = %d; want %d", got, 1<<38+2)
	}

	prefix, err := v.ExpandPrefix(293, 8)
	if err != nil {
		t.Fatalf("ExpandPrefix: %v", err)
	}

	if string(prefix) != "========" {
		t.Errorf("ExpandPrefix(293, 8) = %q", prefix)
	}

	if _, err := v.Expand(293); !errors.Is(err, ErrDecodeTooLarge) {
		t.Errorf("Expand(293) error = %v; want ErrDecodeTooLarge", err)
	}

	small, err := v.Expand(265)
	if err != nil || len(small) != 1024 {
		t.Errorf("Expand(265) = %d bytes, %v; want 1024", len(small), err)
	}
}

func TestVocabularyExpandedLen_Saturates(t *testing.T) {
	v := NewVocabulary()
	v.seedBytes([]byte("a"))

	code := Code('a')
	for range 70 {
		code = v.addMerge(Pair{First: code, Second: code})
	}

	if n, _ := v.ExpandedLen(code); n != math.MaxInt {
		t.Errorf("ExpandedLen after 70 doublings = %d; want math.MaxInt", n)
	}

	if got := v.DecodedLen([]Code{code, code}); got != math.MaxInt {
		t.Errorf("DecodedLen = %d; want math.MaxInt", got)
	}
}
