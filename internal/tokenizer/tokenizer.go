// Package tokenizer implements a byte-level Byte-Pair-Encoding tokenizer.
//
// Training learns merge rules from a corpus: the most frequent adjacent code
// pair is assigned the next free code (starting at 256) until every pair is
// unique. Encoding applies those rules to new text; decoding expands merge
// codes back to bytes.
package tokenizer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrAlreadyTrained is returned by Train on a tokenizer that already holds
// a vocabulary.
var ErrAlreadyTrained = errors.New("tokenizer already trained")

// Options configures a Tokenizer.
type Options struct {
	// KeepTail selects the non-overlapping rebuild that keeps the final
	// element. See Trainer.KeepTail.
	KeepTail bool

	// MaxMerges caps the learned merges. Zero means no cap.
	MaxMerges int

	// CacheSize is the number of Encode results kept in an LRU cache.
	// Zero disables caching.
	CacheSize int

	// MaxDecodeBytes caps the expanded length Decode accepts. Zero means
	// DefaultMaxDecodeBytes; negative disables the cap.
	MaxDecodeBytes int

	Logger *slog.Logger
}

// TrainResult reports a completed training run.
type TrainResult struct {
	TrainStats
	VocabSize int
	Final     []Code
	Elapsed   time.Duration
}

// Tokenizer owns a Vocabulary. Train must complete before Encode and Decode
// are called concurrently; after that the vocabulary is never mutated.
type Tokenizer struct {
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	vocab   *Vocabulary
	trained bool

	cache *lru.Cache[string, []Code]
}

// New returns an untrained Tokenizer.
func New(opts Options) (*Tokenizer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t := &Tokenizer{
		opts:   opts,
		logger: logger,
		vocab:  NewVocabulary(),
	}

	if opts.CacheSize > 0 {
		cache, err := lru.New[string, []Code](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create encode cache: %w", err)
		}
		t.cache = cache
	}

	return t, nil
}

// Train seeds the vocabulary with the bytes of text and learns merge rules
// from it. It may be called once.
func (t *Tokenizer) Train(text string) (TrainResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.trained {
		return TrainResult{}, ErrAlreadyTrained
	}

	start := time.Now()
	data := []byte(text)
	t.vocab.seedBytes(data)

	trainer := Trainer{
		KeepTail:  t.opts.KeepTail,
		MaxMerges: t.opts.MaxMerges,
		Logger:    t.logger,
	}
	final, stats := trainer.Train(bytesToCodes(data), t.vocab)
	t.trained = true

	res := TrainResult{
		TrainStats: stats,
		VocabSize:  t.vocab.Len(),
		Final:      final,
		Elapsed:    time.Since(start),
	}

	t.logger.Info("training complete",
		"bytes", len(data),
		"vocab_size", res.VocabSize,
		"merges", stats.Merges,
		"stop", stats.StopReason.String(),
		"ms", res.Elapsed.Milliseconds(),
	)

	return res, nil
}

// Trained reports whether Train has run.
func (t *Tokenizer) Trained() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.trained
}

// Vocabulary returns the learned vocabulary. Callers must not use it while
// Train is running.
func (t *Tokenizer) Vocabulary() *Vocabulary {
	return t.vocab
}

// Encode converts text to token codes. Bytes not covered by any merge rule
// are emitted as their raw byte code.
func (t *Tokenizer) Encode(text string) []Code {
	codes, _ := t.EncodeWithStats(text)
	return codes
}

// EncodeWithStats is Encode that also reports pass counts. Cached results
// report zero passes.
func (t *Tokenizer) EncodeWithStats(text string) ([]Code, EncodeStats) {
	if t.cache != nil {
		if cached, ok := t.cache.Get(text); ok {
			return cloneCodes(cached), EncodeStats{}
		}
	}

	codes, stats := encode([]byte(text), t.vocab)
	t.logger.Debug("encode complete",
		"bytes", len(text),
		"tokens", len(codes),
		"passes", stats.Passes,
	)

	if t.cache != nil {
		t.cache.Add(text, cloneCodes(codes))
	}
	return codes, stats
}

// Decode expands codes back into text. If the expanded bytes are not valid
// UTF-8 it returns InvalidTextPlaceholder and an error wrapping
// ErrInvalidText. Codes expanding past the decode limit are rejected with
// ErrDecodeTooLarge before any expansion.
func (t *Tokenizer) Decode(codes []Code) (string, error) {
	return decode(codes, t.vocab, t.decodeLimit())
}

// DecodeBytes expands codes into raw bytes without checking UTF-8.
func (t *Tokenizer) DecodeBytes(codes []Code) ([]byte, error) {
	return decodeBytes(codes, t.vocab, t.decodeLimit())
}

func (t *Tokenizer) decodeLimit() int {
	if t.opts.MaxDecodeBytes == 0 {
		return DefaultMaxDecodeBytes
	}
	return t.opts.MaxDecodeBytes
}

func cloneCodes(src []Code) []Code {
	dst := make([]Code, len(src))
	copy(dst, src)
	return dst
}
