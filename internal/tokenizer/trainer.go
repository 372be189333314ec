package tokenizer

import (
	"log/slog"
)

// StopReason records why a training run ended.
type StopReason int

const (
	// StopNoPairs: the working sequence had fewer than two codes.
	StopNoPairs StopReason = iota
	// StopSingletons: every adjacent pair occurred exactly once.
	StopSingletons
	// StopMergeLimit: Trainer.MaxMerges merges were accepted.
	StopMergeLimit
)

func (r StopReason) String() string {
	switch r {
	case StopNoPairs:
		return "no-pairs"
	case StopSingletons:
		return "singletons"
	case StopMergeLimit:
		return "merge-limit"
	default:
		return "unknown"
	}
}

// TrainStats summarizes a training run.
type TrainStats struct {
	Rounds        int
	Merges        int
	InitialLength int
	FinalLength   int
	StopReason    StopReason
}

// Trainer learns merge rules from a code sequence.
type Trainer struct {
	// KeepTail switches the rebuild step to a standard non-overlapping merge
	// that keeps the final element. The default rebuild emits a merge code at
	// every matching position, overlapping ones included, and never emits the
	// last element of the sequence on its own.
	KeepTail bool

	// MaxMerges caps the number of accepted merges. Zero means no cap.
	MaxMerges int

	Logger *slog.Logger
}

// Train repeatedly merges the most frequent adjacent pair of seq, recording
// each merge in v, until no pair occurs more than once. It returns the final
// working sequence. Ties between equally frequent pairs go to the lowest
// First code, then the lowest Second code.
func (t Trainer) Train(seq []Code, v *Vocabulary) ([]Code, TrainStats) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}

	stats := TrainStats{InitialLength: len(seq)}
	for {
		if t.MaxMerges > 0 && stats.Merges >= t.MaxMerges {
			stats.StopReason = StopMergeLimit
			break
		}

		counts := countPairs(seq)
		if len(counts) == 0 {
			stats.StopReason = StopNoPairs
			break
		}

		best, freq := mostFrequent(counts)
		if freq == 1 {
			stats.StopReason = StopSingletons
			break
		}

		code := v.addMerge(best)
		if t.KeepTail {
			seq = mergeKeepTail(seq, best, code)
		} else {
			seq = mergeDropTail(seq, best, code)
		}

		stats.Rounds++
		stats.Merges++
		logger.Debug("merge accepted",
			"code", int64(code),
			"pair", best.String(),
			"count", freq,
			"length", len(seq),
		)
	}

	stats.FinalLength = len(seq)
	return seq, stats
}

// countPairs counts every adjacent ordered pair of seq.
func countPairs(seq []Code) map[Pair]int {
	if len(seq) < 2 {
		return nil
	}
	counts := make(map[Pair]int)
	for i := 0; i+1 < len(seq); i++ {
		counts[Pair{First: seq[i], Second: seq[i+1]}]++
	}
	return counts
}

// mostFrequent returns the pair with the greatest count, breaking ties by
// the lowest pair. counts must be non-empty.
func mostFrequent(counts map[Pair]int) (Pair, int) {
	var (
		best  Pair
		freq  int
		found bool
	)
	for p, n := range counts {
		if !found || n > freq || (n == freq && p.less(best)) {
			best, freq, found = p, n, true
		}
	}
	return best, freq
}

// mergeDropTail rebuilds seq over positions 0..len-2, emitting code where
// (seq[i], seq[i+1]) == p and seq[i] otherwise. The final element is only
// represented through a match at len-2.
func mergeDropTail(seq []Code, p Pair, code Code) []Code {
	if len(seq) < 2 {
		return seq[:0]
	}
	out := make([]Code, 0, len(seq)-1)
	for i := 0; i+1 < len(seq); i++ {
		if seq[i] == p.First && seq[i+1] == p.Second {
			out = append(out, code)
		} else {
			out = append(out, seq[i])
		}
	}
	return out
}

// mergeKeepTail replaces non-overlapping occurrences of p left to right.
func mergeKeepTail(seq []Code, p Pair, code Code) []Code {
	out := make([]Code, 0, len(seq))
	for i := 0; i < len(seq); i++ {
		if i+1 < len(seq) && seq[i] == p.First && seq[i+1] == p.Second {
			out = append(out, code)
			i++
			continue
		}
		out = append(out, seq[i])
	}
	return out
}
