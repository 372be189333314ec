package tokenizer

// EncodeStats summarizes an encode run.
type EncodeStats struct {
	Passes       int
	Replacements int
}

// encode turns data into codes by applying merge rules from v until a full
// pass finds nothing to merge. Bytes with no rule pass through unchanged.
func encode(data []byte, v *Vocabulary) ([]Code, EncodeStats) {
	seq := bytesToCodes(data)

	var stats EncodeStats
	for {
		stats.Passes++
		replaced := encodePass(seq, v)
		if replaced == 0 {
			break
		}
		stats.Replacements += replaced
		seq = compact(seq)
	}
	return seq, stats
}

// encodePass scans seq once. Each matching position i is marked Deleted and
// i+1 takes the merge code, so the merged code can take part in the next
// comparison of the same pass.
func encodePass(seq []Code, v *Vocabulary) int {
	replaced := 0
	for i := 0; i+1 < len(seq); i++ {
		code, ok := v.CodeFor(Pair{First: seq[i], Second: seq[i+1]})
		if !ok {
			continue
		}
		seq[i] = Deleted
		seq[i+1] = code
		replaced++
	}
	return replaced
}

// compact drops Deleted markers in place.
func compact(seq []Code) []Code {
	out := seq[:0]
	for _, c := range seq {
		if c != Deleted {
			out = append(out, c)
		}
	}
	return out
}

func bytesToCodes(data []byte) []Code {
	seq := make([]Code, len(data))
	for i, b := range data {
		seq[i] = Code(b)
	}
	return seq
}
