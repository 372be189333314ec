// Package bench provides timing and reporting primitives for the bytepair
// run and bench commands.
package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Run result and stats
// ---------------------------------------------------------------------------

// RunResult holds the timings of one encode+decode run.
type RunResult struct {
	Index     int
	Cold      bool // true for the first run
	Encode    time.Duration
	Decode    time.Duration
	Tokens    int
	RoundTrip bool
}

// Stats holds aggregate timing statistics across all runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// Summary aggregates encode and decode timings separately.
type Summary struct {
	Encode Stats
	Decode Stats
}

// ComputeStats calculates min, max and mean over a slice of durations.
// The slice must be non-empty.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// Summarize computes encode and decode stats over runs.
func Summarize(runs []RunResult) Summary {
	enc := make([]time.Duration, len(runs))
	dec := make([]time.Duration, len(runs))
	for i, r := range runs {
		enc[i] = r.Encode
		dec[i] = r.Decode
	}
	return Summary{Encode: ComputeStats(enc), Decode: ComputeStats(dec)}
}

// ---------------------------------------------------------------------------
// Ratios
// ---------------------------------------------------------------------------

// CompressionRatio returns (1 - tokens/bytes) * 100.
// Returns 0 if bytes is zero.
func CompressionRatio(bytes, tokens int) float64 {
	if bytes <= 0 {
		return 0
	}
	return (1 - float64(tokens)/float64(bytes)) * 100
}

// CalcThroughput returns bytes processed per second in MiB.
// Returns 0 if d is zero.
func CalcThroughput(bytes int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(bytes) / (1 << 20) / d.Seconds()
}

// CheckRoundTrip returns an error naming the first run whose decoded text
// did not match the input.
func CheckRoundTrip(runs []RunResult) error {
	for _, r := range runs {
		if !r.RoundTrip {
			return fmt.Errorf("run %d: decoded text does not match input", r.Index+1)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Output formatters
// ---------------------------------------------------------------------------

// FormatTable writes a human-readable ASCII table of bench results to w.
func FormatTable(runs []RunResult, sum Summary, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-5s  %-5s  %12s  %12s  %8s  %5s\n", "Run", "Cold", "Encode(ms)", "Decode(ms)", "Tokens", "OK")
	fmt.Fprintln(sb, strings.Repeat("-", 58))

	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		ok := "no"
		if r.RoundTrip {
			ok = "yes"
		}
		fmt.Fprintf(sb, "%-5d  %-5s  %12.3f  %12.3f  %8d  %5s\n",
			r.Index+1,
			cold,
			millis(r.Encode),
			millis(r.Decode),
			r.Tokens,
			ok,
		)
	}

	fmt.Fprintln(sb, strings.Repeat("-", 58))
	fmt.Fprintf(sb, "%-5s  %-5s  %12.3f  %12.3f  (min)\n", "", "", millis(sum.Encode.Min), millis(sum.Decode.Min))
	fmt.Fprintf(sb, "%-5s  %-5s  %12.3f  %12.3f  (mean)\n", "", "", millis(sum.Encode.Mean), millis(sum.Decode.Mean))
	fmt.Fprintf(sb, "%-5s  %-5s  %12.3f  %12.3f  (max)\n", "", "", millis(sum.Encode.Max), millis(sum.Decode.Max))

	fmt.Fprint(w, sb.String())
}

// benchReport is the top-level structure emitted by FormatJSON and FormatYAML.
type benchReport struct {
	Runs  []benchRun `json:"runs" yaml:"runs"`
	Stats benchStats `json:"stats" yaml:"stats"`
}

type benchRun struct {
	Index     int     `json:"index" yaml:"index"`
	Cold      bool    `json:"cold" yaml:"cold"`
	EncodeMS  float64 `json:"encode_ms" yaml:"encode_ms"`
	DecodeMS  float64 `json:"decode_ms" yaml:"decode_ms"`
	Tokens    int     `json:"tokens" yaml:"tokens"`
	RoundTrip bool    `json:"round_trip" yaml:"round_trip"`
}

type benchStats struct {
	EncodeMinMS  float64 `json:"encode_min_ms" yaml:"encode_min_ms"`
	EncodeMeanMS float64 `json:"encode_mean_ms" yaml:"encode_mean_ms"`
	EncodeMaxMS  float64 `json:"encode_max_ms" yaml:"encode_max_ms"`
	DecodeMinMS  float64 `json:"decode_min_ms" yaml:"decode_min_ms"`
	DecodeMeanMS float64 `json:"decode_mean_ms" yaml:"decode_mean_ms"`
	DecodeMaxMS  float64 `json:"decode_max_ms" yaml:"decode_max_ms"`
}

func newBenchReport(runs []RunResult, sum Summary) benchReport {
	br := benchReport{
		Runs: make([]benchRun, len(runs)),
		Stats: benchStats{
			EncodeMinMS:  millis(sum.Encode.Min),
			EncodeMeanMS: millis(sum.Encode.Mean),
			EncodeMaxMS:  millis(sum.Encode.Max),
			DecodeMinMS:  millis(sum.Decode.Min),
			DecodeMeanMS: millis(sum.Decode.Mean),
			DecodeMaxMS:  millis(sum.Decode.Max),
		},
	}
	for i, r := range runs {
		br.Runs[i] = benchRun{
			Index:     r.Index,
			Cold:      r.Cold,
			EncodeMS:  millis(r.Encode),
			DecodeMS:  millis(r.Decode),
			Tokens:    r.Tokens,
			RoundTrip: r.RoundTrip,
		}
	}
	return br
}

// FormatJSON writes a JSON report of bench results to w.
func FormatJSON(runs []RunResult, sum Summary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newBenchReport(runs, sum))
}

// FormatYAML writes a YAML report of bench results to w.
func FormatYAML(runs []RunResult, sum Summary, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newBenchReport(runs, sum)); err != nil {
		return err
	}
	return enc.Close()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
