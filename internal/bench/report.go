package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Report is the outcome of a train -> encode -> decode run.
type Report struct {
	Corpus         string  `json:"corpus" yaml:"corpus"`
	InputBytes     int     `json:"input_bytes" yaml:"input_bytes"`
	InputChars     int     `json:"input_chars" yaml:"input_chars"`
	TrainMS        float64 `json:"train_ms" yaml:"train_ms"`
	EncodeMS       float64 `json:"encode_ms" yaml:"encode_ms"`
	DecodeMS       float64 `json:"decode_ms" yaml:"decode_ms"`
	VocabSize      int     `json:"vocab_size" yaml:"vocab_size"`
	Merges         int     `json:"merges" yaml:"merges"`
	StopReason     string  `json:"stop_reason" yaml:"stop_reason"`
	TokenCount     int     `json:"token_count" yaml:"token_count"`
	CompressionPct float64 `json:"compression_pct" yaml:"compression_pct"`
	RoundTrip      bool    `json:"round_trip" yaml:"round_trip"`
	DecodeError    string  `json:"decode_error,omitempty" yaml:"decode_error,omitempty"`
}

// Write renders r to w in the named format: text, json or yaml.
func (r Report) Write(w io.Writer, format string) error {
	switch format {
	case "", "text":
		return r.WriteText(w)
	case "json":
		return r.WriteJSON(w)
	case "yaml":
		return r.WriteYAML(w)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// WriteText writes the sectioned console report.
func (r Report) WriteText(w io.Writer) error {
	sb := &strings.Builder{}
	rule := strings.Repeat("=", 70)

	fmt.Fprintln(sb, rule)
	fmt.Fprintf(sb, "INPUT: %s\n", r.Corpus)
	fmt.Fprintf(sb, "       Length: %d characters, %d bytes\n", r.InputChars, r.InputBytes)

	fmt.Fprintln(sb, "\n--- TRAINING ---")
	fmt.Fprintf(sb, "train took %.4f seconds\n", r.TrainMS/1000)
	fmt.Fprintf(sb, "Vocabulary size: %d tokens\n", r.VocabSize)
	fmt.Fprintf(sb, "Learned merges: %d (stop: %s)\n", r.Merges, r.StopReason)

	fmt.Fprintln(sb, "\n--- ENCODING ---")
	fmt.Fprintf(sb, "encode took %.4f seconds\n", r.EncodeMS/1000)
	fmt.Fprintf(sb, "Token count: %d\n", r.TokenCount)
	fmt.Fprintf(sb, "Compression: %.1f%% (%d bytes -> %d tokens)\n", r.CompressionPct, r.InputBytes, r.TokenCount)

	fmt.Fprintln(sb, "\n--- DECODING ---")
	fmt.Fprintf(sb, "decode took %.4f seconds\n", r.DecodeMS/1000)
	if r.DecodeError != "" {
		fmt.Fprintf(sb, "Decode error: %s\n", r.DecodeError)
	}

	fmt.Fprintln(sb, "\n--- RESULT ---")
	if r.RoundTrip {
		fmt.Fprintln(sb, "SUCCESS: Input matches output")
	} else {
		fmt.Fprintln(sb, "FAILED: Input does not match output")
	}
	fmt.Fprintln(sb, rule)

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteJSON writes r as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML writes r as YAML.
func (r Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}
