package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/example/go-bytepair/internal/config"
	"github.com/example/go-bytepair/internal/tokenizer"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type vocabRow struct {
	Code      int64  `json:"code"                yaml:"code"`
	Kind      string `json:"kind"                yaml:"kind"`
	First     *int64 `json:"first,omitempty"     yaml:"first,omitempty"`
	Second    *int64 `json:"second,omitempty"    yaml:"second,omitempty"`
	Length    int    `json:"length"              yaml:"length"`
	Text      string `json:"text"                yaml:"text"`
	Truncated bool   `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

func newVocabCmd() *cobra.Command {
	var (
		all     bool
		maxText int
	)

	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Train on the corpus and list the learned vocabulary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			format, err := config.NormalizeFormat(cfg.Report.Format)
			if err != nil {
				return err
			}

			tok, _, err := trainFromCorpus(cfg, cmd.InOrStdin())
			if err != nil {
				return err
			}

			rows, err := vocabRows(tok.Vocabulary(), all, maxText)
			if err != nil {
				return err
			}

			return writeVocab(cmd.OutOrStdout(), rows, format)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include the seeded byte entries, not only merges")
	cmd.Flags().IntVar(&maxText, "max-text", 64, "Show at most this many bytes of each expansion")

	return cmd
}

// vocabRows lists the vocabulary with each expansion cut to maxText bytes.
// Overlapping merges can make expansions exponentially long, so rows carry
// the full length and only a prefix of the text.
func vocabRows(v *tokenizer.Vocabulary, all bool, maxText int) ([]vocabRow, error) {
	if maxText < 1 {
		maxText = 1
	}

	var rows []vocabRow

	for _, code := range v.Codes() {
		e, _ := v.Lookup(code)
		if !e.IsPair() && !all {
			continue
		}

		prefix, err := v.ExpandPrefix(code, maxText)
		if err != nil {
			return nil, err
		}

		length, _ := v.ExpandedLen(code)

		row := vocabRow{
			Code:      int64(code),
			Kind:      e.Kind.String(),
			Length:    length,
			Text:      string(prefix),
			Truncated: length > len(prefix),
		}
		if e.IsPair() {
			first, second := int64(e.Pair.First), int64(e.Pair.Second)
			row.First, row.Second = &first, &second
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func writeVocab(w io.Writer, rows []vocabRow, format string) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Code\tKind\tPair\tLength\tText")

	for _, r := range rows {
		pair := "-"
		if r.First != nil {
			pair = fmt.Sprintf("(%d, %d)", *r.First, *r.Second)
		}
		text := strconv.Quote(r.Text)
		if r.Truncated {
			text += "..."
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", r.Code, r.Kind, pair, r.Length, text)
	}

	return tw.Flush()
}
