package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/example/go-bytepair/internal/corpus"
	"github.com/example/go-bytepair/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [code...]",
		Short: "Train on the corpus and decode token codes back to text",
		Long: "Train on the corpus and decode the given codes. With no arguments, " +
			"whitespace-separated codes are read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if len(args) == 0 && cfg.Paths.Corpus == corpus.StdinPath {
				return errors.New("decode needs codes as arguments when the corpus is read from stdin")
			}

			tok, _, err := trainFromCorpus(cfg, cmd.InOrStdin())
			if err != nil {
				return err
			}

			fields := args
			if len(fields) == 0 {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				fields = strings.Fields(string(raw))
			}

			codes, err := parseCodes(fields)
			if err != nil {
				return err
			}

			out, err := tok.Decode(codes)
			if errors.Is(err, tokenizer.ErrDecodeTooLarge) {
				return err
			}
			if err != nil {
				slog.Warn("decode failed", "error", err, "codes", len(codes))
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	return cmd
}

// parseCodes converts decimal strings to codes. Negative values are
// rejected.
func parseCodes(fields []string) ([]tokenizer.Code, error) {
	codes := make([]tokenizer.Code, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid code %q: %w", f, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid code %q: must be non-negative", f)
		}
		codes = append(codes, tokenizer.Code(n))
	}
	return codes, nil
}
