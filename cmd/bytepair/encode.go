package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/go-bytepair/internal/config"
	"github.com/example/go-bytepair/internal/corpus"
	"github.com/example/go-bytepair/internal/text"
	"github.com/example/go-bytepair/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Train on the corpus and print the token codes for a text",
		Long: "Train on the corpus and print the token codes for --text, or for stdin " +
			"when --text is empty. When the corpus itself is read from stdin, the corpus is encoded.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tok, data, err := trainFromCorpus(cfg, cmd.InOrStdin())
			if err != nil {
				return err
			}

			switch {
			case input != "":
				data, err = prepareInput(cfg, input)
			case cfg.Paths.Corpus != corpus.StdinPath:
				var raw []byte

				raw, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}

				data, err = prepareInput(cfg, string(raw))
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), formatCodes(tok.Encode(data)))
			return err
		},
	}

	cmd.Flags().StringVar(&input, "text", "", "Text to encode (defaults to stdin)")

	return cmd
}

// prepareInput trims s and applies the corpus preprocessing so encoded text
// sees the same bytes the vocabulary was trained on.
func prepareInput(cfg config.Config, s string) (string, error) {
	s, err := text.Normalize(s)
	if err != nil {
		return "", err
	}

	return text.Preprocess(s, text.PreprocessOptions{
		LineEndings: cfg.Text.LineEndings,
		Form:        cfg.Text.Normalize,
	})
}

// formatCodes renders codes as space-separated decimal integers.
func formatCodes(codes []tokenizer.Code) string {
	var sb strings.Builder
	for i, c := range codes {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatInt(int64(c), 10))
	}
	return sb.String()
}
