package main

import (
	"errors"
	"fmt"

	"github.com/example/go-bytepair/internal/doctor"
	"github.com/example/go-bytepair/internal/tokenizer"
	"github.com/spf13/cobra"
)

// selfTestText exercises overlapping runs and multibyte characters.
const selfTestText = "aaaabcdeaaaaghi café naïve résumé"

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the corpus and configuration before training",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			result := doctor.Run(doctor.Config{
				CorpusPath: cfg.Paths.Corpus,
				ReadCorpus: func() (string, error) { return loadCorpus(cfg, cmd.InOrStdin()) },
				NormalForm: cfg.Text.Normalize,
				SelfTest:   func() error { return selfTest(selfTestText) },
			}, cmd.OutOrStdout())

			if result.Failed() {
				return fmt.Errorf("doctor: %d check(s) failed", len(result.Failures()))
			}
			return nil
		},
	}
}

// selfTest trains a fresh tokenizer on sample and checks that encoding then
// decoding reproduces it.
func selfTest(sample string) error {
	tok, err := tokenizer.New(tokenizer.Options{})
	if err != nil {
		return err
	}

	if _, err := tok.Train(sample); err != nil {
		return err
	}

	got, err := tok.Decode(tok.Encode(sample))
	if err != nil {
		return err
	}

	if got != sample {
		return errors.New("decoded text differs from input")
	}
	return nil
}
