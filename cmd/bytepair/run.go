package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/example/go-bytepair/internal/bench"
	"github.com/example/go-bytepair/internal/config"
	"github.com/example/go-bytepair/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		cpuprofile string
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Train on the corpus, encode and decode it, and report statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			format, err := config.NormalizeFormat(cfg.Report.Format)
			if err != nil {
				return err
			}

			stop, err := bench.StartCPUProfile(cpuprofile)
			if err != nil {
				return err
			}

			report, err := runPipeline(cmd.Context(), cfg, cmd.InOrStdin())
			stopErr := stop()
			if err != nil {
				return err
			}
			if stopErr != nil {
				return fmt.Errorf("stop cpuprofile: %w", stopErr)
			}

			if err := report.Write(cmd.OutOrStdout(), format); err != nil {
				return err
			}

			if strict && !report.RoundTrip {
				return fmt.Errorf("round trip failed for %s", report.Corpus)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cpuprofile, "cpuprofile", "", "Write a CPU profile to this path")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero if decode(encode(corpus)) differs from the corpus")

	return cmd
}

// runPipeline trains on the configured corpus, then encodes and decodes the
// same text. A decode failure is recorded in the report, not returned.
func runPipeline(ctx context.Context, cfg config.Config, stdin io.Reader) (bench.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := loadCorpus(cfg, stdin)
	if err != nil {
		return bench.Report{}, err
	}

	// Encoded corpus always expands back to len(data) bytes.
	cfg.Decode.MaxBytes = max(cfg.Decode.MaxBytes, len(data))

	tok, err := newTokenizer(cfg)
	if err != nil {
		return bench.Report{}, err
	}

	var (
		trained  tokenizer.TrainResult
		trainErr error
	)
	trainDur := bench.Stage(ctx, "train", func(context.Context) {
		trained, trainErr = tok.Train(data)
	})
	if trainErr != nil {
		return bench.Report{}, fmt.Errorf("train: %w", trainErr)
	}

	var codes []tokenizer.Code
	encodeDur := bench.Stage(ctx, "encode", func(context.Context) {
		codes = tok.Encode(data)
	})

	var (
		decoded   string
		decodeErr error
	)
	decodeDur := bench.Stage(ctx, "decode", func(context.Context) {
		decoded, decodeErr = tok.Decode(codes)
	})

	report := bench.Report{
		Corpus:         cfg.Paths.Corpus,
		InputBytes:     len(data),
		InputChars:     utf8.RuneCountInString(data),
		TrainMS:        float64(trainDur.Microseconds()) / 1000,
		EncodeMS:       float64(encodeDur.Microseconds()) / 1000,
		DecodeMS:       float64(decodeDur.Microseconds()) / 1000,
		VocabSize:      trained.VocabSize,
		Merges:         trained.Merges,
		StopReason:     trained.StopReason.String(),
		TokenCount:     len(codes),
		CompressionPct: bench.CompressionRatio(len(data), len(codes)),
		RoundTrip:      decodeErr == nil && decoded == data,
	}
	if decodeErr != nil {
		report.DecodeError = decodeErr.Error()
		slog.Warn("decode failed", "error", decodeErr, "placeholder", decoded)
	}

	return report, nil
}
