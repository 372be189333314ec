package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/go-bytepair/internal/bench"
	"github.com/example/go-bytepair/internal/config"
	"github.com/example/go-bytepair/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var (
		input      string
		runs       int
		cpuprofile string
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark encode and decode latency against a trained vocabulary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1")
			}

			format, err := config.NormalizeFormat(cfg.Report.Format)
			if err != nil {
				return err
			}

			tok, data, err := trainFromCorpus(cfg, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if strings.TrimSpace(input) != "" {
				data = input
			}

			stop, err := bench.StartCPUProfile(cpuprofile)
			if err != nil {
				return err
			}
			results := runBench(cmd.Context(), tok, data, runs)
			if err := stop(); err != nil {
				return fmt.Errorf("stop cpuprofile: %w", err)
			}

			sum := bench.Summarize(results)
			out := cmd.OutOrStdout()
			switch format {
			case config.FormatJSON:
				err = bench.FormatJSON(results, sum, out)
			case config.FormatYAML:
				err = bench.FormatYAML(results, sum, out)
			default:
				bench.FormatTable(results, sum, out)
				fmt.Fprintf(out, "encode throughput: %.2f MiB/s (mean)\n", bench.CalcThroughput(len(data), sum.Encode.Mean))
			}
			if err != nil {
				return err
			}

			if strict {
				return bench.CheckRoundTrip(results)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "text", "", "Text to encode on each run (defaults to the corpus)")
	cmd.Flags().IntVar(&runs, "runs", 5, "Number of encode+decode runs")
	cmd.Flags().StringVar(&cpuprofile, "cpuprofile", "", "Write a CPU profile of the timed runs to this path")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero if any run fails the round trip")

	return cmd
}

// encoderDecoder is the part of the tokenizer the bench loop needs.
type encoderDecoder interface {
	EncodeWithStats(text string) ([]tokenizer.Code, tokenizer.EncodeStats)
	Decode(codes []tokenizer.Code) (string, error)
}

func runBench(ctx context.Context, tok encoderDecoder, data string, runs int) []bench.RunResult {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]bench.RunResult, 0, runs)

	for i := range runs {
		var codes []tokenizer.Code
		encodeDur := bench.Stage(ctx, "encode", func(context.Context) {
			codes, _ = tok.EncodeWithStats(data)
		})

		var (
			decoded string
			err     error
		)
		decodeDur := bench.Stage(ctx, "decode", func(context.Context) {
			decoded, err = tok.Decode(codes)
		})

		results = append(results, bench.RunResult{
			Index:     i,
			Cold:      i == 0,
			Encode:    encodeDur,
			Decode:    decodeDur,
			Tokens:    len(codes),
			RoundTrip: err == nil && decoded == data,
		})
	}

	return results
}
