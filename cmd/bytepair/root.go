package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/example/go-bytepair/internal/config"
	"github.com/example/go-bytepair/internal/corpus"
	"github.com/example/go-bytepair/internal/text"
	"github.com/example/go-bytepair/internal/tokenizer"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "bytepair",
		Short:         "Byte-level BPE tokenizer: train, encode, decode",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			setupLogger(loaded.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newBenchCmd())
	cmd.AddCommand(newEncodeCmd())
	cmd.AddCommand(newDecodeCmd())
	cmd.AddCommand(newVocabCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newHealthCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	lvl, err := config.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func requireConfig() (config.Config, error) {
	if activeCfg.Paths.Corpus == "" {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return activeCfg, nil
}

// loadCorpus reads and preprocesses the configured training corpus.
func loadCorpus(cfg config.Config, stdin io.Reader) (string, error) {
	raw, err := corpus.Load(cfg.Paths.Corpus, stdin)
	if err != nil {
		return "", err
	}

	return text.Preprocess(raw, text.PreprocessOptions{
		LineEndings: cfg.Text.LineEndings,
		Form:        cfg.Text.Normalize,
	})
}

func newTokenizer(cfg config.Config) (*tokenizer.Tokenizer, error) {
	return tokenizer.New(tokenizer.Options{
		KeepTail:  cfg.Train.KeepTail,
		MaxMerges: cfg.Train.MaxMerges,
		CacheSize:      cfg.Encode.CacheSize,
		MaxDecodeBytes: cfg.Decode.MaxBytes,
		Logger:         slog.Default(),
	})
}

// trainFromCorpus loads the corpus and returns a tokenizer trained on it.
func trainFromCorpus(cfg config.Config, stdin io.Reader) (*tokenizer.Tokenizer, string, error) {
	data, err := loadCorpus(cfg, stdin)
	if err != nil {
		return nil, "", err
	}

	tok, err := newTokenizer(cfg)
	if err != nil {
		return nil, "", err
	}

	if _, err := tok.Train(data); err != nil {
		return nil, "", fmt.Errorf("train: %w", err)
	}

	return tok, data, nil
}
