package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths    PathsConfig  `mapstructure:"paths"`
	Train    TrainConfig  `mapstructure:"train"`
	Encode   EncodeConfig `mapstructure:"encode"`
	Decode   DecodeConfig `mapstructure:"decode"`
	Text     TextConfig   `mapstructure:"text"`
	Report   ReportConfig `mapstructure:"report"`
	Server   ServerConfig `mapstructure:"server"`
	LogLevel string       `mapstructure:"log_level"`
}

type PathsConfig struct {
	Corpus string `mapstructure:"corpus"`
}

type TrainConfig struct {
	KeepTail  bool `mapstructure:"keep_tail"`
	MaxMerges int  `mapstructure:"max_merges"`
}

type EncodeConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

type DecodeConfig struct {
	MaxBytes int `mapstructure:"max_bytes"`
}

type TextConfig struct {
	Normalize   string `mapstructure:"normalize"`
	LineEndings bool   `mapstructure:"line_endings"`
}

type ReportConfig struct {
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	ListenAddr   string `mapstructure:"listen_addr"`
	MaxTextBytes int    `mapstructure:"max_text_bytes"`
	Workers      int    `mapstructure:"workers"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			Corpus: "training_text.txt",
		},
		Train: TrainConfig{
			KeepTail:  false,
			MaxMerges: 0,
		},
		Encode: EncodeConfig{
			CacheSize: 0,
		},
		Decode: DecodeConfig{
			MaxBytes: 64 << 20,
		},
		Text: TextConfig{
			Normalize:   FormNone,
			LineEndings: false,
		},
		Report: ReportConfig{
			Format: FormatText,
		},
		Server: ServerConfig{
			ListenAddr:   ":8080",
			MaxTextBytes: 1 << 20,
			Workers:      4,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("corpus", defaults.Paths.Corpus, "Training corpus path ('-' for stdin)")
	fs.Bool("keep-tail", defaults.Train.KeepTail, "Use the non-overlapping merge that keeps the final element")
	fs.Int("max-merges", defaults.Train.MaxMerges, "Maximum number of learned merges (0 = unlimited)")
	fs.Int("cache-size", defaults.Encode.CacheSize, "Encode result cache entries (0 = disabled)")
	fs.Int("max-decode-bytes", defaults.Decode.MaxBytes, "Maximum expanded size of a decode")
	fs.String("normalize", defaults.Text.Normalize, "Unicode normal form applied to the corpus: none|nfc|nfd|nfkc|nfkd")
	fs.Bool("line-endings", defaults.Text.LineEndings, "Convert CRLF and CR line endings in the corpus to LF")
	fs.String("format", defaults.Report.Format, "Report format: text|json|yaml")
	fs.String("log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Maximum text size accepted by POST /encode")
	fs.Int("server-workers", defaults.Server.Workers, "Max concurrent encode/decode requests (0 = unlimited)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("BYTEPAIR")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("bytepair")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects values the driver cannot act on.
func (c Config) Validate() error {
	if c.Train.MaxMerges < 0 {
		return fmt.Errorf("max merges must be >= 0, got %d", c.Train.MaxMerges)
	}
	if c.Encode.CacheSize < 0 {
		return fmt.Errorf("cache size must be >= 0, got %d", c.Encode.CacheSize)
	}
	if c.Decode.MaxBytes <= 0 {
		return fmt.Errorf("max decode bytes must be > 0, got %d", c.Decode.MaxBytes)
	}
	if _, err := NormalizeForm(c.Text.Normalize); err != nil {
		return err
	}
	if _, err := NormalizeFormat(c.Report.Format); err != nil {
		return err
	}
	if c.Server.MaxTextBytes <= 0 {
		return fmt.Errorf("server max text bytes must be > 0, got %d", c.Server.MaxTextBytes)
	}
	if c.Server.Workers < 0 {
		return fmt.Errorf("server workers must be >= 0, got %d", c.Server.Workers)
	}
	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.corpus", c.Paths.Corpus)
	v.SetDefault("train.keep_tail", c.Train.KeepTail)
	v.SetDefault("train.max_merges", c.Train.MaxMerges)
	v.SetDefault("encode.cache_size", c.Encode.CacheSize)
	v.SetDefault("decode.max_bytes", c.Decode.MaxBytes)
	v.SetDefault("text.normalize", c.Text.Normalize)
	v.SetDefault("text.line_endings", c.Text.LineEndings)
	v.SetDefault("report.format", c.Report.Format)
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.workers", c.Server.Workers)
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"corpus":           "paths.corpus",
	"keep-tail":        "train.keep_tail",
	"max-merges":       "train.max_merges",
	"cache-size":       "encode.cache_size",
	"max-decode-bytes": "decode.max_bytes",
	"normalize":        "text.normalize",
	"line-endings":     "text.line_endings",
	"format":           "report.format",
	"log-level":        "log_level",

	"server-listen-addr":    "server.listen_addr",
	"server-max-text-bytes": "server.max_text_bytes",
	"server-workers":        "server.workers",
}

// bindFlags binds each known flag to its nested config key so flag values
// override the config file only when set explicitly.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("flag %q: %w", name, err)
		}
	}
	return nil
}
