package config

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	FormNone = "none"
	FormNFC  = "nfc"
	FormNFD  = "nfd"
	FormNFKC = "nfkc"
	FormNFKD = "nfkd"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// NormalizeForm canonicalizes a Unicode normal form name. Empty means none.
func NormalizeForm(raw string) (string, error) {
	form := strings.ToLower(strings.TrimSpace(raw))
	if form == "" {
		return FormNone, nil
	}
	switch form {
	case FormNone, FormNFC, FormNFD, FormNFKC, FormNFKD:
		return form, nil
	default:
		return "", fmt.Errorf(
			"invalid normal form %q (expected %s|%s|%s|%s|%s)",
			raw, FormNone, FormNFC, FormNFD, FormNFKC, FormNFKD,
		)
	}
}

// NormalizeFormat canonicalizes a report format name. Empty means text.
func NormalizeFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	if format == "" {
		return FormatText, nil
	}
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return format, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid report format %q (expected %s|%s|%s)", raw, FormatText, FormatJSON, FormatYAML)
	}
}

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}
