// Package corpus loads training text for the tokenizer.
package corpus

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// ErrNotFound is returned when the corpus path does not exist.
var ErrNotFound = errors.New("corpus not found")

// StdinPath selects standard input as the corpus source.
const StdinPath = "-"

// Load reads the corpus at path. StdinPath reads from stdin instead.
func Load(path string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}

	if path == StdinPath {
		if stdin == nil {
			return "", fmt.Errorf("%w: no stdin", ErrNotFound)
		}
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("read corpus %s: %w", path, err)
	}
	return string(b), nil
}
