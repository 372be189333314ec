package bench

import (
	"context"
	"fmt"
	"os"
	"runtime/pprof"
	"time"
)

// Stage runs fn under the pprof label stage=name and returns its duration.
func Stage(ctx context.Context, name string, fn func(context.Context)) time.Duration {
	var d time.Duration
	pprof.Do(ctx, pprof.Labels("stage", name), func(ctx context.Context) {
		start := time.Now()
		fn(ctx)
		d = time.Since(start)
	})
	return d
}

// StartCPUProfile writes a CPU profile to path until the returned stop
// function is called. An empty path disables profiling.
func StartCPUProfile(path string) (func() error, error) {
	if path == "" {
		return func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create cpuprofile: %w", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("start cpuprofile: %w", err)
	}

	return func() error {
		pprof.StopCPUProfile()
		return f.Close()
	}, nil
}
