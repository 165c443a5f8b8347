// Package replay reconstructs a captured computation from its snapshot,
// provisions inputs (recorded or synthetic), optionally runs a
// background streaming feed, executes the computation against a backend
// client, and reports the final result.
package replay

import (
	"fmt"

	"recomp/internal/shape"
)

// Options configures one replay invocation. Immutable for its duration.
type Options struct {
	// UseSyntheticInputs replaces the snapshot's recorded arguments with
	// generated fake values.
	UseSyntheticInputs bool `json:"useSyntheticInputs"`

	// PrintResult controls whether the result value is fetched from the
	// engine. When false no result is materialized on any run.
	PrintResult bool `json:"printResult"`

	// NumRuns is how many times to execute the computation. Must be >= 1.
	// Only the last run's result is retained.
	NumRuns int `json:"numRuns"`

	// NumStreamedFeeds is how many values the feed worker pushes into the
	// streaming input channel. The caller owns choosing this correctly:
	// too few and the computation hangs waiting for input, too many and
	// the worker blocks on unconsumed values until the replay gives up
	// waiting for it.
	NumStreamedFeeds int `json:"numStreamedFeeds"`

	// StreamShapeOverride, when non-nil, forces streaming with values of
	// this shape. Takes precedence over InferStreamShape.
	StreamShapeOverride *shape.Shape `json:"streamShapeOverride,omitempty"`

	// InferStreamShape scans the program for a streaming input operation
	// and, if exactly one exists, feeds values of its declared shape.
	InferStreamShape bool `json:"inferStreamShape"`

	// ProfileLastRun turns on detailed profiling for the final run only.
	ProfileLastRun bool `json:"profileLastRun"`
}

// DefaultOptions returns the built-in option defaults.
func DefaultOptions() Options {
	return Options{
		PrintResult:      true,
		NumRuns:          1,
		NumStreamedFeeds: 10,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.NumRuns < 1 {
		return fmt.Errorf("num runs must be >= 1, got %d", o.NumRuns)
	}
	if o.NumStreamedFeeds < 0 {
		return fmt.Errorf("num streamed feeds must be >= 0, got %d", o.NumStreamedFeeds)
	}
	return nil
}
