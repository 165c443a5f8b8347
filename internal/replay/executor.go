package replay

import (
	"context"
	"fmt"
	"log/slog"

	"recomp/internal/backend"
	"recomp/internal/literal"
)

// runLoop executes the computation NumRuns times, strictly sequentially:
// run i+1 never starts before run i's profile is captured. Only the last
// run's result is retained; with PrintResult off, no result is ever
// materialized. The first backend failure aborts the remaining runs.
func runLoop(ctx context.Context, client backend.Client, exe backend.Executable, args []*backend.Handle, opts Options, logger *slog.Logger) (*literal.Literal, error) {
	var result *literal.Literal

	for i := 0; i < opts.NumRuns; i++ {
		cfg := backend.ExecConfig{FetchResult: opts.PrintResult}
		if opts.ProfileLastRun && i == opts.NumRuns-1 {
			cfg.Profile = true
		}

		res, prof, err := client.Execute(ctx, exe, args, cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: run %d of %d: %v", ErrExecution, i+1, opts.NumRuns, err)
		}
		result = res

		logger.Info("execution finished",
			"program", exe.Name(),
			"run", i+1,
			"of", opts.NumRuns,
			"compute_time", prof.ComputeTime,
		)
		for op, d := range prof.OpTimings {
			logger.Debug("op timing", "op", op, "time", d)
		}
	}

	return result, nil
}
