package replay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"recomp/internal/backend"
	"recomp/internal/literal"
	"recomp/internal/snapshot"
)

// feedStopTimeout bounds how long a replay waits for its feed worker
// after the last run. A worker still blocked past this point means the
// caller overshot NumStreamedFeeds relative to what the computation
// consumed; the replay reports that instead of hanging.
const feedStopTimeout = 5 * time.Second

// Replay reconstructs the snapshot's computation, provisions its inputs,
// runs the streaming feed if one is required, executes NumRuns times,
// and returns the outcome. The client is an explicit collaborator shared
// across a batch; Replay never creates or tears one down.
//
// The streaming decision is made before any execution: a program with
// multiple streaming inputs fails here with ErrAmbiguousStreamingSource
// without a single run happening.
func Replay(ctx context.Context, client backend.Client, path string, snap *snapshot.Snapshot, opts Options, logger *slog.Logger) (*Outcome, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	exe, err := client.Load(&snap.Program)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}

	args, err := provisionArguments(client, exe, snap, opts)
	if err != nil {
		return nil, err
	}

	plan, err := PlanFeed(&snap.Program, opts)
	if err != nil {
		return nil, err
	}

	feeder := StartFeeder(ctx, client, plan, opts.NumStreamedFeeds, logger)

	result, runErr := runLoop(ctx, client, exe, args, opts, logger)

	// The worker is cancelled and awaited on every path, success or not.
	if stopErr := feeder.Stop(feedStopTimeout); stopErr != nil {
		if runErr == nil {
			runErr = stopErr
		} else {
			logger.Warn("feed worker error after failed run", "err", stopErr)
		}
	}
	if runErr != nil {
		return nil, runErr
	}

	outcome := &Outcome{Path: path, Program: snap.Program.Name, Result: result}
	if snap.Result != nil {
		expected, err := literal.Decode(*snap.Result)
		if err != nil {
			return nil, fmt.Errorf("recorded expected result: %w", err)
		}
		outcome.Expected = expected
	}

	return outcome, nil
}
