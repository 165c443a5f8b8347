// Command recomp replays captured computation snapshots and shows the
// results on the command line.
//
// Usage: recomp [flags] snapshot-file...
//
// Each snapshot file holds a captured computation: its program, the
// argument values recorded at capture time, and optionally the result it
// produced. Computations that require arguments can be replayed with
// fake data via --use-fake-data; otherwise the recorded arguments are
// used.
//
// The output format per file is:
//
//	file_path: program_name :: shape:values
//	was shape:values            (when an expected result was recorded)
//
// Files are processed independently: a failing file prints an error line
// and the batch continues, but the exit status is non-zero if any file
// failed.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"recomp/internal/backend"
	"recomp/internal/baseline"
	"recomp/internal/cli"
	"recomp/internal/config"
	"recomp/internal/drift"
	"recomp/internal/execid"
	"recomp/internal/replay"
	"recomp/internal/shape"
	"recomp/internal/snapshot"
)

func main() {
	exitCode := run(os.Args[1:], os.Environ(), os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

// run orchestrates the full batch replay flow.
// It returns an exit code (0 for success, non-zero for failure).
// This function is separated from main() to enable testing.
func run(args []string, environ []string, stdout, stderr io.Writer) int {
	cmd, err := cli.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	cfg, err := config.Load(environ)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: config.ParseLevel(cfg.LogLevel),
	}))

	opts, err := buildOptions(cmd, cfg)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	// One engine connection for the whole batch, torn down at the end.
	client := backend.NewLocal(cfg.InfeedCapacity)
	defer client.Close()

	baselineDir := cfg.BaselineDir
	if baselineDir == "" {
		baselineDir = baseline.DefaultDir()
	}

	ctx := context.Background()
	exitCode := 0

	for _, path := range cmd.Files {
		snap, err := snapshot.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			exitCode = 1
			continue
		}

		outcome, err := replay.Replay(ctx, client, path, snap, opts, logger)
		if err != nil {
			fmt.Fprintf(stderr, "%s: error: %v\n", path, err)
			exitCode = 1
			continue
		}

		if cmd.JSONOutput {
			out, err := outcome.FormatJSON()
			if err != nil {
				fmt.Fprintf(stderr, "%s: error: %v\n", path, err)
				exitCode = 1
				continue
			}
			fmt.Fprintln(stdout, out)
		} else if report := outcome.Report(); report != "" {
			fmt.Fprintln(stdout, report)
		}

		if err := handleIdentity(cmd, baselineDir, snap, outcome, opts, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "%s: error: %v\n", path, err)
			exitCode = 1
		}
	}

	return exitCode
}

// defaultOptionsFile is picked up from the working directory when no
// options file is named by flag or environment.
const defaultOptionsFile = "recomp.yaml"

// buildOptions layers replay options: built-in defaults, then the YAML
// options file (if one is configured and exists), then CLI flags.
func buildOptions(cmd cli.Command, cfg config.Config) (replay.Options, error) {
	opts := replay.DefaultOptions()

	optionsPath := cmd.OptionsPath
	if optionsPath == "" {
		optionsPath = cfg.OptionsPath
	}
	if optionsPath == "" {
		if _, err := os.Stat(defaultOptionsFile); err == nil {
			optionsPath = defaultOptionsFile
		}
	}
	if optionsPath != "" {
		var err error
		opts, err = config.LoadOptions(optionsPath, opts)
		if err != nil {
			return replay.Options{}, err
		}
	}

	if cmd.UseFakeData != nil {
		opts.UseSyntheticInputs = *cmd.UseFakeData
	}
	if cmd.PrintResult != nil {
		opts.PrintResult = *cmd.PrintResult
	}
	if cmd.NumRuns != nil {
		opts.NumRuns = *cmd.NumRuns
	}
	if cmd.NumInfeeds != nil {
		opts.NumStreamedFeeds = *cmd.NumInfeeds
	}
	if cmd.FakeInfeedShape != nil {
		s, err := shape.Parse(*cmd.FakeInfeedShape)
		if err != nil {
			return replay.Options{}, fmt.Errorf("--fake-infeed-shape: %w", err)
		}
		opts.StreamShapeOverride = &s
	}
	if cmd.GenerateFakeInfeed != nil {
		opts.InferStreamShape = *cmd.GenerateFakeInfeed
	}
	if cmd.ProfileLastRun != nil {
		opts.ProfileLastRun = *cmd.ProfileLastRun
	}

	return opts, nil
}

// handleIdentity prints the replay fingerprint and saves or compares
// baselines, per the identity-related flags.
func handleIdentity(cmd cli.Command, baselineDir string, snap *snapshot.Snapshot, outcome *replay.Outcome, opts replay.Options, stdout, stderr io.Writer) error {
	if !cmd.ExecutionID && cmd.Baseline == "" && cmd.DetectDrift == "" {
		return nil
	}

	id, err := execid.Compute(snap.Digest(), opts)
	if err != nil {
		return fmt.Errorf("cannot compute execution identity: %w", err)
	}

	if cmd.ExecutionID {
		fmt.Fprintln(stdout, id.Short())
	}

	if cmd.Baseline == "" && cmd.DetectDrift == "" {
		return nil
	}

	if outcome.Result == nil {
		// Baselines record the final result; without result retrieval
		// there is nothing to save or compare.
		fmt.Fprintln(stderr, "Warning: baselines need --print-result; skipping")
		return nil
	}

	current := baseline.Baseline{
		Name:           cmd.Baseline,
		ExecutionID:    id.Short(),
		SnapshotDigest: snap.Digest(),
		ResultShape:    outcome.Result.Shape.String(),
		ResultText:     outcome.Result.String(),
		Timestamp:      time.Now().UTC(),
	}

	store := baseline.NewStore(baselineDir)

	if cmd.DetectDrift != "" {
		b, err := store.Load(cmd.DetectDrift)
		if err == nil {
			report := drift.Detect(b, current)
			if report.HasDrift {
				// Drift is warnings only, never a failure.
				if cmd.DriftJSON {
					out, err := drift.FormatJSON(report)
					if err != nil {
						fmt.Fprintf(stderr, "Error: cannot format drift report: %v\n", err)
					} else {
						fmt.Fprintln(stderr, out)
					}
				} else {
					fmt.Fprint(stderr, drift.FormatCLI(report))
				}
			}
		}
		// Baseline not found: silently continue.
	}

	if cmd.Baseline != "" {
		if err := store.Save(current); err != nil {
			return fmt.Errorf("cannot save baseline: %w", err)
		}
	}

	return nil
}
