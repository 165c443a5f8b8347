// Package cli parses the replay tool's command line. Option flags are
// tracked as pointers so the caller can tell "flag not given" apart from
// "flag given with the default value" when layering flags over an
// options file.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoFiles is returned when no snapshot files are provided.
var ErrNoFiles = errors.New("no snapshot files: usage: recomp [flags] <snapshot-file>...")

// ErrMissingFlagValue is returned when a flag requires a value but none is provided.
var ErrMissingFlagValue = errors.New("flag requires a value")

// ErrUnknownFlag is returned for an unrecognized flag.
var ErrUnknownFlag = errors.New("unknown flag")

// Command represents the parsed CLI input.
type Command struct {
	// Replay option overrides. Nil means the flag was not given.
	UseFakeData        *bool   // --use-fake-data
	PrintResult        *bool   // --print-result[=BOOL]
	NumRuns            *int    // --num-runs N
	NumInfeeds         *int    // --num-infeeds N
	FakeInfeedShape    *string // --fake-infeed-shape SHAPE
	GenerateFakeInfeed *bool   // --generate-fake-infeed
	ProfileLastRun     *bool   // --profile-last-run

	// Tool flags.
	OptionsPath string // --options <path>
	Baseline    string // --baseline <name>
	DetectDrift string // --detect-drift <name>
	DriftJSON   bool   // --drift-json
	ExecutionID bool   // --execution-id
	JSONOutput  bool   // --json

	// Files are the snapshot files to replay, in order.
	Files []string
}

// ParseArgs parses CLI arguments into a Command.
// It expects args to be os.Args[1:] (excluding the program name).
// Returns an error if no snapshot files are provided.
func ParseArgs(args []string) (Command, error) {
	var cmd Command

	i := 0
	for i < len(args) {
		arg := args[i]

		if !strings.HasPrefix(arg, "--") {
			// Not a flag: everything from here on is a snapshot file.
			cmd.Files = append(cmd.Files, args[i:]...)
			break
		}

		flagName := strings.TrimPrefix(arg, "--")

		// Support --flag=value form for boolean flags.
		var inlineValue string
		hasInline := false
		if idx := strings.Index(flagName, "="); idx != -1 {
			inlineValue = flagName[idx+1:]
			flagName = flagName[:idx]
			hasInline = true
		}

		switch flagName {
		case "use-fake-data":
			b, err := parseBoolFlag(flagName, inlineValue, hasInline)
			if err != nil {
				return Command{}, err
			}
			cmd.UseFakeData = &b
		case "print-result":
			b, err := parseBoolFlag(flagName, inlineValue, hasInline)
			if err != nil {
				return Command{}, err
			}
			cmd.PrintResult = &b
		case "generate-fake-infeed":
			b, err := parseBoolFlag(flagName, inlineValue, hasInline)
			if err != nil {
				return Command{}, err
			}
			cmd.GenerateFakeInfeed = &b
		case "profile-last-run":
			b, err := parseBoolFlag(flagName, inlineValue, hasInline)
			if err != nil {
				return Command{}, err
			}
			cmd.ProfileLastRun = &b
		case "num-runs":
			n, advance, err := intFlagValue(flagName, inlineValue, hasInline, args, i)
			if err != nil {
				return Command{}, err
			}
			i += advance
			cmd.NumRuns = &n
		case "num-infeeds":
			n, advance, err := intFlagValue(flagName, inlineValue, hasInline, args, i)
			if err != nil {
				return Command{}, err
			}
			i += advance
			cmd.NumInfeeds = &n
		case "fake-infeed-shape":
			v, advance, err := stringFlagValue(flagName, inlineValue, hasInline, args, i)
			if err != nil {
				return Command{}, err
			}
			i += advance
			cmd.FakeInfeedShape = &v
		case "options":
			v, advance, err := stringFlagValue(flagName, inlineValue, hasInline, args, i)
			if err != nil {
				return Command{}, err
			}
			i += advance
			cmd.OptionsPath = v
		case "baseline":
			v, advance, err := stringFlagValue(flagName, inlineValue, hasInline, args, i)
			if err != nil {
				return Command{}, err
			}
			i += advance
			cmd.Baseline = v
		case "detect-drift":
			v, advance, err := stringFlagValue(flagName, inlineValue, hasInline, args, i)
			if err != nil {
				return Command{}, err
			}
			i += advance
			cmd.DetectDrift = v
		case "drift-json":
			cmd.DriftJSON = true
		case "execution-id":
			cmd.ExecutionID = true
		case "json":
			cmd.JSONOutput = true
		default:
			return Command{}, fmt.Errorf("%w: --%s", ErrUnknownFlag, flagName)
		}
		i++
	}

	if len(cmd.Files) == 0 {
		return Command{}, ErrNoFiles
	}

	return cmd, nil
}

// parseBoolFlag handles a boolean flag: bare form means true, inline
// form parses the value.
func parseBoolFlag(name, inline string, hasInline bool) (bool, error) {
	if !hasInline {
		return true, nil
	}
	b, err := strconv.ParseBool(inline)
	if err != nil {
		return false, fmt.Errorf("--%s: invalid boolean %q", name, inline)
	}
	return b, nil
}

// stringFlagValue returns a flag's value from inline form or the next
// argument, plus how many extra args were consumed.
func stringFlagValue(name, inline string, hasInline bool, args []string, i int) (string, int, error) {
	if hasInline {
		return inline, 0, nil
	}
	if i+1 >= len(args) {
		return "", 0, fmt.Errorf("--%s: %w", name, ErrMissingFlagValue)
	}
	return args[i+1], 1, nil
}

// intFlagValue is stringFlagValue plus integer parsing.
func intFlagValue(name, inline string, hasInline bool, args []string, i int) (int, int, error) {
	v, advance, err := stringFlagValue(name, inline, hasInline, args, i)
	if err != nil {
		return 0, 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, 0, fmt.Errorf("--%s: invalid integer %q", name, v)
	}
	return n, advance, nil
}
