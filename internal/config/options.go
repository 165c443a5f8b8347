package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"recomp/internal/replay"
	"recomp/internal/shape"
)

// optionsFile is the YAML options file structure. Pointer fields so that
// absent keys leave the base options untouched.
type optionsFile struct {
	UseFakeData      *bool   `yaml:"use_fake_data"`
	PrintResult      *bool   `yaml:"print_result"`
	NumRuns          *int    `yaml:"num_runs"`
	NumInfeeds       *int    `yaml:"num_infeeds"`
	FakeInfeedShape  *string `yaml:"fake_infeed_shape"`
	GenerateInfeed   *bool   `yaml:"generate_fake_infeed"`
	ProfileLastRun   *bool   `yaml:"profile_last_run"`
}

// LoadOptions reads a YAML options file and applies it over base.
func LoadOptions(path string, base replay.Options) (replay.Options, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return replay.Options{}, fmt.Errorf("read options file: %w", err)
	}

	var of optionsFile
	if err := yaml.Unmarshal(content, &of); err != nil {
		return replay.Options{}, fmt.Errorf("invalid options file %s: %w", path, err)
	}

	opts := base
	if of.UseFakeData != nil {
		opts.UseSyntheticInputs = *of.UseFakeData
	}
	if of.PrintResult != nil {
		opts.PrintResult = *of.PrintResult
	}
	if of.NumRuns != nil {
		opts.NumRuns = *of.NumRuns
	}
	if of.NumInfeeds != nil {
		opts.NumStreamedFeeds = *of.NumInfeeds
	}
	if of.FakeInfeedShape != nil {
		s, err := shape.Parse(*of.FakeInfeedShape)
		if err != nil {
			return replay.Options{}, fmt.Errorf("options file %s: fake_infeed_shape: %w", path, err)
		}
		opts.StreamShapeOverride = &s
	}
	if of.GenerateInfeed != nil {
		opts.InferStreamShape = *of.GenerateInfeed
	}
	if of.ProfileLastRun != nil {
		opts.ProfileLastRun = *of.ProfileLastRun
	}

	return opts, nil
}
