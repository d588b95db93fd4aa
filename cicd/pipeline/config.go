// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package pipeline implements a continuous integration pipeline: a fixed
// sequence of steps (checkout, cache, build, lint, format check, test,
// coverage and coverage report) that is run on push or pull request
// events for a set of branches. Steps are run in order and the first
// failing step halts the pipeline.
package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"cloudeng.io/cmdutil"
	"github.com/ciuncan/algorithms-exercise/cicd/coverage"
	"gopkg.in/yaml.v3"
)

// StepKind identifies the operation performed by a step.
type StepKind string

// Supported step kinds, in the order in which DefaultConfig runs them.
const (
	Checkout StepKind = "checkout"
	Cache    StepKind = "cache"
	Build    StepKind = "build"
	Lint     StepKind = "lint"
	Format   StepKind = "format"
	Test     StepKind = "test"
	Coverage StepKind = "coverage"
	Report   StepKind = "report"
)

var stepKinds = []StepKind{Checkout, Cache, Build, Lint, Format, Test, Coverage, Report}

// Step represents a single pipeline step. If Command is empty the default
// command for the step's kind is used. Cache and Report steps are
// implemented directly by the pipeline and do not accept a command.
type Step struct {
	Name    string   `yaml:"name"`
	Kind    StepKind `yaml:"kind"`
	Command []string `yaml:"command,omitempty"`
}

// CacheConfig configures the dependency and build cache. The cache is a
// directory, within Dir, named by the hash of LockFile.
type CacheConfig struct {
	Dir      string `yaml:"dir"`
	LockFile string `yaml:"lockfile"`
}

// CoverageConfig configures coverage generation and reporting.
type CoverageConfig struct {
	Profile      string  `yaml:"profile"`
	Threshold    float64 `yaml:"threshold"`
	LeastCovered int     `yaml:"least_covered"`
	ReportURL    string  `yaml:"report_url,omitempty"`
}

// Config represents the complete pipeline configuration.
type Config struct {
	Trigger  Trigger           `yaml:"trigger"`
	Env      map[string]string `yaml:"env,omitempty"`
	Tags     []string          `yaml:"tags,omitempty"`
	Cache    CacheConfig       `yaml:"cache"`
	Coverage CoverageConfig    `yaml:"coverage"`
	Steps    []Step            `yaml:"steps"`
}

// DefaultConfig returns the default pipeline: run on pushes and pull
// requests to main, with colorized tool output, a cache keyed by go.sum
// and a minimum coverage of 75%.
func DefaultConfig() Config {
	return Config{
		Trigger: DefaultTrigger(),
		Env:     map[string]string{"CLICOLOR_FORCE": "1"},
		Cache: CacheConfig{
			Dir:      ".cache/ci",
			LockFile: "go.sum",
		},
		Coverage: CoverageConfig{
			Profile:      "coverage.out",
			Threshold:    coverage.DefaultThreshold,
			LeastCovered: 10,
		},
		Steps: []Step{
			{Name: "checkout", Kind: Checkout},
			{Name: "cache", Kind: Cache},
			{Name: "build", Kind: Build},
			{Name: "lint", Kind: Lint},
			{Name: "format", Kind: Format},
			{Name: "test", Kind: Test},
			{Name: "coverage", Kind: Coverage},
			{Name: "report", Kind: Report},
		},
	}
}

// LoadConfig reads a YAML pipeline configuration from filename. Fields
// not specified in the file retain the values from DefaultConfig.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	if err := cmdutil.ParseYAMLConfigFile(filename, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%v: %w", filename, err)
	}
	return cfg, nil
}

// YAML returns the YAML representation of the configuration.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if len(c.Steps) == 0 {
		return fmt.Errorf("no steps are configured")
	}
	if err := c.Trigger.Validate(); err != nil {
		return err
	}
	if err := coverage.ValidateThreshold(c.Coverage.Threshold); err != nil {
		return err
	}
	names := map[string]bool{}
	sawCoverage := false
	for i, s := range c.Steps {
		if len(s.Name) == 0 {
			return fmt.Errorf("step %v has no name", i)
		}
		if names[s.Name] {
			return fmt.Errorf("step %q is defined more than once", s.Name)
		}
		names[s.Name] = true
		if !slices.Contains(stepKinds, s.Kind) {
			return fmt.Errorf("step %q: unsupported kind %q, must be one of: %v", s.Name, s.Kind, stepKinds)
		}
		switch s.Kind {
		case Cache:
			if len(s.Command) > 0 {
				return fmt.Errorf("step %q: %v steps do not accept a command", s.Name, s.Kind)
			}
			if len(c.Cache.Dir) == 0 || len(c.Cache.LockFile) == 0 {
				return fmt.Errorf("step %q: cache dir and lockfile must be specified", s.Name)
			}
		case Coverage:
			sawCoverage = true
		case Report:
			if len(s.Command) > 0 {
				return fmt.Errorf("step %q: %v steps do not accept a command", s.Name, s.Kind)
			}
			if !sawCoverage {
				return fmt.Errorf("step %q: must follow a %v step", s.Name, Coverage)
			}
		}
	}
	return nil
}

// StepCommand returns the command line that will be run for the step,
// nil is returned for steps that are implemented by the pipeline itself.
// The Runner appends the repository's Go files, as returned by GoFiles,
// to the default format command.
func (c Config) StepCommand(s Step) []string {
	if len(s.Command) > 0 {
		return s.Command
	}
	switch s.Kind {
	case Checkout:
		return []string{"git", "rev-parse", "HEAD"}
	case Build:
		return c.goCommand("build", "./...")
	case Lint:
		return c.goCommand("vet", "./...")
	case Format:
		return []string{"gofmt", "-l"}
	case Test:
		return c.goCommand("test", "./...")
	case Coverage:
		return c.goCommand("test", "-covermode=atomic", "-coverprofile="+c.Coverage.Profile, "./...")
	}
	return nil
}

// goCommand returns a go command line that enables all of the configured
// build tags.
func (c Config) goCommand(sub string, args ...string) []string {
	cl := []string{"go", sub}
	if len(c.Tags) > 0 {
		cl = append(cl, "-tags="+strings.Join(c.Tags, ","))
	}
	return append(cl, args...)
}
