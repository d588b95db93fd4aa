// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command cirunner runs the continuous integration pipeline for this
// repository: checkout, dependency caching, build, lint, format check,
// tests, coverage generation and coverage reporting. It is intended to
// be run from a GitHub Actions workflow on pushes and pull requests but
// may also be run locally with the --event and --ref flags.
package main

import (
	"context"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
	"cloudeng.io/logging/ctxlog"
)

type runFlags struct {
	cmdutil.LoggingFlags
	Config  string `subcmd:"config,,'pipeline configuration file, if not specified the default configuration is used'"`
	Root    string `subcmd:"root,.,directory containing the module to be tested"`
	Event   string `subcmd:"event,,'triggering event: push or pull_request, defaults to $GITHUB_EVENT_NAME'"`
	Ref     string `subcmd:"ref,,'branch that was pushed to or the source branch of a pull request, defaults to $GITHUB_REF_NAME or $GITHUB_HEAD_REF'"`
	BaseRef string `subcmd:"base-ref,,'target branch of a pull request, defaults to $GITHUB_BASE_REF'"`
	DryRun  bool   `subcmd:"dry-run,false,'log the commands that would be run without running them'"`
	JSON    bool   `subcmd:"json,false,write the result as JSON"`
}

type configFlags struct {
	Config string `subcmd:"config,,'configuration file to validate and display, if not specified the default configuration is displayed'"`
}

type coverageFlags struct {
	Threshold    float64 `subcmd:"threshold,0.75,minimum fraction of statements that must be covered"`
	LeastCovered int     `subcmd:"least-covered,10,number of least covered files to list"`
	Format       string  `subcmd:"format,markdown,'output format: markdown or json'"`
}

var cmdSet *subcmd.CommandSet

func init() {
	runCmd := subcmd.NewCommand("run",
		subcmd.MustRegisterFlagStruct(&runFlags{}, nil, nil),
		runPipeline, subcmd.WithoutArguments())
	runCmd.Document(`run the pipeline for the current event.`)

	modulesCmd := subcmd.NewCommand("modules",
		subcmd.NewFlagSet(),
		listModules, subcmd.ExactlyNumArguments(1))
	modulesCmd.Document(`list the go modules below a directory.`, "<directory>")

	configCmd := subcmd.NewCommand("config",
		subcmd.MustRegisterFlagStruct(&configFlags{}, nil, nil),
		showConfig, subcmd.WithoutArguments())
	configCmd.Document(`display a pipeline configuration as YAML.`)

	coverageCmd := subcmd.NewCommand("coverage",
		subcmd.MustRegisterFlagStruct(&coverageFlags{}, nil, nil),
		checkCoverage, subcmd.ExactlyNumArguments(1))
	coverageCmd.Document(`summarize a coverage profile and check it against a threshold.`, "<profile>")

	cmdSet = subcmd.NewCommandSet(runCmd, modulesCmd, configCmd, coverageCmd)
	cmdSet.Document(`run and inspect the continuous integration pipeline.`)
}

func main() {
	ctx := context.Background()
	if err := cmdSet.Dispatch(ctx); err != nil {
		cmdutil.Exit("%v", err)
	}
}

// withLogger returns a context carrying the logger configured by
// the logging flags and a function to close any log file it opened.
func withLogger(ctx context.Context, lf *cmdutil.LoggingFlags) (context.Context, func() error, error) {
	logger, err := lf.LoggingConfig().NewLogger()
	if err != nil {
		return nil, nil, err
	}
	return ctxlog.Context(ctx, logger.Logger), logger.Close, nil
}
