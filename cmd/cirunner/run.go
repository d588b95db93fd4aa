// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/ciuncan/algorithms-exercise/cicd/coverage"
	"github.com/ciuncan/algorithms-exercise/cicd/pipeline"
)

func loadConfig(filename string) (pipeline.Config, error) {
	if len(filename) == 0 {
		return pipeline.DefaultConfig(), nil
	}
	return pipeline.LoadConfig(filename)
}

// eventFromFlags determines the triggering event from the environment,
// with any flag values taking precedence.
func eventFromFlags(fv *runFlags, getenv func(string) string) pipeline.Event {
	ev := pipeline.EventFromEnv(getenv)
	if len(fv.Event) > 0 {
		ev.Name = pipeline.EventName(fv.Event)
	}
	if len(fv.Ref) > 0 {
		ev.Ref = fv.Ref
	}
	if len(fv.BaseRef) > 0 {
		ev.BaseRef = fv.BaseRef
	}
	return ev
}

func runPipeline(ctx context.Context, values any, _ []string) error {
	fv := values.(*runFlags)
	ctx, closeLog, err := withLogger(ctx, &fv.LoggingFlags)
	if err != nil {
		return err
	}
	defer closeLog()
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()
	cfg, err := loadConfig(fv.Config)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(cfg,
		pipeline.NewExec(pipeline.WithStdout(os.Stdout)),
		pipeline.WithRoot(fv.Root),
		pipeline.WithDryRun(fv.DryRun),
		pipeline.WithPublishers(coverage.PublishersFromEnv(os.Getenv, cfg.Coverage.ReportURL)...),
	)
	res, err := runner.Run(ctx, eventFromFlags(fv, os.Getenv))
	if werr := writeResult(os.Stdout, res, fv.JSON); werr != nil {
		return werr
	}
	return err
}

func writeResult(w io.Writer, res *pipeline.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if !res.Triggered {
		_, err := fmt.Fprintf(w, "%v: not triggered\n", res.Event)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%v\n", res.Event)
	for _, s := range res.Steps {
		fmt.Fprintf(tw, "\t%s\t%s\t%s\t%s\n", s.Name, s.Status, s.Duration.Round(time.Millisecond), s.Detail)
	}
	result := "failed"
	switch {
	case res.Passed:
		result = "passed"
	case res.DryRun && !slices.ContainsFunc(res.Steps, func(s pipeline.StepResult) bool { return s.Status == pipeline.Failed }):
		result = "dry run"
	}
	fmt.Fprintf(tw, "%s\n", result)
	return tw.Flush()
}

func listModules(_ context.Context, _ any, args []string) error {
	return writeModules(os.Stdout, args[0])
}

func writeModules(w io.Writer, root string) error {
	mods, err := pipeline.Modules(root)
	if err != nil {
		return err
	}
	for _, m := range mods {
		if _, err := fmt.Fprintln(w, m); err != nil {
			return err
		}
	}
	return nil
}

func showConfig(_ context.Context, values any, _ []string) error {
	return writeConfig(os.Stdout, values.(*configFlags).Config)
}

func writeConfig(w io.Writer, filename string) error {
	cfg, err := loadConfig(filename)
	if err != nil {
		return err
	}
	buf, err := cfg.YAML()
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

func checkCoverage(_ context.Context, values any, args []string) error {
	return writeCoverage(os.Stdout, values.(*coverageFlags), args[0])
}

func writeCoverage(w io.Writer, fv *coverageFlags, profile string) error {
	if err := coverage.ValidateThreshold(fv.Threshold); err != nil {
		return err
	}
	summary, err := coverage.ParseFile(profile)
	if err != nil {
		return err
	}
	rep := coverage.NewReport(summary, fv.Threshold, fv.LeastCovered)
	switch fv.Format {
	case "markdown":
		err = rep.WriteMarkdown(w)
	case "json":
		err = rep.WriteJSON(w)
	default:
		return fmt.Errorf("unsupported format: %q", fv.Format)
	}
	if err != nil {
		return err
	}
	return coverage.Check(summary, fv.Threshold)
}
