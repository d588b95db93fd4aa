// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"cloudeng.io/errors"
	"cloudeng.io/logging/ctxlog"
	"github.com/ciuncan/algorithms-exercise/cicd/coverage"
)

// ErrStepFailed is wrapped by the error returned by Runner.Run when
// a step fails.
var ErrStepFailed = errors.New("step failed")

// Status represents the outcome of a step.
type Status string

// Values for Status.
const (
	Passed  Status = "passed"
	Failed  Status = "failed"
	Skipped Status = "skipped"
)

// StepResult records the outcome of running a single step.
type StepResult struct {
	Name     string        `json:"name"`
	Kind     StepKind      `json:"kind"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Detail   string        `json:"detail,omitempty"`
}

// Result records the outcome of a pipeline run. Passed is true only if
// the pipeline was triggered and every step passed, so it is always
// false for a dry run.
type Result struct {
	Event     Event            `json:"event"`
	Triggered bool             `json:"triggered"`
	DryRun    bool             `json:"dry_run,omitempty"`
	Passed    bool             `json:"passed"`
	Steps     []StepResult     `json:"steps"`
	Coverage  *coverage.Report `json:"coverage,omitempty"`
}

// Runner runs the steps of a pipeline.
type Runner struct {
	cfg  Config
	exec Executor
	opts options
}

type options struct {
	root       string
	dryRun     bool
	publishers []coverage.Publisher
}

// Option represents an option to NewRunner.
type Option func(*options)

// WithRoot sets the directory in which the pipeline runs, the default
// is the current directory.
func WithRoot(dir string) Option {
	return func(o *options) {
		o.root = dir
	}
}

// WithDryRun logs the commands that would be run without running them.
// Steps that are not run are reported as skipped.
func WithDryRun(v bool) Option {
	return func(o *options) {
		o.dryRun = v
	}
}

// WithPublishers sets the publishers for the coverage report.
func WithPublishers(pubs ...coverage.Publisher) Option {
	return func(o *options) {
		o.publishers = append(o.publishers, pubs...)
	}
}

// NewRunner returns a Runner for cfg that uses exec to run commands.
func NewRunner(cfg Config, exec Executor, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, exec: exec}
	r.opts.root = "."
	for _, fn := range opts {
		fn(&r.opts)
	}
	return r
}

// Run runs the pipeline for ev. If ev does not match the configured
// trigger no steps are run and the returned Result has Triggered set to
// false. Otherwise the steps are run in order until one fails, in which
// case the remaining steps are skipped and an error wrapping
// ErrStepFailed is returned.
func (r *Runner) Run(ctx context.Context, ev Event) (*Result, error) {
	logger := ctxlog.Logger(ctx)
	res := &Result{Event: ev, DryRun: r.opts.dryRun}
	if !r.cfg.Trigger.Matches(ev) {
		logger.Info("pipeline not triggered", "event", ev.String())
		return res, nil
	}
	res.Triggered = true
	logger.Info("pipeline started", "event", ev.String(), "steps", len(r.cfg.Steps), "dry-run", r.opts.dryRun)
	env := sortedEnv(r.cfg.Env)
	for i, step := range r.cfg.Steps {
		start := time.Now()
		err := ctx.Err()
		status, detail := Skipped, ""
		if err == nil {
			status, detail, err = r.runStep(ctx, step, &env, res)
		}
		sr := StepResult{
			Name:     step.Name,
			Kind:     step.Kind,
			Status:   status,
			Duration: time.Since(start),
			Detail:   detail,
		}
		if err != nil {
			sr.Status = Failed
			res.Steps = append(res.Steps, sr)
			for _, rest := range r.cfg.Steps[i+1:] {
				res.Steps = append(res.Steps, StepResult{Name: rest.Name, Kind: rest.Kind, Status: Skipped})
			}
			logger.Error("step failed", "step", step.Name, "duration", sr.Duration, "error", err.Error())
			return res, fmt.Errorf("step %q: %w: %w", step.Name, ErrStepFailed, err)
		}
		logger.Info("step done", "step", step.Name, "status", sr.Status, "duration", sr.Duration, "detail", sr.Detail)
		res.Steps = append(res.Steps, sr)
	}
	res.Passed = !slices.ContainsFunc(res.Steps, func(s StepResult) bool {
		return s.Status != Passed
	})
	logger.Info("pipeline done", "event", ev.String(), "passed", res.Passed)
	return res, nil
}

func sortedEnv(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		out = append(out, k+"="+env[k])
	}
	return out
}

func (r *Runner) runStep(ctx context.Context, step Step, env *[]string, res *Result) (Status, string, error) {
	switch step.Kind {
	case Cache:
		return r.cache(env)
	case Report:
		return r.report(ctx, res)
	}
	args := r.cfg.StepCommand(step)
	if step.Kind == Format && len(step.Command) == 0 {
		files, err := r.formatFiles()
		if err != nil {
			return Failed, "", err
		}
		if len(files) == 0 {
			return Passed, "no go files", nil
		}
		args = append(args, files...)
	}
	cmd := Command{Args: args, Dir: r.opts.root, Env: *env}
	if r.opts.dryRun {
		ctxlog.Logger(ctx).Info("dry run", "step", step.Name, "command", cmd.String())
		return Skipped, "dry run: " + cmd.String(), nil
	}
	out, err := r.exec.Run(ctx, cmd)
	if err != nil {
		return Failed, "", err
	}
	switch step.Kind {
	case Checkout:
		return Passed, strings.TrimSpace(string(out)), nil
	case Format:
		if unformatted := strings.Fields(string(bytes.TrimSpace(out))); len(unformatted) > 0 {
			return Failed, "", fmt.Errorf("files are not formatted: %v", strings.Join(unformatted, ", "))
		}
	}
	return Passed, "", nil
}

// formatFiles returns the files to be checked by the default format
// command. The cache directory is excluded since it holds downloaded
// modules when it is located within root.
func (r *Runner) formatFiles() ([]string, error) {
	var exclude []string
	if len(r.cfg.Cache.Dir) > 0 {
		exclude = append(exclude, resolve(r.opts.root, r.cfg.Cache.Dir))
	}
	return GoFiles(r.opts.root, exclude...)
}

func (r *Runner) cache(env *[]string) (Status, string, error) {
	if r.opts.dryRun {
		key, err := CacheKey(resolve(r.opts.root, r.cfg.Cache.LockFile))
		if err != nil {
			return Failed, "", err
		}
		return Skipped, "dry run: key " + key, nil
	}
	entry, err := PrepareCache(r.cfg.Cache, r.opts.root)
	if err != nil {
		return Failed, "", err
	}
	*env = append(*env, entry.Env()...)
	if entry.Hit {
		return Passed, "restored " + entry.Key, nil
	}
	return Passed, "populating " + entry.Key, nil
}

func (r *Runner) report(ctx context.Context, res *Result) (Status, string, error) {
	if r.opts.dryRun {
		return Skipped, "dry run", nil
	}
	cc := r.cfg.Coverage
	summary, err := coverage.ParseFile(resolve(r.opts.root, cc.Profile))
	if err != nil {
		return Failed, "", err
	}
	rep := coverage.NewReport(summary, cc.Threshold, cc.LeastCovered)
	res.Coverage = &rep
	errs := &errors.M{}
	for _, p := range r.opts.publishers {
		errs.Append(p.Publish(ctx, rep))
	}
	errs.Append(coverage.Check(summary, cc.Threshold))
	detail := fmt.Sprintf("%s covered, minimum %s", coverage.Percent(rep.Ratio), coverage.Percent(cc.Threshold))
	if err := errs.Err(); err != nil {
		return Failed, detail, err
	}
	return Passed, detail, nil
}
