// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"cloudeng.io/logging/ctxlog"
	"github.com/ciuncan/algorithms-exercise/cicd/coverage"
	"github.com/ciuncan/algorithms-exercise/cicd/pipeline"
	"github.com/google/go-cmp/cmp"
)

type fakeExec struct {
	mu      sync.Mutex
	outputs map[string]string
	fail    map[string]error
	cmds    []pipeline.Command
}

func (fe *fakeExec) Run(_ context.Context, cmd pipeline.Command) ([]byte, error) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.cmds = append(fe.cmds, cmd)
	cl := cmd.String()
	if err := fe.fail[cl]; err != nil {
		return nil, err
	}
	return []byte(fe.outputs[cl]), nil
}

func (fe *fakeExec) commands() []string {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	var out []string
	for _, c := range fe.cmds {
		out = append(out, c.String())
	}
	return out
}

type recordingPublisher struct {
	reports []coverage.Report
	err     error
}

func (rp *recordingPublisher) Publish(_ context.Context, r coverage.Report) error {
	rp.reports = append(rp.reports, r)
	return rp.err
}

const fullCoverage = `mode: atomic
example.com/m/a.go:3.10,5.2 2 1
example.com/m/b.go:1.1,2.2 5 4
`

const lowCoverage = `mode: atomic
example.com/m/a.go:3.10,5.2 2 1
example.com/m/b.go:1.1,2.2 5 0
`

func newRoot(t *testing.T, profile string) string {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.sum"), "example.com/m v1.0.0 h1:abc=\n")
	writeFile(t, filepath.Join(root, "main.go"), "package main\n\nfunc main() {}\n")
	if len(profile) > 0 {
		writeFile(t, filepath.Join(root, "coverage.out"), profile)
	}
	return root
}

func testContext(buf *bytes.Buffer) context.Context {
	return ctxlog.NewJSONLogger(context.Background(), buf, nil)
}

var mainPush = pipeline.Event{Name: pipeline.Push, Ref: "main"}

func statuses(res *pipeline.Result) []pipeline.Status {
	var out []pipeline.Status
	for _, s := range res.Steps {
		out = append(out, s.Status)
	}
	return out
}

func repeat(s pipeline.Status, n int) []pipeline.Status {
	return slices.Repeat([]pipeline.Status{s}, n)
}

func TestRunPasses(t *testing.T) {
	root := newRoot(t, fullCoverage)
	fe := &fakeExec{outputs: map[string]string{"git rev-parse HEAD": "abc123\n"}}
	pub := &recordingPublisher{}
	logs := &bytes.Buffer{}
	r := pipeline.NewRunner(pipeline.DefaultConfig(), fe,
		pipeline.WithRoot(root), pipeline.WithPublishers(pub))
	res, err := r.Run(testContext(logs), mainPush)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Triggered || !res.Passed {
		t.Errorf("got triggered %v, passed %v", res.Triggered, res.Passed)
	}
	if got, want := statuses(res), repeat(pipeline.Passed, 8); !cmp.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := res.Steps[0].Detail, "abc123"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := res.Steps[1].Detail, "populating "; !strings.HasPrefix(got, want) {
		t.Errorf("got %v, want prefix %v", got, want)
	}
	want := []string{
		"git rev-parse HEAD",
		"go build ./...",
		"go vet ./...",
		"gofmt -l main.go",
		"go test ./...",
		"go test -covermode=atomic -coverprofile=coverage.out ./...",
	}
	if got := fe.commands(); !cmp.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// Commands following the cache step use the cache.
	build := fe.cmds[1]
	if got, want := build.Dir, root; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := build.Env[0], "CLICOLOR_FORCE=1"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := len(build.Env), 3; got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !strings.HasPrefix(build.Env[1], "GOCACHE="+filepath.Join(root, ".cache", "ci")) {
		t.Errorf("unexpected environment: %v", build.Env)
	}
	if got, want := len(fe.cmds[0].Env), 1; got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	if res.Coverage == nil {
		t.Fatal("missing coverage report")
	}
	if got, want := res.Coverage.Statements, 7; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := len(pub.reports), 1; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if !strings.Contains(logs.String(), `"msg":"pipeline done"`) {
		t.Errorf("missing log message: %s", logs.String())
	}

	// The second run finds the cache.
	res, err = r.Run(testContext(logs), mainPush)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := res.Steps[1].Detail, "restored "; !strings.HasPrefix(got, want) {
		t.Errorf("got %v, want prefix %v", got, want)
	}
}

func TestRunNotTriggered(t *testing.T) {
	fe := &fakeExec{}
	r := pipeline.NewRunner(pipeline.DefaultConfig(), fe, pipeline.WithRoot(t.TempDir()))
	ev := pipeline.Event{Name: pipeline.Push, Ref: "feature"}
	res, err := r.Run(testContext(&bytes.Buffer{}), ev)
	if err != nil {
		t.Fatal(err)
	}
	if res.Triggered || res.Passed || len(res.Steps) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if got := fe.commands(); len(got) != 0 {
		t.Errorf("unexpected commands: %v", got)
	}
}

func TestRunFailFast(t *testing.T) {
	root := newRoot(t, fullCoverage)
	lintErr := fmt.Errorf("exit status 1")
	fe := &fakeExec{fail: map[string]error{"go vet ./...": lintErr}}
	r := pipeline.NewRunner(pipeline.DefaultConfig(), fe, pipeline.WithRoot(root))
	res, err := r.Run(testContext(&bytes.Buffer{}), mainPush)
	if !errors.Is(err, pipeline.ErrStepFailed) || !errors.Is(err, lintErr) {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := err.Error(), `step "lint": step failed: exit status 1`; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if res.Passed {
		t.Errorf("pipeline should not pass")
	}
	want := append(repeat(pipeline.Passed, 3), pipeline.Failed)
	want = append(want, repeat(pipeline.Skipped, 4)...)
	if got := statuses(res); !cmp.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := len(fe.commands()), 3; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRunFormat(t *testing.T) {
	root := newRoot(t, fullCoverage)
	fe := &fakeExec{outputs: map[string]string{"gofmt -l main.go": "a.go\nb/b.go\n"}}
	r := pipeline.NewRunner(pipeline.DefaultConfig(), fe, pipeline.WithRoot(root))
	res, err := r.Run(testContext(&bytes.Buffer{}), mainPush)
	if !errors.Is(err, pipeline.ErrStepFailed) {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := err.Error(), "files are not formatted: a.go, b/b.go"; !strings.Contains(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := res.Steps[4].Status, pipeline.Failed; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRunCoverageThreshold(t *testing.T) {
	root := newRoot(t, lowCoverage)
	pub := &recordingPublisher{}
	r := pipeline.NewRunner(pipeline.DefaultConfig(), &fakeExec{},
		pipeline.WithRoot(root), pipeline.WithPublishers(pub))
	res, err := r.Run(testContext(&bytes.Buffer{}), mainPush)
	if !errors.Is(err, pipeline.ErrStepFailed) || !errors.Is(err, coverage.ErrBelowThreshold) {
		t.Fatalf("unexpected error: %v", err)
	}
	// The report is published even when the threshold is not met.
	if got, want := len(pub.reports), 1; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if res.Coverage == nil || res.Coverage.Passed {
		t.Errorf("unexpected coverage report: %+v", res.Coverage)
	}
	last := res.Steps[len(res.Steps)-1]
	if got, want := last.Status, pipeline.Failed; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := last.Detail, "28.57% covered, minimum 75.00%"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRunPublishError(t *testing.T) {
	root := newRoot(t, fullCoverage)
	pubErr := errors.New("publish failed")
	ok, failing := &recordingPublisher{}, &recordingPublisher{err: pubErr}
	r := pipeline.NewRunner(pipeline.DefaultConfig(), &fakeExec{},
		pipeline.WithRoot(root), pipeline.WithPublishers(failing, ok))
	_, err := r.Run(testContext(&bytes.Buffer{}), mainPush)
	if !errors.Is(err, pubErr) {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := len(ok.reports), 1; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRunDryRun(t *testing.T) {
	root := newRoot(t, "")
	fe := &fakeExec{}
	logs := &bytes.Buffer{}
	r := pipeline.NewRunner(pipeline.DefaultConfig(), fe,
		pipeline.WithRoot(root), pipeline.WithDryRun(true))
	res, err := r.Run(testContext(logs), mainPush)
	if err != nil {
		t.Fatal(err)
	}
	if !res.DryRun || res.Passed {
		t.Errorf("got dry run %v, passed %v", res.DryRun, res.Passed)
	}
	if got, want := statuses(res), repeat(pipeline.Skipped, 8); !cmp.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := fe.commands(); len(got) != 0 {
		t.Errorf("unexpected commands: %v", got)
	}
	if got, want := res.Steps[2].Detail, "dry run: go build ./..."; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if !strings.Contains(logs.String(), `"command":"go vet ./..."`) {
		t.Errorf("missing log message: %s", logs.String())
	}
}

func TestRunCanceled(t *testing.T) {
	root := newRoot(t, fullCoverage)
	fe := &fakeExec{}
	ctx, cancel := context.WithCancel(testContext(&bytes.Buffer{}))
	cancel()
	r := pipeline.NewRunner(pipeline.DefaultConfig(), fe, pipeline.WithRoot(root))
	res, err := r.Run(ctx, mainPush)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected error: %v", err)
	}
	want := append([]pipeline.Status{pipeline.Failed}, repeat(pipeline.Skipped, 7)...)
	if got := statuses(res); !cmp.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := fe.commands(); len(got) != 0 {
		t.Errorf("unexpected commands: %v", got)
	}
}

func TestRunFormatIgnoresCache(t *testing.T) {
	root := newRoot(t, fullCoverage)
	unformatted := "package dep\nfunc  Broken( ) {\n"
	writeFile(t, filepath.Join(root, "cache", "key", "mod", "example.com", "dep@v1.0.0", "dep.go"), unformatted)
	writeFile(t, filepath.Join(root, ".cache", "ci", "key", "mod", "dep.go"), unformatted)
	writeFile(t, filepath.Join(root, "testdata", "bad.go"), unformatted)
	writeFile(t, filepath.Join(root, "pkg", "p.go"), "package pkg\n")

	cfg := pipeline.DefaultConfig()
	cfg.Cache.Dir = "cache"
	fe := &fakeExec{}
	r := pipeline.NewRunner(cfg, fe, pipeline.WithRoot(root))
	if _, err := r.Run(testContext(&bytes.Buffer{}), mainPush); err != nil {
		t.Fatal(err)
	}
	want := "gofmt -l main.go " + filepath.Join("pkg", "p.go")
	if got := fe.commands(); !slices.Contains(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRunFormatWithPopulatedCache(t *testing.T) {
	if _, err := exec.LookPath("gofmt"); err != nil {
		t.Skip("gofmt is not available")
	}
	root := newRoot(t, "")
	cfg := pipeline.DefaultConfig()
	cfg.Steps = []pipeline.Step{
		{Name: "cache", Kind: pipeline.Cache},
		{Name: "format", Kind: pipeline.Format},
	}
	ctx := testContext(&bytes.Buffer{})
	entry, err := pipeline.PrepareCache(cfg.Cache, root)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(entry.Dir, "mod", "example.com", "dep@v1.0.0", "dep.go"), "package dep\nfunc  Broken( ) {}\n")

	r := pipeline.NewRunner(cfg, pipeline.NewExec(), pipeline.WithRoot(root))
	res, err := r.Run(ctx, mainPush)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Passed {
		t.Errorf("unexpected result: %+v", res.Steps)
	}

	// Files owned by the repository are still checked.
	writeFile(t, filepath.Join(root, "bad.go"), "package main\nfunc  bad( ) {}\n")
	_, err = r.Run(ctx, mainPush)
	if err == nil || !strings.Contains(err.Error(), "files are not formatted: bad.go") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunNoGoFiles(t *testing.T) {
	root := t.TempDir()
	cfg := pipeline.DefaultConfig()
	cfg.Steps = []pipeline.Step{{Name: "format", Kind: pipeline.Format}}
	fe := &fakeExec{}
	res, err := pipeline.NewRunner(cfg, fe, pipeline.WithRoot(root)).Run(testContext(&bytes.Buffer{}), mainPush)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := res.Steps[0].Detail, "no go files"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := fe.commands(); len(got) != 0 {
		t.Errorf("unexpected commands: %v", got)
	}
}
