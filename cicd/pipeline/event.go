// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"slices"
	"strings"
)

// EventName identifies the type of event that triggers a pipeline.
type EventName string

// Supported events.
const (
	Push        EventName = "push"
	PullRequest EventName = "pull_request"
)

// Event represents the change that a pipeline run is for. Ref is the
// branch that was pushed to, or the source branch of a pull request,
// BaseRef is the branch that a pull request targets.
type Event struct {
	Name    EventName `json:"name"`
	Ref     string    `json:"ref"`
	BaseRef string    `json:"base_ref,omitempty"`
}

func (e Event) String() string {
	if e.Name == PullRequest {
		return fmt.Sprintf("%v %v -> %v", e.Name, e.Ref, e.BaseRef)
	}
	return fmt.Sprintf("%v %v", e.Name, e.Ref)
}

// EventFromEnv creates an Event from the environment variables set by
// GitHub Actions: GITHUB_EVENT_NAME, GITHUB_REF_NAME, GITHUB_HEAD_REF and
// GITHUB_BASE_REF.
func EventFromEnv(getenv func(string) string) Event {
	ev := Event{
		Name: EventName(getenv("GITHUB_EVENT_NAME")),
		Ref:  getenv("GITHUB_REF_NAME"),
	}
	if ev.Name == PullRequest {
		if head := getenv("GITHUB_HEAD_REF"); len(head) > 0 {
			ev.Ref = head
		}
		ev.BaseRef = getenv("GITHUB_BASE_REF")
	}
	return ev
}

// Trigger determines which events a pipeline runs for.
type Trigger struct {
	Branches []string    `yaml:"branches"`
	Events   []EventName `yaml:"events"`
}

// DefaultTrigger runs on pushes and pull requests targeting main.
func DefaultTrigger() Trigger {
	return Trigger{
		Branches: []string{"main"},
		Events:   []EventName{Push, PullRequest},
	}
}

// Validate checks that at least one event and one branch are specified
// and that only supported events are listed.
func (t Trigger) Validate() error {
	if len(t.Events) == 0 {
		return fmt.Errorf("trigger: no events are specified")
	}
	if len(t.Branches) == 0 {
		return fmt.Errorf("trigger: no branches are specified")
	}
	for _, e := range t.Events {
		if e != Push && e != PullRequest {
			return fmt.Errorf("trigger: unsupported event %q", e)
		}
	}
	return nil
}

// Matches returns true for a push to one of the trigger's branches or
// a pull request that targets one of them, provided that the event type
// is also listed.
func (t Trigger) Matches(ev Event) bool {
	if !slices.Contains(t.Events, ev.Name) {
		return false
	}
	branch := ev.Ref
	if ev.Name == PullRequest {
		branch = ev.BaseRef
	}
	return slices.Contains(t.Branches, strings.TrimPrefix(branch, "refs/heads/"))
}
