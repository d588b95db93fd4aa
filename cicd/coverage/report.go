// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package coverage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Report is the published form of a coverage Summary.
type Report struct {
	Mode         string  `json:"mode"`
	Statements   int     `json:"statements"`
	Covered      int     `json:"covered"`
	Ratio        float64 `json:"ratio"`
	Threshold    float64 `json:"threshold"`
	Passed       bool    `json:"passed"`
	LeastCovered []File  `json:"least_covered,omitempty"`
}

// NewReport creates a Report for s against the specified threshold,
// listing at most n of the least covered files.
func NewReport(s Summary, threshold float64, n int) Report {
	return Report{
		Mode:         s.Mode,
		Statements:   s.Statements,
		Covered:      s.Covered,
		Ratio:        s.Ratio(),
		Threshold:    threshold,
		Passed:       Check(s, threshold) == nil,
		LeastCovered: s.LeastCovered(n),
	}
}

// WriteMarkdown writes r as a markdown summary.
func (r Report) WriteMarkdown(w io.Writer) error {
	status := "passed"
	if !r.Passed {
		status = "failed"
	}
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "## Coverage: %s\n\n", status)
	fmt.Fprintf(buf, "%s of %d statements covered, minimum %s.\n", Percent(r.Ratio), r.Statements, Percent(r.Threshold))
	if len(r.LeastCovered) > 0 {
		buf.WriteString("\n| file | statements | covered |\n|---|---:|---:|\n")
		for _, f := range r.LeastCovered {
			fmt.Fprintf(buf, "| %s | %d | %s |\n", f.Name, f.Statements, Percent(f.Ratio()))
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteJSON writes r as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Publisher represents a destination for coverage reports.
type Publisher interface {
	Publish(ctx context.Context, r Report) error
}

// FilePublisher appends the markdown form of a report to a file, such
// as the one named by $GITHUB_STEP_SUMMARY.
type FilePublisher struct {
	Path string
}

// Publish implements Publisher.
func (fp FilePublisher) Publish(_ context.Context, r Report) error {
	f, err := os.OpenFile(fp.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if err := r.WriteMarkdown(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// HTTPPublisher posts the JSON form of a report to URL, authenticating
// with Token as a bearer token if it is set.
type HTTPPublisher struct {
	URL    string
	Token  string
	Client *http.Client
}

// Publish implements Publisher.
func (hp HTTPPublisher) Publish(ctx context.Context, r Report) error {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(r); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hp.URL, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if len(hp.Token) > 0 {
		req.Header.Set("Authorization", "Bearer "+hp.Token)
	}
	client := hp.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("publishing coverage report to %v: %v", hp.URL, resp.Status)
	}
	return nil
}

// PublishersFromEnv returns the publishers configured by the environment:
// a FilePublisher if GITHUB_STEP_SUMMARY is set and an HTTPPublisher
// for url, authenticated with GITHUB_TOKEN, if url is not empty.
func PublishersFromEnv(getenv func(string) string, url string) []Publisher {
	var pubs []Publisher
	if p := getenv("GITHUB_STEP_SUMMARY"); len(p) > 0 {
		pubs = append(pubs, FilePublisher{Path: p})
	}
	if len(url) > 0 {
		pubs = append(pubs, HTTPPublisher{URL: url, Token: getenv("GITHUB_TOKEN")})
	}
	return pubs
}
