// Package apicheck runs smoke probes against a running articles API and
// renders a plain-text report.
package apicheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"text/template"
	"time"

	"github.com/DjordjeVuckovic/apikit/pkg/httpclient"
	"github.com/DjordjeVuckovic/apikit/pkg/tmplfuncs"
)

type Probe struct {
	Name   string
	Method string
	Path   string
	// Query is only sent with GET probes.
	Query  url.Values
	Body   any
	// Auth sends the checker's bearer token.
	Auth   bool
	Expect int
}

type Result struct {
	Probe
	Status  int
	Latency time.Duration
	Err     error
}

func (r Result) OK() bool { return r.Err == nil && r.Status == r.Expect }

func (r Result) LatencyMs() float64 { return float64(r.Latency.Microseconds()) / 1000 }

// Value orders results by latency in reports.
func (r Result) Value() any { return r.LatencyMs() }

// DefaultProbes covers listing, lookup, search and the access rules.
func DefaultProbes() []Probe {
	return []Probe{
		{Name: "health", Method: http.MethodGet, Path: "/health", Expect: http.StatusOK},
		{Name: "list", Method: http.MethodGet, Path: "/articles", Query: url.Values{"limit": {"5"}}, Expect: http.StatusOK},
		{Name: "list invalid page", Method: http.MethodGet, Path: "/articles", Query: url.Values{"page": {"0"}}, Expect: http.StatusBadRequest},
		{Name: "show missing", Method: http.MethodGet, Path: "/articles/0", Expect: http.StatusNotFound},
		{Name: "search", Method: http.MethodPost, Path: "/articles/search", Body: map[string]any{"language": "english"}, Expect: http.StatusOK},
		{Name: "create anonymous", Method: http.MethodPost, Path: "/articles", Body: map[string]any{}, Expect: http.StatusUnauthorized},
	}
}

type Checker struct {
	client *httpclient.Client
	token  string
}

func NewChecker(client *httpclient.Client, token string) *Checker {
	return &Checker{client: client, token: token}
}

// Run executes probes in order. A transport error is recorded on the
// result and does not stop the run.
func (c *Checker) Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, 0, len(probes))
	for _, p := range probes {
		start := time.Now()
		resp, err := c.send(ctx, p)
		r := Result{Probe: p, Latency: time.Since(start), Err: err}
		if resp != nil {
			r.Status = resp.StatusCode
		}
		if !r.OK() {
			slog.Warn("Probe failed", "probe", p.Name, "status", r.Status, "expected", p.Expect, "error", err)
		}
		results = append(results, r)
	}
	return results
}

func (c *Checker) send(ctx context.Context, p Probe) (*httpclient.Response, error) {
	headers := http.Header{}
	if p.Auth && c.token != "" {
		headers.Set("Authorization", "Bearer "+c.token)
	}

	switch p.Method {
	case http.MethodGet:
		return c.client.GetJSON(ctx, p.Path, p.Query, headers)
	case http.MethodPost:
		return c.client.PostJSON(ctx, p.Path, p.Body, headers)
	case http.MethodPut:
		return c.client.PutJSON(ctx, p.Path, p.Body, headers)
	case http.MethodPatch:
		return c.client.PatchJSON(ctx, p.Path, p.Body, headers)
	case http.MethodDelete:
		return c.client.DeleteJSON(ctx, p.Path, p.Body, headers)
	default:
		return nil, fmt.Errorf("unsupported method %s", p.Method)
	}
}

var reportTemplate = template.Must(template.New("report").Funcs(tmplfuncs.FuncMap()).Parse(
	`{{ range usort . }}{{ if .OK }}ok  {{ else }}FAIL{{ end }} {{ printf "%-20s" .Name }} {{ .Method }} {{ .Path }} -> {{ .Status }} (want {{ .Expect }}) {{ .LatencyMs | to_float 1 "." "" }} ms{{ if .Err }} error: {{ .Err }}{{ end }}
{{ end }}`))

// Render writes one line per result, fastest first.
func Render(w io.Writer, results []Result) error {
	return reportTemplate.Execute(w, results)
}

// Failed counts results that did not get their expected status.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
