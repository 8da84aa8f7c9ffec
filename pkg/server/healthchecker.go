package server

import (
	"context"
	"sort"
)

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

type OkHealthChecker struct {
}

func NewOkHealthChecker() *OkHealthChecker {
	return &OkHealthChecker{}
}

func (hc *OkHealthChecker) Healthy(ctx context.Context) bool {
	return true
}

// HealthFunc adapts a function to HealthChecker.
type HealthFunc func(ctx context.Context) bool

func (f HealthFunc) Healthy(ctx context.Context) bool {
	return f(ctx)
}

// CompositeHealthChecker is healthy when every named dependency is.
type CompositeHealthChecker struct {
	checks map[string]HealthChecker
}

func NewCompositeHealthChecker() *CompositeHealthChecker {
	return &CompositeHealthChecker{checks: make(map[string]HealthChecker)}
}

func (hc *CompositeHealthChecker) Add(name string, check HealthChecker) *CompositeHealthChecker {
	hc.checks[name] = check
	return hc
}

func (hc *CompositeHealthChecker) Healthy(ctx context.Context) bool {
	for _, ok := range hc.Report(ctx) {
		if !ok {
			return false
		}
	}
	return true
}

// Report runs every check.
func (hc *CompositeHealthChecker) Report(ctx context.Context) map[string]bool {
	out := make(map[string]bool, len(hc.checks))
	for name, check := range hc.checks {
		out[name] = check.Healthy(ctx)
	}
	return out
}

// Names lists the registered checks in order.
func (hc *CompositeHealthChecker) Names() []string {
	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
