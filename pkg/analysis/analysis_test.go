package analysis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/terrrybug/pyninja/pkg/advisory"
	"github.com/terrrybug/pyninja/pkg/errors"
	"github.com/terrrybug/pyninja/pkg/manifest"
	"github.com/terrrybug/pyninja/pkg/registry"
)

// fakeFetcher serves canned metadata with optional per-package delays and
// failures, and tracks the peak number of concurrent calls.
type fakeFetcher struct {
	mu      sync.Mutex
	active  int
	peak    int
	delay   map[string]time.Duration
	fail    map[string]bool
	meta    map[string]*registry.Metadata
	missing bool
}

func (f *fakeFetcher) FetchMetadata(ctx context.Context, pkg string, refresh bool) (*registry.Metadata, error) {
	f.mu.Lock()
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	d := f.delay[pkg]
	f.mu.Unlock()

	if d > 0 {
		time.Sleep(d)
	}

	f.mu.Lock()
	f.active--
	f.mu.Unlock()

	if f.fail[pkg] || f.missing {
		return nil, errors.New(errors.ErrCodeNotFound, "pypi package %s", pkg)
	}
	if m, ok := f.meta[pkg]; ok {
		return m, nil
	}
	return &registry.Metadata{Name: pkg, Version: "1.0.0", ReleaseVersions: []string{"1.0.0"}}, nil
}

type fakeChecker struct {
	byVersion map[string][]advisory.Advisory
	err       error
}

func (f *fakeChecker) Check(ctx context.Context, pkg, version string, refresh bool) ([]advisory.Advisory, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byVersion[pkg+"@"+version], nil
}

type fakeInstalled map[string]string

func (f fakeInstalled) InstalledVersion(ctx context.Context, pkg string) (string, error) {
	return f[pkg], nil
}

func reqList(names ...string) []manifest.Requirement {
	reqs := make([]manifest.Requirement, len(names))
	for i, n := range names {
		reqs[i] = manifest.Requirement{Name: n, Constraint: manifest.AnyConstraint, Source: manifest.FormatRequirementsTxt}
	}
	return reqs
}

func TestAnalyzeEmpty(t *testing.T) {
	a := New(&fakeFetcher{}, nil, nil, Options{})
	results, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}

func TestAnalyzeOrderPreserved(t *testing.T) {
	// The first package finishes last; order must still match the input.
	f := &fakeFetcher{delay: map[string]time.Duration{
		"alpha": 60 * time.Millisecond,
		"beta":  30 * time.Millisecond,
		"gamma": 0,
	}}
	a := New(f, nil, nil, Options{ConcurrencyLimit: 3, TargetMajor: 3, TargetMinor: 11})

	results, err := a.Analyze(context.Background(), reqList("alpha", "beta", "gamma"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for i, want := range []string{"alpha", "beta", "gamma"} {
		if results[i].Name != want {
			t.Errorf("results[%d].Name = %q, want %q", i, results[i].Name, want)
		}
	}
}

func TestAnalyzeConcurrencyBound(t *testing.T) {
	f := &fakeFetcher{delay: map[string]time.Duration{}}
	names := []string{"a", "b", "c", "d", "e", "f"}
	for _, n := range names {
		f.delay[n] = 20 * time.Millisecond
	}
	a := New(f, nil, nil, Options{ConcurrencyLimit: 2})

	if _, err := a.Analyze(context.Background(), reqList(names...)); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if f.peak > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", f.peak)
	}
}

func TestAnalyzeFailureIsolation(t *testing.T) {
	f := &fakeFetcher{fail: map[string]bool{"broken": true}}
	a := New(f, nil, nil, Options{TargetMajor: 3, TargetMinor: 11})

	results, err := a.Analyze(context.Background(), reqList("good", "broken", "also-good"))
	if err != nil {
		t.Fatalf("one failed unit must not fail the batch: %v", err)
	}

	if results[1].LatestVersion != Unknown || results[1].LatestStableVersion != Unknown {
		t.Errorf("failed unit should carry unknown versions, got %+v", results[1])
	}
	if results[1].Name != "broken" {
		t.Errorf("failed unit should keep its name, got %q", results[1].Name)
	}
	if results[0].LatestVersion != "1.0.0" || results[2].LatestVersion != "1.0.0" {
		t.Error("sibling units should be unaffected by the failure")
	}
}

func TestAnalyzeDeprecationAndScores(t *testing.T) {
	f := &fakeFetcher{meta: map[string]*registry.Metadata{
		"oldlib": {
			Name:            "oldlib",
			Version:         "2.0.0",
			Description:     "This package is deprecated, use newlib.",
			Classifiers:     []string{"Programming Language :: Python :: 3.11"},
			ReleaseVersions: []string{"1.0.0", "2.0.0", "2.1.0rc1"},
		},
	}}
	a := New(f, nil, nil, Options{TargetMajor: 3, TargetMinor: 11})

	results, err := a.Analyze(context.Background(), reqList("oldlib"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	got := results[0]
	if !got.IsDeprecated || got.DeprecationNote == "" {
		t.Errorf("expected deprecation flag and note, got %+v", got)
	}
	if got.LatestStableVersion != "2.0.0" {
		t.Errorf("stable version = %q, want 2.0.0", got.LatestStableVersion)
	}
	if got.CompatibilityScore != 1.0 {
		t.Errorf("compatibility = %v, want 1.0", got.CompatibilityScore)
	}
}

func TestAnalyzeSecurity(t *testing.T) {
	f := &fakeFetcher{}
	checker := &fakeChecker{byVersion: map[string][]advisory.Advisory{
		"requests@2.19.0": {{ID: "GHSA-1"}},
	}}
	installed := fakeInstalled{"requests": "2.19.0"}
	a := New(f, checker, installed, Options{SecurityEnabled: true})

	results, err := a.Analyze(context.Background(), reqList("requests", "uninstalled"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(results[0].Advisories) != 1 {
		t.Errorf("expected 1 advisory for installed package, got %d", len(results[0].Advisories))
	}
	if len(results[1].Advisories) != 0 {
		t.Error("package without an installed version should skip the advisory check")
	}
}

func TestAnalyzeAdvisoryFailureDegrades(t *testing.T) {
	f := &fakeFetcher{}
	checker := &fakeChecker{err: errors.New(errors.ErrCodeUnavailable, "osv down")}
	a := New(f, checker, fakeInstalled{"requests": "2.19.0"}, Options{SecurityEnabled: true})

	results, err := a.Analyze(context.Background(), reqList("requests"))
	if err != nil {
		t.Fatalf("advisory failure must not fail the unit: %v", err)
	}
	if len(results[0].Advisories) != 0 {
		t.Error("advisory failure should yield an empty list")
	}
	if results[0].LatestVersion != "1.0.0" {
		t.Error("metadata results should survive an advisory failure")
	}
}

func TestAnalyzeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeFetcher{}
	a := New(f, nil, nil, Options{ConcurrencyLimit: 1})

	results, err := a.Analyze(ctx, reqList("a", "b", "c"))
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(results) != 3 {
		t.Fatalf("expected a full-length result slice, got %d", len(results))
	}
	for i, r := range results {
		if r.Name == "" {
			t.Errorf("results[%d] missing its requirement name", i)
		}
	}
}
