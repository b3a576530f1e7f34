// Package analysis orchestrates the per-package pipeline: metadata fetch,
// scoring, deprecation detection, and advisory lookup, fanned out over a
// bounded worker pool.
package analysis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/terrrybug/pyninja/pkg/advisory"
	"github.com/terrrybug/pyninja/pkg/manifest"
	"github.com/terrrybug/pyninja/pkg/observability"
	"github.com/terrrybug/pyninja/pkg/registry"
	"github.com/terrrybug/pyninja/pkg/scoring"
)

// DefaultConcurrency bounds how many packages are analyzed in flight.
const DefaultConcurrency = 10

// Unknown is the placeholder version used when the registry has no answer.
const Unknown = "unknown"

// MetadataFetcher yields registry metadata for a package.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, pkg string, refresh bool) (*registry.Metadata, error)
}

// AdvisoryChecker yields the advisories affecting a package version.
type AdvisoryChecker interface {
	Check(ctx context.Context, pkg, version string, refresh bool) ([]advisory.Advisory, error)
}

// VersionResolver yields the locally installed version of a package, empty
// when not installed.
type VersionResolver interface {
	InstalledVersion(ctx context.Context, pkg string) (string, error)
}

// Options configures an analysis run.
type Options struct {
	// ConcurrencyLimit caps in-flight package analyses. Zero or negative
	// means DefaultConcurrency.
	ConcurrencyLimit int

	// TargetMajor and TargetMinor name the Python runtime the project
	// targets, e.g. 3 and 11.
	TargetMajor int
	TargetMinor int

	// SecurityEnabled turns on advisory lookups against the installed
	// version of each package.
	SecurityEnabled bool

	// PerformanceFocus adds speed-oriented modernization hints.
	PerformanceFocus bool

	// Refresh bypasses the response cache.
	Refresh bool
}

// TargetPython is the display form of the target runtime, e.g. "3.11".
func (o Options) TargetPython() string {
	return fmt.Sprintf("%d.%d", o.TargetMajor, o.TargetMinor)
}

// PackageInfo is the per-package analysis result. Records are built once
// and never mutated afterwards; a retry replaces the whole record.
type PackageInfo struct {
	Name                string              `json:"name"`
	CurrentConstraint   string              `json:"current_constraint"`
	LatestVersion       string              `json:"latest_version"`
	LatestStableVersion string              `json:"latest_stable_version"`
	IsDeprecated        bool                `json:"is_deprecated"`
	DeprecationNote     string              `json:"deprecation_note,omitempty"`
	Advisories          []advisory.Advisory `json:"advisories,omitempty"`
	License             string              `json:"license,omitempty"`
	LastPublished       time.Time           `json:"last_published,omitempty"`
	CompatibilityScore  float64             `json:"compatibility_score"`
	CommunityScore      float64             `json:"community_score"`
	ModernizationHints  []string            `json:"modernization_hints,omitempty"`
}

// Analyzer runs the analysis pipeline. Construct with New; the zero value
// is not usable.
type Analyzer struct {
	registry   MetadataFetcher
	advisories AdvisoryChecker
	installed  VersionResolver
	opts       Options
}

// New creates an Analyzer. advisories and installed may be nil when
// security checks are disabled.
func New(fetcher MetadataFetcher, advisories AdvisoryChecker, installed VersionResolver, opts Options) *Analyzer {
	return &Analyzer{
		registry:   fetcher,
		advisories: advisories,
		installed:  installed,
		opts:       opts,
	}
}

// Analyze processes all requirements concurrently, admitting at most the
// configured limit in flight. The result slice preserves input order
// regardless of completion order.
//
// A failure in any stage for one requirement produces a PackageInfo with
// "unknown" version fields instead of aborting the batch. When ctx is
// cancelled mid-run, Analyze returns the results completed so far along
// with the context error; entries never dispatched hold unknown records.
func (a *Analyzer) Analyze(ctx context.Context, reqs []manifest.Requirement) ([]PackageInfo, error) {
	results := make([]PackageInfo, len(reqs))
	if len(reqs) == 0 {
		return results, nil
	}

	limit := a.opts.ConcurrencyLimit
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	if limit > len(reqs) {
		limit = len(reqs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var inflight atomic.Int64

	for w := 0; w < limit; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				req := reqs[i]
				n := inflight.Add(1)
				observability.Analysis().OnPackageStart(ctx, req.Name, int(n))

				start := time.Now()
				info, err := a.analyzeOne(ctx, req)
				inflight.Add(-1)
				observability.Analysis().OnPackageComplete(ctx, req.Name, time.Since(start), err)

				if err != nil {
					info = unknownInfo(req)
				}
				results[i] = info
			}
		}()
	}

	var runErr error
dispatch:
	for i := range reqs {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			runErr = ctx.Err()
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if runErr != nil {
		// Backfill anything a worker never touched.
		for i := range results {
			if results[i].Name == "" {
				results[i] = unknownInfo(reqs[i])
			}
		}
	}
	return results, runErr
}

func (a *Analyzer) analyzeOne(ctx context.Context, req manifest.Requirement) (PackageInfo, error) {
	meta, err := a.registry.FetchMetadata(ctx, req.Name, a.opts.Refresh)
	if err != nil {
		return PackageInfo{}, err
	}

	latest := meta.Version
	if latest == "" {
		latest = Unknown
	}
	stable := scoring.LatestStableVersion(meta.ReleaseVersions, meta.Version)
	if stable == "" {
		stable = Unknown
	}

	info := PackageInfo{
		Name:                req.Name,
		CurrentConstraint:   req.Constraint,
		LatestVersion:       latest,
		LatestStableVersion: stable,
		License:             meta.License,
		LastPublished:       meta.UploadTime,
		CompatibilityScore:  scoring.CompatibilityScore(meta.Classifiers, a.opts.TargetMajor, a.opts.TargetMinor),
		CommunityScore:      scoring.CommunityScore(meta, time.Now()),
		ModernizationHints:  scoring.ModernizationHints(req.Name, a.opts.TargetPython(), a.opts.PerformanceFocus),
	}
	if scoring.IsDeprecated(meta.Description) {
		info.IsDeprecated = true
		info.DeprecationNote = scoring.DeprecationNote
	}

	if a.opts.SecurityEnabled && a.advisories != nil && a.installed != nil {
		// Advisory lookup needs a concrete installed version; a package
		// that is not installed, or a failed lookup, degrades to an
		// empty advisory list rather than failing the unit.
		if v, err := a.installed.InstalledVersion(ctx, req.Name); err == nil && v != "" {
			if advs, err := a.advisories.Check(ctx, req.Name, v, a.opts.Refresh); err == nil {
				info.Advisories = advs
			}
		}
	}
	return info, nil
}

func unknownInfo(req manifest.Requirement) PackageInfo {
	return PackageInfo{
		Name:                req.Name,
		CurrentConstraint:   req.Constraint,
		LatestVersion:       Unknown,
		LatestStableVersion: Unknown,
	}
}
