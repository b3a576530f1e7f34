// Package report turns a set of per-package analysis results into the
// aggregate report, the rewritten requirements file, and the derived
// outputs (JSON export, pull request description, history store).
package report

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/terrrybug/pyninja/pkg/advisory"
	"github.com/terrrybug/pyninja/pkg/analysis"
	"github.com/terrrybug/pyninja/pkg/manifest"
	"github.com/terrrybug/pyninja/pkg/scoring"
)

// lowCompatibilityThreshold flags packages whose compatibility score falls
// below it.
const lowCompatibilityThreshold = 0.7

// Totals summarizes a report numerically.
type Totals struct {
	PackageCount        int     `json:"package_count" bson:"package_count"`
	PackagesWithUpdates int     `json:"packages_with_updates" bson:"packages_with_updates"`
	AdvisoryCount       int     `json:"advisory_count" bson:"advisory_count"`
	DeprecatedCount     int     `json:"deprecated_count" bson:"deprecated_count"`
	MeanCompatibility   float64 `json:"mean_compatibility" bson:"mean_compatibility"`
	MeanCommunity       float64 `json:"mean_community" bson:"mean_community"`
}

// OutdatedPackage records a package whose latest stable release is newer
// than its pinned version.
type OutdatedPackage struct {
	Package string `json:"package" bson:"package"`
	Current string `json:"current" bson:"current"`
	Latest  string `json:"latest" bson:"latest"`
}

// DeprecatedPackage records a package flagged as deprecated.
type DeprecatedPackage struct {
	Package string `json:"package" bson:"package"`
	Note    string `json:"note" bson:"note"`
}

// CompatibilityIssue records a package scoring below the compatibility
// threshold for the target runtime.
type CompatibilityIssue struct {
	Package      string  `json:"package" bson:"package"`
	Score        float64 `json:"score" bson:"score"`
	TargetPython string  `json:"target_python" bson:"target_python"`
}

// ModernizationEntry collects the hints emitted for one package.
type ModernizationEntry struct {
	Package string   `json:"package" bson:"package"`
	Hints   []string `json:"hints" bson:"hints"`
}

// SecurityIssue records the advisories affecting one package.
type SecurityIssue struct {
	Package    string              `json:"package" bson:"package"`
	Constraint string              `json:"constraint" bson:"constraint"`
	Advisories []advisory.Advisory `json:"advisories" bson:"advisories"`
}

// Report is the aggregate result of one analysis run. It is recomputed
// wholesale each run, never patched.
type Report struct {
	ID               string               `json:"id" bson:"_id"`
	GeneratedAt      time.Time            `json:"generated_at" bson:"generated_at"`
	TargetPython     string               `json:"target_python" bson:"target_python"`
	Totals           Totals               `json:"totals" bson:"totals"`
	Outdated         []OutdatedPackage    `json:"outdated" bson:"outdated"`
	Deprecated       []DeprecatedPackage  `json:"deprecated" bson:"deprecated"`
	LowCompatibility []CompatibilityIssue `json:"low_compatibility" bson:"low_compatibility"`
	Modernization    []ModernizationEntry `json:"modernization" bson:"modernization"`
	Advisories       []SecurityIssue      `json:"advisories" bson:"advisories"`
}

// HasCriticalIssues reports whether the run found anything that should
// fail a strict-mode invocation.
func (r *Report) HasCriticalIssues() bool {
	return r.Totals.AdvisoryCount > 0 || r.Totals.DeprecatedCount > 0
}

// Aggregate derives a Report from the per-package results. Beyond reading
// the clock argument and minting a run identifier it performs no I/O; the
// same inputs always classify the same way.
//
// An empty input yields a report with zero totals and empty lists.
func Aggregate(infos []analysis.PackageInfo, targetPython string, now time.Time) Report {
	r := Report{
		ID:               uuid.NewString(),
		GeneratedAt:      now,
		TargetPython:     targetPython,
		Outdated:         []OutdatedPackage{},
		Deprecated:       []DeprecatedPackage{},
		LowCompatibility: []CompatibilityIssue{},
		Modernization:    []ModernizationEntry{},
		Advisories:       []SecurityIssue{},
	}
	r.Totals.PackageCount = len(infos)

	var compatSum, communitySum float64
	for _, info := range infos {
		if len(info.Advisories) > 0 {
			r.Advisories = append(r.Advisories, SecurityIssue{
				Package:    info.Name,
				Constraint: info.CurrentConstraint,
				Advisories: info.Advisories,
			})
			r.Totals.AdvisoryCount += len(info.Advisories)
		}

		if current, ok := concreteVersion(info.CurrentConstraint); ok && info.LatestStableVersion != analysis.Unknown {
			if c, err := scoring.Compare(current, info.LatestStableVersion); err == nil && c < 0 {
				r.Outdated = append(r.Outdated, OutdatedPackage{
					Package: info.Name,
					Current: current,
					Latest:  info.LatestStableVersion,
				})
				r.Totals.PackagesWithUpdates++
			}
		}

		if info.IsDeprecated {
			r.Deprecated = append(r.Deprecated, DeprecatedPackage{Package: info.Name, Note: info.DeprecationNote})
			r.Totals.DeprecatedCount++
		}

		if info.CompatibilityScore < lowCompatibilityThreshold {
			r.LowCompatibility = append(r.LowCompatibility, CompatibilityIssue{
				Package:      info.Name,
				Score:        info.CompatibilityScore,
				TargetPython: targetPython,
			})
		}

		if len(info.ModernizationHints) > 0 {
			r.Modernization = append(r.Modernization, ModernizationEntry{Package: info.Name, Hints: info.ModernizationHints})
		}

		compatSum += info.CompatibilityScore
		communitySum += info.CommunityScore
	}

	if len(infos) > 0 {
		r.Totals.MeanCompatibility = compatSum / float64(len(infos))
		r.Totals.MeanCommunity = communitySum / float64(len(infos))
	}
	return r
}

// concreteVersion extracts a comparable version from a constraint such as
// "==2.31.0" or ">=1.4". Unconstrained ("any"), unknown, and compound
// expressions are not concrete.
func concreteVersion(constraint string) (string, bool) {
	c := strings.TrimSpace(constraint)
	if c == "" || c == manifest.AnyConstraint || c == analysis.Unknown {
		return "", false
	}
	if strings.Contains(c, ",") {
		return "", false
	}
	for _, op := range []string{"==", ">=", "<=", "~=", "!=", ">", "<", "^", "~"} {
		if v, ok := strings.CutPrefix(c, op); ok {
			c = strings.TrimSpace(v)
			break
		}
	}
	if c == "" {
		return "", false
	}
	return c, true
}
