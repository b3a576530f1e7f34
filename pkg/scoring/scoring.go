package scoring

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/terrrybug/pyninja/pkg/manifest"
	"github.com/terrrybug/pyninja/pkg/registry"
)

// DeprecationNote is the message attached to packages flagged as deprecated.
const DeprecationNote = "Package appears to be deprecated based on description"

// pythonClassifierPrefix marks runtime-version trove classifiers.
const pythonClassifierPrefix = "Programming Language :: Python ::"

// CompatibilityScore rates how likely a package is to work on the target
// Python version, based on its declared trove classifiers.
//
// No parseable major.minor classifiers means unknown compatibility (0.5).
// An exact target match scores 1.0; support for a newer version than the
// target scores 0.8; everything else scores 0.3.
func CompatibilityScore(classifiers []string, targetMajor, targetMinor int) float64 {
	type version struct{ major, minor int }
	var declared []version

	for _, c := range classifiers {
		if !strings.HasPrefix(c, pythonClassifierPrefix) {
			continue
		}
		parts := strings.Split(c, "::")
		v := strings.TrimSpace(parts[len(parts)-1])
		if !strings.Contains(v, ".") {
			// Major-only classifiers ("3") carry no minor bound.
			continue
		}
		fields := strings.SplitN(v, ".", 3)
		major, err1 := strconv.Atoi(fields[0])
		minor, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			continue
		}
		declared = append(declared, version{major, minor})
	}

	if len(declared) == 0 {
		return 0.5
	}

	max := declared[0]
	for _, v := range declared {
		if v.major == targetMajor && v.minor == targetMinor {
			return 1.0
		}
		if v.major > max.major || (v.major == max.major && v.minor > max.minor) {
			max = v
		}
	}
	if max.major > targetMajor || (max.major == targetMajor && max.minor >= targetMinor) {
		return 0.8
	}
	return 0.3
}

// CommunityScore rates a package's maintenance health from registry
// metadata as of now. The score is additive and capped at 1.0:
// a release within 365 days adds 0.3 (730 days adds 0.2 instead), any
// project links add 0.2, a description over 100 characters adds 0.1,
// keywords add 0.1, a license adds 0.1, and more than 10 releases add 0.2.
// Missing fields contribute nothing.
func CommunityScore(meta *registry.Metadata, now time.Time) float64 {
	score := 0.0

	if !meta.UploadTime.IsZero() {
		age := now.Sub(meta.UploadTime)
		switch {
		case age < 365*24*time.Hour:
			score += 0.3
		case age < 730*24*time.Hour:
			score += 0.2
		}
	}
	if len(meta.ProjectURLs) > 0 {
		score += 0.2
	}
	if len(meta.Description) > 100 {
		score += 0.1
	}
	if strings.TrimSpace(meta.Keywords) != "" {
		score += 0.1
	}
	if strings.TrimSpace(meta.License) != "" {
		score += 0.1
	}
	if meta.ReleaseCount() > 10 {
		score += 0.2
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}

// IsDeprecated reports whether the long description marks the package as
// deprecated. This is a blunt case-insensitive substring check; any
// description merely mentioning the word trips it.
func IsDeprecated(description string) bool {
	return strings.Contains(strings.ToLower(description), "deprecated")
}

// ModernizationHints returns upgrade advice for a package: a removal or
// replacement hint when the name appears in the legacy table, an
// alternatives hint when it appears in the modern-alternatives table, and,
// only when performanceFocus is set, a speed hint from the performance
// table. A name in no table yields no hints.
//
// targetPython is the display form of the target runtime (e.g. "3.11");
// name is displayed as written but looked up in normalized form.
func ModernizationHints(name, targetPython string, performanceFocus bool) []string {
	key := manifest.Normalize(name)
	var hints []string

	if replacement, ok := legacyReplacements[key]; ok {
		if replacement == "" {
			hints = append(hints, fmt.Sprintf("Remove %s - it's built into Python %s", name, targetPython))
		} else {
			hints = append(hints, fmt.Sprintf("Replace %s with %s", name, replacement))
		}
	}
	if alternatives, ok := modernAlternatives[key]; ok {
		hints = append(hints, fmt.Sprintf("Consider modern alternatives: %s", strings.Join(alternatives, ", ")))
	}
	if performanceFocus {
		if hint, ok := performanceUpgrades[key]; ok {
			hints = append(hints, hint)
		}
	}
	return hints
}
