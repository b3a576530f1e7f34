package scoring

import (
	"regexp"

	"github.com/Masterminds/semver/v3"
	pep440 "github.com/aquasecurity/go-pep440-version"

	"github.com/terrrybug/pyninja/pkg/errors"
)

// stableRE matches plain dotted-numeric release identifiers. Anything with
// pre-release, dev, or post segments falls outside it.
var stableRE = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

// Compare orders two version strings, returning -1, 0, or 1. Strings that
// parse as semantic versions are compared under semver precedence; anything
// else (four-component or epoch-style identifiers) falls back to PEP 440
// ordering. An identifier neither scheme accepts is an error.
func Compare(a, b string) (int, error) {
	av, aerr := semver.NewVersion(a)
	bv, berr := semver.NewVersion(b)
	if aerr == nil && berr == nil {
		return av.Compare(bv), nil
	}

	ap, err := pep440.Parse(a)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidPackage, err, "unparseable version %q", a)
	}
	bp, err := pep440.Parse(b)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidPackage, err, "unparseable version %q", b)
	}
	switch {
	case ap.LessThan(bp):
		return -1, nil
	case ap.GreaterThan(bp):
		return 1, nil
	default:
		return 0, nil
	}
}

// IsStable reports whether a release identifier names a stable release:
// no pre-release, dev, post, or build segments.
func IsStable(v string) bool {
	if sv, err := semver.NewVersion(v); err == nil {
		return sv.Prerelease() == "" && sv.Metadata() == ""
	}
	if _, err := pep440.Parse(v); err != nil {
		return false
	}
	return stableRE.MatchString(v)
}

// LatestStableVersion selects the highest stable release among the given
// identifiers. Unparseable and non-stable identifiers are discarded. When
// nothing stable remains, the registry's reported current version is
// returned as-is.
func LatestStableVersion(releases []string, current string) string {
	best := ""
	for _, r := range releases {
		if !IsStable(r) {
			continue
		}
		if best == "" {
			best = r
			continue
		}
		if c, err := Compare(r, best); err == nil && c > 0 {
			best = r
		}
	}
	if best == "" {
		return current
	}
	return best
}
