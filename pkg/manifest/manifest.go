// Package manifest parses Python dependency manifests into normalized
// requirement records.
//
// Three formats are supported: requirements.txt, pyproject.toml (Poetry,
// PEP 621, and build-system tables), and Pipfile. Parsing follows a
// partial-success policy: a malformed entry is reported through the warning
// callback and skipped, never failing the rest of the file.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Format identifies the manifest file format a requirement came from.
type Format string

// Supported manifest formats.
const (
	FormatRequirementsTxt Format = "requirements.txt"
	FormatPyprojectTOML   Format = "pyproject.toml"
	FormatPipfile         Format = "Pipfile"
)

// AnyConstraint marks a requirement with no version constraint.
const AnyConstraint = "any"

// Requirement is one normalized dependency declaration extracted from a
// manifest. Immutable once parsed; identity is the normalized name.
type Requirement struct {
	Name       string // normalized per PEP 503 (lowercase, underscores to hyphens)
	Constraint string // version specifier as written, or AnyConstraint
	Source     Format // manifest format the requirement came from
}

// WarnFunc receives non-fatal parse diagnostics. A nil WarnFunc is valid.
type WarnFunc func(format string, args ...any)

// Normalize converts a package name to its canonical form following PEP 503
// rules as applied by PyPI: lowercase with underscores replaced by hyphens.
// Normalization is a fixed point: applying it twice changes nothing.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// detectionOrder is the fixed probe priority for auto-detection.
var detectionOrder = []struct {
	filename string
	format   Format
}{
	{"requirements.txt", FormatRequirementsTxt},
	{"pyproject.toml", FormatPyprojectTOML},
	{"Pipfile", FormatPipfile},
}

// Detect probes dir for a supported manifest in fixed priority order:
// requirements.txt, then pyproject.toml, then Pipfile. It returns the path
// and format of the first file that exists, or ok=false when the directory
// holds none of them (which is not an error; the caller decides whether an
// empty requirement set is fatal).
func Detect(dir string) (path string, format Format, ok bool) {
	for _, c := range detectionOrder {
		p := filepath.Join(dir, c.filename)
		if _, err := os.Stat(p); err == nil {
			return p, c.format, true
		}
	}
	return "", "", false
}

// FormatForPath guesses the manifest format from a filename.
func FormatForPath(path string) (Format, error) {
	base := filepath.Base(path)
	switch {
	case strings.EqualFold(base, "pipfile"):
		return FormatPipfile, nil
	case strings.HasSuffix(base, ".toml"):
		return FormatPyprojectTOML, nil
	case strings.HasSuffix(base, ".txt"):
		return FormatRequirementsTxt, nil
	default:
		return "", fmt.Errorf("unsupported manifest: %s", base)
	}
}

// Parse reads the manifest at path in the given format and returns the
// ordered requirement list. Requirement names are unique within the result:
// a duplicate name keeps its first position but takes the value of its last
// occurrence, mirroring manifest override semantics.
func Parse(path string, format Format, warn WarnFunc) ([]Requirement, error) {
	if warn == nil {
		warn = func(string, ...any) {}
	}
	switch format {
	case FormatRequirementsTxt:
		return parseRequirementsTxt(path, warn)
	case FormatPyprojectTOML:
		return parsePyproject(path, warn)
	case FormatPipfile:
		return parsePipfile(path, warn)
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s", format)
	}
}

// ParseDir auto-detects and parses a manifest in dir. A directory without
// any supported manifest yields an empty list and ok=false, not an error.
func ParseDir(dir string, warn WarnFunc) (reqs []Requirement, format Format, ok bool, err error) {
	path, format, ok := Detect(dir)
	if !ok {
		return nil, "", false, nil
	}
	reqs, err = Parse(path, format, warn)
	return reqs, format, true, err
}

// specRE splits a requirement spec into name, optional extras, and the
// remainder (version specifier plus markers).
var specRE = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(\[[^\]]*\])?\s*(.*)$`)

// parseSpec parses a single PEP 508-style requirement string such as
// "requests==2.31.0", "flask[async]>=2.0", or "django".
// Environment markers (after ";") are dropped; extras are dropped; the
// version specifier is kept verbatim.
func parseSpec(spec string, source Format) (Requirement, error) {
	s := strings.TrimSpace(spec)
	if i := strings.Index(s, ";"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	m := specRE.FindStringSubmatch(s)
	if m == nil || m[1] == "" {
		return Requirement{}, fmt.Errorf("invalid requirement spec: %q", spec)
	}
	constraint := strings.TrimSpace(m[3])
	if constraint == "" || constraint == "*" {
		constraint = AnyConstraint
	} else if !strings.ContainsRune("=<>!~^(", rune(constraint[0])) {
		// A version specifier starts with a comparison operator (or an
		// opening paren in the legacy form); anything else means the
		// line is malformed.
		return Requirement{}, fmt.Errorf("invalid requirement spec: %q", spec)
	}
	return Requirement{
		Name:       Normalize(m[1]),
		Constraint: constraint,
		Source:     source,
	}, nil
}

// requirementSet accumulates requirements with dict-like override
// semantics: first position, last value.
type requirementSet struct {
	order []string
	byKey map[string]Requirement
}

func newRequirementSet() *requirementSet {
	return &requirementSet{byKey: make(map[string]Requirement)}
}

func (s *requirementSet) add(r Requirement) {
	if _, seen := s.byKey[r.Name]; !seen {
		s.order = append(s.order, r.Name)
	}
	s.byKey[r.Name] = r
}

func (s *requirementSet) list() []Requirement {
	out := make([]Requirement, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byKey[name])
	}
	return out
}
