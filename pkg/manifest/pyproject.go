package manifest

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// pyprojectFile maps the three dependency locations a pyproject.toml can
// declare: the Poetry dependency table, the PEP 621 project.dependencies
// array, and build-system.requires.
type pyprojectFile struct {
	Tool struct {
		Poetry struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	BuildSystem struct {
		Requires []string `toml:"requires"`
	} `toml:"build-system"`
}

// parsePyproject unions the dependency declarations of all three pyproject
// locations. Poetry entries come first in document order (the "python"
// interpreter pseudo-dependency is skipped), then project.dependencies,
// then build-system.requires. Invalid entries are warned about and skipped.
func parsePyproject(path string, warn WarnFunc) ([]Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file pyprojectFile
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, err
	}

	set := newRequirementSet()

	// Poetry mapping: name -> version spec (string, or a table with a
	// "version" field). Iterate in document order via decode metadata so
	// override semantics stay deterministic.
	for _, key := range tableKeys(md, "tool", "poetry", "dependencies") {
		if strings.EqualFold(key, "python") {
			continue
		}
		spec, ok := specValue(file.Tool.Poetry.Dependencies[key])
		if !ok {
			warn("invalid poetry dependency entry: %s", key)
			continue
		}
		addNamed(set, key, spec, FormatPyprojectTOML, warn)
	}

	for _, dep := range file.Project.Dependencies {
		addSpec(set, dep, FormatPyprojectTOML, warn)
	}
	for _, dep := range file.BuildSystem.Requires {
		addSpec(set, dep, FormatPyprojectTOML, warn)
	}

	return set.list(), nil
}

// specValue extracts the version specifier from a table-style dependency
// value: either a plain string or a table with a "version" field. Poetry
// and Pipfile share this shape.
func specValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case map[string]any:
		if ver, ok := val["version"].(string); ok {
			return ver, true
		}
	}
	return "", false
}

// addNamed adds a requirement from a separate name + constraint pair
// (table-style manifests), validating the name and normalizing the
// constraint ("" and "*" mean unconstrained).
func addNamed(set *requirementSet, name, constraint string, source Format, warn WarnFunc) {
	parsed, err := parseSpec(name, source)
	if err != nil || parsed.Constraint != AnyConstraint {
		warn("invalid requirement name: %q", name)
		return
	}
	c := strings.TrimSpace(constraint)
	if c == "" || c == "*" {
		c = AnyConstraint
	}
	parsed.Constraint = c
	set.add(parsed)
}

// addSpec adds a requirement from a full PEP 508 spec string.
func addSpec(set *requirementSet, spec string, source Format, warn WarnFunc) {
	req, err := parseSpec(spec, source)
	if err != nil {
		warn("invalid requirement spec: %q", spec)
		return
	}
	set.add(req)
}

// tableKeys returns the keys directly under the named table, in document
// order.
func tableKeys(md toml.MetaData, table ...string) []string {
	var keys []string
	for _, k := range md.Keys() {
		if len(k) != len(table)+1 {
			continue
		}
		match := true
		for i, part := range table {
			if k[i] != part {
				match = false
				break
			}
		}
		if match {
			keys = append(keys, k[len(table)])
		}
	}
	return keys
}
