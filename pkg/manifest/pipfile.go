package manifest

import (
	"os"

	"github.com/BurntSushi/toml"
)

// pipfileFile maps the two dependency tables of a Pipfile. Values are either
// a version string ("*" for unconstrained) or a table with a "version" field.
type pipfileFile struct {
	Packages    map[string]any `toml:"packages"`
	DevPackages map[string]any `toml:"dev-packages"`
}

// parsePipfile unions the packages and dev-packages tables by document
// order; on a name collision the last writer wins, with no special
// precedence for dev-packages. This mirrors a plain dict merge, which is
// the historically observed behavior of this format's consumers.
func parsePipfile(path string, warn WarnFunc) ([]Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file pipfileFile
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, err
	}

	set := newRequirementSet()
	for _, key := range tableKeys(md, "packages") {
		addPipfileEntry(set, key, file.Packages[key], warn)
	}
	for _, key := range tableKeys(md, "dev-packages") {
		addPipfileEntry(set, key, file.DevPackages[key], warn)
	}
	return set.list(), nil
}

func addPipfileEntry(set *requirementSet, name string, value any, warn WarnFunc) {
	spec, ok := specValue(value)
	if !ok {
		warn("invalid Pipfile entry: %s", name)
		return
	}
	addNamed(set, name, spec, FormatPipfile, warn)
}
