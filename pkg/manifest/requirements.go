package manifest

import (
	"bufio"
	"os"
	"strings"
)

// vcsPrefixes mark requirement lines pointing at version-control sources.
var vcsPrefixes = []string{"git+", "hg+", "svn+", "bzr+"}

// parseRequirementsTxt parses a traditional requirements.txt file: one
// requirement per non-blank, non-comment line. Option lines (-e, -r, -f,
// --flag), VCS URLs, and local paths are skipped silently; a malformed
// requirement spec is reported through warn and skipped, and parsing of the
// remaining lines continues.
func parseRequirementsTxt(path string, warn WarnFunc) ([]Requirement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	set := newRequirementSet()
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if skipRequirementsLine(line) {
			continue
		}
		req, err := parseSpec(line, FormatRequirementsTxt)
		if err != nil {
			warn("invalid requirement at line %d: %s", lineNum, line)
			continue
		}
		set.add(req)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return set.list(), nil
}

// skipRequirementsLine reports whether a line carries no requirement:
// blanks, comments, pip options, VCS URLs, and local paths.
func skipRequirementsLine(line string) bool {
	if line == "" || strings.HasPrefix(line, "#") {
		return true
	}
	// Option markers: -e, -r, -f, --anything.
	if strings.HasPrefix(line, "-") {
		return true
	}
	for _, p := range vcsPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	// Any scheme://, including https:// and file://.
	if strings.Contains(line, "://") {
		return true
	}
	// Local paths.
	if strings.HasPrefix(line, "./") || strings.HasPrefix(line, "../") || strings.HasPrefix(line, "/") {
		return true
	}
	return false
}
