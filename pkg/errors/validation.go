package errors

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety and correctness.
// It rejects names that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, backslash)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// pythonPackageNameRegex matches valid Python package names (PEP 508).
var pythonPackageNameRegex = regexp.MustCompile(`^([A-Za-z0-9]|[A-Za-z0-9][A-Za-z0-9._-]*[A-Za-z0-9])$`)

// ValidatePythonPackageName validates a Python package name per PEP 508.
func ValidatePythonPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	if !pythonPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid Python package name: %q", name)
	}

	return nil
}

// targetVersionRegex matches a target Python version of the form "X.Y".
var targetVersionRegex = regexp.MustCompile(`^(\d+)\.(\d+)$`)

// ParseTargetPython validates and splits a target Python version string.
// The version must be in "major.minor" form (e.g., "3.11") and at least 3.8;
// anything else is an INVALID_CONFIG error, reported before the pipeline runs.
func ParseTargetPython(version string) (major, minor int, err error) {
	m := targetVersionRegex.FindStringSubmatch(version)
	if m == nil {
		return 0, 0, New(ErrCodeInvalidConfig, "target Python version must be in X.Y form (e.g., 3.11), got %q", version)
	}
	major, _ = strconv.Atoi(m[1])
	minor, _ = strconv.Atoi(m[2])
	if major < 3 || (major == 3 && minor < 8) {
		return 0, 0, New(ErrCodeInvalidConfig, "target Python version must be 3.8 or higher, got %q", version)
	}
	return major, minor, nil
}

// ValidateManifestPath validates a user-supplied manifest path.
// It ensures the path is non-empty and free of null bytes; existence is
// checked separately so that a missing manifest can map to auto-detection.
func ValidateManifestPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "manifest path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidPath, "manifest path contains invalid characters")
	}
	return nil
}
