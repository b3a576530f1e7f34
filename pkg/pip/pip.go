// Package pip shells out to the local pip installation to resolve
// installed package versions and apply requirement updates.
package pip

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/terrrybug/pyninja/pkg/errors"
)

// runFunc executes a command and returns its combined standard output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Resolver looks up locally installed package versions via "pip show" and
// installs requirement sets via "pip install". A zero Resolver is not
// usable; construct one with NewResolver.
type Resolver struct {
	python string
	run    runFunc
}

// NewResolver returns a Resolver driving the given Python interpreter
// ("python3" when empty).
func NewResolver(python string) *Resolver {
	if python == "" {
		python = "python3"
	}
	return &Resolver{
		python: python,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// InstalledVersion returns the locally installed version of a package, or
// an empty string when the package is not installed. A missing package is
// not an error; callers use the empty result to skip version-specific
// checks.
func (r *Resolver) InstalledVersion(ctx context.Context, pkg string) (string, error) {
	if err := errors.ValidatePythonPackageName(pkg); err != nil {
		return "", err
	}
	out, err := r.run(ctx, r.python, "-m", "pip", "show", pkg)
	if err != nil {
		// pip exits non-zero when the package is absent.
		if _, ok := err.(*exec.ExitError); ok {
			return "", nil
		}
		return "", errors.Wrap(errors.ErrCodeInternal, err, "running pip show %s", pkg)
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if v, ok := strings.CutPrefix(line, "Version:"); ok {
			return strings.TrimSpace(v), nil
		}
	}
	return "", nil
}

// Install runs "pip install -r" against the given requirements file.
func (r *Resolver) Install(ctx context.Context, requirementsPath string) error {
	if err := errors.ValidateManifestPath(requirementsPath); err != nil {
		return err
	}
	if _, err := r.run(ctx, r.python, "-m", "pip", "install", "-r", requirementsPath); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "installing from %s", requirementsPath)
	}
	return nil
}
