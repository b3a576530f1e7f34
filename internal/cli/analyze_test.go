package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/terrrybug/pyninja/pkg/config"
	"github.com/terrrybug/pyninja/pkg/manifest"
)

func testCLI() *CLI {
	return New(io.Discard, LogInfo)
}

func TestLoadRequirementsExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "requirements.txt")
	if err := os.WriteFile(path, []byte("requests==2.31.0\nflask\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reqs, source, err := testCLI().loadRequirements(dir, path)
	if err != nil {
		t.Fatalf("loadRequirements: %v", err)
	}
	if len(reqs) != 2 {
		t.Errorf("expected 2 requirements, got %d", len(reqs))
	}
	if source != path {
		t.Errorf("source = %q", source)
	}
}

func TestLoadRequirementsAutoDetect(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte("[project]\nname = \"x\"\ndependencies = [\"httpx>=0.24\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reqs, source, err := testCLI().loadRequirements(dir, "")
	if err != nil {
		t.Fatalf("loadRequirements: %v", err)
	}
	if len(reqs) != 1 || reqs[0].Name != "httpx" {
		t.Errorf("reqs = %+v", reqs)
	}
	if source != "pyproject.toml" {
		t.Errorf("source = %q", source)
	}
}

func TestLoadRequirementsNoManifest(t *testing.T) {
	reqs, _, err := testCLI().loadRequirements(t.TempDir(), "")
	if err != nil {
		t.Fatalf("loadRequirements: %v", err)
	}
	if len(reqs) != 0 {
		t.Errorf("expected no requirements, got %d", len(reqs))
	}
}

func TestLoadRequirementsRejectsUnsupportedFile(t *testing.T) {
	if _, _, err := testCLI().loadRequirements(".", "setup.py"); err == nil {
		t.Fatal("expected error for unsupported manifest")
	}
}

func TestFilterExcluded(t *testing.T) {
	reqs := []manifest.Requirement{
		{Name: "requests"},
		{Name: "flask-session"},
		{Name: "numpy"},
	}

	got := filterExcluded(reqs, []string{"Flask_Session"})
	if len(got) != 2 {
		t.Fatalf("got %d requirements, want 2", len(got))
	}
	if got[0].Name != "requests" || got[1].Name != "numpy" {
		t.Errorf("got %+v", got)
	}
}

func TestMergeFlags(t *testing.T) {
	c := testCLI()
	cmd := c.analyzeCommand()
	if err := cmd.Flags().Set("security-first", "false"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("performance", "true"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("python-version", "3.12"); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	opts := &analyzeOpts{securityFirst: false, performance: true, pythonVersion: "3.12"}
	mergeFlags(cmd, &cfg, opts)

	if cfg.SecurityFirst {
		t.Error("explicit --security-first=false should override the config")
	}
	if !cfg.PerformanceFocus {
		t.Error("--performance should enable performance focus")
	}
	if cfg.TargetPython != "3.12" {
		t.Errorf("TargetPython = %q", cfg.TargetPython)
	}
	// Flags left untouched keep the config's values.
	if !cfg.Modernize {
		t.Error("modernize should keep its default")
	}
}
