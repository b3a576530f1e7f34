package manifest

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Flask_Session", "flask-session"},
		{"flask-session", "flask-session"},
		{"  Requests  ", "requests"},
		{"PyYAML", "pyyaml"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	// Fixed point: normalizing a normalized name returns it unchanged.
	for _, tt := range tests {
		if got := Normalize(tt.want); got != tt.want {
			t.Errorf("Normalize(%q) not a fixed point: %q", tt.want, got)
		}
	}
}

func TestParseRequirementsTxt(t *testing.T) {
	content := `# production dependencies
requests==2.31.0
Flask_Session>=0.5
django

-e .
-r other.txt
--index-url https://example.com/simple
git+https://github.com/psf/requests.git
https://example.com/pkg.tar.gz
./local/pkg
../sibling
/absolute/path

flask[async]>=2.0 ; python_version >= "3.8"
this is ==not a requirement==
`
	path := writeFile(t, t.TempDir(), "requirements.txt", content)

	var warnings []string
	warn := func(format string, args ...any) { warnings = append(warnings, format) }

	reqs, err := Parse(path, FormatRequirementsTxt, warn)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []Requirement{
		{Name: "requests", Constraint: "==2.31.0", Source: FormatRequirementsTxt},
		{Name: "flask-session", Constraint: ">=0.5", Source: FormatRequirementsTxt},
		{Name: "django", Constraint: AnyConstraint, Source: FormatRequirementsTxt},
		{Name: "flask", Constraint: ">=2.0", Source: FormatRequirementsTxt},
	}
	if !reflect.DeepEqual(reqs, want) {
		t.Errorf("Parse = %+v, want %+v", reqs, want)
	}
	if len(warnings) != 1 {
		t.Errorf("expected 1 warning for the malformed line, got %d", len(warnings))
	}
}

func TestParseRequirementsTxtIdempotent(t *testing.T) {
	path := writeFile(t, t.TempDir(), "requirements.txt", "requests==2.0.0\nflask\n")
	first, err := Parse(path, FormatRequirementsTxt, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := Parse(path, FormatRequirementsTxt, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("parsing twice should yield identical requirement lists")
	}
}

func TestParseRequirementsTxtDuplicateLastWins(t *testing.T) {
	path := writeFile(t, t.TempDir(), "requirements.txt", "requests==1.0.0\nflask\nRequests==2.0.0\n")
	reqs, err := Parse(path, FormatRequirementsTxt, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(reqs))
	}
	if reqs[0].Name != "requests" || reqs[0].Constraint != "==2.0.0" {
		t.Errorf("duplicate should keep first position with last value, got %+v", reqs[0])
	}
}

func TestParsePyproject(t *testing.T) {
	content := `[build-system]
requires = ["setuptools>=61", "wheel"]

[project]
name = "demo"
dependencies = ["httpx>=0.24", "pydantic==2.5.0"]

[tool.poetry.dependencies]
python = "^3.11"
requests = "^2.31"
numpy = { version = ">=1.24", optional = true }
`
	path := writeFile(t, t.TempDir(), "pyproject.toml", content)
	reqs, err := Parse(path, FormatPyprojectTOML, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	names := make([]string, len(reqs))
	for i, r := range reqs {
		names[i] = r.Name
	}
	want := []string{"requests", "numpy", "httpx", "pydantic", "setuptools", "wheel"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}

	byName := make(map[string]Requirement)
	for _, r := range reqs {
		byName[r.Name] = r
	}
	if byName["requests"].Constraint != "^2.31" {
		t.Errorf("requests constraint = %q", byName["requests"].Constraint)
	}
	if byName["numpy"].Constraint != ">=1.24" {
		t.Errorf("numpy constraint = %q", byName["numpy"].Constraint)
	}
	if byName["wheel"].Constraint != AnyConstraint {
		t.Errorf("wheel constraint = %q", byName["wheel"].Constraint)
	}
}

func TestParsePipfile(t *testing.T) {
	content := `[packages]
requests = "*"
flask = ">=2.0"
numpy = { version = "==1.26.0" }

[dev-packages]
pytest = "*"
flask = ">=3.0"
`
	path := writeFile(t, t.TempDir(), "Pipfile", content)
	reqs, err := Parse(path, FormatPipfile, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	byName := make(map[string]Requirement)
	var names []string
	for _, r := range reqs {
		byName[r.Name] = r
		names = append(names, r.Name)
	}

	want := []string{"requests", "flask", "numpy", "pytest"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
	if byName["requests"].Constraint != AnyConstraint {
		t.Errorf(`"*" should map to an unconstrained requirement, got %q`, byName["requests"].Constraint)
	}
	// Plain union: the later dev-packages entry wins the collision.
	if byName["flask"].Constraint != ">=3.0" {
		t.Errorf("flask constraint = %q, want the dev-packages value", byName["flask"].Constraint)
	}
	if byName["numpy"].Constraint != "==1.26.0" {
		t.Errorf("numpy constraint = %q", byName["numpy"].Constraint)
	}
}

func TestDetectPriorityOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Pipfile", "[packages]\n")
	writeFile(t, dir, "pyproject.toml", "[project]\nname = \"x\"\n")

	path, format, ok := Detect(dir)
	if !ok {
		t.Fatal("Detect should find a manifest")
	}
	if format != FormatPyprojectTOML {
		t.Errorf("format = %s, want pyproject.toml (priority over Pipfile)", format)
	}

	writeFile(t, dir, "requirements.txt", "requests\n")
	path, format, ok = Detect(dir)
	if !ok || format != FormatRequirementsTxt {
		t.Errorf("requirements.txt should win detection, got %s", format)
	}
	if filepath.Base(path) != "requirements.txt" {
		t.Errorf("path = %s", path)
	}
}

func TestParseDirNoManifest(t *testing.T) {
	reqs, _, ok, err := ParseDir(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("ParseDir: %v", err)
	}
	if ok {
		t.Error("ok should be false when no manifest exists")
	}
	if len(reqs) != 0 {
		t.Errorf("expected empty requirement list, got %d", len(reqs))
	}
}
