package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/terrrybug/pyninja/pkg/advisory"
	"github.com/terrrybug/pyninja/pkg/errors"
	"github.com/terrrybug/pyninja/pkg/registry"
)

type stubFetcher map[string]*registry.Metadata

func (s stubFetcher) FetchMetadata(ctx context.Context, pkg string, refresh bool) (*registry.Metadata, error) {
	if m, ok := s[pkg]; ok {
		return m, nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "pypi package %s", pkg)
}

type stubChecker map[string][]advisory.Advisory

func (s stubChecker) Check(ctx context.Context, pkg, version string, refresh bool) ([]advisory.Advisory, error) {
	return s[pkg+"@"+version], nil
}

func testServer() *Server {
	return &Server{
		logger: log.New(os.Stderr),
		fetcher: stubFetcher{
			"requests": {
				Name:            "requests",
				Version:         "2.31.0",
				Classifiers:     []string{"Programming Language :: Python :: 3.11"},
				ReleaseVersions: []string{"2.19.0", "2.31.0"},
			},
		},
		advisories: stubChecker{
			"requests@2.19.0": {{ID: "GHSA-x84v-xcm2-53pg"}},
		},
	}
}

func TestHealthz(t *testing.T) {
	ts := httptest.NewServer(testServer().Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	ts := httptest.NewServer(testServer().Router())
	defer ts.Close()

	body := `{
		"requirements": [{"name": "Requests", "constraint": "==2.19.0"}],
		"target_python": "3.11",
		"security": true
	}`
	resp, err := http.Post(ts.URL+"/v1/analyze", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		Report struct {
			TargetPython string `json:"target_python"`
			Totals       struct {
				PackageCount        int `json:"package_count"`
				PackagesWithUpdates int `json:"packages_with_updates"`
				AdvisoryCount       int `json:"advisory_count"`
			} `json:"totals"`
		} `json:"report"`
		Packages []struct {
			Name                string `json:"name"`
			LatestStableVersion string `json:"latest_stable_version"`
		} `json:"packages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if out.Report.Totals.PackageCount != 1 {
		t.Errorf("package count = %d", out.Report.Totals.PackageCount)
	}
	if out.Report.Totals.PackagesWithUpdates != 1 {
		t.Errorf("2.19.0 should be outdated against 2.31.0, got %d updates", out.Report.Totals.PackagesWithUpdates)
	}
	if out.Report.Totals.AdvisoryCount != 1 {
		t.Errorf("pinned version should drive the advisory check, got %d advisories", out.Report.Totals.AdvisoryCount)
	}
	if len(out.Packages) != 1 || out.Packages[0].Name != "requests" {
		t.Errorf("packages = %+v", out.Packages)
	}
	if out.Packages[0].LatestStableVersion != "2.31.0" {
		t.Errorf("stable = %q", out.Packages[0].LatestStableVersion)
	}
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	ts := httptest.NewServer(testServer().Router())
	defer ts.Close()

	tests := []struct {
		name string
		body string
	}{
		{"empty requirements", `{"requirements": []}`},
		{"bad target", `{"requirements": [{"name": "requests"}], "target_python": "2.7"}`},
		{"bad package name", `{"requirements": [{"name": "../evil"}]}`},
		{"malformed json", `{"requirements": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/v1/analyze", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestAnalyzeEndpointUnknownPackage(t *testing.T) {
	ts := httptest.NewServer(testServer().Router())
	defer ts.Close()

	body := `{"requirements": [{"name": "no-such-package"}]}`
	resp, err := http.Post(ts.URL+"/v1/analyze", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unknown packages should not fail the request, status = %d", resp.StatusCode)
	}

	var out struct {
		Packages []struct {
			LatestVersion string `json:"latest_version"`
		} `json:"packages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Packages) != 1 || out.Packages[0].LatestVersion != "unknown" {
		t.Errorf("packages = %+v", out.Packages)
	}
}
