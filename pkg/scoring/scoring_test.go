package scoring

import (
	"reflect"
	"testing"
	"time"

	"github.com/terrrybug/pyninja/pkg/registry"
)

func TestCompatibilityScore(t *testing.T) {
	tests := []struct {
		name        string
		classifiers []string
		want        float64
	}{
		{
			name:        "no classifiers",
			classifiers: nil,
			want:        0.5,
		},
		{
			name:        "major-only classifier carries no signal",
			classifiers: []string{"Programming Language :: Python :: 3"},
			want:        0.5,
		},
		{
			name: "exact target listed",
			classifiers: []string{
				"Programming Language :: Python :: 3.10",
				"Programming Language :: Python :: 3.11",
			},
			want: 1.0,
		},
		{
			name:        "newer than target listed",
			classifiers: []string{"Programming Language :: Python :: 3.12"},
			want:        0.8,
		},
		{
			name: "only older versions listed",
			classifiers: []string{
				"Programming Language :: Python :: 2.7",
				"Programming Language :: Python :: 3.6",
			},
			want: 0.3,
		},
		{
			name: "unrelated classifiers ignored",
			classifiers: []string{
				"License :: OSI Approved :: MIT License",
				"Programming Language :: Python :: 3.11",
			},
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompatibilityScore(tt.classifiers, 3, 11); got != tt.want {
				t.Errorf("CompatibilityScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommunityScore(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	empty := &registry.Metadata{}
	if got := CommunityScore(empty, now); got != 0.0 {
		t.Errorf("empty metadata should score 0, got %v", got)
	}

	full := &registry.Metadata{
		Description:     string(make([]byte, 150)),
		Keywords:        "web, framework",
		License:         "MIT",
		ProjectURLs:     map[string]string{"Source": "https://example.com"},
		UploadTime:      now.AddDate(0, -1, 0),
		ReleaseVersions: make([]string, 20),
	}
	if got := CommunityScore(full, now); got != 1.0 {
		t.Errorf("fully healthy metadata should cap at 1.0, got %v", got)
	}

	// The recency buckets are mutually exclusive.
	stale := &registry.Metadata{UploadTime: now.AddDate(0, -18, 0)}
	if got := CommunityScore(stale, now); got != 0.2 {
		t.Errorf("18-month-old release should score 0.2, got %v", got)
	}
	ancient := &registry.Metadata{UploadTime: now.AddDate(-3, 0, 0)}
	if got := CommunityScore(ancient, now); got != 0.0 {
		t.Errorf("3-year-old release should score 0, got %v", got)
	}
}

func TestIsDeprecated(t *testing.T) {
	if !IsDeprecated("This package is DEPRECATED, use foo instead") {
		t.Error("expected deprecation to be detected case-insensitively")
	}
	if IsDeprecated("A fast HTTP client") {
		t.Error("expected clean description to pass")
	}
	// The check is a blunt substring match by design of the heuristic.
	if !IsDeprecated("Replaces the deprecated foo module") {
		t.Error("substring semantics should flag any mention")
	}
}

func TestModernizationHints(t *testing.T) {
	tests := []struct {
		name        string
		pkg         string
		performance bool
		want        []string
	}{
		{
			name: "legacy removal",
			pkg:  "six",
			want: []string{"Remove six - it's built into Python 3.11"},
		},
		{
			name: "legacy replacement",
			pkg:  "pycrypto",
			want: []string{"Replace pycrypto with pycryptodome"},
		},
		{
			name: "modern alternatives",
			pkg:  "urllib3",
			want: []string{"Consider modern alternatives: httpx, aiohttp"},
		},
		{
			name:        "alternatives plus performance hint",
			pkg:         "requests",
			performance: true,
			want: []string{
				"Consider modern alternatives: httpx, aiohttp",
				"Use httpx for async HTTP requests",
			},
		},
		{
			name: "performance hint suppressed without the flag",
			pkg:  "requests",
			want: []string{"Consider modern alternatives: httpx, aiohttp"},
		},
		{
			name: "unknown package",
			pkg:  "fastapi",
			want: nil,
		},
		{
			name: "lookup is case-insensitive",
			pkg:  "PIL",
			want: []string{"Replace PIL with Pillow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ModernizationHints(tt.pkg, "3.11", tt.performance)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ModernizationHints(%q) = %v, want %v", tt.pkg, got, tt.want)
			}
		})
	}
}
