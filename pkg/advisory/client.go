// Package advisory queries the OSV database for known vulnerabilities
// affecting a specific package version in the PyPI ecosystem.
package advisory

import (
	"context"

	"github.com/terrrybug/pyninja/pkg/cache"
	"github.com/terrrybug/pyninja/pkg/errors"
	"github.com/terrrybug/pyninja/pkg/httputil"
	"github.com/terrrybug/pyninja/pkg/manifest"
)

// DefaultBaseURL is the production OSV query endpoint.
const DefaultBaseURL = "https://osv.dev/api/v1/query"

// Advisory is a single vulnerability record as returned by OSV.
// Fields beyond the identifier are best-effort; OSV records vary in
// completeness.
type Advisory struct {
	ID      string   `json:"id"`
	Summary string   `json:"summary"`
	Details string   `json:"details"`
	Aliases []string `json:"aliases"`
}

// Client queries the OSV vulnerability database.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*httputil.Client
	baseURL string
}

// NewClient creates an OSV client with the given cache backend.
// A nil backend disables caching.
func NewClient(backend cache.Cache) *Client {
	return &Client{
		Client:  httputil.NewClient(backend, nil),
		baseURL: DefaultBaseURL,
	}
}

// NewClientWithBaseURL creates a client against a non-standard endpoint,
// typically a test server.
func NewClientWithBaseURL(backend cache.Cache, baseURL string) *Client {
	c := NewClient(backend)
	c.baseURL = baseURL
	return c
}

// Check returns the advisories affecting the given package at the given
// installed version. The version must be concrete; callers that cannot
// determine an installed version should skip the check rather than pass a
// constraint expression.
//
// A package with no advisories yields an empty slice and a nil error.
func (c *Client) Check(ctx context.Context, pkg, version string, refresh bool) ([]Advisory, error) {
	pkg = manifest.Normalize(pkg)
	if err := errors.ValidatePythonPackageName(pkg); err != nil {
		return nil, err
	}
	if version == "" {
		return nil, errors.New(errors.ErrCodeInvalidPackage, "advisory check for %s requires a concrete version", pkg)
	}
	key := cache.Key("advisories", pkg, version)

	var resp queryResponse
	err := c.Cached(ctx, key, refresh, &resp, func() error {
		return c.PostJSON(ctx, c.baseURL, queryRequest{
			Package: queryPackage{Name: pkg, Ecosystem: "PyPI"},
			Version: version,
		}, &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.Vulns == nil {
		return []Advisory{}, nil
	}
	return resp.Vulns, nil
}

type queryRequest struct {
	Package queryPackage `json:"package"`
	Version string       `json:"version"`
}

type queryPackage struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

type queryResponse struct {
	Vulns []Advisory `json:"vulns"`
}
