package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/terrrybug/pyninja/pkg/cache"
	"github.com/terrrybug/pyninja/pkg/errors"
	"github.com/terrrybug/pyninja/pkg/httputil"
	"github.com/terrrybug/pyninja/pkg/manifest"
)

// DefaultBaseURL is the production PyPI JSON API endpoint.
const DefaultBaseURL = "https://pypi.org/pypi"

// Metadata holds the registry's view of a single package, reduced to the
// fields the analysis pipeline consumes. ReleaseVersions lists the version
// keys of the releases table in no particular order.
//
// Zero values: string fields empty, slices and maps nil, UploadTime zero.
// Safe for concurrent reads after construction.
type Metadata struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Summary         string            `json:"summary"`
	Description     string            `json:"description"`
	License         string            `json:"license"`
	HomePage        string            `json:"home_page"`
	Keywords        string            `json:"keywords"`
	Classifiers     []string          `json:"classifiers"`
	ProjectURLs     map[string]string `json:"project_urls"`
	UploadTime      time.Time         `json:"upload_time"`
	ReleaseVersions []string          `json:"release_versions"`
}

// ReleaseCount returns the number of distinct released versions.
func (m *Metadata) ReleaseCount() int {
	return len(m.ReleaseVersions)
}

// Client provides access to the PyPI package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*httputil.Client
	baseURL string
}

// NewClient creates a PyPI client with the given cache backend.
// A nil backend disables caching.
func NewClient(backend cache.Cache) *Client {
	return &Client{
		Client:  httputil.NewClient(backend, nil),
		baseURL: DefaultBaseURL,
	}
}

// NewClientWithBaseURL creates a client against a non-standard endpoint,
// such as a private mirror or a test server.
func NewClientWithBaseURL(backend cache.Cache, baseURL string) *Client {
	c := NewClient(backend)
	c.baseURL = baseURL
	return c
}

// FetchMetadata retrieves metadata for a Python package.
//
// The pkg parameter is normalized automatically (PEP 503). If refresh is
// true the cache is bypassed and a fresh API call is made.
//
// Errors carry PACKAGE_NOT_FOUND when the registry has no such package and
// REGISTRY_UNAVAILABLE for transport failures. The returned pointer is
// never nil when err is nil.
func (c *Client) FetchMetadata(ctx context.Context, pkg string, refresh bool) (*Metadata, error) {
	pkg = manifest.Normalize(pkg)
	if err := errors.ValidatePythonPackageName(pkg); err != nil {
		return nil, err
	}
	key := cache.Key("metadata", pkg)

	var meta Metadata
	err := c.Cached(ctx, key, refresh, &meta, func() error {
		return c.fetch(ctx, pkg, &meta)
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, meta *Metadata) error {
	var data apiResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return errors.Wrap(errors.ErrCodeNotFound, err, "pypi package %s", pkg)
		}
		return err
	}

	urls := make(map[string]string, len(data.Info.ProjectURLs))
	for k, v := range data.Info.ProjectURLs {
		if s, ok := v.(string); ok {
			urls[k] = s
		}
	}
	versions := make([]string, 0, len(data.Releases))
	for v := range data.Releases {
		versions = append(versions, v)
	}

	*meta = Metadata{
		Name:            data.Info.Name,
		Version:         data.Info.Version,
		Summary:         data.Info.Summary,
		Description:     data.Info.Description,
		License:         data.Info.License,
		HomePage:        data.Info.HomePage,
		Keywords:        data.Info.Keywords,
		Classifiers:     data.Info.Classifiers,
		ProjectURLs:     urls,
		UploadTime:      parseUploadTime(data.Info.UploadTime),
		ReleaseVersions: versions,
	}
	return nil
}

// parseUploadTime handles the two timestamp shapes the API emits: bare
// ISO 8601 ("2023-10-01T12:00:00") and RFC 3339 with a zone suffix.
// An unparseable or missing value yields the zero time.
func parseUploadTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

type apiResponse struct {
	Info     apiInfo          `json:"info"`
	Releases map[string][]any `json:"releases"`
}

type apiInfo struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Summary     string         `json:"summary"`
	Description string         `json:"description"`
	License     string         `json:"license"`
	HomePage    string         `json:"home_page"`
	Keywords    string         `json:"keywords"`
	Classifiers []string       `json:"classifiers"`
	ProjectURLs map[string]any `json:"project_urls"`
	UploadTime  string         `json:"upload_time"`
}
