// Package registry fetches Python package metadata from the PyPI JSON API.
//
// The client caches responses, retries transient failures, and distinguishes
// unknown packages (PACKAGE_NOT_FOUND) from registry outages
// (REGISTRY_UNAVAILABLE) so callers can degrade per package instead of
// aborting a whole run.
package registry
