// Package cache provides the time-boxed response cache used by the registry
// and advisory clients.
//
// Entries are opaque JSON payloads addressed by hashed keys. An entry is
// valid only while its age is below the cache TTL; expired or corrupt entries
// are reported as misses and left in place until the next successful write
// overwrites them (lazy invalidation, absence-on-read semantics).
//
// Three backends are provided:
//   - [FileCache]: per-process file storage, the CLI default
//   - [RedisCache]: shared storage for multi-instance deployments
//   - [NullCache]: no-op, for tests and --refresh runs
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultTTL is the validity window for cache entries.
const DefaultTTL = time.Hour

// Cache stores remote-lookup responses keyed by opaque strings.
// Implementations must be safe for concurrent use. Concurrent writers to the
// same key race with last-write-wins semantics; values are idempotent
// re-derivations of the same remote fact, so this is acceptable.
type Cache interface {
	// Get retrieves a cached value. A miss (hit=false) is returned when no
	// entry exists, the entry has outlived the TTL, or the entry cannot be
	// decoded. Corruption is never surfaced as an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value, overwriting any previous entry for the key and
	// restarting its TTL window.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Key builds a cache key from an operation name and its normalized inputs,
// e.g. Key("metadata", "requests") or Key("advisories", "flask", "2.0.0").
// The parts are joined before hashing so arbitrarily long or unusual inputs
// produce fixed-length, filesystem-safe identifiers.
func Key(op string, parts ...string) string {
	joined := op
	for _, p := range parts {
		joined += ":" + p
	}
	return op + ":" + Hash([]byte(joined))
}
