package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache implements a file-based cache for CLI usage.
// Each entry is a JSON file whose name is derived from the hashed key, so
// multiple processes can share a directory. Writes to one key are not
// synchronized; concurrent writers race and the last write wins.
type FileCache struct {
	dir string
	ttl time.Duration
}

// NewFileCache creates a file-based cache in the given directory.
// The directory is created if it doesn't exist. If dir is empty, the default
// ~/.cache/pyninja is used. A ttl of 0 falls back to [DefaultTTL].
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "pyninja")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FileCache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory path.
func (c *FileCache) Dir() string { return c.dir }

// TTL returns the validity window applied at read time.
func (c *FileCache) TTL() time.Duration { return c.ttl }

// entry wraps cached data with the write timestamp. Expiry is evaluated
// against the cache TTL on every read, so shortening the TTL invalidates
// old entries retroactively.
type entry struct {
	StoredAt time.Time       `json:"stored_at"`
	Payload  json.RawMessage `json:"payload"`
}

// Get retrieves a value from the cache. Expired and unreadable entries are
// misses; the stale file stays on disk until the next Set overwrites it.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(c.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		// Corrupt entry: treat as miss, self-heals on the next write.
		return nil, false, nil
	}
	if time.Since(e.StoredAt) >= c.ttl {
		return nil, false, nil
	}
	return e.Payload, true, nil
}

// Set stores a value in the cache, overwriting any existing entry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte) error {
	e := entry{StoredAt: time.Now(), Payload: data}
	out, err := json.Marshal(e)
	if err != nil {
		return err
	}
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

// Delete removes a value from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for a file cache.
func (c *FileCache) Close() error { return nil }

// path converts a cache key to a file path.
// The first two hash characters form a subdirectory so one directory never
// accumulates every entry.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
