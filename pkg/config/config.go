// Package config loads and saves the project configuration file
// (.pyninja.toml). Command-line flags override file values; the file
// overrides built-in defaults.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/terrrybug/pyninja/pkg/errors"
)

// DefaultFileName is the configuration file probed in the working
// directory.
const DefaultFileName = ".pyninja.toml"

// Config holds the persistent settings of an analysis run. Field names
// map to keys under the [pyninja] table.
type Config struct {
	SecurityFirst    bool     `toml:"security_first"`
	Modernize        bool     `toml:"modernize"`
	PerformanceFocus bool     `toml:"performance_focus"`
	AutoFix          bool     `toml:"auto_fix"`
	StrictMode       bool     `toml:"strict_mode"`
	TargetPython     string   `toml:"target_python"`
	TimeoutSeconds   int      `toml:"timeout"`
	MaxRetries       int      `toml:"max_retries"`
	MaxWorkers       int      `toml:"max_workers"`
	CacheDir         string   `toml:"cache_dir"`
	CacheTTLSeconds  int      `toml:"cache_ttl"`
	RedisURL         string   `toml:"redis_url"`
	MongoURI         string   `toml:"mongo_uri"`
	ExcludePackages  []string `toml:"exclude_packages"`
}

type fileLayout struct {
	Pyninja Config `toml:"pyninja"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SecurityFirst:   true,
		Modernize:       true,
		TargetPython:    "3.11",
		TimeoutSeconds:  15,
		MaxRetries:      3,
		MaxWorkers:      10,
		CacheTTLSeconds: 3600,
	}
}

// Load reads the configuration file at path, layered over the defaults.
// A missing file is not an error; the defaults are returned unchanged.
// An unreadable or malformed file is an INVALID_CONFIG error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading config %s", path)
	}

	layout := fileLayout{Pyninja: cfg}
	if _, err := toml.Decode(string(data), &layout); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config %s", path)
	}
	cfg = layout.Pyninja

	if cfg.TargetPython != "" {
		if _, _, err := errors.ParseTargetPython(cfg.TargetPython); err != nil {
			return Default(), err
		}
	}
	return cfg, nil
}

// Save writes the configuration to path under the [pyninja] table,
// creating parent directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultFileName
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "creating config directory %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "creating config %s", path)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(fileLayout{Pyninja: cfg}); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "encoding config %s", path)
	}
	return f.Close()
}
