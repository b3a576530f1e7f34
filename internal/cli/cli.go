// Package cli implements the pyninja command-line interface.
//
// The CLI analyzes Python dependency manifests (requirements.txt,
// pyproject.toml, Pipfile) for outdated pins, security advisories,
// deprecations, and modernization opportunities. Commands are built with
// cobra; all of them log through charmbracelet/log, attached to the
// command context.
//
// # Commands
//
//   - analyze: run the full dependency analysis pipeline
//   - cache: manage the response cache
//   - config: inspect and scaffold the .pyninja.toml configuration
//   - serve: expose the analysis pipeline over HTTP
//   - completion: generate shell completion scripts
package cli

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/terrrybug/pyninja/pkg/buildinfo"
	"github.com/terrrybug/pyninja/pkg/cache"
	"github.com/terrrybug/pyninja/pkg/config"
)

// appName is the application name used for directories and display.
const appName = "pyninja"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Pyninja analyzes and modernizes Python dependencies",
		Long:         `Pyninja analyzes Python dependency manifests for outdated pins, known security advisories, deprecated packages, and modernization opportunities, and can rewrite the requirements file with updated versions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newCacheBackend selects the response cache: Redis when configured, the
// XDG file cache otherwise, and the null cache as a last resort or when
// caching is disabled.
func (c *CLI) newCacheBackend(cfg config.Config, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(cfg.RedisURL, ttl)
		if err == nil {
			return rc
		}
		c.Logger.Warnf("Redis cache unavailable, falling back to files: %v", err)
	}

	dir := cfg.CacheDir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir, ttl)
	if err != nil {
		c.Logger.Warnf("File cache unavailable, caching disabled: %v", err)
		return cache.NewNullCache()
	}
	return fc
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/pyninja/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
