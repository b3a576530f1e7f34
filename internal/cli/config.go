package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terrrybug/pyninja/pkg/config"
)

// configCommand creates the configuration management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and scaffold the .pyninja.toml configuration",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())

	return cmd
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			printKeyValue("target_python", cfg.TargetPython)
			printKeyValue("security_first", fmt.Sprintf("%t", cfg.SecurityFirst))
			printKeyValue("modernize", fmt.Sprintf("%t", cfg.Modernize))
			printKeyValue("performance_focus", fmt.Sprintf("%t", cfg.PerformanceFocus))
			printKeyValue("auto_fix", fmt.Sprintf("%t", cfg.AutoFix))
			printKeyValue("strict_mode", fmt.Sprintf("%t", cfg.StrictMode))
			printKeyValue("timeout", fmt.Sprintf("%ds", cfg.TimeoutSeconds))
			printKeyValue("max_retries", fmt.Sprintf("%d", cfg.MaxRetries))
			printKeyValue("max_workers", fmt.Sprintf("%d", cfg.MaxWorkers))
			printKeyValue("cache_ttl", fmt.Sprintf("%ds", cfg.CacheTTLSeconds))
			if cfg.CacheDir != "" {
				printKeyValue("cache_dir", cfg.CacheDir)
			}
			if cfg.RedisURL != "" {
				printKeyValue("redis_url", cfg.RedisURL)
			}
			if cfg.MongoURI != "" {
				printKeyValue("mongo_uri", cfg.MongoURI)
			}
			if len(cfg.ExcludePackages) > 0 {
				printKeyValue("exclude_packages", strings.Join(cfg.ExcludePackages, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "config", "", "path to .pyninja.toml")
	return cmd
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a .pyninja.toml with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = config.DefaultFileName
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			printSuccess("Configuration written")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "config", "", "path to .pyninja.toml")
	return cmd
}
