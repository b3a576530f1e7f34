package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/terrrybug/pyninja/pkg/advisory"
	"github.com/terrrybug/pyninja/pkg/analysis"
	"github.com/terrrybug/pyninja/pkg/config"
	"github.com/terrrybug/pyninja/pkg/errors"
	"github.com/terrrybug/pyninja/pkg/manifest"
	"github.com/terrrybug/pyninja/pkg/pip"
	"github.com/terrrybug/pyninja/pkg/registry"
	"github.com/terrrybug/pyninja/pkg/report"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	file          string // manifest path (auto-detected if empty)
	output        string // output file for updated requirements
	autoFix       bool   // write updates and install them
	strict        bool   // non-zero exit when critical issues found
	securityFirst bool   // advisory scanning
	modernize     bool   // modernization hints
	performance   bool   // performance-focused hints
	pythonVersion string // target Python version, e.g. "3.11"
	githubPR      bool   // write a PR description file
	dryRun        bool   // report what would change without writing
	interactive   bool   // browse results in the TUI
	cacheClear    bool   // clear the response cache before running
	exportReport  string // JSON report export path
	storeURI      string // MongoDB URI for report history
	refresh       bool   // bypass the response cache
	noCache       bool   // disable the response cache entirely
	configPath    string // explicit .pyninja.toml path
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze [directory]",
		Short: "Analyze Python dependencies for updates, advisories, and modernization",
		Long: `Analyze a Python dependency manifest for outdated pins, known security
advisories, deprecated packages, and modernization opportunities.

The manifest is auto-detected in the given directory (requirements.txt,
then pyproject.toml, then Pipfile) unless --file points at one directly.

Examples:
  pyninja analyze                          # auto-detect in the working directory
  pyninja analyze ./backend                # auto-detect in ./backend
  pyninja analyze -f requirements.txt      # explicit manifest
  pyninja analyze --strict --export-report report.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runAnalyze(cmd, dir, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "requirements file path (auto-detected if not specified)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file for updated requirements")
	cmd.Flags().BoolVar(&opts.autoFix, "auto-fix", false, "write updated requirements and install them")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with error code if critical issues are found")
	cmd.Flags().BoolVar(&opts.securityFirst, "security-first", true, "scan installed packages for known advisories")
	cmd.Flags().BoolVar(&opts.modernize, "modernize", true, "suggest modern alternatives")
	cmd.Flags().BoolVar(&opts.performance, "performance", false, "focus on performance improvements")
	cmd.Flags().StringVar(&opts.pythonVersion, "python-version", "", "target Python version (e.g. 3.11)")
	cmd.Flags().BoolVar(&opts.githubPR, "github-pr", false, "generate a GitHub PR description")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show what would be changed without making changes")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "browse results interactively")
	cmd.Flags().BoolVar(&opts.cacheClear, "cache-clear", false, "clear the response cache before running")
	cmd.Flags().StringVar(&opts.exportReport, "export-report", "", "export the detailed report to a JSON file")
	cmd.Flags().StringVar(&opts.storeURI, "store", "", "MongoDB URI for persisting report history")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the response cache")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to .pyninja.toml")

	return cmd
}

func (c *CLI) runAnalyze(cmd *cobra.Command, dir string, opts *analyzeOpts) error {
	ctx := withLogger(cmd.Context(), c.Logger)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	mergeFlags(cmd, &cfg, opts)

	major, minor, err := errors.ParseTargetPython(cfg.TargetPython)
	if err != nil {
		return err
	}

	if opts.cacheClear {
		if dir, err := cacheDir(); err == nil {
			if err := os.RemoveAll(dir); err == nil {
				printInfo("Cache cleared")
			}
		}
	}

	reqs, source, err := c.loadRequirements(dir, opts.file)
	if err != nil {
		return err
	}
	reqs = filterExcluded(reqs, cfg.ExcludePackages)
	if len(reqs) == 0 {
		printWarning("No requirements found to analyze")
		return nil
	}
	printInfo("Found %d packages in %s", len(reqs), source)

	if opts.interactive && !confirmProceed() {
		printWarning("Analysis cancelled")
		return nil
	}

	backend := c.newCacheBackend(cfg, opts.noCache)
	defer backend.Close()

	analyzer := analysis.New(
		registry.NewClient(backend),
		advisory.NewClient(backend),
		pip.NewResolver(""),
		analysis.Options{
			ConcurrencyLimit: cfg.MaxWorkers,
			TargetMajor:      major,
			TargetMinor:      minor,
			SecurityEnabled:  cfg.SecurityFirst,
			PerformanceFocus: cfg.PerformanceFocus,
			Refresh:          opts.refresh,
		},
	)

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Analyzing %d packages...", len(reqs)))
	spinner.Start()

	infos, err := analyzer.Analyze(ctx, reqs)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Analyzed %d packages", len(infos)))

	if !cfg.Modernize {
		for i := range infos {
			infos[i].ModernizationHints = nil
		}
	}

	rep := report.Aggregate(infos, fmt.Sprintf("%d.%d", major, minor), time.Now().UTC())

	if opts.interactive {
		if err := browsePackages(infos, rep); err != nil {
			return err
		}
	} else {
		displayReport(rep)
	}

	if opts.exportReport != "" {
		if err := report.WriteJSON(opts.exportReport, rep); err != nil {
			return err
		}
		printSuccess("Report exported")
		printFile(opts.exportReport)
	}

	if err := c.writeOutputs(ctx, rep, infos, opts); err != nil {
		return err
	}

	if opts.storeURI != "" {
		if err := c.storeReport(ctx, opts.storeURI, rep); err != nil {
			return err
		}
	}

	if opts.strict && rep.HasCriticalIssues() {
		return fmt.Errorf("critical issues found: %d advisories, %d deprecated packages",
			rep.Totals.AdvisoryCount, rep.Totals.DeprecatedCount)
	}
	return nil
}

// filterExcluded drops requirements named in the exclude_packages setting.
func filterExcluded(reqs []manifest.Requirement, excluded []string) []manifest.Requirement {
	if len(excluded) == 0 {
		return reqs
	}
	skip := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		skip[manifest.Normalize(name)] = true
	}
	kept := reqs[:0]
	for _, r := range reqs {
		if !skip[r.Name] {
			kept = append(kept, r)
		}
	}
	return kept
}

// confirmProceed asks for confirmation on stdin before starting the analysis.
func confirmProceed() bool {
	fmt.Print(StyleDim.Render("Proceed with the analysis? [Y/n] "))
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true
	}
	return false
}

// mergeFlags layers explicitly set flags over the file configuration.
func mergeFlags(cmd *cobra.Command, cfg *config.Config, opts *analyzeOpts) {
	if cmd.Flags().Changed("security-first") {
		cfg.SecurityFirst = opts.securityFirst
	}
	if cmd.Flags().Changed("modernize") {
		cfg.Modernize = opts.modernize
	}
	if cmd.Flags().Changed("performance") {
		cfg.PerformanceFocus = opts.performance
	}
	if cmd.Flags().Changed("auto-fix") {
		cfg.AutoFix = opts.autoFix
	}
	if cmd.Flags().Changed("strict") {
		cfg.StrictMode = opts.strict
	}
	if opts.pythonVersion != "" {
		cfg.TargetPython = opts.pythonVersion
	}
	// Config may also enable these without flags.
	opts.autoFix = opts.autoFix || cfg.AutoFix
	opts.strict = opts.strict || cfg.StrictMode
	opts.performance = cfg.PerformanceFocus
}

// loadRequirements parses the manifest named by file, or auto-detects one
// in dir. Parse warnings go to the logger; they do not fail the run.
func (c *CLI) loadRequirements(dir, file string) ([]manifest.Requirement, string, error) {
	warn := func(format string, args ...any) { c.Logger.Warnf(format, args...) }

	if file != "" {
		if err := errors.ValidateManifestPath(file); err != nil {
			return nil, "", err
		}
		format, err := manifest.FormatForPath(file)
		if err != nil {
			return nil, "", err
		}
		reqs, err := manifest.Parse(file, format, warn)
		return reqs, file, err
	}

	reqs, format, ok, err := manifest.ParseDir(dir, warn)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, dir, nil
	}
	return reqs, string(format), nil
}

// writeOutputs produces the requirements rewrite, the PR description, and
// the auto-fix install, honoring --dry-run.
func (c *CLI) writeOutputs(ctx context.Context, rep report.Report, infos []analysis.PackageInfo, opts *analyzeOpts) error {
	if opts.output != "" || opts.autoFix {
		outputFile := opts.output
		if outputFile == "" {
			outputFile = "requirements_updated.txt"
		}
		if opts.dryRun {
			printWarning("Dry run: would write updated requirements to %s", outputFile)
		} else {
			if err := os.WriteFile(outputFile, []byte(report.RequirementsFile(infos)), 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "writing %s", outputFile)
			}
			printSuccess("Updated requirements written")
			printFile(outputFile)

			if opts.autoFix {
				printInfo("Installing packages from %s...", outputFile)
				if err := pip.NewResolver("").Install(ctx, outputFile); err != nil {
					printError("Installation failed: %v", err)
				} else {
					printSuccess("Packages installed")
				}
			}
		}
	}

	if opts.githubPR {
		const prFile = "github_pr_description.md"
		if opts.dryRun {
			printWarning("Dry run: would write PR description to %s", prFile)
			return nil
		}
		if err := os.WriteFile(prFile, []byte(report.PRDescription(rep)), 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "writing %s", prFile)
		}
		printSuccess("GitHub PR description written")
		printFile(prFile)
	}
	return nil
}

// storeReport persists the report in the MongoDB history store.
func (c *CLI) storeReport(ctx context.Context, uri string, rep report.Report) error {
	store, err := report.NewStore(ctx, uri, "pyninja", "reports")
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	if err := store.Save(ctx, rep); err != nil {
		return err
	}
	printSuccess("Report %s stored", rep.ID)
	return nil
}
