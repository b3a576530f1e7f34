package report

import (
	"fmt"
	"strings"
)

const (
	prOutdatedLimit      = 10
	prModernizationLimit = 5
)

// PRDescription renders a pull request body describing the dependency
// update derived from the report.
func PRDescription(r Report) string {
	var b strings.Builder

	b.WriteString("# 📦 Automated Requirements Update\n\n")
	b.WriteString("This PR updates Python dependencies based on security and compatibility analysis.\n\n")

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- **Total Packages:** %d\n", r.Totals.PackageCount)
	fmt.Fprintf(&b, "- **Packages Updated:** %d\n", r.Totals.PackagesWithUpdates)
	fmt.Fprintf(&b, "- **Security Issues Fixed:** %d\n", r.Totals.AdvisoryCount)
	fmt.Fprintf(&b, "- **Deprecated Packages:** %d\n", r.Totals.DeprecatedCount)
	fmt.Fprintf(&b, "- **Compatibility Score:** %.2f/1.0\n", r.Totals.MeanCompatibility)

	b.WriteString("\n## Changes Made\n\n### 🔒 Security Updates\n")
	for _, issue := range r.Advisories {
		fmt.Fprintf(&b, "- **%s**: Fixed %d vulnerabilities\n", issue.Package, len(issue.Advisories))
	}

	b.WriteString("\n### 📅 Package Updates\n")
	for i, pkg := range r.Outdated {
		if i == prOutdatedLimit {
			break
		}
		fmt.Fprintf(&b, "- **%s**: %s → %s\n", pkg.Package, pkg.Current, pkg.Latest)
	}

	if len(r.Modernization) > 0 {
		b.WriteString("\n### 🚀 Modernization Suggestions\n")
		for i, entry := range r.Modernization {
			if i == prModernizationLimit {
				break
			}
			fmt.Fprintf(&b, "- **%s**: Consider modernization\n", entry.Package)
		}
	}

	b.WriteString("\n## Testing\n")
	b.WriteString("- [ ] All tests pass\n")
	b.WriteString("- [ ] No breaking changes detected\n")
	b.WriteString("- [ ] Dependencies install correctly\n")

	return b.String()
}
