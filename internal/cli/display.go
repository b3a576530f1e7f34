package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/terrrybug/pyninja/pkg/report"
)

const (
	displayOutdatedLimit      = 10
	displayModernizationLimit = 5
)

// displayReport prints the aggregated analysis report.
func displayReport(rep report.Report) {
	printNewline()
	fmt.Println(StyleTitle.Render("Requirements Analysis Report"))
	fmt.Println(StyleDim.Render(fmt.Sprintf("target python %s · run %s", rep.TargetPython, rep.ID)))
	printNewline()

	fmt.Println(summaryTable(rep))
	printNewline()

	if len(rep.Advisories) > 0 {
		fmt.Println(StyleDanger.Render("Security Advisories"))
		for _, issue := range rep.Advisories {
			printDetail("%s %s (%s): %d advisories", iconBullet, issue.Package, issue.Constraint, len(issue.Advisories))
		}
		printNewline()
	}

	if len(rep.Outdated) > 0 {
		fmt.Println(StyleWarning.Render("Outdated Packages"))
		for i, pkg := range rep.Outdated {
			if i == displayOutdatedLimit {
				printDetail("... and %d more", len(rep.Outdated)-displayOutdatedLimit)
				break
			}
			printDetail("%s %s: %s %s %s", iconBullet, pkg.Package, pkg.Current, iconArrow, pkg.Latest)
		}
		printNewline()
	}

	if len(rep.Deprecated) > 0 {
		fmt.Println(StyleDanger.Render("Deprecated Packages"))
		for _, pkg := range rep.Deprecated {
			printDetail("%s %s: %s", iconBullet, pkg.Package, pkg.Note)
		}
		printNewline()
	}

	if len(rep.LowCompatibility) > 0 {
		fmt.Println(StyleWarning.Render("Compatibility Issues"))
		for _, issue := range rep.LowCompatibility {
			printDetail("%s %s scores %.2f for Python %s", iconBullet, issue.Package, issue.Score, issue.TargetPython)
		}
		printNewline()
	}

	if len(rep.Modernization) > 0 {
		fmt.Println(StyleHint.Render("Modernization Opportunities"))
		for i, entry := range rep.Modernization {
			if i == displayModernizationLimit {
				printDetail("... and %d more", len(rep.Modernization)-displayModernizationLimit)
				break
			}
			printDetail("%s %s:", iconBullet, entry.Package)
			for _, hint := range entry.Hints {
				printDetail("    %s", hint)
			}
		}
		printNewline()
	}
}

// summaryTable renders the report totals as a two-column table.
func summaryTable(rep report.Report) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return StyleDim.PaddingLeft(1).PaddingRight(2)
			}
			return StyleValue.PaddingRight(1)
		})

	t.Row("Total Packages", fmt.Sprintf("%d", rep.Totals.PackageCount))
	t.Row("Packages with Updates", fmt.Sprintf("%d", rep.Totals.PackagesWithUpdates))
	t.Row("Security Advisories", fmt.Sprintf("%d", rep.Totals.AdvisoryCount))
	t.Row("Deprecated Packages", fmt.Sprintf("%d", rep.Totals.DeprecatedCount))
	t.Row("Compatibility Score", fmt.Sprintf("%.2f/1.0", rep.Totals.MeanCompatibility))
	t.Row("Community Score", fmt.Sprintf("%.2f/1.0", rep.Totals.MeanCommunity))

	return t.Render()
}
