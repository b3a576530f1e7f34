package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/terrrybug/pyninja/pkg/analysis"
	"github.com/terrrybug/pyninja/pkg/report"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// PackageListModel is the bubbletea model for browsing analysis results.
// The cursor moves through the package list; the pane below shows the
// selected package's details.
type PackageListModel struct {
	Packages []analysis.PackageInfo
	Cursor   int
	Height   int
	Offset   int
}

// NewPackageListModel creates a package browser over the analysis results.
func NewPackageListModel(infos []analysis.PackageInfo) PackageListModel {
	return PackageListModel{
		Packages: infos,
		Height:   15,
	}
}

func (m PackageListModel) Init() tea.Cmd {
	return nil
}

func (m PackageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Packages)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PackageListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Analyzed Packages"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Packages) {
		end = len(m.Packages)
	}

	for i := m.Offset; i < end; i++ {
		info := m.Packages[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		line := fmt.Sprintf("%-28s %-12s %s", info.Name, info.CurrentConstraint, packageBadge(info))
		b.WriteString(cursor + style.Render(line) + "\n")
	}

	if len(m.Packages) > 0 {
		b.WriteString("\n")
		b.WriteString(m.detailPane())
	}
	return b.String()
}

// detailPane renders the selected package's details.
func (m PackageListModel) detailPane() string {
	info := m.Packages[m.Cursor]
	var b strings.Builder

	b.WriteString(listDimStyle.Render(strings.Repeat("─", 56)) + "\n")
	b.WriteString(fmt.Sprintf("%s  latest %s  stable %s\n",
		StyleValue.Render(info.Name),
		StyleValue.Render(info.LatestVersion),
		StyleValue.Render(info.LatestStableVersion)))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("compatibility %.2f · community %.2f", info.CompatibilityScore, info.CommunityScore)) + "\n")

	if info.IsDeprecated {
		b.WriteString(StyleDanger.Render(info.DeprecationNote) + "\n")
	}
	if n := len(info.Advisories); n > 0 {
		b.WriteString(StyleDanger.Render(fmt.Sprintf("%d security advisories", n)) + "\n")
	}
	for _, hint := range info.ModernizationHints {
		b.WriteString(StyleHint.Render("  "+hint) + "\n")
	}
	return b.String()
}

// packageBadge condenses a package's findings into a short marker column.
func packageBadge(info analysis.PackageInfo) string {
	var badges []string
	if len(info.Advisories) > 0 {
		badges = append(badges, StyleDanger.Render("vuln"))
	}
	if info.IsDeprecated {
		badges = append(badges, StyleDanger.Render("deprecated"))
	}
	if info.LatestVersion == analysis.Unknown {
		badges = append(badges, listDimStyle.Render("unknown"))
	}
	return strings.Join(badges, " ")
}

// browsePackages runs the interactive browser, then prints the summary
// report after the user exits.
func browsePackages(infos []analysis.PackageInfo, rep report.Report) error {
	model := NewPackageListModel(infos)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return err
	}
	displayReport(rep)
	return nil
}
