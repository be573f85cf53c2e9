package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"costscope/internal/costs"
	"costscope/internal/costs/rollup"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	tabStyle       = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Underline(true).Padding(0, 1)
	sectionStyle   = lipgloss.NewStyle().Bold(true).MarginTop(1)
	selectedStyle  = lipgloss.NewStyle().Reverse(true)
	faintStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	trendUpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	trendDownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	helpStyle      = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")

	if m.listErr != nil {
		// Root listing failure blocks the whole hierarchy.
		b.WriteString(errorStyle.Render("Cannot load teams and projects: "+m.listErr.Error()) + "\n")
		b.WriteString(helpStyle.Render("q quit") + "\n")
		return b.String()
	}

	if m.loading {
		b.WriteString(faintStyle.Render("Loading teams and projects…") + "\n")
		return b.String()
	}

	b.WriteString(m.systemView())

	index := 0
	b.WriteString(sectionStyle.Render("Teams") + "\n")
	for range m.teams {
		b.WriteString(m.nodeView(index))
		index++
	}
	if len(m.teams) == 0 {
		b.WriteString(faintStyle.Render("  (no teams)") + "\n")
	}

	b.WriteString(sectionStyle.Render("Projects") + "\n")
	for range m.projects {
		b.WriteString(m.nodeView(index))
		index++
	}
	if len(m.projects) == 0 {
		b.WriteString(faintStyle.Render("  (no projects)") + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + faintStyle.Render(m.status) + "\n")
	}

	b.WriteString(helpStyle.Render("↑/↓ move · enter expand · r refresh · tab period · e export · q quit") + "\n")
	return b.String()
}

func (m Model) headerView() string {
	var tabs []string
	for _, p := range costs.Periods() {
		style := tabStyle
		if p == m.cache.Period() {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(p.String()))
	}
	return titleStyle.Render("costscope") + "  " + strings.Join(tabs, "")
}

// systemView renders the eagerly loaded system summary for the active
// period: total, trend direction and the resource share line.
func (m Model) systemView() string {
	period := m.cache.Period()

	if m.dashboardPending[period] {
		return faintStyle.Render("Loading system summary…") + "\n"
	}
	if err, ok := m.dashboardErrs[period]; ok {
		return errorStyle.Render("System summary unavailable: "+err.Error()) + "\n"
	}
	dashboard, ok := m.dashboards[period]
	if !ok {
		return ""
	}

	s := dashboard.Summary
	trend := costs.ComputeTrend(dashboard.Trend)
	arrow := trendDownStyle.Render(fmt.Sprintf("▼ %.1f%%", trend.Percent))
	if trend.IsUp {
		arrow = trendUpStyle.Render(fmt.Sprintf("▲ %.1f%%", trend.Percent))
	}

	var shares []string
	for _, share := range costs.ResourceShares(s.CPUCost, s.MemoryCost, s.DiskCost) {
		shares = append(shares, fmt.Sprintf("%s %.1f%%", share.Kind, share.Percent))
	}

	return fmt.Sprintf("Total %s  %s  %s\n%s\n",
		costs.FormatCurrency(s.TotalCost),
		arrow,
		faintStyle.Render(fmt.Sprintf("%d of %d days tracked", s.DaysInPeriod, period.Days())),
		faintStyle.Render(strings.Join(shares, " · ")),
	)
}

// nodeView renders one hierarchy row and, when the node is expanded
// with resolved data, its app sub-rows.
func (m Model) nodeView(index int) string {
	n := m.nodes[index]
	period := m.cache.Period()

	marker := "▸"
	if m.cache.Expanded(n.scope) {
		marker = "▾"
	}

	total := ""
	entry, ok := m.cache.Entry(n.scope, period)
	if ok {
		switch entry.State {
		case rollup.StatePending:
			total = faintStyle.Render("…")
		case rollup.StateErr:
			total = faintStyle.Render("—")
		case rollup.StateOK:
			total = costs.FormatCurrency(entry.Response.Summary.TotalCost)
		}
	}

	line := fmt.Sprintf("  %s %-30s %10s", marker, n.name, total)
	if index == m.cursor {
		line = selectedStyle.Render(line)
	}
	line += "\n"

	if !m.cache.Expanded(n.scope) || !ok || entry.State != rollup.StateOK {
		return line
	}

	var b strings.Builder
	b.WriteString(line)
	for _, app := range entry.Response.Breakdown {
		b.WriteString(faintStyle.Render(fmt.Sprintf("      %-28s cpu %s · mem %s · disk %s · %s",
			app.AppName,
			costs.FormatCurrency(app.CPUCost),
			costs.FormatCurrency(app.MemoryCost),
			costs.FormatCurrency(app.DiskCost),
			costs.FormatCurrency(app.TotalCost),
		)) + "\n")
	}
	return b.String()
}
