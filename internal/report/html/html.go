// Package html renders fetched cost data as a standalone HTML report.
package html

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"costscope/internal/costs"
)

//go:embed assets/* templates/*
var content embed.FS

// TemplateData is the data structure passed to the report template.
type TemplateData struct {
	Period      string
	PeriodDays  int
	GeneratedAt string
	HasSystem   bool
	TotalCost   string
	Projected   string
	DaysTracked int
	Shares      []ShareRow
	Trend       TrendRow
	TopApps     []AppRow
	Teams       []GroupSection
	Projects    []GroupSection
	Styles      template.CSS
}

// ShareRow is one resource kind's slice of the system total.
type ShareRow struct {
	Kind    string
	Value   string
	Percent string
}

// TrendRow is the rendered trend direction.
type TrendRow struct {
	Arrow   string
	Percent string
	Class   string
}

// AppRow is one app's costs in a table.
type AppRow struct {
	Name   string
	ID     string
	CPU    string
	Memory string
	Disk   string
	Total  string
}

// GroupSection is one team or project with its summary and apps.
type GroupSection struct {
	Name  string
	ID    string
	Total string
	Apps  []AppRow
}

// Render produces the HTML report from the same inputs as the CSV
// exporter, with the same presence rules: entries without fetched
// costs contribute no section.
func Render(
	generatedAt string,
	system *costs.DashboardCostResponse,
	teams []costs.Team,
	teamCosts map[string]*costs.CostResponse,
	projects []costs.Project,
	projectCosts map[string]*costs.CostResponse,
	period costs.Period,
) ([]byte, error) {
	tmpl, err := template.ParseFS(content, "templates/cost_report.html")
	if err != nil {
		return nil, fmt.Errorf("error parsing template: %w", err)
	}

	styles, err := content.ReadFile("assets/styles.css")
	if err != nil {
		return nil, fmt.Errorf("error reading styles: %w", err)
	}

	data := buildData(generatedAt, system, teams, teamCosts, projects, projectCosts, period)
	data.Styles = template.CSS(styles)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("error executing template: %w", err)
	}
	return buf.Bytes(), nil
}

func buildData(
	generatedAt string,
	system *costs.DashboardCostResponse,
	teams []costs.Team,
	teamCosts map[string]*costs.CostResponse,
	projects []costs.Project,
	projectCosts map[string]*costs.CostResponse,
	period costs.Period,
) TemplateData {
	data := TemplateData{
		Period:      period.String(),
		PeriodDays:  period.Days(),
		GeneratedAt: generatedAt,
	}

	if system != nil {
		s := system.Summary
		data.HasSystem = true
		data.TotalCost = costs.FormatCurrency(s.TotalCost)
		data.Projected = costs.FormatCurrency(s.ProjectedMonthlyCost)
		data.DaysTracked = s.DaysInPeriod

		for _, share := range costs.ResourceShares(s.CPUCost, s.MemoryCost, s.DiskCost) {
			data.Shares = append(data.Shares, ShareRow{
				Kind:    share.Kind,
				Value:   costs.FormatCurrency(share.Value),
				Percent: fmt.Sprintf("%.1f%%", share.Percent),
			})
		}

		trend := costs.ComputeTrend(system.Trend)
		data.Trend = TrendRow{Arrow: "▼", Percent: fmt.Sprintf("%.1f%%", trend.Percent), Class: "trend-down"}
		if trend.IsUp {
			data.Trend.Arrow = "▲"
			data.Trend.Class = "trend-up"
		}

		for _, app := range system.TopApps {
			data.TopApps = append(data.TopApps, appRow(app))
		}
	}

	for _, team := range teams {
		if resp, ok := teamCosts[team.ID]; ok && resp != nil {
			data.Teams = append(data.Teams, groupSection(team.Name, team.ID, resp))
		}
	}
	for _, project := range projects {
		if resp, ok := projectCosts[project.ID]; ok && resp != nil {
			data.Projects = append(data.Projects, groupSection(project.Name, project.ID, resp))
		}
	}

	return data
}

func groupSection(name, id string, resp *costs.CostResponse) GroupSection {
	section := GroupSection{
		Name:  name,
		ID:    id,
		Total: costs.FormatCurrency(resp.Summary.TotalCost),
	}
	for _, app := range resp.Breakdown {
		section.Apps = append(section.Apps, appRow(app))
	}
	return section
}

func appRow(app costs.AppCostBreakdown) AppRow {
	return AppRow{
		Name:   app.AppName,
		ID:     app.AppID,
		CPU:    costs.FormatCurrency(app.CPUCost),
		Memory: costs.FormatCurrency(app.MemoryCost),
		Disk:   costs.FormatCurrency(app.DiskCost),
		Total:  costs.FormatCurrency(app.TotalCost),
	}
}
