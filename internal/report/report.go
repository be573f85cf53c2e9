// Package report turns fetched cost data into export artifacts: the
// tabular CSV report, a JSON document, an HTML rendering, and the
// writer that delivers them to the filesystem or S3.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"costscope/internal/costs"
)

// Fixed identity of the system-wide row, so exports stay diffable.
const (
	systemRowName = "Platform"
	systemRowID   = "system"
)

// csvHeader is the fixed 8-field row schema.
var csvHeader = []string{"Type", "Name", "ID", "CPU Cost", "Memory Cost", "Disk Cost", "Total Cost", "Period"}

// Generate serializes the currently-known cost data into the CSV
// report. It is a pure function: no fetching happens here, and a node
// whose costs are absent from the maps simply contributes no rows. The
// same inputs always produce byte-identical output.
//
// Row order: the system summary, each team (in list order) followed by
// its apps (in breakdown order), each project likewise, then the
// system-wide top apps in their given descending order.
func Generate(
	system *costs.DashboardCostResponse,
	teams []costs.Team,
	teamCosts map[string]*costs.CostResponse,
	projects []costs.Project,
	projectCosts map[string]*costs.CostResponse,
	period costs.Period,
) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	writeRow(w, csvHeader)

	if system != nil {
		s := system.Summary
		writeRow(w, costRow("System", systemRowName, systemRowID, s.CPUCost, s.MemoryCost, s.DiskCost, s.TotalCost, period))
	}

	for _, team := range teams {
		resp, ok := teamCosts[team.ID]
		if !ok || resp == nil {
			continue
		}
		s := resp.Summary
		writeRow(w, costRow("Team", team.Name, team.ID, s.CPUCost, s.MemoryCost, s.DiskCost, s.TotalCost, period))
		appType := fmt.Sprintf("App (Team: %s)", team.Name)
		for _, app := range resp.Breakdown {
			writeRow(w, costRow(appType, app.AppName, app.AppID, app.CPUCost, app.MemoryCost, app.DiskCost, app.TotalCost, period))
		}
	}

	for _, project := range projects {
		resp, ok := projectCosts[project.ID]
		if !ok || resp == nil {
			continue
		}
		s := resp.Summary
		writeRow(w, costRow("Project", project.Name, project.ID, s.CPUCost, s.MemoryCost, s.DiskCost, s.TotalCost, period))
		appType := fmt.Sprintf("App (Project: %s)", project.Name)
		for _, app := range resp.Breakdown {
			writeRow(w, costRow(appType, app.AppName, app.AppID, app.CPUCost, app.MemoryCost, app.DiskCost, app.TotalCost, period))
		}
	}

	if system != nil {
		for _, app := range system.TopApps {
			writeRow(w, costRow("App (Top)", app.AppName, app.AppID, app.CPUCost, app.MemoryCost, app.DiskCost, app.TotalCost, period))
		}
	}

	w.Flush()
	return buf.String()
}

func costRow(rowType, name, id string, cpu, memory, disk, total float64, period costs.Period) []string {
	return []string{
		rowType,
		name,
		id,
		formatCost(cpu),
		formatCost(memory),
		formatCost(disk),
		formatCost(total),
		period.String(),
	}
}

// formatCost keeps four decimal places: exports favor precision over
// the two-decimal display formatting.
func formatCost(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func writeRow(w *csv.Writer, row []string) {
	// csv.Writer only fails on the underlying writer; bytes.Buffer
	// cannot fail.
	_ = w.Write(row)
}

// DefaultFilename names an export artifact after its period and date,
// e.g. costs-30d-2026-08-31.csv.
func DefaultFilename(period costs.Period, date, format string, compressed bool) string {
	name := fmt.Sprintf("costs-%s-%s.%s", period, date, format)
	if compressed {
		name += ".gz"
	}
	return name
}
