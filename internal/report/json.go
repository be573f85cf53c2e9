package report

import (
	"encoding/json"
	"fmt"

	"costscope/internal/costs"
)

// Document is the JSON export envelope. It carries the same fetched
// data the CSV report serializes, in a structured form. Only
// successfully fetched cells are included.
type Document struct {
	GeneratedAt string                       `json:"generated_at"`
	Period      costs.Period                 `json:"period"`
	System      *costs.DashboardCostResponse `json:"system,omitempty"`
	Teams       []ScopedCosts                `json:"teams"`
	Projects    []ScopedCosts                `json:"projects"`
}

// ScopedCosts pairs a team or project with its fetched costs.
type ScopedCosts struct {
	ID    string              `json:"id"`
	Name  string              `json:"name"`
	Costs *costs.CostResponse `json:"costs"`
}

// BuildDocument assembles the JSON export from the same inputs as
// Generate, with the same presence rules: list order is preserved and
// entries without fetched costs are dropped.
func BuildDocument(
	generatedAt string,
	system *costs.DashboardCostResponse,
	teams []costs.Team,
	teamCosts map[string]*costs.CostResponse,
	projects []costs.Project,
	projectCosts map[string]*costs.CostResponse,
	period costs.Period,
) *Document {
	doc := &Document{
		GeneratedAt: generatedAt,
		Period:      period,
		System:      system,
		Teams:       make([]ScopedCosts, 0, len(teams)),
		Projects:    make([]ScopedCosts, 0, len(projects)),
	}

	for _, team := range teams {
		if resp, ok := teamCosts[team.ID]; ok && resp != nil {
			doc.Teams = append(doc.Teams, ScopedCosts{ID: team.ID, Name: team.Name, Costs: resp})
		}
	}
	for _, project := range projects {
		if resp, ok := projectCosts[project.ID]; ok && resp != nil {
			doc.Projects = append(doc.Projects, ScopedCosts{ID: project.ID, Name: project.Name, Costs: resp})
		}
	}

	return doc
}

// Marshal renders the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report document: %w", err)
	}
	return data, nil
}
