// Package costs holds the shared cost data model and the pure display
// transforms (currency formatting, resource shares, trend estimation)
// used by the rollup cache, the exporters and the CLI.
package costs

import "fmt"

// Period is the trailing window over which costs are aggregated.
type Period string

const (
	// Period7D covers the trailing seven days
	Period7D Period = "7d"
	// Period30D covers the trailing thirty days
	Period30D Period = "30d"
	// Period90D covers the trailing ninety days
	Period90D Period = "90d"
)

// Periods returns all valid periods in ascending window order.
func Periods() []Period {
	return []Period{Period7D, Period30D, Period90D}
}

// ParsePeriod validates a period string from a flag or config value.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case Period7D, Period30D, Period90D:
		return Period(s), nil
	}
	return "", fmt.Errorf("invalid period %q (valid periods: 7d, 30d, 90d)", s)
}

// Days returns the day count of the period window, used for
// "X of N days tracked" style display.
func (p Period) Days() int {
	switch p {
	case Period7D:
		return 7
	case Period30D:
		return 30
	case Period90D:
		return 90
	}
	return 0
}

func (p Period) String() string {
	return string(p)
}

// ScopeKind identifies the aggregation boundary of a cost query.
type ScopeKind string

const (
	// ScopeSystem aggregates across the whole platform
	ScopeSystem ScopeKind = "system"
	// ScopeTeam aggregates one team's apps
	ScopeTeam ScopeKind = "team"
	// ScopeProject aggregates one project's apps
	ScopeProject ScopeKind = "project"
)

// Scope pairs a kind with the identifier of the team or project it
// addresses. The system scope carries no ID.
type Scope struct {
	Kind ScopeKind
	ID   string
}

// SystemScope returns the platform-wide scope.
func SystemScope() Scope {
	return Scope{Kind: ScopeSystem}
}

// TeamScope returns the scope for a single team.
func TeamScope(id string) Scope {
	return Scope{Kind: ScopeTeam, ID: id}
}

// ProjectScope returns the scope for a single project.
func ProjectScope(id string) Scope {
	return Scope{Kind: ScopeProject, ID: id}
}

// String returns a stable key for the scope, e.g. "team:payments".
func (s Scope) String() string {
	if s.Kind == ScopeSystem {
		return string(ScopeSystem)
	}
	return fmt.Sprintf("%s:%s", s.Kind, s.ID)
}

// CostSummary is the rolled-up cost of one scope over one period. The
// source guarantees TotalCost == CPUCost + MemoryCost + DiskCost;
// consumers must not recompute a conflicting total.
type CostSummary struct {
	CPUCost              float64 `json:"cpu_cost"`
	MemoryCost           float64 `json:"memory_cost"`
	DiskCost             float64 `json:"disk_cost"`
	TotalCost            float64 `json:"total_cost"`
	ProjectedMonthlyCost float64 `json:"projected_monthly_cost"`
	AvgCPUCores          float64 `json:"avg_cpu_cores"`
	AvgMemoryGB          float64 `json:"avg_memory_gb"`
	DaysInPeriod         int     `json:"days_in_period"`
}

// AppCostBreakdown is one app's share of a scope's costs.
type AppCostBreakdown struct {
	AppID      string  `json:"app_id"`
	AppName    string  `json:"app_name"`
	CPUCost    float64 `json:"cpu_cost"`
	MemoryCost float64 `json:"memory_cost"`
	DiskCost   float64 `json:"disk_cost"`
	TotalCost  float64 `json:"total_cost"`
}

// DailyCostPoint is one day of the system-wide cost series. Date is an
// ISO date string; the series is chronologically ascending but gaps are
// allowed.
type DailyCostPoint struct {
	Date      string  `json:"date"`
	TotalCost float64 `json:"total_cost"`
}

// CostResponse is the team- or project-scope payload. Breakdown order
// is not guaranteed; consumers must not assume ranking.
type CostResponse struct {
	Summary   CostSummary        `json:"summary"`
	Breakdown []AppCostBreakdown `json:"breakdown"`
}

// DashboardCostResponse is the system-scope payload. TopApps is
// guaranteed descending by total cost by the source.
type DashboardCostResponse struct {
	Summary CostSummary        `json:"summary"`
	Trend   []DailyCostPoint   `json:"trend"`
	TopApps []AppCostBreakdown `json:"top_apps"`
}

// Team is a team as listed by the platform.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Project is a project as listed by the platform.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
