// Package tui implements the interactive cost drill-down: a terminal
// hierarchy of teams and projects whose nodes lazily fetch their cost
// data on expansion. The bubbletea update loop is the single goroutine
// that owns the rollup cache; fetches run as commands and re-enter the
// loop as messages.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"costscope/internal/costs"
	"costscope/internal/costs/rollup"
	"costscope/internal/platform"
	"costscope/internal/report"
)

const fetchTimeout = 30 * time.Second

// listsLoadedMsg carries the team and project listings, or the root
// error that blocks the whole hierarchy.
type listsLoadedMsg struct {
	teams    []costs.Team
	projects []costs.Project
	err      error
}

// systemLoadedMsg carries the system dashboard for one period.
type systemLoadedMsg struct {
	period costs.Period
	resp   *costs.DashboardCostResponse
	err    error
}

// costLoadedMsg carries one node fetch outcome back into the loop. Seq
// is the cache sequence of the request; stale outcomes are dropped by
// Cache.Complete.
type costLoadedMsg struct {
	scope  costs.Scope
	period costs.Period
	seq    uint64
	resp   *costs.CostResponse
	err    error
}

// exportDoneMsg reports an in-session CSV export.
type exportDoneMsg struct {
	location string
	err      error
}

// node is one selectable hierarchy row.
type node struct {
	scope costs.Scope
	name  string
}

// Model is the drill-down application state. All cache mutation
// happens inside Update.
type Model struct {
	source platform.Source
	cache  *rollup.Cache

	teams    []costs.Team
	projects []costs.Project
	nodes    []node
	cursor   int

	// One dashboard per period, fetched eagerly on period switch and
	// kept for the session.
	dashboards       map[costs.Period]*costs.DashboardCostResponse
	dashboardErrs    map[costs.Period]error
	dashboardPending map[costs.Period]bool

	listErr error
	loading bool
	status  string

	exportDir string

	width  int
	height int
}

// New creates the drill-down model for a source and starting period.
func New(source platform.Source, period costs.Period, exportDir string) Model {
	return Model{
		source:           source,
		cache:            rollup.New(period),
		dashboards:       make(map[costs.Period]*costs.DashboardCostResponse),
		dashboardErrs:    make(map[costs.Period]error),
		dashboardPending: make(map[costs.Period]bool),
		loading:          true,
		exportDir:        exportDir,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadLists(), m.loadDashboard(m.cache.Period()))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case listsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.listErr = msg.err
			return m, nil
		}
		m.teams = msg.teams
		m.projects = msg.projects
		m.rebuildNodes()
		return m, nil

	case systemLoadedMsg:
		delete(m.dashboardPending, msg.period)
		if msg.err != nil {
			m.dashboardErrs[msg.period] = msg.err
			return m, nil
		}
		delete(m.dashboardErrs, msg.period)
		m.dashboards[msg.period] = msg.resp
		return m, nil

	case costLoadedMsg:
		m.cache.Complete(msg.scope, msg.period, msg.seq, msg.resp, msg.err)
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.status = "Exported " + msg.location
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.nodes)-1 {
			m.cursor++
		}
		return m, nil

	case "enter", " ":
		return m, m.toggleSelected()

	case "r":
		return m, m.refreshSelected()

	case "tab":
		return m.switchPeriod(nextPeriod(m.cache.Period()))

	case "1":
		return m.switchPeriod(costs.Period7D)
	case "2":
		return m.switchPeriod(costs.Period30D)
	case "3":
		return m.switchPeriod(costs.Period90D)

	case "e":
		return m, m.exportCSV()
	}

	return m, nil
}

// toggleSelected expands or collapses the node under the cursor. The
// cache decides whether a fetch is needed; a nil request means the
// cell is already pending or resolved.
func (m Model) toggleSelected() tea.Cmd {
	n, ok := m.selected()
	if !ok {
		return nil
	}
	req := m.cache.Toggle(n.scope, m.cache.Period())
	if req == nil {
		return nil
	}
	return m.fetchCost(*req)
}

func (m Model) refreshSelected() tea.Cmd {
	n, ok := m.selected()
	if !ok {
		return nil
	}
	req := m.cache.Refresh(n.scope, m.cache.Period())
	return m.fetchCost(*req)
}

// switchPeriod records the new active period and eagerly refetches the
// system dashboard for it unless it is already loaded or in flight.
// Node cells for the old period stay warm; nodes refetch the new
// period lazily on their next expansion.
func (m Model) switchPeriod(p costs.Period) (tea.Model, tea.Cmd) {
	if p == m.cache.Period() {
		return m, nil
	}
	m.cache.SetPeriod(p)
	m.status = ""
	if _, ok := m.dashboards[p]; ok || m.dashboardPending[p] {
		return m, nil
	}
	return m, m.loadDashboard(p)
}

func (m Model) exportCSV() tea.Cmd {
	period := m.cache.Period()
	system := m.dashboards[period]
	teams := m.teams
	teamCosts := m.cache.Snapshot(costs.ScopeTeam, period)
	projects := m.projects
	projectCosts := m.cache.Snapshot(costs.ScopeProject, period)
	dir := m.exportDir

	return func() tea.Msg {
		out := report.Generate(system, teams, teamCosts, projects, projectCosts, period)
		writer := report.NewWriter(report.Config{Type: report.FileSystem, OutputDir: dir})
		name := report.DefaultFilename(period, time.Now().Format("2006-01-02"), "csv", false)
		location, err := writer.Write(name, []byte(out))
		return exportDoneMsg{location: location, err: err}
	}
}

func (m Model) selected() (node, bool) {
	if m.cursor < 0 || m.cursor >= len(m.nodes) {
		return node{}, false
	}
	return m.nodes[m.cursor], true
}

func (m *Model) rebuildNodes() {
	m.nodes = m.nodes[:0]
	for _, team := range m.teams {
		m.nodes = append(m.nodes, node{scope: costs.TeamScope(team.ID), name: team.Name})
	}
	for _, project := range m.projects {
		m.nodes = append(m.nodes, node{scope: costs.ProjectScope(project.ID), name: project.Name})
	}
	if m.cursor >= len(m.nodes) {
		m.cursor = 0
	}
}

func (m Model) loadLists() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		teams, err := source.ListTeams(ctx)
		if err != nil {
			return listsLoadedMsg{err: err}
		}
		projects, err := source.ListProjects(ctx)
		if err != nil {
			return listsLoadedMsg{err: err}
		}
		return listsLoadedMsg{teams: teams, projects: projects}
	}
}

func (m Model) loadDashboard(period costs.Period) tea.Cmd {
	m.dashboardPending[period] = true
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		resp, err := source.FetchDashboard(ctx, period)
		return systemLoadedMsg{period: period, resp: resp, err: err}
	}
}

func (m Model) fetchCost(req rollup.FetchRequest) tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		resp, err := source.FetchCosts(ctx, req.Scope, req.Period)
		return costLoadedMsg{scope: req.Scope, period: req.Period, seq: req.Seq, resp: resp, err: err}
	}
}

func nextPeriod(p costs.Period) costs.Period {
	periods := costs.Periods()
	for i, candidate := range periods {
		if candidate == p {
			return periods[(i+1)%len(periods)]
		}
	}
	return periods[0]
}
