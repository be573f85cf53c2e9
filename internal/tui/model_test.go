package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costscope/internal/costs"
	"costscope/internal/costs/rollup"
)

// stubSource counts fetches so tests can assert the cache's
// deduplication through the update loop.
type stubSource struct {
	costCalls int32
	failCosts bool
}

func (s *stubSource) FetchDashboard(ctx context.Context, period costs.Period) (*costs.DashboardCostResponse, error) {
	return &costs.DashboardCostResponse{
		Summary: costs.CostSummary{TotalCost: 100, DaysInPeriod: period.Days()},
		Trend: []costs.DailyCostPoint{
			{Date: "2026-08-01", TotalCost: 10},
			{Date: "2026-08-02", TotalCost: 20},
		},
	}, nil
}

func (s *stubSource) FetchCosts(ctx context.Context, scope costs.Scope, period costs.Period) (*costs.CostResponse, error) {
	atomic.AddInt32(&s.costCalls, 1)
	if s.failCosts {
		return nil, fmt.Errorf("boom")
	}
	return &costs.CostResponse{
		Summary: costs.CostSummary{TotalCost: 42},
		Breakdown: []costs.AppCostBreakdown{
			{AppID: "a-1", AppName: "api", TotalCost: 42},
		},
	}, nil
}

func (s *stubSource) ListTeams(ctx context.Context) ([]costs.Team, error) {
	return []costs.Team{{ID: "t-1", Name: "Payments"}}, nil
}

func (s *stubSource) ListProjects(ctx context.Context) ([]costs.Project, error) {
	return []costs.Project{{ID: "p-1", Name: "Checkout"}}, nil
}

func loadedModel(t *testing.T, source *stubSource) Model {
	t.Helper()
	m := New(source, costs.Period30D, t.TempDir())
	updated, _ := m.Update(listsLoadedMsg{
		teams:    []costs.Team{{ID: "t-1", Name: "Payments"}},
		projects: []costs.Project{{ID: "p-1", Name: "Checkout"}},
	})
	return updated.(Model)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestToggleIssuesSingleFetchCmd(t *testing.T) {
	source := &stubSource{}
	m := loadedModel(t, source)

	updated, cmd := m.Update(key(" "))
	m = updated.(Model)
	require.NotNil(t, cmd, "first expansion must produce a fetch command")

	// Collapse and re-expand before the fetch message arrives: the
	// cache still holds the pending cell, so no second fetch command.
	updated, cmd2 := m.Update(key(" "))
	m = updated.(Model)
	assert.Nil(t, cmd2)
	updated, cmd3 := m.Update(key(" "))
	m = updated.(Model)
	assert.Nil(t, cmd3)

	// Resolve the one in-flight fetch.
	msg := cmd()
	updated, _ = m.Update(msg)
	m = updated.(Model)

	assert.Equal(t, int32(1), atomic.LoadInt32(&source.costCalls))
	entry, ok := m.cache.Entry(costs.TeamScope("t-1"), costs.Period30D)
	require.True(t, ok)
	assert.Equal(t, rollup.StateOK, entry.State)
}

func TestPeriodSwitchAndBackTriggersNoRefetch(t *testing.T) {
	source := &stubSource{}
	m := loadedModel(t, source)

	// Expand and resolve under 30d.
	updated, cmd := m.Update(key(" "))
	m = updated.(Model)
	require.NotNil(t, cmd)
	updated, _ = m.Update(cmd())
	m = updated.(Model)
	require.Equal(t, int32(1), atomic.LoadInt32(&source.costCalls))

	// Switch to 7d and back to 30d.
	updated, _ = m.Update(key("1"))
	m = updated.(Model)
	updated, _ = m.Update(key("2"))
	m = updated.(Model)

	// Toggling the already-expanded node twice under 30d must not
	// fetch again; the cell is still warm.
	updated, cmd = m.Update(key(" "))
	m = updated.(Model)
	assert.Nil(t, cmd)
	updated, cmd = m.Update(key(" "))
	m = updated.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, int32(1), atomic.LoadInt32(&source.costCalls))
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	source := &stubSource{}
	m := loadedModel(t, source)

	updated, first := m.Update(key(" "))
	m = updated.(Model)
	require.NotNil(t, first)

	// Refresh while the first fetch is still pending; the refresh owns
	// the latest sequence.
	updated, second := m.Update(key("r"))
	m = updated.(Model)
	require.NotNil(t, second)

	firstMsg := first().(costLoadedMsg)
	secondMsg := second().(costLoadedMsg)

	// Apply the refresh result, then the stale first result.
	updated, _ = m.Update(secondMsg)
	m = updated.(Model)
	staleErr := costLoadedMsg{
		scope:  firstMsg.scope,
		period: firstMsg.period,
		seq:    firstMsg.seq,
		err:    fmt.Errorf("stale failure"),
	}
	updated, _ = m.Update(staleErr)
	m = updated.(Model)

	entry, ok := m.cache.Entry(costs.TeamScope("t-1"), costs.Period30D)
	require.True(t, ok)
	assert.Equal(t, rollup.StateOK, entry.State, "stale completion must not overwrite the refresh result")
}

func TestFetchFailureRendersPlaceholder(t *testing.T) {
	source := &stubSource{failCosts: true}
	m := loadedModel(t, source)

	updated, cmd := m.Update(key(" "))
	m = updated.(Model)
	require.NotNil(t, cmd)
	updated, _ = m.Update(cmd())
	m = updated.(Model)

	entry, ok := m.cache.Entry(costs.TeamScope("t-1"), costs.Period30D)
	require.True(t, ok)
	assert.Equal(t, rollup.StateErr, entry.State)

	// The node stays expanded and the view renders the placeholder
	// without blocking the rest of the hierarchy.
	assert.True(t, m.cache.Expanded(costs.TeamScope("t-1")))
	view := m.View()
	assert.Contains(t, view, "—")
	assert.Contains(t, view, "Checkout")
}

func TestListFailureBlocksHierarchy(t *testing.T) {
	m := New(&stubSource{}, costs.Period30D, t.TempDir())
	updated, _ := m.Update(listsLoadedMsg{err: fmt.Errorf("unauthorized")})
	m = updated.(Model)

	view := m.View()
	assert.Contains(t, view, "Cannot load teams and projects")
	assert.Contains(t, view, "unauthorized")
}

func TestSystemSummaryView(t *testing.T) {
	source := &stubSource{}
	m := loadedModel(t, source)

	dashboard, err := source.FetchDashboard(context.Background(), costs.Period30D)
	require.NoError(t, err)
	updated, _ := m.Update(systemLoadedMsg{period: costs.Period30D, resp: dashboard})
	m = updated.(Model)

	view := m.View()
	assert.Contains(t, view, "$100.00")
	assert.Contains(t, view, "▲ 100.0%")
	assert.Contains(t, view, "30 of 30 days tracked")
}

func TestCursorMovement(t *testing.T) {
	m := loadedModel(t, &stubSource{})

	updated, _ := m.Update(key("j"))
	m = updated.(Model)
	assert.Equal(t, 1, m.cursor)

	// Cursor stops at the last node.
	updated, _ = m.Update(key("j"))
	m = updated.(Model)
	assert.Equal(t, 1, m.cursor)

	updated, _ = m.Update(key("k"))
	m = updated.(Model)
	assert.Equal(t, 0, m.cursor)
}

func TestExportWritesReport(t *testing.T) {
	source := &stubSource{}
	m := loadedModel(t, source)

	updated, cmd := m.Update(key(" "))
	m = updated.(Model)
	require.NotNil(t, cmd)
	updated, _ = m.Update(cmd())
	m = updated.(Model)

	updated, exportCmd := m.Update(key("e"))
	m = updated.(Model)
	require.NotNil(t, exportCmd)

	msg := exportCmd().(exportDoneMsg)
	require.NoError(t, msg.err)
	assert.Contains(t, msg.location, "costs-30d-")

	updated, _ = m.Update(msg)
	m = updated.(Model)
	assert.Contains(t, m.View(), "Exported")
}
