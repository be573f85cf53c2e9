package rollup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costscope/internal/costs"
)

func okResponse(total float64) *costs.CostResponse {
	return &costs.CostResponse{
		Summary: costs.CostSummary{
			CPUCost:   total / 2,
			DiskCost:  total / 2,
			TotalCost: total,
		},
		Breakdown: []costs.AppCostBreakdown{
			{AppID: "app-1", AppName: "api", TotalCost: total},
		},
	}
}

func TestToggleIssuesExactlyOneFetch(t *testing.T) {
	c := New(costs.Period30D)
	team := costs.TeamScope("t-1")

	req := c.Toggle(team, costs.Period30D)
	require.NotNil(t, req, "first expansion must fetch")
	assert.Equal(t, team, req.Scope)
	assert.Equal(t, costs.Period30D, req.Period)
	assert.True(t, c.Expanded(team))

	entry, ok := c.Entry(team, costs.Period30D)
	require.True(t, ok, "cell must be marked before the fetch is issued")
	assert.Equal(t, StatePending, entry.State)

	// Rapid collapse and re-expand before the fetch resolves: no
	// duplicate request may be issued for the same (node, period).
	assert.Nil(t, c.Toggle(team, costs.Period30D))
	assert.False(t, c.Expanded(team))
	assert.Nil(t, c.Toggle(team, costs.Period30D))
	assert.True(t, c.Expanded(team))

	applied := c.Complete(team, costs.Period30D, req.Seq, okResponse(12), nil)
	assert.True(t, applied)

	entry, ok = c.Entry(team, costs.Period30D)
	require.True(t, ok)
	assert.Equal(t, StateOK, entry.State)
	assert.Equal(t, 12.0, entry.Response.Summary.TotalCost)
}

func TestCollapseKeepsCells(t *testing.T) {
	c := New(costs.Period30D)
	team := costs.TeamScope("t-1")

	req := c.Toggle(team, costs.Period30D)
	require.NotNil(t, req)
	require.True(t, c.Complete(team, costs.Period30D, req.Seq, okResponse(3), nil))

	c.Toggle(team, costs.Period30D) // collapse
	entry, ok := c.Entry(team, costs.Period30D)
	require.True(t, ok, "collapse must not evict")
	assert.Equal(t, StateOK, entry.State)

	// Re-expanding the cached period is free.
	assert.Nil(t, c.Toggle(team, costs.Period30D))
}

func TestPeriodSwitchAndBack(t *testing.T) {
	c := New(costs.Period30D)
	team := costs.TeamScope("t-1")

	req := c.Toggle(team, costs.Period30D)
	require.NotNil(t, req)
	require.True(t, c.Complete(team, costs.Period30D, req.Seq, okResponse(30), nil))

	c.SetPeriod(costs.Period90D)
	assert.Equal(t, costs.Period90D, c.Period())

	// The new period is fetched lazily on the next expansion.
	c.Toggle(team, costs.Period90D) // collapse
	req90 := c.Toggle(team, costs.Period90D)
	require.NotNil(t, req90)
	require.True(t, c.Complete(team, costs.Period90D, req90.Seq, okResponse(90), nil))

	// Switching back finds the old cell intact, with no new fetch.
	c.SetPeriod(costs.Period30D)
	c.Toggle(team, costs.Period30D) // collapse
	assert.Nil(t, c.Toggle(team, costs.Period30D))

	entry, ok := c.Entry(team, costs.Period30D)
	require.True(t, ok)
	assert.Equal(t, 30.0, entry.Response.Summary.TotalCost)

	entry90, ok := c.Entry(team, costs.Period90D)
	require.True(t, ok, "other periods' cells are independent")
	assert.Equal(t, 90.0, entry90.Response.Summary.TotalCost)
}

func TestRefreshMakesLastIssuedWin(t *testing.T) {
	c := New(costs.Period7D)
	project := costs.ProjectScope("p-1")

	first := c.Toggle(project, costs.Period7D)
	require.NotNil(t, first)

	second := c.Refresh(project, costs.Period7D)
	require.NotNil(t, second, "refresh must fetch regardless of cell state")
	assert.Greater(t, second.Seq, first.Seq)

	// The original fetch resolves after the refresh was issued: stale,
	// discarded, cell stays pending.
	assert.False(t, c.Complete(project, costs.Period7D, first.Seq, okResponse(1), nil))
	entry, ok := c.Entry(project, costs.Period7D)
	require.True(t, ok)
	assert.Equal(t, StatePending, entry.State)

	assert.True(t, c.Complete(project, costs.Period7D, second.Seq, okResponse(2), nil))
	entry, _ = c.Entry(project, costs.Period7D)
	assert.Equal(t, StateOK, entry.State)
	assert.Equal(t, 2.0, entry.Response.Summary.TotalCost)
}

func TestStaleCompletionAfterFreshResult(t *testing.T) {
	c := New(costs.Period7D)
	project := costs.ProjectScope("p-1")

	first := c.Toggle(project, costs.Period7D)
	second := c.Refresh(project, costs.Period7D)

	require.True(t, c.Complete(project, costs.Period7D, second.Seq, okResponse(2), nil))

	// The slow original response arrives last; it must not clobber the
	// fresher result.
	assert.False(t, c.Complete(project, costs.Period7D, first.Seq, okResponse(1), nil))
	entry, _ := c.Entry(project, costs.Period7D)
	assert.Equal(t, 2.0, entry.Response.Summary.TotalCost)
}

func TestFetchFailureIsLocalToTheCell(t *testing.T) {
	c := New(costs.Period30D)
	teamA := costs.TeamScope("t-a")
	teamB := costs.TeamScope("t-b")

	reqA := c.Toggle(teamA, costs.Period30D)
	reqB := c.Toggle(teamB, costs.Period30D)

	require.True(t, c.Complete(teamA, costs.Period30D, reqA.Seq, nil, errors.New("upstream timeout")))
	require.True(t, c.Complete(teamB, costs.Period30D, reqB.Seq, okResponse(7), nil))

	entryA, _ := c.Entry(teamA, costs.Period30D)
	assert.Equal(t, StateErr, entryA.State)
	assert.EqualError(t, entryA.Err, "upstream timeout")
	assert.True(t, c.Expanded(teamA), "failed node stays expanded")

	entryB, _ := c.Entry(teamB, costs.Period30D)
	assert.Equal(t, StateOK, entryB.State)

	// An Err cell does not re-fetch on toggle; recovery is an explicit
	// refresh.
	c.Toggle(teamA, costs.Period30D)
	assert.Nil(t, c.Toggle(teamA, costs.Period30D))
	assert.NotNil(t, c.Refresh(teamA, costs.Period30D))
}

func TestCompleteUnknownNodeIsDiscarded(t *testing.T) {
	c := New(costs.Period30D)
	assert.False(t, c.Complete(costs.TeamScope("ghost"), costs.Period30D, 1, okResponse(1), nil))
}

func TestSnapshotOnlyResolvedCellsOfKind(t *testing.T) {
	c := New(costs.Period30D)

	okTeam := costs.TeamScope("t-ok")
	errTeam := costs.TeamScope("t-err")
	pendingTeam := costs.TeamScope("t-pending")
	project := costs.ProjectScope("p-1")

	reqOK := c.Toggle(okTeam, costs.Period30D)
	reqErr := c.Toggle(errTeam, costs.Period30D)
	c.Toggle(pendingTeam, costs.Period30D)
	reqProj := c.Toggle(project, costs.Period30D)

	require.True(t, c.Complete(okTeam, costs.Period30D, reqOK.Seq, okResponse(10), nil))
	require.True(t, c.Complete(errTeam, costs.Period30D, reqErr.Seq, nil, errors.New("boom")))
	require.True(t, c.Complete(project, costs.Period30D, reqProj.Seq, okResponse(20), nil))

	teams := c.Snapshot(costs.ScopeTeam, costs.Period30D)
	require.Len(t, teams, 1)
	assert.Equal(t, 10.0, teams["t-ok"].Summary.TotalCost)

	projects := c.Snapshot(costs.ScopeProject, costs.Period30D)
	require.Len(t, projects, 1)
	assert.Equal(t, 20.0, projects["p-1"].Summary.TotalCost)

	// Nothing resolved for the other period yet.
	assert.Empty(t, c.Snapshot(costs.ScopeTeam, costs.Period7D))
}
