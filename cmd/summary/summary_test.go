package summary

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/undefinedlabs/go-mpatch"

	"costscope/internal/config"
	"costscope/internal/costs"
	"costscope/internal/platform"
)

type fakeSource struct {
	dashboard *costs.DashboardCostResponse
	err       error
}

func (s *fakeSource) FetchDashboard(ctx context.Context, period costs.Period) (*costs.DashboardCostResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.dashboard, nil
}

func (s *fakeSource) FetchCosts(ctx context.Context, scope costs.Scope, period costs.Period) (*costs.CostResponse, error) {
	return nil, fmt.Errorf("unexpected FetchCosts call")
}

func (s *fakeSource) ListTeams(ctx context.Context) ([]costs.Team, error) {
	return nil, fmt.Errorf("unexpected ListTeams call")
}

func (s *fakeSource) ListProjects(ctx context.Context) ([]costs.Project, error) {
	return nil, fmt.Errorf("unexpected ListProjects call")
}

func patchSource(t *testing.T, source platform.Source) {
	t.Helper()
	patch, err := mpatch.PatchMethod(platform.NewSourceFromConfig, func() (platform.Source, error) {
		return source, nil
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := patch.Unpatch(); err != nil {
			fmt.Fprintf(os.Stderr, "Error unpatching: %v\n", err)
		}
	})
}

func runSummaryCmd(t *testing.T) (string, error) {
	t.Helper()
	config.Config.Period = "30d"

	cmd := NewSummaryCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(nil)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSummaryCmdRendersDashboard(t *testing.T) {
	patchSource(t, &fakeSource{
		dashboard: &costs.DashboardCostResponse{
			Summary: costs.CostSummary{
				CPUCost:              60,
				MemoryCost:           30,
				DiskCost:             10,
				TotalCost:            100,
				ProjectedMonthlyCost: 100,
				AvgCPUCores:          4.5,
				AvgMemoryGB:          18,
				DaysInPeriod:         28,
			},
			Trend: []costs.DailyCostPoint{
				{Date: "2026-08-01", TotalCost: 2},
				{Date: "2026-08-02", TotalCost: 4},
			},
			TopApps: []costs.AppCostBreakdown{
				{AppID: "a-1", AppName: "api", CPUCost: 30, MemoryCost: 15, DiskCost: 5, TotalCost: 50},
			},
		},
	})

	output, err := runSummaryCmd(t)
	require.NoError(t, err)

	assert.Contains(t, output, "System costs over 30d (28 of 30 days tracked)")
	assert.Contains(t, output, "CPU")
	assert.Contains(t, output, "$60.00")
	assert.Contains(t, output, "60.0%")
	assert.Contains(t, output, "$100.00")
	assert.Contains(t, output, "▲ 100.0%")
	assert.Contains(t, output, "Projected monthly: $100.00")
	assert.Contains(t, output, "4.5 cores, 18.0 GB")
	assert.Contains(t, output, "api")
	assert.Contains(t, output, "$50.00")
}

func TestSummaryCmdOmitsAppTableWhenEmpty(t *testing.T) {
	patchSource(t, &fakeSource{
		dashboard: &costs.DashboardCostResponse{
			Summary: costs.CostSummary{TotalCost: 1, CPUCost: 1, DaysInPeriod: 7},
		},
	})
	config.Config.Period = "7d"

	cmd := NewSummaryCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	require.NoError(t, cmd.Execute())

	assert.NotContains(t, buf.String(), "App")
}

func TestSummaryCmdFetchFailure(t *testing.T) {
	patchSource(t, &fakeSource{
		err: &platform.FetchError{Scope: costs.SystemScope(), Period: costs.Period30D, Status: 500, Err: fmt.Errorf("server error")},
	})

	_, err := runSummaryCmd(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch system costs")
}

func TestSummaryCmdInvalidPeriod(t *testing.T) {
	patchSource(t, &fakeSource{dashboard: &costs.DashboardCostResponse{}})
	config.Config.Period = "14d"
	t.Cleanup(func() { config.Config.Period = "30d" })

	cmd := NewSummaryCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid period")
}
