// Package summary implements the summary command: the system-wide
// cost dashboard printed as tables.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"costscope/internal/config"
	"costscope/internal/costs"
	"costscope/internal/logging"
	"costscope/internal/platform"
)

// NewSummaryCmd creates the summary command
func NewSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the system-wide cost summary",
		Long: `Show the system-wide cost summary for the selected period:
per-resource costs with their shares, the projected monthly cost, the
cost trend, and the most expensive apps.`,
		Example: `  # Summary over the default period
  costscope summary

  # Summary over the trailing week
  costscope summary --period 7d`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd)
		},
	}

	return cmd
}

func runSummary(cmd *cobra.Command) error {
	period, err := costs.ParsePeriod(config.Config.Period)
	if err != nil {
		return err
	}

	source, err := platform.NewSourceFromConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	logging.FetchStart("system", period.String())
	start := time.Now()
	dashboard, err := source.FetchDashboard(ctx, period)
	if err != nil {
		logging.FetchFailed("system", period.String(), err)
		return fmt.Errorf("failed to fetch system costs: %w", err)
	}
	logging.FetchComplete("system", period.String(), len(dashboard.TopApps), time.Since(start))

	out := cmd.OutOrStdout()
	s := dashboard.Summary

	fmt.Fprintf(out, "System costs over %s (%d of %d days tracked)\n\n",
		period, s.DaysInPeriod, period.Days())

	summaryTable := table.NewWriter()
	summaryTable.SetOutputMirror(out)
	summaryTable.SetStyle(table.StyleRounded)
	summaryTable.AppendHeader(table.Row{"Resource", "Cost", "Share"})
	for _, share := range costs.ResourceShares(s.CPUCost, s.MemoryCost, s.DiskCost) {
		summaryTable.AppendRow(table.Row{
			share.Kind,
			costs.FormatCurrency(share.Value),
			fmt.Sprintf("%.1f%%", share.Percent),
		})
	}
	summaryTable.AppendFooter(table.Row{"Total", costs.FormatCurrency(s.TotalCost), ""})
	summaryTable.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	summaryTable.Render()

	trend := costs.ComputeTrend(dashboard.Trend)
	arrow := color.GreenString("▼ %.1f%%", trend.Percent)
	if trend.IsUp {
		arrow = color.RedString("▲ %.1f%%", trend.Percent)
	}
	fmt.Fprintf(out, "\nTrend: %s  Projected monthly: %s  Avg: %.1f cores, %.1f GB\n\n",
		arrow,
		costs.FormatCurrency(s.ProjectedMonthlyCost),
		s.AvgCPUCores,
		s.AvgMemoryGB,
	)

	if len(dashboard.TopApps) == 0 {
		return nil
	}

	appsTable := table.NewWriter()
	appsTable.SetOutputMirror(out)
	appsTable.SetStyle(table.StyleRounded)
	appsTable.AppendHeader(table.Row{"App", "CPU", "Memory", "Disk", "Total"})
	for _, app := range dashboard.TopApps {
		appsTable.AppendRow(table.Row{
			app.AppName,
			costs.FormatCurrency(app.CPUCost),
			costs.FormatCurrency(app.MemoryCost),
			costs.FormatCurrency(app.DiskCost),
			costs.FormatCurrency(app.TotalCost),
		})
	}
	appsTable.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	appsTable.Render()

	return nil
}
