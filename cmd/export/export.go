// Package export implements the export command: bulk-fetch every
// team's and project's costs and write the report.
package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"costscope/internal/config"
	"costscope/internal/costs"
	"costscope/internal/logging"
	"costscope/internal/platform"
	"costscope/internal/report"
	"costscope/internal/report/html"
	"costscope/internal/worker"
)

type exportOptions struct {
	format       string // csv, json or html
	output       string // filesystem or s3
	outputDir    string
	bucket       string
	bucketRegion string
	compress     bool
	file         string // explicit filename override
}

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a cost report",
		Long: `Export a cost report for the selected period.

Fetches the system summary and every team's and project's costs, then
writes a report named costs-<period>-<date>.<format>. Per-scope fetch
failures are logged and their rows omitted; only a failure to list
teams or projects aborts the export.`,
		Example: `  # CSV report for the default period into ./reports
  costscope export

  # Compressed JSON report for the trailing week
  costscope export --format json --period 7d --compress

  # HTML report uploaded to S3
  costscope export --format html --output s3 --s3-bucket my-bucket --s3-region us-west-2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.format {
			case "csv", "json", "html":
				// Valid formats
			default:
				return fmt.Errorf("invalid format: %s", opts.format)
			}

			switch opts.output {
			case "filesystem", "s3":
				// Valid output types
			default:
				return fmt.Errorf("invalid output type: %s", opts.output)
			}

			if opts.output == "s3" {
				if opts.bucket == "" {
					return fmt.Errorf("--s3-bucket is required when --output=s3")
				}
				if opts.bucketRegion == "" {
					return fmt.Errorf("--s3-region is required when --output=s3")
				}
			}

			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "csv", "Report format (csv, json, html)")
	cmd.Flags().StringVar(&opts.output, "output", "filesystem", "Output destination (filesystem, s3)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "reports", "Directory for filesystem output")
	cmd.Flags().StringVar(&opts.bucket, "s3-bucket", "", "S3 bucket name (required when --output=s3)")
	cmd.Flags().StringVar(&opts.bucketRegion, "s3-region", "", "S3 bucket region (required when --output=s3)")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "Compress the report with gzip")
	cmd.Flags().StringVar(&opts.file, "file", "", "Report filename (default costs-<period>-<date>.<format>)")

	return cmd
}

func runExport(cmd *cobra.Command, opts *exportOptions) error {
	period, err := costs.ParsePeriod(config.Config.Period)
	if err != nil {
		return err
	}

	source, err := platform.NewSourceFromConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	start := time.Now()

	// The system dashboard failing only costs the System and App (Top)
	// rows; the rest of the report is still worth producing.
	system, err := source.FetchDashboard(ctx, period)
	if err != nil {
		logging.FetchFailed("system", period.String(), err)
		system = nil
	}

	// Listing failures escalate: without them there is nothing to walk.
	teams, err := source.ListTeams(ctx)
	if err != nil {
		return err
	}
	projects, err := source.ListProjects(ctx)
	if err != nil {
		return err
	}

	logging.ExportStart(opts.format, period.String(), len(teams), len(projects))

	teamCosts, projectCosts := fetchAll(source, teams, projects, period)

	data, name, err := renderReport(opts, system, teams, teamCosts, projects, projectCosts, period)
	if err != nil {
		return err
	}

	writer := report.NewWriter(report.Config{
		Type:      report.Type(opts.output),
		OutputDir: opts.outputDir,
		S3Bucket:  opts.bucket,
		S3Region:  opts.bucketRegion,
		Compress:  opts.compress,
	})
	location, err := writer.Write(name, data)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logging.ExportComplete(location, len(teamCosts)+len(projectCosts), time.Since(start))
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", location)
	return nil
}

// fetchAll fetches every team's and project's costs concurrently into
// plain maps. Per-scope failures are logged and leave their entry
// absent; the exporter omits those rows.
func fetchAll(source platform.Source, teams []costs.Team, projects []costs.Project, period costs.Period) (map[string]*costs.CostResponse, map[string]*costs.CostResponse) {
	teamCosts := make(map[string]*costs.CostResponse)
	projectCosts := make(map[string]*costs.CostResponse)

	var mu sync.Mutex
	var tasks []worker.Task

	bar := progressbar.NewOptions(len(teams)+len(projects),
		progressbar.OptionSetDescription("Fetching costs..."),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	addTask := func(scope costs.Scope, store func(*costs.CostResponse)) {
		tasks = append(tasks, func(ctx context.Context) error {
			defer func() {
				_ = bar.Add(1)
			}()

			resp, err := source.FetchCosts(ctx, scope, period)
			if err != nil {
				logging.FetchFailed(scope.String(), period.String(), err)
				return err
			}

			mu.Lock()
			store(resp)
			mu.Unlock()
			return nil
		})
	}

	for _, team := range teams {
		id := team.ID
		addTask(costs.TeamScope(id), func(resp *costs.CostResponse) {
			teamCosts[id] = resp
		})
	}
	for _, project := range projects {
		id := project.ID
		addTask(costs.ProjectScope(id), func(resp *costs.CostResponse) {
			projectCosts[id] = resp
		})
	}

	pool := worker.NewPool(config.Config.MaxWorkers)
	pool.Start()
	defer pool.Stop()
	pool.ExecuteTasks(tasks)

	return teamCosts, projectCosts
}

// renderReport serializes the fetched data in the requested format and
// picks the artifact name.
func renderReport(
	opts *exportOptions,
	system *costs.DashboardCostResponse,
	teams []costs.Team,
	teamCosts map[string]*costs.CostResponse,
	projects []costs.Project,
	projectCosts map[string]*costs.CostResponse,
	period costs.Period,
) ([]byte, string, error) {
	now := time.Now()
	generatedAt := now.Format(time.RFC3339)

	var data []byte
	switch opts.format {
	case "csv":
		data = []byte(report.Generate(system, teams, teamCosts, projects, projectCosts, period))
	case "json":
		doc := report.BuildDocument(generatedAt, system, teams, teamCosts, projects, projectCosts, period)
		marshaled, err := doc.Marshal()
		if err != nil {
			return nil, "", err
		}
		data = marshaled
	case "html":
		rendered, err := html.Render(generatedAt, system, teams, teamCosts, projects, projectCosts, period)
		if err != nil {
			return nil, "", err
		}
		data = rendered
	}

	name := opts.file
	if name == "" {
		name = report.DefaultFilename(period, now.Format("2006-01-02"), opts.format, opts.compress)
	} else if opts.compress {
		name += ".gz"
	}

	return data, name, nil
}
