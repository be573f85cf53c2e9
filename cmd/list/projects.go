package list

import (
	"fmt"

	"github.com/spf13/cobra"

	"costscope/internal/platform"
)

// NewProjectsCmd creates and returns the projects command
func NewProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Long:  `List all projects known to the platform, with their IDs.`,
		Example: `  # List all projects
  costscope list projects`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjects(cmd)
		},
	}

	return cmd
}

func runProjects(cmd *cobra.Command) error {
	source, err := platform.NewSourceFromConfig()
	if err != nil {
		return err
	}

	projects, err := source.ListProjects(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if len(projects) == 0 {
		fmt.Println("No projects found")
		return nil
	}

	fmt.Println("Projects:")
	for _, project := range projects {
		fmt.Printf("  %s - %s\n", project.ID, project.Name)
	}

	return nil
}
