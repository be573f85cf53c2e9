package list

import (
	"fmt"

	"github.com/spf13/cobra"

	"costscope/internal/platform"
)

// NewTeamsCmd creates and returns the teams command
func NewTeamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "List teams",
		Long:  `List all teams known to the platform, with their IDs.`,
		Example: `  # List all teams
  costscope list teams`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTeams(cmd)
		},
	}

	return cmd
}

func runTeams(cmd *cobra.Command) error {
	source, err := platform.NewSourceFromConfig()
	if err != nil {
		return err
	}

	teams, err := source.ListTeams(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list teams: %w", err)
	}

	if len(teams) == 0 {
		fmt.Println("No teams found")
		return nil
	}

	fmt.Println("Teams:")
	for _, team := range teams {
		fmt.Printf("  %s - %s\n", team.ID, team.Name)
	}

	return nil
}
