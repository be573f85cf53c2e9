// Package list implements the list command family.
package list

import (
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List platform resources",
		Long: `List platform resources and configurations.
Currently supports listing:
  - Teams known to the platform
  - Projects known to the platform
  - Valid cost periods
  - Available credential profiles`,
	}

	// Add subcommands
	cmd.AddCommand(NewTeamsCmd())
	cmd.AddCommand(NewProjectsCmd())
	cmd.AddCommand(NewPeriodsCmd())
	cmd.AddCommand(NewProfilesCmd())

	return cmd
}
