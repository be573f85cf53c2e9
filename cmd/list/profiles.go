package list

import (
	"fmt"

	"github.com/spf13/cobra"

	"costscope/internal/platform"
)

// NewProfilesCmd creates and returns the profiles command
func NewProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List available credential profiles",
		Long: `List all credential profiles from the costscope credentials file.
Profiles carry the admin API endpoint and the token used against it.`,
		Example: `  # List all available credential profiles
  costscope list profiles`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles()
		},
	}

	return cmd
}

func runProfiles() error {
	profiles, err := platform.ListProfiles()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	if len(profiles) == 0 {
		fmt.Println("No profiles found (run: costscope init credentials)")
		return nil
	}

	// Print profiles
	for _, profile := range profiles {
		fmt.Println(profile)
	}

	return nil
}
