package init

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"costscope/internal/platform"
)

const defaultCredentialsContent = `# costscope credentials
# One section per profile; select with --profile or api.profile.

[default]
endpoint = https://platform.example.com
token = replace-with-your-admin-api-token

# [staging]
# endpoint = https://staging.platform.example.com
# token = replace-with-your-staging-token
`

// NewCredentialsCmd creates the credentials subcommand
func NewCredentialsCmd() *cobra.Command {
	var force bool
	var output string

	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Create a credentials file skeleton",
		Long: `Create a credentials file skeleton with a default profile.

The file will be created at ~/.costscope/credentials by default.
You can specify a different location using the --output flag.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				path, err := platform.CredentialsPath()
				if err != nil {
					return err
				}
				output = path
			}

			absPath, err := filepath.Abs(output)
			if err != nil {
				return fmt.Errorf("failed to resolve absolute path: %w", err)
			}

			if _, err := os.Stat(absPath); err == nil && !force {
				return fmt.Errorf("file %s already exists. Use --force to overwrite", absPath)
			}

			dir := filepath.Dir(absPath)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}

			// Tokens live here; keep the file private.
			if err := os.WriteFile(absPath, []byte(defaultCredentialsContent), 0600); err != nil {
				return fmt.Errorf("failed to write credentials file: %w", err)
			}

			fmt.Printf("Created credentials file: %s\n", absPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: ~/.costscope/credentials)")

	return cmd
}
