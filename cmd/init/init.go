// Package init implements the init command family for generating
// starter configuration files.
package init

import (
	"github.com/spf13/cobra"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize costscope configuration files",
		Long: `Initialize costscope configuration files.

This command helps you create default configuration files for costscope:
a config.yaml with commented defaults, or a credentials file skeleton
for the admin API endpoint and token.`,
	}

	cmd.AddCommand(NewConfigCmd())
	cmd.AddCommand(NewCredentialsCmd())

	return cmd
}
