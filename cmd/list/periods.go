package list

import (
	"fmt"

	"github.com/spf13/cobra"

	"costscope/internal/costs"
)

// NewPeriodsCmd creates and returns the periods command
func NewPeriodsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "periods",
		Short: "List valid cost periods",
		Long:  `List the cost periods accepted by --period, with their window sizes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Periods:")
			for _, period := range costs.Periods() {
				fmt.Printf("  %-4s - trailing %d days\n", period, period.Days())
			}
			return nil
		},
	}

	return cmd
}
