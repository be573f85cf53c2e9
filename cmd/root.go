package cmd

import (
	"costscope/cmd/browse"
	"costscope/cmd/export"
	initCmd "costscope/cmd/init"
	"costscope/cmd/list"
	"costscope/cmd/summary"
	"costscope/cmd/version"
	"costscope/internal/config"
	"costscope/internal/costs"
	"costscope/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// commands that run without any configuration
var skipConfigCommands = map[string]bool{
	"version":    true,
	"help":       true,
	"completion": true,
}

// NewRootCmd builds the costscope command tree.
func NewRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "costscope",
		Short: "costscope - cost analysis for the deployment platform",
		Long: `costscope turns the deployment platform's per-app cost samples into
rollups, trends and reports: a system-wide summary, lazy team and
project drill-downs, and deterministic CSV/JSON/HTML exports.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipConfigCommands[cmd.Name()] {
				return nil
			}

			if configFile != "" {
				if err := config.SetConfigFile(configFile); err != nil {
					return err
				}
			} else if err := config.InitConfig(false, cmd); err != nil {
				return err
			}

			applyConfig()

			level, err := logging.ParseLevel(config.Config.LogLevel)
			if err != nil {
				return err
			}
			format, err := logging.ParseFormat(config.Config.LogFormat)
			if err != nil {
				return err
			}
			logging.Configure(logging.LogConfig{Level: level, Format: format})
			config.LogConfigurationSources(level == logging.DEBUG, cmd)

			if _, err := costs.ParsePeriod(config.Config.Period); err != nil {
				return err
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringP("profile", "p", "default", "Credentials profile to use")
	rootCmd.PersistentFlags().String("endpoint", "", "Admin API base URL (overrides the profile endpoint)")
	rootCmd.PersistentFlags().String("period", "30d", "Cost period (7d, 30d or 90d)")
	rootCmd.PersistentFlags().Int("max-workers", 8, "Maximum number of concurrent cost fetches")
	rootCmd.PersistentFlags().String("log-format", "text", "Log output format (text or json)")
	rootCmd.PersistentFlags().String("log-level", "INFO", "Set logging level (DEBUG, INFO, WARN, ERROR)")

	// Flag > env > config file > default, resolved by viper.
	_ = viper.BindPFlag("api.profile", rootCmd.PersistentFlags().Lookup("profile"))
	_ = viper.BindPFlag("api.endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag("app.period", rootCmd.PersistentFlags().Lookup("period"))
	_ = viper.BindPFlag("app.max_workers", rootCmd.PersistentFlags().Lookup("max-workers"))
	_ = viper.BindPFlag("app.log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("app.log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(summary.NewSummaryCmd())
	rootCmd.AddCommand(export.NewExportCmd())
	rootCmd.AddCommand(browse.NewBrowseCmd())
	rootCmd.AddCommand(list.NewListCmd())
	rootCmd.AddCommand(initCmd.NewInitCmd())
	rootCmd.AddCommand(version.NewVersionCmd())

	return rootCmd
}

// applyConfig copies the resolved viper values into the global config.
func applyConfig() {
	config.Config.Profile = viper.GetString("api.profile")
	config.Config.Endpoint = viper.GetString("api.endpoint")
	config.Config.Period = viper.GetString("app.period")
	config.Config.MaxWorkers = viper.GetInt("app.max_workers")
	config.Config.LogFormat = viper.GetString("app.log_format")
	config.Config.LogLevel = viper.GetString("app.log_level")
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
