package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"costscope/internal/logging"
)

// parameterSource tracks where each parameter value came from
type parameterSource struct {
	Key    string
	Value  interface{}
	Source string
}

// configFlagNames maps config keys to their command line flag names.
var configFlagNames = map[string]string{
	"api.endpoint":         "endpoint",
	"api.profile":          "profile",
	"app.max_workers":      "max-workers",
	"app.log_format":       "log-format",
	"app.log_level":        "log-level",
	"app.period":           "period",
	"export.format":        "format",
	"export.output":        "output",
	"export.output_dir":    "output-dir",
	"export.bucket":        "s3-bucket",
	"export.bucket_region": "s3-region",
	"export.compress":      "compress",
}

// getParameterSource determines where a parameter value came from
// (config file, env var, flag, or default)
func getParameterSource(key string, cmd *cobra.Command) parameterSource {
	value := viper.Get(key)
	envKey := "COSTSCOPE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))

	flagName := configFlagNames[key]
	if flagName == "" {
		flagName = strings.ReplaceAll(key, ".", "-")
	}

	if cmd != nil {
		if f := cmd.Flags().Lookup(flagName); f != nil && f.Changed {
			return parameterSource{key, value, "command line flag"}
		}

		// Walk up the command chain checking persistent flags
		current := cmd
		for current != nil {
			if f := current.PersistentFlags().Lookup(flagName); f != nil && f.Changed {
				return parameterSource{key, value, "command line flag"}
			}
			current = current.Parent()
		}
	}

	if _, exists := os.LookupEnv(envKey); exists {
		return parameterSource{key, value, "environment variable"}
	}

	if viper.GetViper().InConfig(key) {
		return parameterSource{key, value, "config file"}
	}

	return parameterSource{key, value, "default value"}
}

// LogConfigurationSources logs the source of each configuration parameter
func LogConfigurationSources(shouldLog bool, cmd *cobra.Command) {
	if !shouldLog {
		return
	}

	logging.Debug("Configuration parameter sources:", nil)

	params := []string{
		"api.endpoint",
		"api.profile",
		"app.max_workers",
		"app.log_format",
		"app.log_level",
		"app.period",
		"export.format",
		"export.output",
		"export.output_dir",
		"export.bucket",
		"export.bucket_region",
		"export.compress",
	}

	for _, param := range params {
		source := getParameterSource(param, cmd)
		logging.Debug(fmt.Sprintf("  %s = %v (from %s)", source.Key, source.Value, source.Source), nil)
	}
}

// InitConfig initializes the Viper configuration
func InitConfig(shouldLog bool, cmd *cobra.Command) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search the working directory first, then the user config dir
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".costscope"))
	}

	viper.SetEnvPrefix("COSTSCOPE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Defaults for all configuration values
	viper.SetDefault("api.endpoint", "")
	viper.SetDefault("api.profile", "default")
	viper.SetDefault("app.max_workers", 8)
	viper.SetDefault("app.log_format", "text")
	viper.SetDefault("app.log_level", "INFO")
	viper.SetDefault("app.period", "30d")
	viper.SetDefault("export.format", "csv")
	viper.SetDefault("export.output", "filesystem")
	viper.SetDefault("export.output_dir", "reports")
	viper.SetDefault("export.bucket", "")
	viper.SetDefault("export.bucket_region", "")
	viper.SetDefault("export.compress", false)

	// Missing config file is fine; defaults and env vars apply
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		if shouldLog {
			logging.Debug("No config file found, using defaults and environment variables", nil)
		}
	} else if shouldLog {
		logging.Debug("Loaded config file", map[string]interface{}{
			"path": viper.ConfigFileUsed(),
		})
	}

	return nil
}

// SetConfigFile sets a custom config file path and reloads the configuration
func SetConfigFile(configFile string) error {
	viper.SetConfigFile(configFile)

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// defaultConfigYAML is the commented starter config written by
// `costscope init config`.
const defaultConfigYAML = `# costscope Configuration File

# Platform API Configuration
api:
  endpoint: ""  # Admin API base URL (overrides the credentials profile endpoint)
  profile: default  # Credentials profile from ~/.costscope/credentials

# Application Configuration
app:
  max_workers: 8  # Maximum number of concurrent cost fetches during export
  log_format: text  # Log output format (text or json)
  log_level: INFO  # Set logging level (DEBUG, INFO, WARN, ERROR)
  period: 30d  # Default cost period (7d, 30d or 90d)

# Export Command Configuration
export:
  format: csv  # Report format (csv, json or html)
  output: filesystem  # Output destination (filesystem or s3)
  output_dir: reports  # Directory for filesystem output
  bucket: ""  # S3 bucket name (required when output=s3)
  bucket_region: ""  # S3 bucket region (required when output=s3)
  compress: false  # Compress the report with gzip
`

// WriteDefaultConfig writes the commented default config to path,
// creating parent directories as needed.
func WriteDefaultConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	return nil
}
