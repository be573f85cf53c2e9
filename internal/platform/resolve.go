package platform

import (
	"fmt"
	"os"

	"costscope/internal/config"
)

// ResolveOptions assembles client options from the global config and
// the credentials profile. An explicit endpoint (flag, env or config
// file) overrides the profile's endpoint; the token may come from the
// profile or the COSTSCOPE_API_TOKEN environment variable.
func ResolveOptions() (Options, error) {
	opts := Options{Endpoint: config.Config.Endpoint}

	if config.Config.Profile != "" {
		profile, err := LoadProfile(config.Config.Profile)
		if err != nil {
			// A broken or missing profile only matters when the config
			// does not supply the endpoint itself.
			if opts.Endpoint == "" {
				return Options{}, fmt.Errorf("no endpoint configured and profile unavailable: %w", err)
			}
		} else {
			if opts.Endpoint == "" {
				opts.Endpoint = profile.Endpoint
			}
			opts.Token = profile.Token
		}
	}

	if token := os.Getenv("COSTSCOPE_API_TOKEN"); token != "" {
		opts.Token = token
	}

	return opts, nil
}

// NewSourceFromConfig builds the admin API client for the current
// global configuration.
func NewSourceFromConfig() (Source, error) {
	opts, err := ResolveOptions()
	if err != nil {
		return nil, err
	}
	client, err := NewSource(opts)
	if err != nil {
		return nil, err
	}
	return client, nil
}
