package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// Profile is one named credential set from the credentials file: the
// admin API endpoint and the bearer token used against it.
type Profile struct {
	Name     string
	Endpoint string
	Token    string
}

// CredentialsPath returns the credentials file location, honoring the
// COSTSCOPE_SHARED_CREDENTIALS_FILE override.
func CredentialsPath() (string, error) {
	if path := os.Getenv("COSTSCOPE_SHARED_CREDENTIALS_FILE"); path != "" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(homeDir, ".costscope", "credentials"), nil
}

// ListProfiles returns the names of all credential profiles, sorted.
// A missing credentials file yields an empty list, not an error.
func ListProfiles() ([]string, error) {
	credsPath, err := CredentialsPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(credsPath); err != nil {
		return nil, nil
	}

	credsFile, err := ini.Load(credsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials file: %w", err)
	}

	var names []string
	for _, section := range credsFile.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		names = append(names, strings.TrimPrefix(section.Name(), "profile "))
	}
	sort.Strings(names)

	return names, nil
}

// LoadProfile reads one named profile from the credentials file.
func LoadProfile(name string) (*Profile, error) {
	credsPath, err := CredentialsPath()
	if err != nil {
		return nil, err
	}

	credsFile, err := ini.Load(credsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials file: %w", err)
	}

	section, err := credsFile.GetSection(name)
	if err != nil {
		section, err = credsFile.GetSection("profile " + name)
		if err != nil {
			return nil, fmt.Errorf("profile %q not found in %s", name, credsPath)
		}
	}

	return &Profile{
		Name:     name,
		Endpoint: section.Key("endpoint").String(),
		Token:    section.Key("token").String(),
	}, nil
}

// IsValidProfile checks if a profile exists
func IsValidProfile(name string) bool {
	profiles, err := ListProfiles()
	if err != nil {
		return false
	}
	for _, p := range profiles {
		if p == name {
			return true
		}
	}
	return false
}
