package list

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/undefinedlabs/go-mpatch"

	"costscope/internal/costs"
	"costscope/internal/platform"
)

// Helper function to execute a command and capture its output
func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	// Save original stdout
	oldStdout := os.Stdout

	// Create a pipe to capture stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// Set up command
	cmd.SetOut(w)
	cmd.SetErr(w)
	cmd.SetArgs(args)

	// Execute command
	err := cmd.Execute()

	// Close the writer and restore stdout
	w.Close()
	os.Stdout = oldStdout

	// Read the captured output
	var buf bytes.Buffer
	_, copyErr := io.Copy(&buf, r)
	if copyErr != nil {
		fmt.Fprintf(os.Stderr, "Error copying output: %v\n", copyErr)
	}

	return buf.String(), err
}

// Helper function to safely unpatch
func safeUnpatch(patch *mpatch.Patch) {
	if err := patch.Unpatch(); err != nil {
		fmt.Fprintf(os.Stderr, "Error unpatching: %v\n", err)
	}
}

// fakeSource is a canned Source implementation for command tests.
type fakeSource struct {
	teams      []costs.Team
	projects   []costs.Project
	teamErr    error
	projectErr error
}

func (s *fakeSource) FetchDashboard(ctx context.Context, period costs.Period) (*costs.DashboardCostResponse, error) {
	return &costs.DashboardCostResponse{}, nil
}

func (s *fakeSource) FetchCosts(ctx context.Context, scope costs.Scope, period costs.Period) (*costs.CostResponse, error) {
	return &costs.CostResponse{}, nil
}

func (s *fakeSource) ListTeams(ctx context.Context) ([]costs.Team, error) {
	return s.teams, s.teamErr
}

func (s *fakeSource) ListProjects(ctx context.Context) ([]costs.Project, error) {
	return s.projects, s.projectErr
}

func patchSource(t *testing.T, source platform.Source) {
	t.Helper()
	patch, err := mpatch.PatchMethod(platform.NewSourceFromConfig, func() (platform.Source, error) {
		return source, nil
	})
	require.NoError(t, err)
	t.Cleanup(func() { safeUnpatch(patch) })
}

// TestNewListCmd tests the creation of the list command
func TestNewListCmd(t *testing.T) {
	cmd := NewListCmd()
	assert.NotNil(t, cmd)
	assert.Equal(t, "list", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	// Verify subcommands
	subcommands := cmd.Commands()
	expectedSubcommands := []string{
		"teams",
		"projects",
		"periods",
		"profiles",
	}

	assert.Len(t, subcommands, len(expectedSubcommands))
	for _, subcmd := range subcommands {
		assert.Contains(t, expectedSubcommands, subcmd.Name())
	}
}

func TestTeamsCmd(t *testing.T) {
	patchSource(t, &fakeSource{
		teams: []costs.Team{
			{ID: "t-1", Name: "Payments"},
			{ID: "t-2", Name: "Search"},
		},
	})

	output, err := executeCommand(NewTeamsCmd())
	require.NoError(t, err)
	assert.Contains(t, output, "t-1 - Payments")
	assert.Contains(t, output, "t-2 - Search")
}

func TestTeamsCmdEmpty(t *testing.T) {
	patchSource(t, &fakeSource{})

	output, err := executeCommand(NewTeamsCmd())
	require.NoError(t, err)
	assert.Contains(t, output, "No teams found")
}

func TestTeamsCmdListFailure(t *testing.T) {
	patchSource(t, &fakeSource{
		teamErr: &platform.ListFetchError{Resource: "teams", Err: fmt.Errorf("unauthorized")},
	})

	_, err := executeCommand(NewTeamsCmd())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teams")
}

func TestProjectsCmd(t *testing.T) {
	patchSource(t, &fakeSource{
		projects: []costs.Project{{ID: "p-1", Name: "Checkout"}},
	})

	output, err := executeCommand(NewProjectsCmd())
	require.NoError(t, err)
	assert.Contains(t, output, "p-1 - Checkout")
}

func TestPeriodsCmd(t *testing.T) {
	output, err := executeCommand(NewPeriodsCmd())
	require.NoError(t, err)
	assert.Contains(t, output, "7d")
	assert.Contains(t, output, "trailing 30 days")
	assert.Contains(t, output, "trailing 90 days")
}

func TestProfilesCmd(t *testing.T) {
	credsPath := t.TempDir() + "/credentials"
	require.NoError(t, os.WriteFile(credsPath, []byte("[staging]\nendpoint = x\ntoken = y\n"), 0600))
	t.Setenv("COSTSCOPE_SHARED_CREDENTIALS_FILE", credsPath)

	output, err := executeCommand(NewProfilesCmd())
	require.NoError(t, err)
	assert.Contains(t, output, "staging")
}

func TestProfilesCmdEmpty(t *testing.T) {
	t.Setenv("COSTSCOPE_SHARED_CREDENTIALS_FILE", t.TempDir()+"/missing")

	output, err := executeCommand(NewProfilesCmd())
	require.NoError(t, err)
	assert.Contains(t, output, "No profiles found")
}
