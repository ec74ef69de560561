package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/dkimctl/internal/logging"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "dkimctl", cmd.Use)
	assert.Equal(t, "Provision OpenDKIM signing on a mail host", cmd.Short)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}

	for _, expected := range []string{"apply", "render", "facts", "version", "completion"} {
		assert.True(t, subcommands[expected], "Expected subcommand %s not found", expected)
	}
	assert.Len(t, cmd.Commands(), 5)
}

func TestApply_Flags(t *testing.T) {
	cmd := Apply()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"config", "c", ""},
		{"check", "", "false"},
		{"metrics-file", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := cmd.Flags().Lookup(tt.name)
			require.NotNil(t, f)
			assert.Equal(t, tt.shorthand, f.Shorthand)
			assert.Equal(t, tt.defValue, f.DefValue)
		})
	}
}

func TestRender_Flags(t *testing.T) {
	cmd := Render()
	require.NotNil(t, cmd.Flags().Lookup("config"))
	output := cmd.Flags().Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "o", output.Shorthand)
}

func TestLogOptions(t *testing.T) {
	root := Root()
	var got []logging.Options
	for _, sub := range root.Commands() {
		if sub.Name() == "version" {
			sub.Run = func(cmd *cobra.Command, _ []string) {
				got = append(got, logOptions(cmd))
			}
		}
	}

	root.SetArgs([]string{"version", "-vv", "--log-timestamps"})
	require.NoError(t, root.Execute())
	assert.Equal(t, []logging.Options{{Verbosity: 2, Timestamps: true}}, got)

	// Without a root the persistent flags are absent.
	assert.Zero(t, logOptions(Version()).Verbosity)
}

func TestVersion_Output(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	t.Cleanup(func() { version, commit, date = origVersion, origCommit, origDate })

	SetVersionInfo("1.2.3", "abc123", "2026-01-01")

	var buf bytes.Buffer
	cmd := Version()
	cmd.SetOut(&buf)
	cmd.Run(cmd, nil)

	assert.Equal(t, "dkimctl 1.2.3\n  commit: abc123\n  built:  2026-01-01\n", buf.String())
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			root := Root()
			var buf bytes.Buffer
			root.SetOut(&buf)
			root.SetArgs([]string{"completion", shell})

			require.NoError(t, root.Execute())
			assert.True(t, strings.Contains(buf.String(), "dkimctl"))
		})
	}
}

func TestCompletion_InvalidShell(t *testing.T) {
	root := Root()
	root.SetArgs([]string{"completion", "tcsh"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}
