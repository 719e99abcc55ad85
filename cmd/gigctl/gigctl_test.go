package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestMigrateDown_RejectsInvalidSteps(t *testing.T) {
	for _, arg := range []string{"abc", "0", "-2"} {
		t.Run(arg, func(t *testing.T) {
			_, err := execute(t, "migrate", "down", "--", arg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "steps must be a positive integer")
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := execute(t, "migrate", "version", "--config", "testdata/does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestTokenIssue_RequiresEmail(t *testing.T) {
	_, err := execute(t, "token", "issue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
		{"user", "create"},
		{"user", "list"},
		{"token", "issue"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
