package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandVersionFlag(t *testing.T) {
	root := GetRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "boothfinder version")
}

func TestRootCommandShowsHelp(t *testing.T) {
	root := GetRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	// The version flag is persistent on the shared root command; reset it
	// explicitly so execution order does not matter.
	root.SetArgs([]string{"--version=false"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "analyze")
	assert.Contains(t, out.String(), "serve")
}

func TestGetConfigReturnsDefaults(t *testing.T) {
	cfg := GetConfig()
	require.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.LogLevel)
	assert.Positive(t, cfg.Server.Port)
}
