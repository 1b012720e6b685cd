package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUICmd_Use(t *testing.T) {
	assert.Equal(t, "tui", tuiCmd.Use)
}

func TestTUICmd_NotConfigured(t *testing.T) {
	SetServices(Services{})
	defer resetFlags()

	_, err := executeCommand(t, "tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestMCPCmd_Use(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)
	assert.Equal(t, "serve", mcpServeCmd.Use)
}

func TestMCPServeCmd_HasPortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_RequiresSearchService(t *testing.T) {
	SetServices(Services{})
	defer resetFlags()

	_, err := executeCommand(t, "mcp", "serve")

	require.Error(t, err)
}
