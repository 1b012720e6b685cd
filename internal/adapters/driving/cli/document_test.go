package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentCmd_Use(t *testing.T) {
	assert.Equal(t, "document", documentCmd.Use)
}

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, 4)
	for _, sub := range documentCmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "add")
	assert.Contains(t, names, "list")
	assert.Contains(t, names, "remove")
	assert.Contains(t, names, "reprocess")
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDocumentAddCmd_IngestsFile(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	path := writeTestFile(t, "onboarding.md",
		"# Onboarding\n\nNew hires pick up a badge on the first day.")

	out, err := executeCommand(t, "document", "add", path)

	require.NoError(t, err)
	assert.Contains(t, out, `Indexed "Onboarding"`)
	assert.Contains(t, out, "ready")
}

func TestDocumentAddCmd_TitleFlagOverridesFileName(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	path := writeTestFile(t, "notes.txt", "some meeting notes")

	out, err := executeCommand(t, "document", "add", "--title", "Meeting Notes", path)

	require.NoError(t, err)
	assert.Contains(t, out, `Indexed "Meeting Notes"`)
}

func TestDocumentAddCmd_ReadsStdin(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("content piped from stdin"))
	defer rootCmd.SetIn(nil)

	out, err := executeCommand(t, "document", "add", "-")

	require.NoError(t, err)
	assert.Contains(t, out, `Indexed "stdin"`)
}

func TestDocumentAddCmd_MissingFileFails(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := executeCommand(t, "document", "add", "/nonexistent/file.md")

	require.Error(t, err)
}

func TestDocumentAddCmd_UnknownChunkingModeRejected(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	path := writeTestFile(t, "notes.txt", "content")

	_, err := executeCommand(t, "document", "add", "--chunking", "recursive", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown chunking mode")
}

func TestDocumentListCmd_ShowsSeededDocument(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := executeCommand(t, "document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Vacation Policy")
	assert.Contains(t, out, "ready")
}

func TestDocumentRemoveCmd_RemovesDocument(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	listOut, err := executeCommand(t, "document", "list")
	require.NoError(t, err)

	id := firstUUID(listOut)
	require.NotEmpty(t, id)

	out, err := executeCommand(t, "document", "remove", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed "+id)

	listOut, err = executeCommand(t, "document", "list")
	require.NoError(t, err)
	assert.Contains(t, listOut, "No documents.")
}

func TestDocumentRemoveCmd_UnknownDocumentFails(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := executeCommand(t, "document", "remove", "no-such-id")

	require.Error(t, err)
}

func TestDocumentReprocessCmd_ReachesReady(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	listOut, err := executeCommand(t, "document", "list")
	require.NoError(t, err)

	id := firstUUID(listOut)
	require.NotEmpty(t, id)

	out, err := executeCommand(t, "document", "reprocess", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Reprocessed "+id)
	assert.Contains(t, out, "ready")
}

var uuidPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

func firstUUID(s string) string {
	return uuidPattern.FindString(s)
}
