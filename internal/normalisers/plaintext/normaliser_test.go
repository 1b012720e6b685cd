package plaintext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestExtensions(t *testing.T) {
	exts := New().Extensions()

	assert.Contains(t, exts, ".txt")
	assert.Contains(t, exts, ".log")
	assert.Contains(t, exts, ".yaml")
}

func TestNormalise_PassesContentThrough(t *testing.T) {
	normaliser := New()

	result, err := normaliser.Normalise([]byte("raw content\nsecond line"), "/notes/todo.txt")
	require.NoError(t, err)

	assert.Equal(t, "raw content\nsecond line", result.Content)
	assert.Equal(t, "todo", result.Title)
}

func TestTitleFromPath(t *testing.T) {
	assert.Equal(t, "meeting notes", TitleFromPath("/home/user/meeting_notes.txt"))
	assert.Equal(t, "release 2026 01", TitleFromPath("release-2026-01.log"))
	assert.Equal(t, "README", TitleFromPath("README"))
}
