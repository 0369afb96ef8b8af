package helpers

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issues.json")

	require.NoError(t, SaveJSON([]map[string]string{{"key": "PROJ-1"}}, path))
	assert.True(t, FileExists(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "PROJ-1", got[0]["key"])
}

func TestFileExists(t *testing.T) {
	assert.False(t, FileExists(filepath.Join(t.TempDir(), "missing")))
}

func TestReadContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>from file</p>"), 0644))

	content, err := ReadContent("<p>inline</p>", "")
	require.NoError(t, err)
	assert.Equal(t, "<p>inline</p>", content)

	content, err = ReadContent("", path)
	require.NoError(t, err)
	assert.Equal(t, "<p>from file</p>", content)

	_, err = ReadContent("<p>inline</p>", path)
	assert.Error(t, err)

	_, err = ReadContent("", filepath.Join(t.TempDir(), "missing.html"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
