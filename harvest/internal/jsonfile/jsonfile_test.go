package jsonfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMissing(t *testing.T) {
	data, exists, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Nil(t, data)
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, Write(path, []map[string]string{{"url": "a"}}, 0o644))

	data, exists, err := Read(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "[\n  {\n    \"url\": \"a\"\n  }\n]\n", string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "tmp file must not survive a successful write")
}

func TestWriteReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, Write(path, []int{1, 2, 3}, 0o600))
	require.NoError(t, Write(path, []int{4}, 0o600))

	data, _, err := Read(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[4]", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
