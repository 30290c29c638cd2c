package adapters

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemRepo_WriteFile(t *testing.T) {
	base := filepath.Join(t.TempDir(), "wireguard")
	repo, err := NewFileSystemRepository(base)
	require.NoError(t, err)

	require.NoError(t, repo.WriteFile("wg0.conf", strings.NewReader("first")))
	require.NoError(t, repo.WriteFile("wg0.conf", strings.NewReader("second")))

	content, err := os.ReadFile(filepath.Join(base, "wg0.conf"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
	assert.True(t, repo.Exists("wg0.conf"))

	info, err := os.Stat(repo.Path("wg0.conf"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files must be left behind")
}

func TestFilesystemRepo_WriteTempFile(t *testing.T) {
	repo, err := NewFileSystemRepository(t.TempDir())
	require.NoError(t, err)

	path, err := repo.WriteTempFile("wg0-*.key", strings.NewReader("secret"))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(content))

	require.NoError(t, repo.RemovePath(path))
	require.NoError(t, repo.RemovePath(path), "removing a missing file is not an error")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFilesystemRepo_RemoveFile(t *testing.T) {
	repo, err := NewFileSystemRepository(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, repo.WriteFile("wg0.conf", strings.NewReader("x")))
	require.NoError(t, repo.RemoveFile("wg0.conf"))
	assert.False(t, repo.Exists("wg0.conf"))
	assert.NoError(t, repo.RemoveFile("wg0.conf"))
}

func TestNewFileSystemRepository_MissingPath(t *testing.T) {
	_, err := NewFileSystemRepository("")
	assert.Error(t, err)
}
