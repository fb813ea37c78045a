package local_fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS_SendAndDelete(t *testing.T) {
	root := t.TempDir()
	fs, err := NewClient(&Config{SavePath: root, CustomPath: "inbox"})
	require.NoError(t, err)
	ctx := context.Background()

	key, err := fs.SendContent(ctx, "a.zip", []byte("zip"), "application/zip")
	require.NoError(t, err)
	assert.Equal(t, "inbox/a.zip", key)

	data, err := os.ReadFile(filepath.Join(root, "inbox", "a.zip"))
	require.NoError(t, err)
	assert.Equal(t, "zip", string(data))

	// overwrite keeps a single file
	_, err = fs.SendContent(ctx, "a.zip", []byte("zip2"), "application/zip")
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(root, "inbox"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, fs.Delete(ctx, "a.zip"))
	require.NoError(t, fs.Delete(ctx, "a.zip"))
	_, err = os.Stat(filepath.Join(root, "inbox", "a.zip"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewClient_RequiresSavePath(t *testing.T) {
	_, err := NewClient(&Config{})
	assert.Error(t, err)
}
