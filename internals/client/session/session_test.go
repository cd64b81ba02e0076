package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	stores := map[string]Store{
		"memory": NewMemoryStore(""),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json")),
	}
	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, s.Token())
			require.NoError(t, s.SetToken("abc"))
			assert.Equal(t, "abc", s.Token())
			require.NoError(t, s.Clear())
			assert.Empty(t, s.Token())
			require.NoError(t, s.Clear())
		})
	}
}

func TestFileStorePermissionsAndCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewFileStore(path)
	require.NoError(t, s.SetToken("tok"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.Equal(t, "tok", NewFileStore(path).Token())

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	assert.Empty(t, s.Token())
}
