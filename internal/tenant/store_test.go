package tenant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahakola/kbcenter-go/internal/kbid"
)

func TestFileStore_LoadMissingFile(t *testing.T) {
	store := NewFileStore(t.TempDir())

	id, err := store.Load()
	require.NoError(t, err)
	assert.True(t, id.IsZero())
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	require.NoError(t, store.Save(kbid.New("kb-42")))

	// Survives a "reload": a fresh store over the same directory reads the
	// same value.
	reloaded := NewFileStore(dir)
	id, err := reloaded.Load()
	require.NoError(t, err)
	assert.Equal(t, "kb-42", id.String())

	// Fixed file name, owner-only permissions.
	info, err := os.Stat(filepath.Join(dir, SelectionFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(selectionFilePerms), info.Mode().Perm())
}

func TestFileStore_OverwriteSelection(t *testing.T) {
	store := NewFileStore(t.TempDir())

	require.NoError(t, store.Save(kbid.New("a")))
	require.NoError(t, store.Save(kbid.New("b")))

	id, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "b", id.String())
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	require.NoError(t, os.WriteFile(store.Path(), []byte("{torn write"), 0o600))

	_, err := store.Load()
	assert.Error(t, err)
}

func TestFileStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	store := NewFileStore(dir)

	require.NoError(t, store.Save(kbid.New("kb1")))

	id, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "kb1", id.String())
}
