package credfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestLoad_FileNotFound(t *testing.T) {
	tok, profile, err := Load("/nonexistent/path/credentials.json")
	assert.Nil(t, tok)
	assert.Zero(t, profile)
	assert.NoError(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")

	expiry := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	original := &oauth2.Token{
		AccessToken:  "access-123",
		RefreshToken: "refresh-456",
		TokenType:    "Bearer",
		Expiry:       expiry,
	}
	profile := Profile{UserID: "user-1", Email: "alice@example.com", DisplayName: "Alice"}

	require.NoError(t, Save(path, original, profile))

	tok, loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "access-123", tok.AccessToken)
	assert.Equal(t, "refresh-456", tok.RefreshToken)
	assert.True(t, tok.Expiry.Equal(expiry))
	assert.Equal(t, "alice@example.com", loaded.Email)
	assert.Equal(t, "Alice", loaded.DisplayName)
}

func TestSave_Permissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "credentials.json")

	require.NoError(t, Save(path, &oauth2.Token{AccessToken: "x"}, Profile{}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePerms), info.Mode().Perm())
}

func TestLoad_MissingTokenField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")

	require.NoError(t, os.WriteFile(path, []byte(`{"profile":{"email":"a@b.c"}}`), 0o600))

	tok, _, err := Load(path)
	assert.Nil(t, tok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing token field")
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := Load(path)
	assert.Error(t, err)
}

func TestRemove_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")

	require.NoError(t, Save(path, &oauth2.Token{AccessToken: "x"}, Profile{}))
	require.NoError(t, Remove(path))
	assert.NoFileExists(t, path)

	// Second removal is a no-op.
	assert.NoError(t, Remove(path))
}
