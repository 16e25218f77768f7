// Package credfile handles reading and writing the credentials file. The
// file stores an OAuth2 token for the help-center backend alongside the
// cached user profile (id, email, display name) so commands can show who is
// logged in without a network round-trip. This is a leaf package imported
// by both config/ and api/ to break the config→api import cycle.
package credfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// FilePerms restricts credentials files to owner-only read/write.
const FilePerms = 0o600

// DirPerms is used when creating the credentials directory.
const DirPerms = 0o700

// Profile is the cached user identity written at login time.
type Profile struct {
	UserID      string `json:"user_id,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// File is the on-disk format for credentials files.
type File struct {
	Token   *oauth2.Token `json:"token"`
	Profile Profile       `json:"profile,omitempty"`
}

// Load reads a saved credentials file from disk. Returns (nil, zero, nil)
// if the file does not exist; callers treat that as "not logged in".
func Load(path string) (*oauth2.Token, Profile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Profile{}, nil
	}

	if err != nil {
		return nil, Profile{}, fmt.Errorf("credfile: reading %s: %w", path, err)
	}

	var cf File
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, Profile{}, fmt.Errorf("credfile: decoding %s: %w", path, err)
	}

	if cf.Token == nil {
		return nil, Profile{}, fmt.Errorf("credfile: %s missing token field (re-login required)", path)
	}

	return cf.Token, cf.Profile, nil
}

// Save writes a credentials file to disk atomically (write-to-temp + rename)
// with 0600 permissions. Never logs token values.
func Save(path string, tok *oauth2.Token, profile Profile) error {
	cf := File{Token: tok, Profile: profile}

	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return fmt.Errorf("credfile: encoding: %w", err)
	}

	dir := filepath.Dir(path)
	if mkErr := os.MkdirAll(dir, DirPerms); mkErr != nil {
		return fmt.Errorf("credfile: creating directory %s: %w", dir, mkErr)
	}

	// Atomic write: temp file in the same directory, then rename.
	// Same directory guarantees same filesystem for rename(2).
	tmp, err := os.CreateTemp(dir, ".creds-*.tmp")
	if err != nil {
		return fmt.Errorf("credfile: creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	// Clean up temp file on any error path.
	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, FilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("credfile: setting permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("credfile: writing: %w", err)
	}

	// Flush to stable storage before rename so a power loss between close
	// and rename cannot leave an empty or partial file at the final path.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("credfile: syncing: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("credfile: closing: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("credfile: renaming: %w", err)
	}

	success = true

	return nil
}

// Remove deletes the credentials file. Missing files are not an error so
// logout is idempotent.
func Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("credfile: removing %s: %w", path, err)
	}

	return nil
}
