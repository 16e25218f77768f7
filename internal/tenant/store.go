package tenant

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ahakola/kbcenter-go/internal/kbid"
)

// SelectionFileName is the fixed name of the durable selection slot inside
// the state directory. One key, one value: the active knowledge-base id.
const SelectionFileName = "active_kb.json"

// File permissions for the selection file and its directory.
const (
	selectionFilePerms = 0o600
	selectionDirPerms  = 0o700
)

// selectionFile is the on-disk format of the selection slot.
type selectionFile struct {
	SelectedID kbid.ID `json:"selectedId"`
}

// FileStore is a SelectionStore backed by a single JSON file, written
// atomically (write-to-temp + rename) so a crash cannot leave a torn slot.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore rooted at dir, using the fixed
// SelectionFileName.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, SelectionFileName)}
}

// Path returns the full path of the selection file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the persisted selection. A missing file is not an error: it
// returns the zero ID, meaning no selection has ever been made.
func (s *FileStore) Load() (kbid.ID, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return kbid.ID{}, nil
	}

	if err != nil {
		return kbid.ID{}, fmt.Errorf("tenant: reading selection file %s: %w", s.path, err)
	}

	var sf selectionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return kbid.ID{}, fmt.Errorf("tenant: decoding selection file %s: %w", s.path, err)
	}

	return sf.SelectedID, nil
}

// Save writes the selection atomically with owner-only permissions.
func (s *FileStore) Save(id kbid.ID) error {
	data, err := json.Marshal(selectionFile{SelectedID: id})
	if err != nil {
		return fmt.Errorf("tenant: encoding selection: %w", err)
	}

	dir := filepath.Dir(s.path)
	if mkErr := os.MkdirAll(dir, selectionDirPerms); mkErr != nil {
		return fmt.Errorf("tenant: creating state directory %s: %w", dir, mkErr)
	}

	// Atomic write: temp file in the same directory, then rename.
	tmp, err := os.CreateTemp(dir, ".selection-*.tmp")
	if err != nil {
		return fmt.Errorf("tenant: creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, selectionFilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("tenant: setting permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("tenant: writing selection: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tenant: closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("tenant: renaming selection file: %w", err)
	}

	success = true

	return nil
}

// Compile-time interface check.
var _ SelectionStore = (*FileStore)(nil)
