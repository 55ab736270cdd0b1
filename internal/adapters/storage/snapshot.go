package storage

// snapshot.go — persistencia del estado del copiador en un fichero JSON.
//
// El fichero es el estado canónico para reanudar: posiciones, cash, P&L
// realizado, historial de fills y contadores. Se escribe completo tras cada
// fill vía fichero temporal + rename para que un corte a mitad de escritura
// nunca deje un snapshot corrupto.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/InkedLau/Polymarket-Copytrading/internal/domain"
)

// SnapshotFile implements ports.SnapshotStore on a single JSON file.
type SnapshotFile struct {
	path string
}

// NewSnapshotFile creates a store writing to the given path.
func NewSnapshotFile(path string) *SnapshotFile {
	return &SnapshotFile{path: path}
}

// Path returns the backing file path.
func (f *SnapshotFile) Path() string {
	return f.path
}

// Save writes the snapshot atomically.
func (f *SnapshotFile) Save(snap domain.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("storage.Save: marshal: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage.Save: mkdir %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("storage.Save: temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage.Save: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage.Save: close: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage.Save: rename: %w", err)
	}
	return nil
}

// Load reads the snapshot. A missing file is a clean first run (ok=false,
// no error); a malformed file is an error so the caller can decide whether
// to start fresh.
func (f *SnapshotFile) Load() (domain.Snapshot, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Snapshot{}, false, nil
		}
		return domain.Snapshot{}, false, fmt.Errorf("storage.Load: read %q: %w", f.path, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("storage.Load: parse %q: %w", f.path, err)
	}
	return snap, true, nil
}
