package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ritzau/casegraph/pkg/model"
)

// DataFileName is the name of the case document inside the data directory
const DataFileName = "relationship-web-builder-data.json"

// DefaultPath returns <user config dir>/casegraph/relationship-web-builder-data.json
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "casegraph", DataFileName), nil
}

// JSONFile stores the whole case list as one pretty-printed JSON array
type JSONFile struct {
	path string
}

// NewJSONFile creates a persister for the given file. The file and its
// directory are created on the first save.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the file location
func (f *JSONFile) Path() string {
	return f.path
}

// LoadCases reads the case list. A missing or empty file yields nil, nil so
// that the caller can fall back to its defaults.
func (f *JSONFile) LoadCases(ctx context.Context) ([]model.Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var cases []model.Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	if cases == nil {
		// "null" on disk
		return nil, nil
	}
	return cases, nil
}

// SaveCases replaces the file atomically: the list is written to a temp file
// in the same directory, synced, then renamed over the old one.
func (f *JSONFile) SaveCases(ctx context.Context, cases []model.Case) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cases == nil {
		cases = []model.Case{}
	}
	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cases: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}
