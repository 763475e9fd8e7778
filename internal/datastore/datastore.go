// Package datastore manages the directory of uploaded CSV training datasets.
package datastore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"threatscan/internal/apperr"
)

// Store is a filesystem-backed dataset store over a single directory.
type Store struct {
	dir string
}

// DatasetInfo is a directory listing entry.
type DatasetInfo struct {
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// NewStore creates the dataset directory if needed and returns a store over it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Save writes an uploaded dataset, silently overwriting any existing file
// with the same name.
func (s *Store) Save(filename string, r io.Reader) error {
	f, err := os.Create(s.Path(filename))
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write dataset file: %w", err)
	}
	return nil
}

// List returns the stored datasets in natural directory order.
func (s *Store) List() ([]DatasetInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list dataset directory: %w", err)
	}

	datasets := []DatasetInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, DatasetInfo{
			Filename:   entry.Name(),
			UploadedAt: info.ModTime(),
		})
	}
	return datasets, nil
}

// Delete removes a stored dataset. Unknown filenames are a NotFound error.
func (s *Store) Delete(filename string) error {
	err := os.Remove(s.Path(filename))
	if os.IsNotExist(err) {
		return apperr.Newf(apperr.KindNotFound, "dataset %s not found", filename)
	}
	return err
}

// Exists reports whether a dataset with the given name is stored.
func (s *Store) Exists(filename string) bool {
	_, err := os.Stat(s.Path(filename))
	return err == nil
}

// Path returns the on-disk location of a dataset. The filename is reduced to
// its base name so uploads cannot escape the dataset directory.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filename))
}
