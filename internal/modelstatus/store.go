// Package modelstatus persists the model status document, a JSON file holding
// the active classification mode and per-model metadata.
package modelstatus

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"threatscan/internal/apperr"
	"threatscan/internal/models"
)

// Store is a file-backed store for the model status document. A mutex
// serializes read-modify-write sequences within the process; across processes
// the last writer wins.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStatus returns the built-in status document written on first access.
func DefaultStatus() models.ModelStatus {
	now := time.Now().UTC().Format(time.RFC3339)
	return models.ModelStatus{
		BinaryModel: models.ModelInfo{
			Name:        "distilbert-base-uncased",
			Type:        "binary",
			TrainedOn:   "binary_dataset_v1.csv",
			LastUpdated: now,
		},
		MultiModel: models.ModelInfo{
			Name:        "facebook/bart-large-mnli",
			Type:        "multi-class",
			TrainedOn:   "multi_dataset_v1.csv",
			LastUpdated: now,
		},
		Mode: models.ModeHybrid,
	}
}

// Mode returns the current classification mode. When no status file exists it
// returns the hybrid default without creating one.
func (s *Store) Mode() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.readLocked()
	if os.IsNotExist(err) {
		return models.ModeHybrid, nil
	}
	if err != nil {
		return "", err
	}
	return status.Mode, nil
}

// Read returns the full status document, creating it with defaults on first
// access if missing.
func (s *Store) Read() (models.ModelStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.readLocked()
	if os.IsNotExist(err) {
		status = DefaultStatus()
		if werr := s.writeLocked(status); werr != nil {
			return models.ModelStatus{}, werr
		}
		return status, nil
	}
	if err != nil {
		return models.ModelStatus{}, err
	}
	return status, nil
}

// ReadRequired returns the status document and fails when it does not exist.
// Retraining expects the record to be present and does not self-heal.
func (s *Store) ReadRequired() (models.ModelStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.readLocked()
	if os.IsNotExist(err) {
		return models.ModelStatus{}, apperr.Newf(apperr.KindFatalConfig, "model status file %s not found", s.path)
	}
	if err != nil {
		return models.ModelStatus{}, err
	}
	return status, nil
}

// Write persists the full status document, overwriting any previous content.
func (s *Store) Write(status models.ModelStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(status)
}

// SwitchMode replaces only the mode field of the stored status. Unrecognized
// modes are rejected without touching the file.
func (s *Store) SwitchMode(mode string) error {
	if !models.ValidMode(mode) {
		return apperr.Newf(apperr.KindInvalidInput, "invalid mode value: %q", mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.readLocked()
	if os.IsNotExist(err) {
		status = DefaultStatus()
	} else if err != nil {
		return err
	}

	status.Mode = mode
	return s.writeLocked(status)
}

func (s *Store) readLocked() (models.ModelStatus, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return models.ModelStatus{}, err
	}

	var status models.ModelStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return models.ModelStatus{}, fmt.Errorf("failed to parse model status file %s: %w", s.path, err)
	}
	return status, nil
}

func (s *Store) writeLocked(status models.ModelStatus) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model status: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model status file %s: %w", s.path, err)
	}
	return nil
}
