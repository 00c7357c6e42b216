package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"testr/internal/config"
	"testr/internal/domain"
)

// JSONStorage stores the last-used filter spec as a flat JSON record
// at the config's per-user path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage backed by the config's state dir.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

// Save writes the filter spec, replacing any previous record.
func (s *JSONStorage) Save(spec domain.FilterSpec) error {
	path, err := s.cfg.LastRunPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal last-run record: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write last-run record: %w", err)
	}
	return nil
}

// Load reads the saved spec. A missing or unparsable record yields
// (zero, false, nil): persistence faults fall back to defaults.
func (s *JSONStorage) Load() (domain.FilterSpec, bool, error) {
	path, err := s.cfg.LastRunPath()
	if err != nil {
		return domain.FilterSpec{}, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.FilterSpec{}, false, nil
		}
		return domain.FilterSpec{}, false, fmt.Errorf("read last-run record: %w", err)
	}
	var spec domain.FilterSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		// corrupt record counts as absent
		return domain.FilterSpec{}, false, nil
	}
	return spec, true, nil
}

// Forget removes the record if present.
func (s *JSONStorage) Forget() error {
	path, err := s.cfg.LastRunPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove last-run record: %w", err)
	}
	return nil
}
