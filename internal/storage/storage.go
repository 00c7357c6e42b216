package storage

import "testr/internal/domain"

// Storage persists the last-used filter spec between invocations.
type Storage interface {
	// Save overwrites the record wholesale.
	Save(spec domain.FilterSpec) error
	// Load returns the saved spec, and false when no usable record
	// exists. Corrupt records count as absent, never as an error.
	Load() (domain.FilterSpec, bool, error)
	// Forget deletes the record. Deleting an absent record is fine.
	Forget() error
}
