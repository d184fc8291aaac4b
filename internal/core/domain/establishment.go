package domain

import "time"

// Establishment is a hotel partitioning users and interventions.
type Establishment struct {
	ID        string
	Name      string
	Active    bool
	Features  map[string]bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasFeature reports whether the feature flag is set to true.
func (e *Establishment) HasFeature(key string) bool {
	if e == nil || e.Features == nil {
		return false
	}
	return e.Features[key]
}
