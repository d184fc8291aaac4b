package domain

import "time"

// InterventionCreatedEvent represents the payload for gestihotel.intervention.created messages.
type InterventionCreatedEvent struct {
	EventID         string
	InterventionID  string
	EstablishmentID string
	CreatedBy       string
	Priority        Priority
	Location        string
	CreatedAt       time.Time
}

// InterventionAssignedEvent represents the payload for gestihotel.intervention.assigned messages.
type InterventionAssignedEvent struct {
	EventID         string
	InterventionID  string
	EstablishmentID string
	AssigneeIDs     []string
	AssignedBy      string
	Priority        Priority
	MissionSummary  string
	AssignedAt      time.Time
}

// EstablishmentSwitchedEvent represents the payload for gestihotel.establishment.switched messages.
type EstablishmentSwitchedEvent struct {
	EventID         string
	UserID          string
	EstablishmentID string
	PreviousID      *string
	SwitchedAt      time.Time
}

// SyncCompletedEvent represents the payload for gestihotel.sync.completed and gestihotel.sync.failed messages.
type SyncCompletedEvent struct {
	EventID     string
	UserID      string
	Applied     int
	Dropped     int
	Error       string
	CompletedAt time.Time
}
