package domain

import "time"

// InterventionStatus enumerates the lifecycle stages of a maintenance ticket.
type InterventionStatus string

const (
	InterventionStatusTodo       InterventionStatus = "todo"
	InterventionStatusInProgress InterventionStatus = "in_progress"
	InterventionStatusOrdered    InterventionStatus = "ordered"
	InterventionStatusCompleted  InterventionStatus = "completed"
	InterventionStatusCancelled  InterventionStatus = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s InterventionStatus) Valid() bool {
	switch s {
	case InterventionStatusTodo, InterventionStatusInProgress, InterventionStatusOrdered,
		InterventionStatusCompleted, InterventionStatusCancelled:
		return true
	}
	return false
}

// Priority flags how quickly an intervention must be handled.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Intervention is a maintenance ticket.
type Intervention struct {
	ID              string
	EstablishmentID string
	CreatedBy       string
	AssignedTo      *string
	AssignedToIDs   []string
	Status          InterventionStatus
	Priority        Priority
	Location        string
	MissionSummary  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsAssignedTo reports whether the user is the single assignee or part of the assignee set.
func (i *Intervention) IsAssignedTo(userID string) bool {
	if i == nil || userID == "" {
		return false
	}
	if i.AssignedTo != nil && *i.AssignedTo == userID {
		return true
	}
	for _, id := range i.AssignedToIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Comment is a message attached to an intervention.
type Comment struct {
	ID             string
	InterventionID string
	AuthorID       string
	Body           string
	CreatedAt      time.Time
}

// PendingActionKind enumerates mutations recorded while offline.
type PendingActionKind string

const (
	PendingActionStatus  PendingActionKind = "status"
	PendingActionComment PendingActionKind = "comment"
	PendingActionAssign  PendingActionKind = "assign"
)

// PendingAction is a mutation captured locally and replayed by the sync process.
type PendingAction struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	InterventionID string            `json:"intervention_id"`
	Kind           PendingActionKind `json:"kind"`
	Status         string            `json:"status,omitempty"`
	Comment        string            `json:"comment,omitempty"`
	AssigneeIDs    []string          `json:"assignee_ids,omitempty"`
	RecordedAt     time.Time         `json:"recorded_at"`
}
