package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/usecase"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string            `json:"status"`
	StartedAt time.Time         `json:"started_at"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// EstablishmentPayload is the API view of an establishment.
type EstablishmentPayload struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Active   bool            `json:"active"`
	Features map[string]bool `json:"features"`
}

// EstablishmentListResponse describes the caller's establishment context.
type EstablishmentListResponse struct {
	Establishments       []EstablishmentPayload `json:"establishments"`
	Current              *EstablishmentPayload  `json:"currentEstablishment"`
	ActiveEstablishments []EstablishmentPayload `json:"activeEstablishments"`
	HasMultiple          bool                   `json:"hasMultipleEstablishments"`
	Error                *string                `json:"error"`
}

// SwitchEstablishmentRequest is the payload for switching the active establishment.
type SwitchEstablishmentRequest struct {
	EstablishmentID string `json:"establishmentId" binding:"required"`
}

// SwitchEstablishmentResponse reports the switch outcome.
type SwitchEstablishmentResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// FeatureResponse reports whether a feature flag is enabled for the current establishment.
type FeatureResponse struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
}

// InterventionPayload is the API view of an intervention.
type InterventionPayload struct {
	ID              string    `json:"id"`
	EstablishmentID string    `json:"establishmentId"`
	CreatedBy       string    `json:"createdBy"`
	AssignedTo      *string   `json:"assignedTo,omitempty"`
	AssignedToIDs   []string  `json:"assignedToIds"`
	Status          string    `json:"status"`
	Priority        string    `json:"priority"`
	Location        string    `json:"location"`
	MissionSummary  string    `json:"missionSummary"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// InterventionResponse pairs an intervention with the caller's capabilities.
type InterventionResponse struct {
	Intervention InterventionPayload `json:"intervention"`
	Permissions  domain.Capabilities `json:"permissions"`
}

// InterventionListResponse wraps a list of interventions.
type InterventionListResponse struct {
	Interventions []InterventionResponse `json:"interventions"`
	CanCreate     bool                   `json:"canCreate"`
}

// CreateInterventionRequest is the payload for opening an intervention.
type CreateInterventionRequest struct {
	Location       string   `json:"location" binding:"required"`
	MissionSummary string   `json:"missionSummary" binding:"required"`
	Priority       string   `json:"priority"`
	AssigneeIDs    []string `json:"assigneeIds"`
}

// UpdateStatusRequest changes the status of an intervention.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AssignRequest replaces the assignees of an intervention.
type AssignRequest struct {
	AssigneeIDs []string `json:"assigneeIds"`
}

// CommentRequest adds a comment to an intervention.
type CommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// CommentPayload is the API view of a comment.
type CommentPayload struct {
	ID             string    `json:"id"`
	InterventionID string    `json:"interventionId"`
	AuthorID       string    `json:"authorId"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PendingActionRequest records a mutation made while offline.
type PendingActionRequest struct {
	InterventionID string     `json:"interventionId" binding:"required"`
	Kind           string     `json:"kind" binding:"required"`
	Status         string     `json:"status"`
	Comment        string     `json:"comment"`
	AssigneeIDs    []string   `json:"assigneeIds"`
	RecordedAt     *time.Time `json:"recordedAt"`
}

// PendingActionResponse acknowledges a queued action.
type PendingActionResponse struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	RecordedAt time.Time `json:"recordedAt"`
}

// ConnectivityRequest reports the client's connectivity signal.
type ConnectivityRequest struct {
	Online *bool `json:"online" binding:"required"`
}

// SyncResponse reports the outcome of a sync request and the resulting state.
type SyncResponse struct {
	Outcome string           `json:"outcome"`
	State   domain.SyncState `json:"state"`
}

func newEstablishmentPayload(est domain.Establishment) EstablishmentPayload {
	features := est.Features
	if features == nil {
		features = map[string]bool{}
	}
	return EstablishmentPayload{
		ID:       est.ID,
		Name:     est.Name,
		Active:   est.Active,
		Features: features,
	}
}

func newEstablishmentPayloads(list []domain.Establishment) []EstablishmentPayload {
	out := make([]EstablishmentPayload, 0, len(list))
	for _, est := range list {
		out = append(out, newEstablishmentPayload(est))
	}
	return out
}

func newInterventionPayload(i domain.Intervention) InterventionPayload {
	assignees := i.AssignedToIDs
	if assignees == nil {
		assignees = []string{}
	}
	return InterventionPayload{
		ID:              i.ID,
		EstablishmentID: i.EstablishmentID,
		CreatedBy:       i.CreatedBy,
		AssignedTo:      i.AssignedTo,
		AssignedToIDs:   assignees,
		Status:          string(i.Status),
		Priority:        string(i.Priority),
		Location:        i.Location,
		MissionSummary:  i.MissionSummary,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}

func newInterventionResponse(view usecase.InterventionView) InterventionResponse {
	return InterventionResponse{
		Intervention: newInterventionPayload(view.Intervention),
		Permissions:  view.Capabilities,
	}
}

func newCommentPayload(c domain.Comment) CommentPayload {
	return CommentPayload{
		ID:             c.ID,
		InterventionID: c.InterventionID,
		AuthorID:       c.AuthorID,
		Body:           c.Body,
		CreatedAt:      c.CreatedAt,
	}
}
