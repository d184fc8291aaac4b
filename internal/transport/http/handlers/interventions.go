package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/transport/http/middleware"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/usecase"
)

// InterventionHandler exposes maintenance tickets of the caller's current establishment.
type InterventionHandler struct {
	interventions *usecase.InterventionService
}

// NewInterventionHandler constructs an intervention handler.
func NewInterventionHandler(interventions *usecase.InterventionService) *InterventionHandler {
	return &InterventionHandler{interventions: interventions}
}

// RegisterRoutes binds intervention routes to the provided router group.
func (h *InterventionHandler) RegisterRoutes(r *gin.RouterGroup) {
	if r == nil {
		return
	}

	r.GET("", h.List)
	r.POST("", h.Create)
	r.POST("/pending", h.EnqueuePending)
	r.GET("/:id", h.Get)
	r.DELETE("/:id", h.Delete)
	r.PATCH("/:id/status", h.UpdateStatus)
	r.PUT("/:id/assignees", h.Assign)
	r.POST("/:id/comments", h.AddComment)
}

// List returns the viewable interventions with the caller's permissions on each.
func (h *InterventionHandler) List(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	views, err := h.interventions.List(c.Request.Context(), user)
	if err != nil {
		RespondWithMappedError(c, err, interventionErrorCases, http.StatusInternalServerError, "failed to list interventions")
		return
	}

	resp := InterventionListResponse{
		Interventions: make([]InterventionResponse, 0, len(views)),
		CanCreate:     usecase.CanCreateIntervention(user),
	}
	for _, view := range views {
		resp.Interventions = append(resp.Interventions, newInterventionResponse(view))
	}
	c.JSON(http.StatusOK, resp)
}

// Create opens an intervention in the current establishment.
func (h *InterventionHandler) Create(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	var req CreateInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "location and missionSummary are required"))
		return
	}

	priority := domain.Priority(strings.ToLower(strings.TrimSpace(req.Priority)))
	switch priority {
	case "", domain.PriorityNormal, domain.PriorityHigh, domain.PriorityUrgent:
	default:
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown priority"))
		return
	}

	intervention, err := h.interventions.Create(c.Request.Context(), user, usecase.CreateInterventionInput{
		Location:       req.Location,
		MissionSummary: req.MissionSummary,
		Priority:       priority,
		AssigneeIDs:    req.AssigneeIDs,
	})
	if err != nil {
		RespondWithMappedError(c, err, interventionErrorCases, http.StatusInternalServerError, "failed to create intervention")
		return
	}

	c.JSON(http.StatusCreated, InterventionResponse{
		Intervention: newInterventionPayload(*intervention),
		Permissions:  usecase.ResolvePermissions(user, intervention),
	})
}

// Get returns one intervention with the caller's permissions on it.
func (h *InterventionHandler) Get(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	view, err := h.interventions.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, interventionErrorCases, http.StatusInternalServerError, "failed to load intervention")
		return
	}

	c.JSON(http.StatusOK, newInterventionResponse(*view))
}

// UpdateStatus moves an intervention to another status.
func (h *InterventionHandler) UpdateStatus(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status is required"))
		return
	}

	status := domain.InterventionStatus(strings.TrimSpace(req.Status))
	if err := h.interventions.UpdateStatus(c.Request.Context(), user, c.Param("id"), status); err != nil {
		RespondWithMappedError(c, err, interventionErrorCases, http.StatusInternalServerError, "failed to update status")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "status updated"})
}

// Assign replaces the assignees of an intervention.
func (h *InterventionHandler) Assign(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid assignees payload"))
		return
	}

	if err := h.interventions.Assign(c.Request.Context(), user, c.Param("id"), req.AssigneeIDs); err != nil {
		RespondWithMappedError(c, err, interventionErrorCases, http.StatusInternalServerError, "failed to assign intervention")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "assignees updated"})
}

// AddComment attaches a comment to an intervention.
func (h *InterventionHandler) AddComment(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "body is required"))
		return
	}

	comment, err := h.interventions.AddComment(c.Request.Context(), user, c.Param("id"), req.Body)
	if err != nil {
		RespondWithMappedError(c, err, interventionErrorCases, http.StatusInternalServerError, "failed to add comment")
		return
	}

	c.JSON(http.StatusCreated, newCommentPayload(*comment))
}

// Delete removes an intervention.
func (h *InterventionHandler) Delete(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	if err := h.interventions.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, interventionErrorCases, http.StatusInternalServerError, "failed to delete intervention")
		return
	}

	c.Status(http.StatusNoContent)
}

// EnqueuePending stores a mutation made while offline; the next sync replays it.
func (h *InterventionHandler) EnqueuePending(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	var req PendingActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "interventionId and kind are required"))
		return
	}

	action := domain.PendingAction{
		InterventionID: req.InterventionID,
		Kind:           domain.PendingActionKind(req.Kind),
		Status:         req.Status,
		Comment:        req.Comment,
		AssigneeIDs:    req.AssigneeIDs,
	}
	if req.RecordedAt != nil {
		action.RecordedAt = req.RecordedAt.UTC()
	}

	queued, err := h.interventions.Enqueue(c.Request.Context(), user, action)
	if err != nil {
		RespondWithMappedError(c, err, interventionErrorCases, http.StatusInternalServerError, "failed to queue action")
		return
	}

	c.JSON(http.StatusAccepted, PendingActionResponse{
		ID:         queued.ID,
		Kind:       string(queued.Kind),
		RecordedAt: queued.RecordedAt,
	})
}

func (h *InterventionHandler) user(c *gin.Context) (*domain.User, bool) {
	if h.interventions == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "intervention service unavailable"))
		return nil, false
	}
	user, ok := middleware.GetAuthenticatedUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return nil, false
	}
	return user, true
}
