package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/transport/http/middleware"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/usecase"
)

// SyncHandler exposes the per-session sync coordinator.
type SyncHandler struct {
	sync           *usecase.SyncRegistry
	establishments *usecase.EstablishmentService
}

// NewSyncHandler constructs a sync handler. establishments may be nil.
func NewSyncHandler(sync *usecase.SyncRegistry, establishments *usecase.EstablishmentService) *SyncHandler {
	return &SyncHandler{sync: sync, establishments: establishments}
}

// RegisterRoutes binds sync routes to the provided router group.
// Extra handlers run before ForceSync only.
func (h *SyncHandler) RegisterRoutes(r *gin.RouterGroup, forceMiddlewares ...gin.HandlerFunc) {
	if r == nil {
		return
	}

	force := append([]gin.HandlerFunc{}, forceMiddlewares...)
	force = append(force, h.ForceSync)

	r.POST("", force...)
	r.GET("/status", h.Status)
	r.POST("/connectivity", h.Connectivity)
	r.DELETE("/session", h.EndSession)
}

// Connectivity applies an online/offline signal. The first signal of a session mounts it.
func (h *SyncHandler) Connectivity(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req ConnectivityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Online == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "online is required"))
		return
	}

	coordinator := h.sync.For(userID)
	outcome := coordinator.SetOnline(c.Request.Context(), *req.Online)

	c.JSON(http.StatusOK, SyncResponse{Outcome: string(outcome), State: coordinator.State()})
}

// ForceSync runs a sync on demand.
func (h *SyncHandler) ForceSync(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	coordinator := h.sync.For(userID)
	outcome := coordinator.ForceSync(c.Request.Context())

	status := http.StatusOK
	switch outcome {
	case usecase.SyncOutcomeRejected:
		status = http.StatusConflict
	case usecase.SyncOutcomeBusy:
		status = http.StatusAccepted
	case usecase.SyncOutcomeFailed:
		status = http.StatusBadGateway
	}

	c.JSON(status, SyncResponse{Outcome: string(outcome), State: coordinator.State()})
}

// Status returns the sync state of the caller's session.
func (h *SyncHandler) Status(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.sync.For(userID).State())
}

// EndSession drops the per-session state of the caller.
func (h *SyncHandler) EndSession(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	h.sync.Release(userID)
	if h.establishments != nil {
		h.establishments.Release(userID)
	}
	c.Status(http.StatusNoContent)
}

func (h *SyncHandler) userID(c *gin.Context) (string, bool) {
	if h.sync == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "sync service unavailable"))
		return "", false
	}
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return "", false
	}
	return userID, true
}
