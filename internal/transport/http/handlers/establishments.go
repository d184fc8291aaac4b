package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/transport/http/middleware"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/usecase"
)

// EstablishmentHandler exposes the caller's establishment context.
type EstablishmentHandler struct {
	establishments *usecase.EstablishmentService
}

// NewEstablishmentHandler constructs an establishment handler.
func NewEstablishmentHandler(establishments *usecase.EstablishmentService) *EstablishmentHandler {
	return &EstablishmentHandler{establishments: establishments}
}

// RegisterRoutes binds establishment routes to the provided router group.
func (h *EstablishmentHandler) RegisterRoutes(r *gin.RouterGroup) {
	if r == nil {
		return
	}

	r.GET("", h.List)
	r.POST("/switch", h.Switch)
	r.GET("/features/:key", h.Feature)
}

// List returns the accessible establishments, the current one and the load error if any.
func (h *EstablishmentHandler) List(c *gin.Context) {
	ec, ok := h.context(c)
	if !ok {
		return
	}

	snap := ec.Snapshot()
	resp := EstablishmentListResponse{
		Establishments:       newEstablishmentPayloads(snap.Establishments),
		ActiveEstablishments: newEstablishmentPayloads(ec.ActiveEstablishments()),
		HasMultiple:          len(snap.Establishments) > 1,
	}
	if snap.Current != nil {
		current := newEstablishmentPayload(*snap.Current)
		resp.Current = &current
	}
	if snap.Error != "" {
		msg := snap.Error
		resp.Error = &msg
	}

	c.JSON(http.StatusOK, resp)
}

// Switch makes another accessible establishment the current one.
func (h *EstablishmentHandler) Switch(c *gin.Context) {
	var req SwitchEstablishmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.EstablishmentID) == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "establishmentId is required"))
		return
	}

	ec, ok := h.context(c)
	if !ok {
		return
	}

	result := ec.Switch(c.Request.Context(), req.EstablishmentID)
	if result.Success {
		c.JSON(http.StatusOK, SwitchEstablishmentResponse{Success: true})
		return
	}

	status := http.StatusInternalServerError
	switch result.Error {
	case usecase.ErrEstablishmentNotAccessible.Error():
		status = http.StatusConflict
	case usecase.ErrUnauthenticated.Error():
		status = http.StatusUnauthorized
	}
	c.JSON(status, SwitchEstablishmentResponse{Success: false, Error: result.Error})
}

// Feature reports whether a feature flag is enabled on the current establishment.
func (h *EstablishmentHandler) Feature(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "feature key is required"))
		return
	}

	ec, ok := h.context(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, FeatureResponse{Key: key, Enabled: ec.HasFeature(key)})
}

func (h *EstablishmentHandler) context(c *gin.Context) (*usecase.EstablishmentContext, bool) {
	if h.establishments == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "establishment service unavailable"))
		return nil, false
	}

	user, ok := middleware.GetAuthenticatedUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return nil, false
	}

	ec, err := h.establishments.ContextFor(c.Request.Context(), user)
	if err != nil {
		RespondWithMappedError(c, err, establishmentErrorCases, http.StatusInternalServerError, "failed to load establishments")
		return nil, false
	}
	return ec, true
}
