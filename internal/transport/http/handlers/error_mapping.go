package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

var (
	establishmentErrorCases = []ErrorCase{
		{Err: usecase.ErrUnauthenticated, Status: http.StatusUnauthorized, Message: "authentication required"},
		{Err: usecase.ErrEstablishmentNotFound, Status: http.StatusNotFound, Message: "establishment not found"},
		{Err: usecase.ErrEstablishmentNotAccessible, Status: http.StatusConflict, Message: "establishment not accessible"},
	}

	interventionErrorCases = []ErrorCase{
		{Err: usecase.ErrUnauthenticated, Status: http.StatusUnauthorized, Message: "authentication required"},
		{Err: usecase.ErrInterventionNotFound, Status: http.StatusNotFound, Message: "intervention not found"},
		{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
		{Err: usecase.ErrNoActiveEstablishment, Status: http.StatusConflict, Message: "no active establishment"},
		{Err: usecase.ErrInvalidAction, Status: http.StatusBadRequest, Message: "invalid request"},
	}
)

// RespondWithMappedError resolves the provided error against known cases or falls back to a generic response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			message := cs.Message
			if cs.Status == http.StatusBadRequest {
				message = err.Error()
			}
			c.JSON(cs.Status, NewErrorResponse(c, message))
			return
		}
	}

	_ = c.Error(err)
	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}
