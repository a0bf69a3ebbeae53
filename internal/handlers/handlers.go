package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/external"
	"boxoffice/internal/logger"
	"boxoffice/internal/models"
	"boxoffice/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		services: services,
	}
}

// handleServiceError maps service errors to HTTP responses. message is used
// for the 500 body when the failure is not a known client error.
func handleServiceError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, apperrors.ErrAmountRequired):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Amount is required"})
	case errors.Is(err, apperrors.ErrTransactionIDRequired),
		errors.Is(err, apperrors.ErrEmailRequired),
		errors.Is(err, apperrors.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperrors.ErrEventNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Event not found"})
	default:
		logger.WithContext(c.Request.Context()).Error(message, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: message,
			Error:   errorPayload(err),
		})
	}
}

// errorPayload returns the upstream JSON for gateway failures, otherwise the error text
func errorPayload(err error) json.RawMessage {
	var upstream *external.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Payload()
	}
	msg, _ := json.Marshal(err.Error())
	return msg
}
