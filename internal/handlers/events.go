package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	apperrors "boxoffice/internal/errors"

	"github.com/gin-gonic/gin"
)

// Events handlers

// ListEvents - GET /api/events
// Получить список событий
func (h *Handlers) ListEvents(c *gin.Context) {
	query := c.Query("query")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "page must be >= 1"})
		return
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "pageSize must be between 1 and 100"})
		return
	}

	response, err := h.services.Events.List(c.Request.Context(), query, page, pageSize)
	if err != nil {
		handleServiceError(c, err, "Failed to list events")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetEvent - GET /api/events/:id
// Получить событие
func (h *Handlers) GetEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	event, err := h.services.Events.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to get event")
		return
	}

	c.JSON(http.StatusOK, event)
}

// GetEventSeats - GET /api/events/:id/seats
// Seat map with booked seats resolved from stored bookings
func (h *Handlers) GetEventSeats(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	response, err := h.services.Events.SeatMap(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to load seats")
		return
	}

	c.JSON(http.StatusOK, response)
}

func eventID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		handleServiceError(c, fmt.Errorf("%w: event id %q", apperrors.ErrInvalidRequest, c.Param("id")), "Invalid event id")
		return 0, false
	}
	return id, true
}
