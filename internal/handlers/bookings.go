package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Bookings handlers

// ListBookings - GET /api/bookings?email=
// Получить список билетов покупателя
func (h *Handlers) ListBookings(c *gin.Context) {
	response, err := h.services.Bookings.ListByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		handleServiceError(c, err, "Failed to list bookings")
		return
	}

	c.JSON(http.StatusOK, response)
}
