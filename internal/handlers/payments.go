package handlers

import (
	"net/http"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/models"

	"github.com/gin-gonic/gin"
)

// Payments handlers

// InitiatePayment - POST /api/payment/initiate
// Starts a hosted-page payment and relays the gateway response as-is.
func (h *Handlers) InitiatePayment(c *gin.Context) {
	var req models.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, apperrors.ErrAmountRequired, "Error initiating payment")
		return
	}

	resp, err := h.services.Payments.Initiate(c.Request.Context(), req.Amount)
	if err != nil {
		handleServiceError(c, err, "Error initiating payment")
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", resp)
}

// PaymentStatus - GET /api/payment/status/:merchantTransactionId
// Relays the gateway's status for a merchant transaction.
func (h *Handlers) PaymentStatus(c *gin.Context) {
	resp, err := h.services.Payments.CheckStatus(c.Request.Context(), c.Param("merchantTransactionId"))
	if err != nil {
		handleServiceError(c, err, "Error checking payment status")
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", resp)
}
