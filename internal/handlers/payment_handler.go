package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/harentsoaR/doctors-portal-api/internal/services"
)

type paymentIntentRequest struct {
	// Price is in major currency units; numbers and numeric strings both
	// decode exactly.
	Price *decimal.Decimal `json:"price" binding:"required"`
}

// POST /create-payment-intent
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req paymentIntentRequest
	if !BindJSON(c, &req) {
		return
	}

	intent, err := h.payments.CreateIntent(c.Request.Context(), *req.Price)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			RespondBadRequest(c, "Invalid price", gin.H{"field": "price", "value": req.Price.String()})
		case errors.Is(err, services.ErrPaymentsNotConfigured):
			RespondError(c, http.StatusServiceUnavailable, "payments_unavailable", "Payments are not configured", nil)
		default:
			h.log.ErrorContext(c.Request.Context(), "create payment intent failed", "err", err, "request_id", requestIDFrom(c))
			RespondError(c, http.StatusBadGateway, "payment_provider_error", "Payment provider request failed", nil)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
}
