package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/giftlist-api/internal/domain/payment"
	"github.com/gravadigital/giftlist-api/internal/response"
	"github.com/gravadigital/giftlist-api/internal/services"
)

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type CreateOrderRequest struct {
	ListName string `json:"listName" binding:"required"`
	Flow     string `json:"flow"`
}

// CreateOrder handles POST /api/payments/orders
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	flow, err := payment.ParseFlow(req.Flow)
	if err != nil {
		response.FromError(c, err)
		return
	}

	checkout, err := h.payments.CreateOrder(c.Request.Context(), owner, req.ListName, flow)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "Order created", checkout)
}

// Verify handles POST /api/payments/verify
func (h *PaymentHandler) Verify(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	var cb services.Callback
	if !bindJSON(c, &cb) {
		return
	}

	v, err := h.payments.Verify(c.Request.Context(), owner, cb)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Payment verified successfully", v)
}

// Failed handles POST /api/payments/failed
func (h *PaymentHandler) Failed(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	var f services.Failure
	if !bindJSON(c, &f) {
		return
	}

	if err := h.payments.Failed(c.Request.Context(), owner, f); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Payment failure recorded", nil)
}
