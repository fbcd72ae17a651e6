package http

import (
	"errors"
	"net/http"

	"github.com/aq2208/tableorder/internal/adapter/http/middleware"
	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/usecase"
	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkout   *usecase.Checkout
	dispatcher *usecase.PaymentDispatcher
}

func NewCheckoutHandler(checkout *usecase.Checkout, dispatcher *usecase.PaymentDispatcher) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, dispatcher: dispatcher}
}

type checkoutReq struct {
	Email         string `json:"email"`
	Notes         string `json:"notes"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

type checkoutResp struct {
	AttemptID string             `json:"attempt_id"`
	Order     domain.PlacedOrder `json:"order"`
	Summary   domain.CartSummary `json:"summary"`
	Dispatch  domain.Dispatch    `json:"dispatch"`
}

// GET /v1/payment-methods
func (h *CheckoutHandler) PaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": h.dispatcher.ListPaymentMethods()})
}

// POST /v1/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payment_method is required")
		return
	}

	out, err := h.checkout.Execute(c.Request.Context(), usecase.CheckoutInput{
		Token:         middleware.SessionToken(c),
		Email:         req.Email,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		// once the order exists the customer retries payment, not the order
		var pi *domain.PaymentInitiationError
		if out.Order.UUID != "" && errors.As(err, &pi) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":      "payment_initiation_failed",
				"message":    pi.Msg,
				"action":     domain.ActionRetryPayment,
				"order_uuid": out.Order.UUID,
			})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, checkoutResp{
		AttemptID: out.AttemptID,
		Order:     out.Order,
		Summary:   out.Summary,
		Dispatch:  out.Dispatch,
	})
}
