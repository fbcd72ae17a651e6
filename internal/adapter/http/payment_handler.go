package http

import (
	"net/http"

	"github.com/aq2208/tableorder/internal/adapter/http/middleware"
	"github.com/aq2208/tableorder/internal/usecase"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	reconciler *usecase.PaymentReconciler
}

func NewPaymentHandler(r *usecase.PaymentReconciler) *PaymentHandler {
	return &PaymentHandler{reconciler: r}
}

// POST /v1/payments/verify
// Gateway parameters, if any, are forwarded in the query string. The body
// optionally carries the navigation state the client still holds.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var nav *usecase.NavigationState
	if c.Request.ContentLength != 0 {
		var body usecase.NavigationState
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "malformed body")
			return
		}
		if body.OrderUUID != "" {
			nav = &body
		}
	}
	h.verify(c, nav)
}

// GET /v1/payments/result
// Landing URL for the gateway redirect; the session comes from the cookie.
func (h *PaymentHandler) Result(c *gin.Context) {
	h.verify(c, nil)
}

func (h *PaymentHandler) verify(c *gin.Context, nav *usecase.NavigationState) {
	in := usecase.VerifyInput{Token: middleware.SessionToken(c), Nav: nav}
	if q := c.Request.URL.Query(); usecase.IsGatewayCallback(q) {
		in.Callback = q
	}
	// the verification is always a renderable state, even when it failed
	c.JSON(http.StatusOK, h.reconciler.Verify(c.Request.Context(), in))
}
