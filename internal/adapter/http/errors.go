package http

import (
	"errors"
	"net/http"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/logging"
	"github.com/gin-gonic/gin"
)

type errorResp struct {
	Error   string        `json:"error"`
	Message string        `json:"message"`
	Action  domain.Action `json:"action,omitempty"`
	Details []string      `json:"details,omitempty"`
}

// writeError maps the error taxonomy to a status and a client hint. Typed
// errors are matched before the sentinels they may wrap.
func writeError(c *gin.Context, err error) {
	status, resp := classify(err)
	if status >= http.StatusInternalServerError {
		logging.From(c).Error("request failed", "err", err)
	}
	_ = c.Error(err)
	c.JSON(status, resp)
}

func classify(err error) (int, errorResp) {
	var vf *domain.ValidationFailedError
	var oc *domain.OrderCreationError
	var pi *domain.PaymentInitiationError
	var pv *domain.PaymentVerificationError
	var de *domain.DecodeError

	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, errorResp{"session_expired", "your session has expired, please scan the QR code again", domain.ActionRescanQR, nil}
	case errors.As(err, &vf):
		return http.StatusConflict, errorResp{"validation_failed", "some items in your cart are not available", domain.ActionFixCart, vf.Errors}
	case errors.As(err, &oc):
		return http.StatusBadGateway, errorResp{"order_creation_failed", oc.Msg, domain.ActionGoBack, nil}
	case errors.As(err, &pi):
		return http.StatusBadGateway, errorResp{"payment_initiation_failed", pi.Msg, domain.ActionRetryPayment, nil}
	case errors.As(err, &pv):
		return http.StatusBadGateway, errorResp{"payment_verification_failed", pv.Msg, domain.ActionRecheck, nil}
	case errors.Is(err, domain.ErrCartEmpty):
		return http.StatusUnprocessableEntity, errorResp{"cart_empty", "your cart is empty", domain.ActionGoBack, nil}
	case errors.Is(err, domain.ErrInvalidEmail):
		return http.StatusBadRequest, errorResp{"invalid_email", err.Error(), "", nil}
	case errors.Is(err, domain.ErrInvalidLine):
		return http.StatusBadRequest, errorResp{"invalid_line", err.Error(), "", nil}
	case errors.Is(err, domain.ErrUnknownPaymentMethod):
		return http.StatusBadRequest, errorResp{"unknown_payment_method", err.Error(), "", nil}
	case errors.Is(err, domain.ErrLineNotFound):
		return http.StatusNotFound, errorResp{"not_found", err.Error(), "", nil}
	case errors.Is(err, domain.ErrCheckoutInProgress):
		return http.StatusConflict, errorResp{"checkout_in_progress", "your order is already being placed", "", nil}
	case errors.Is(err, domain.ErrNetworkOrTimeout):
		return http.StatusServiceUnavailable, errorResp{"network_error", "could not reach the ordering service, please try again", "", nil}
	case errors.As(err, &de):
		return http.StatusBadGateway, errorResp{"bad_gateway", "unexpected response from the ordering service", "", nil}
	}
	return http.StatusInternalServerError, errorResp{"server_error", "something went wrong", "", nil}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResp{Error: "bad_request", Message: msg})
}
