package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/usecase"
)

var _ usecase.PaymentAPI = (*Client)(nil)

type processPaymentBody struct {
	OrderUUID string `json:"order_uuid"`
	Method    string `json:"method"`
	Email     string `json:"email"`
}

// ProcessPayment returns the gateway URL, which may be empty.
func (c *Client) ProcessPayment(ctx context.Context, token, orderUUID, method, email string) (string, error) {
	var w paymentProcessWire
	body := processPaymentBody{OrderUUID: orderUUID, Method: method, Email: email}
	if err := c.do(ctx, http.MethodPost, "/payment/process", token, nil, body, &w); err != nil {
		return "", err
	}
	return firstNonEmpty(w.PaymentURL, w.PaymentURL2, w.RedirectURL), nil
}

// FinishPayment forwards the gateway callback parameters verbatim.
func (c *Client) FinishPayment(ctx context.Context, token string, params url.Values) (string, error) {
	var w paymentFinishWire
	if err := c.do(ctx, http.MethodGet, "/payment/finish", token, params, nil, &w); err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return "", err
		}
		return "", &domain.PaymentVerificationError{Msg: verificationMessage(err), Err: err}
	}
	return parseFinish(w)
}

func verificationMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, domain.ErrNetworkOrTimeout) {
		return "could not reach the payment service, please check your connection"
	}
	return "payment verification failed"
}
