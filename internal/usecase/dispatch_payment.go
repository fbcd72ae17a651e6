package usecase

import (
	"context"
	"errors"
	"time"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/logging"
)

type DispatchOptions struct {
	// SimulateWithoutURL turns a missing payment URL into a simulated
	// success. Test mode only; otherwise a missing URL is an error.
	SimulateWithoutURL bool
	SimulateDelay      time.Duration
}

type PaymentDispatcher struct {
	api  PaymentAPI
	opts DispatchOptions
}

func NewPaymentDispatcher(api PaymentAPI, opts DispatchOptions) *PaymentDispatcher {
	return &PaymentDispatcher{api: api, opts: opts}
}

func (d *PaymentDispatcher) ListPaymentMethods() []domain.PaymentMethod {
	return domain.PaymentMethods()
}

// ProcessPayment asks the backend to open a gateway transaction for the order.
func (d *PaymentDispatcher) ProcessPayment(ctx context.Context, token, orderUUID string, method domain.PaymentMethod, email string) (string, error) {
	url, err := d.api.ProcessPayment(ctx, token, orderUUID, method.ID, email)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return "", err
		}
		return "", &domain.PaymentInitiationError{Msg: upstreamMessage(err), Err: err}
	}
	return url, nil
}

// Dispatch decides how the client hands over to the gateway. Without a URL
// and in simulation mode it waits SimulateDelay and reports success, so
// the attempt still ends in a terminal state.
func (d *PaymentDispatcher) Dispatch(ctx context.Context, paymentURL string, method domain.PaymentMethod) (domain.Dispatch, error) {
	if paymentURL != "" {
		mode := domain.DispatchRedirect
		if method.Flow == domain.FlowEmbedded {
			mode = domain.DispatchEmbedded
		}
		return domain.Dispatch{Mode: mode, URL: paymentURL, State: domain.StatePending}, nil
	}
	if !d.opts.SimulateWithoutURL {
		return domain.Dispatch{}, &domain.PaymentInitiationError{Msg: "payment gateway did not return a payment URL"}
	}

	logging.FromCtx(ctx).Warn("no payment url, simulating success", "method", method.ID, "delay", d.opts.SimulateDelay)
	select {
	case <-time.After(d.opts.SimulateDelay):
	case <-ctx.Done():
		return domain.Dispatch{}, &domain.PaymentInitiationError{Msg: "payment was interrupted", Err: ctx.Err()}
	}
	return domain.Dispatch{Mode: domain.DispatchSimulated, State: domain.StateSuccess}, nil
}
