package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSessionExpired       = errors.New("session expired")
	ErrCartEmpty            = errors.New("cart is empty")
	ErrInvalidEmail         = errors.New("a valid email is required")
	ErrInvalidLine          = errors.New("invalid cart line")
	ErrLineNotFound         = errors.New("cart line not found")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrCheckoutInProgress   = errors.New("checkout already in progress")
	ErrNetworkOrTimeout     = errors.New("network error or timeout")
	ErrNoPaymentInfo        = errors.New("no payment information found")
)

// ValidationFailedError carries one message per failing cart line.
type ValidationFailedError struct {
	Errors []string
}

func (e *ValidationFailedError) Error() string {
	return "stock validation failed: " + strings.Join(e.Errors, "; ")
}

type OrderCreationError struct {
	Msg string
	Err error
}

func (e *OrderCreationError) Error() string { return "order creation failed: " + e.Msg }
func (e *OrderCreationError) Unwrap() error { return e.Err }

type PaymentInitiationError struct {
	Msg string
	Err error
}

func (e *PaymentInitiationError) Error() string { return "payment initiation failed: " + e.Msg }
func (e *PaymentInitiationError) Unwrap() error { return e.Err }

type PaymentVerificationError struct {
	Msg string
	Err error
}

func (e *PaymentVerificationError) Error() string { return "payment verification failed: " + e.Msg }
func (e *PaymentVerificationError) Unwrap() error { return e.Err }

// DecodeError marks a backend response that did not have the expected shape.
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode %s: malformed response", e.What)
	}
	return fmt.Sprintf("decode %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Message returns the human readable part of an error, without the
// taxonomy prefix.
func Message(err error) string {
	var oc *OrderCreationError
	var pi *PaymentInitiationError
	var pv *PaymentVerificationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &oc):
		return oc.Msg
	case errors.As(err, &pi):
		return pi.Msg
	case errors.As(err, &pv):
		return pv.Msg
	}
	return err.Error()
}
