package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentFlow string

const (
	FlowRedirect PaymentFlow = "redirect"
	FlowEmbedded PaymentFlow = "embedded"
)

type PaymentMethod struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Flow        PaymentFlow `json:"flow"`
}

var paymentMethods = []PaymentMethod{
	{ID: "qris", Name: "QRIS", Description: "Scan with any e-wallet or mobile banking app", Icon: "qris.svg", Flow: FlowEmbedded},
	{ID: "gopay", Name: "GoPay", Description: "Pay with your GoPay balance", Icon: "gopay.svg", Flow: FlowRedirect},
	{ID: "shopeepay", Name: "ShopeePay", Description: "Pay with your ShopeePay balance", Icon: "shopeepay.svg", Flow: FlowRedirect},
	{ID: "bank_transfer", Name: "Virtual Account", Description: "Transfer through a bank virtual account", Icon: "bank.svg", Flow: FlowRedirect},
	{ID: "credit_card", Name: "Credit / Debit Card", Description: "Visa, Mastercard, JCB", Icon: "card.svg", Flow: FlowEmbedded},
}

// PaymentMethods returns a copy of the static catalog.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}

func FindPaymentMethod(id string) (PaymentMethod, error) {
	for _, m := range paymentMethods {
		if m.ID == id {
			return m, nil
		}
	}
	return PaymentMethod{}, ErrUnknownPaymentMethod
}

// PendingOrderRecord bridges order creation and the gateway return. It is
// consumed exactly once.
type PendingOrderRecord struct {
	SessionToken  string          `json:"-"`
	OrderUUID     string          `json:"order_uuid"`
	PaymentMethod string          `json:"payment_method"`
	Email         string          `json:"email"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

type PaymentState string

const (
	StateVerifying PaymentState = "verifying"
	StateSuccess   PaymentState = "success"
	StatePending   PaymentState = "pending"
	StateFailed    PaymentState = "failed"
)

// Action is the next step offered to the customer for a given state.
type Action string

const (
	ActionRecheck      Action = "recheck"
	ActionRetryPayment Action = "retry_payment"
	ActionGoBack       Action = "go_back"
	ActionRescanQR     Action = "rescan_qr"
	ActionFixCart      Action = "fix_cart"
	ActionViewOrder    Action = "view_order"
)

// NextActions lists what the customer may do from a rendered state.
func (s PaymentState) NextActions() []Action {
	switch s {
	case StatePending:
		return []Action{ActionRecheck, ActionGoBack}
	case StateFailed:
		return []Action{ActionRetryPayment, ActionGoBack}
	case StateSuccess:
		return []Action{ActionViewOrder}
	}
	return nil
}

type DispatchMode string

const (
	DispatchRedirect  DispatchMode = "redirect"
	DispatchEmbedded  DispatchMode = "embedded"
	DispatchSimulated DispatchMode = "simulated"
)

// Dispatch tells the client how to hand control to the gateway.
type Dispatch struct {
	Mode  DispatchMode `json:"mode"`
	URL   string       `json:"url,omitempty"`
	State PaymentState `json:"state"`
}
