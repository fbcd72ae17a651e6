package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "Unpaid"
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentFailed  PaymentStatus = "Failed"
)

// ParsePaymentStatus normalises the backend spelling. Unknown values are
// kept verbatim so callers can decide how to treat them.
func ParsePaymentStatus(s string) PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unpaid":
		return PaymentUnpaid
	case "pending":
		return PaymentPending
	case "paid":
		return PaymentPaid
	case "failed":
		return PaymentFailed
	}
	return PaymentStatus(s)
}

func (s PaymentStatus) Terminal() bool {
	return s == PaymentPaid || s == PaymentFailed
}

type OrderItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Status    string          `json:"status"`
}

// Order is the authoritative copy fetched from the backend. It is never
// mutated locally.
type Order struct {
	UUID          string          `json:"uuid"`
	OrderNumber   string          `json:"order_number"`
	Items         []OrderItem     `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Table         string          `json:"table"`
	Customer      string          `json:"customer"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PlacedOrder is what the backend returns when an order is created.
type PlacedOrder struct {
	UUID        string          `json:"order_uuid"`
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaymentURL  string          `json:"payment_url,omitempty"`
}

type StockLevel struct {
	MenuID      int64
	IsAvailable bool
	Quantity    int
}

type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}
