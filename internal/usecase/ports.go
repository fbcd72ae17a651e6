package usecase

import (
	"context"
	"net/url"
	"time"

	domain "github.com/aq2208/tableorder/internal/entity"
)

// Backend REST contract.

type CreateOrderItem struct {
	MenuID       int64  `json:"menu_id"`
	Quantity     int    `json:"quantity"`
	SpecialNotes string `json:"special_notes"`
}

type CreateOrderRequest struct {
	SessionToken string            `json:"session_token"`
	Email        string            `json:"email"`
	Items        []CreateOrderItem `json:"items"`
	Notes        string            `json:"notes"`
}

type SessionAPI interface {
	ScanQR(ctx context.Context, qrCode string) (domain.Session, error)
	GetSession(ctx context.Context, token string) (domain.Session, error)
	ExtendSession(ctx context.Context, token string) (domain.Session, error)
}

type StockChecker interface {
	CheckStock(ctx context.Context, token string, menuID int64) (domain.StockLevel, error)
}

type OrderAPI interface {
	CreateOrder(ctx context.Context, token string, req CreateOrderRequest) (domain.PlacedOrder, error)
	GetOrder(ctx context.Context, token, orderUUID string) (domain.Order, error)
}

type PaymentAPI interface {
	ProcessPayment(ctx context.Context, token, orderUUID, method, email string) (paymentURL string, err error)
	FinishPayment(ctx context.Context, token string, params url.Values) (orderUUID string, err error)
}

// Client state held on behalf of the customer's device.

// SessionStore returns (nil, nil) for an unknown token.
type SessionStore interface {
	Get(ctx context.Context, token string) (*domain.Session, error)
	Save(ctx context.Context, s domain.Session) error
	Delete(ctx context.Context, token string) error
}

// CartStore returns an empty cart for an unknown token.
type CartStore interface {
	Load(ctx context.Context, token string) (*domain.Cart, error)
	Save(ctx context.Context, token string, c *domain.Cart) error
	Delete(ctx context.Context, token string) error
}

// PendingOrderStore holds at most one record per session. Take reads and
// deletes atomically and returns (nil, nil) when nothing is stored.
type PendingOrderStore interface {
	Put(ctx context.Context, rec domain.PendingOrderRecord) error
	Take(ctx context.Context, token string) (*domain.PendingOrderRecord, error)
	Delete(ctx context.Context, token string) error
}

// CheckoutLock guards a session against duplicate in-flight checkouts.
// Unlock only releases a lock still held by owner. A zero TTL means the
// lock never expires.
type CheckoutLock interface {
	TryLock(ctx context.Context, scope, key, owner string) (bool, error)
	Unlock(ctx context.Context, scope, key, owner string) error
	TTL() time.Duration
}

type OutboxRepo interface {
	InsertPaymentResolved(ctx context.Context, payload []byte) error
}

type OrderStatusCache interface {
	SetStatus(ctx context.Context, orderUUID string, status string) error
	GetStatus(ctx context.Context, orderUUID string) (string, bool, error)
}

// Recorder receives business outcome counts.
type Recorder interface {
	CheckoutOutcome(outcome string)
	Reconciled(source string, state domain.PaymentState)
	StockCheckFailed(reason string)
}

type nopRecorder struct{}

func (nopRecorder) CheckoutOutcome(string)                 {}
func (nopRecorder) Reconciled(string, domain.PaymentState) {}
func (nopRecorder) StockCheckFailed(string)                {}
