package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/logging"
)

// Source is how the customer arrived at the payment result.
type Source string

const (
	SourceNone       Source = "none"
	SourceCallback   Source = "callback"
	SourceNavigation Source = "navigation"
	SourceStored     Source = "stored_record"
)

// gateway parameters appended to the redirect back to the result page
var callbackKeys = []string{"order_id", "transaction_status", "status_code", "transaction_id"}

func IsGatewayCallback(q url.Values) bool {
	for _, k := range callbackKeys {
		if q.Get(k) != "" {
			return true
		}
	}
	return false
}

// NavigationState is the payment context the client still holds in memory
// when it navigates to the result page without leaving the app.
type NavigationState struct {
	OrderUUID     string `json:"order_uuid"`
	PaymentMethod string `json:"payment_method"`
}

type VerifyInput struct {
	Token    string
	Callback url.Values
	Nav      *NavigationState
}

type Verification struct {
	State         domain.PaymentState `json:"state"`
	Source        Source              `json:"source"`
	OrderUUID     string              `json:"order_uuid,omitempty"`
	PaymentMethod string              `json:"payment_method,omitempty"`
	Order         *domain.Order       `json:"order,omitempty"`
	Message       string              `json:"message,omitempty"`
	Actions       []domain.Action     `json:"actions"`
}

// entry is the resolved "how did we get here" input. Exactly one source is
// consulted per verification.
type entry struct {
	source    Source
	params    url.Values
	orderUUID string
	method    string
}

// PaymentReconciler resolves the final payment outcome for one page load of
// the result view: Verifying → Success | Pending | Failed.
type PaymentReconciler struct {
	sessions *Sessions
	orders   OrderAPI
	payments PaymentAPI
	pending  PendingOrderStore
	carts    CartStore
	outbox   OutboxRepo
	cache    OrderStatusCache
	rec      Recorder
	now      func() time.Time
}

func NewPaymentReconciler(
	sessions *Sessions,
	orders OrderAPI,
	payments PaymentAPI,
	pending PendingOrderStore,
	carts CartStore,
	outbox OutboxRepo,
	cache OrderStatusCache,
	rec Recorder,
) *PaymentReconciler {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &PaymentReconciler{
		sessions: sessions,
		orders:   orders,
		payments: payments,
		pending:  pending,
		carts:    carts,
		outbox:   outbox,
		cache:    cache,
		rec:      rec,
		now:      time.Now,
	}
}

// Verify never returns in the Verifying state; every failure, including a
// panic in a collaborator, ends in Failed with a message.
func (r *PaymentReconciler) Verify(ctx context.Context, in VerifyInput) (v Verification) {
	v = Verification{State: domain.StateVerifying, Source: SourceNone}
	defer func() {
		if p := recover(); p != nil {
			logging.FromCtx(ctx).Error("payment verification panicked", "panic", p)
			v = r.failed(ctx, in.Token, v, fmt.Errorf("unexpected error: %v", p))
		}
		r.finish(ctx, in.Token, &v)
	}()

	e, err := r.resolve(ctx, in)
	v.Source = e.source
	v.OrderUUID = e.orderUUID
	v.PaymentMethod = e.method
	if err != nil {
		return r.failed(ctx, in.Token, v, err)
	}

	switch e.source {
	case SourceCallback:
		return r.fromCallback(ctx, in.Token, v, e.params)
	case SourceNavigation, SourceStored:
		return r.fromOrderStatus(ctx, in.Token, v)
	}
	return r.failed(ctx, in.Token, v, domain.ErrNoPaymentInfo)
}

// resolve picks the single source for this verification. Callback
// parameters win outright and nothing else is read. Otherwise the stored
// record is consumed whether or not navigation state supplies the order,
// so it cannot be replayed by a later unrelated load.
func (r *PaymentReconciler) resolve(ctx context.Context, in VerifyInput) (entry, error) {
	if IsGatewayCallback(in.Callback) {
		return entry{source: SourceCallback, params: in.Callback}, nil
	}

	var stored *domain.PendingOrderRecord
	var takeErr error
	if in.Token != "" {
		stored, takeErr = r.pending.Take(ctx, in.Token)
	}

	if in.Nav != nil && in.Nav.OrderUUID != "" {
		if takeErr != nil {
			logging.FromCtx(ctx).Warn("consume pending order", "err", takeErr)
		}
		return entry{source: SourceNavigation, orderUUID: in.Nav.OrderUUID, method: in.Nav.PaymentMethod}, nil
	}
	if takeErr != nil {
		return entry{source: SourceStored}, fmt.Errorf("read pending order: %w", takeErr)
	}
	if stored != nil && stored.OrderUUID != "" {
		return entry{source: SourceStored, orderUUID: stored.OrderUUID, method: stored.PaymentMethod}, nil
	}
	return entry{source: SourceNone}, domain.ErrNoPaymentInfo
}

func (r *PaymentReconciler) fromCallback(ctx context.Context, token string, v Verification, params url.Values) Verification {
	orderUUID, err := r.payments.FinishPayment(ctx, token, params)
	if err != nil {
		return r.failed(ctx, token, v, err)
	}
	v.OrderUUID = orderUUID

	order, err := r.orders.GetOrder(ctx, token, orderUUID)
	if err != nil {
		return r.failed(ctx, token, v, err)
	}
	v.Order = &order
	v.State = domain.StateSuccess
	r.completeOrder(ctx, token)
	// the record for this order must not resurface on a later load; a blind
	// delete keeps the stored record out of the callback decision
	if token != "" {
		if err := r.pending.Delete(ctx, token); err != nil {
			logging.FromCtx(ctx).Error("drop pending order after callback", "err", err)
		}
	}
	return v
}

func (r *PaymentReconciler) fromOrderStatus(ctx context.Context, token string, v Verification) Verification {
	order, err := r.orders.GetOrder(ctx, token, v.OrderUUID)
	if err != nil {
		return r.failed(ctx, token, v, err)
	}
	v.Order = &order

	switch order.PaymentStatus {
	case domain.PaymentPaid:
		v.State = domain.StateSuccess
		r.completeOrder(ctx, token)
	case domain.PaymentPending:
		v.State = domain.StatePending
		v.Message = "payment is still being processed"
	default:
		v.State = domain.StateFailed
		v.Message = fmt.Sprintf("payment was not completed (status %s)", order.PaymentStatus)
	}
	return v
}

// completeOrder clears the cart once the order is known to be paid.
func (r *PaymentReconciler) completeOrder(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := r.carts.Delete(ctx, token); err != nil {
		logging.FromCtx(ctx).Error("clear cart after payment", "err", err)
	}
}

func (r *PaymentReconciler) failed(ctx context.Context, token string, v Verification, err error) Verification {
	v.State = domain.StateFailed
	v.Message = domain.Message(err)
	if errors.Is(err, domain.ErrSessionExpired) {
		_ = r.sessions.Check(ctx, token, err)
		v.Actions = []domain.Action{domain.ActionRescanQR}
	}
	logging.FromCtx(ctx).Warn("payment verification failed",
		"source", v.Source, "order_uuid", v.OrderUUID, "method", v.PaymentMethod, "err", err)
	return v
}

// finish publishes the outcome: metrics always, status cache and outbox
// once the order is known.
func (r *PaymentReconciler) finish(ctx context.Context, token string, v *Verification) {
	if v.Actions == nil {
		v.Actions = v.State.NextActions()
	}
	r.rec.Reconciled(string(v.Source), v.State)

	if v.Order == nil {
		return
	}
	status := string(v.Order.PaymentStatus)
	if v.State == domain.StateSuccess && v.Order.PaymentStatus != domain.PaymentPaid && v.Source == SourceCallback {
		status = string(domain.PaymentPaid)
	}
	if r.cache != nil {
		if err := r.cache.SetStatus(ctx, v.Order.UUID, status); err != nil {
			logging.FromCtx(ctx).Warn("cache order status", "err", err)
		}
	}
	if r.outbox == nil || v.State == domain.StatePending {
		return
	}
	var tableID string
	if sess, err := r.sessions.Lookup(ctx, token); err != nil {
		logging.FromCtx(ctx).Warn("lookup session for payment event", "err", err)
	} else if sess != nil {
		tableID = sess.TableID
	}
	payload, err := json.Marshal(PaymentResolvedMsg{
		Type:          "PaymentResolvedV1",
		OrderUUID:     v.Order.UUID,
		OrderNumber:   v.Order.OrderNumber,
		TableID:       tableID,
		State:         string(v.State),
		PaymentStatus: status,
		PaymentMethod: v.PaymentMethod,
		Source:        string(v.Source),
		ResolvedAt:    r.now().UTC(),
	})
	if err != nil {
		logging.FromCtx(ctx).Error("encode payment resolved", "order_uuid", v.Order.UUID, "err", err)
		return
	}
	if err := r.outbox.InsertPaymentResolved(ctx, payload); err != nil {
		logging.FromCtx(ctx).Error("outbox payment resolved", "order_uuid", v.Order.UUID, "err", err)
	}
}
