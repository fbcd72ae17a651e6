package usecase

import (
	"context"
	"time"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/logging"
	"github.com/google/uuid"
)

const checkoutLockScope = "checkout"

type CheckoutInput struct {
	Token, Email, Notes, PaymentMethod string
}

type CheckoutResult struct {
	AttemptID  string
	Order      domain.PlacedOrder
	Summary    domain.CartSummary
	Validation domain.ValidationResult
	Dispatch   domain.Dispatch
}

// Checkout runs validate → create → record → process → dispatch strictly in
// that order while holding a per-session lock, so a double tap on "pay"
// cannot create two orders.
type Checkout struct {
	sessions   *Sessions
	carts      CartStore
	validator  *StockValidator
	creator    *OrderCreator
	dispatcher *PaymentDispatcher
	pending    PendingOrderStore
	lock       CheckoutLock
	pricing    domain.Pricing
	rec        Recorder
	now        func() time.Time
}

func NewCheckout(
	sessions *Sessions,
	carts CartStore,
	validator *StockValidator,
	creator *OrderCreator,
	dispatcher *PaymentDispatcher,
	pending PendingOrderStore,
	lock CheckoutLock,
	pricing domain.Pricing,
	rec Recorder,
) *Checkout {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Checkout{
		sessions:   sessions,
		carts:      carts,
		validator:  validator,
		creator:    creator,
		dispatcher: dispatcher,
		pending:    pending,
		lock:       lock,
		pricing:    pricing,
		rec:        rec,
		now:        time.Now,
	}
}

func (uc *Checkout) Execute(ctx context.Context, in CheckoutInput) (out CheckoutResult, err error) {
	defer func() { uc.rec.CheckoutOutcome(outcomeOf(out, err)) }()

	// cheap checks first: none of these touch the network
	if in.Token == "" {
		return out, domain.ErrSessionExpired
	}
	if !ValidEmail(in.Email) {
		return out, domain.ErrInvalidEmail
	}
	method, err := domain.FindPaymentMethod(in.PaymentMethod)
	if err != nil {
		return out, err
	}

	sess, err := uc.sessions.Require(ctx, in.Token)
	if err != nil {
		return out, err
	}
	cart, err := uc.carts.Load(ctx, in.Token)
	if err != nil {
		return out, err
	}
	if cart.IsEmpty() {
		return out, domain.ErrCartEmpty
	}
	out.Summary = uc.pricing.Summarize(cart)

	attemptID := uuid.NewString()
	ok, err := uc.lock.TryLock(ctx, checkoutLockScope, in.Token, attemptID)
	if err != nil {
		return out, err
	}
	if !ok {
		return out, domain.ErrCheckoutInProgress
	}
	defer func() {
		uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if uerr := uc.lock.Unlock(uctx, checkoutLockScope, in.Token, attemptID); uerr != nil {
			logging.FromCtx(ctx).Error("release checkout lock", "err", uerr)
		}
	}()

	// the attempt must finish before the lock can expire under it
	if budget := lockBudget(uc.lock.TTL()); budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	out.AttemptID = attemptID
	lg := logging.FromCtx(ctx).With("checkout_id", out.AttemptID)
	ctx = logging.WithCtx(ctx, lg)

	out.Validation, err = uc.validator.Validate(ctx, in.Token, cart)
	if err != nil {
		return out, uc.sessions.Check(ctx, in.Token, err)
	}
	if !out.Validation.IsValid {
		return out, &domain.ValidationFailedError{Errors: out.Validation.Errors}
	}

	out.Order, err = uc.creator.Execute(ctx, CreateOrderInput{Session: sess, Cart: cart, Email: in.Email, Notes: in.Notes})
	if err != nil {
		return out, uc.sessions.Check(ctx, in.Token, err)
	}

	// must be durable before the customer leaves for the gateway
	rec := domain.PendingOrderRecord{
		SessionToken:  in.Token,
		OrderUUID:     out.Order.UUID,
		PaymentMethod: method.ID,
		Email:         in.Email,
		Total:         out.Order.TotalAmount,
		CreatedAt:     uc.now(),
	}
	if err := uc.pending.Put(ctx, rec); err != nil {
		return out, &domain.PaymentInitiationError{Msg: "could not save the pending order, please try again", Err: err}
	}

	paymentURL, err := uc.dispatcher.ProcessPayment(ctx, in.Token, out.Order.UUID, method, in.Email)
	if err != nil {
		return out, uc.sessions.Check(ctx, in.Token, err)
	}
	out.Dispatch, err = uc.dispatcher.Dispatch(ctx, paymentURL, method)
	if err != nil {
		return out, err
	}

	if out.Dispatch.State == domain.StateSuccess {
		// simulated payment: nothing will come back from a gateway
		if err := uc.carts.Delete(ctx, in.Token); err != nil {
			logging.FromCtx(ctx).Error("clear cart after simulated payment", "err", err)
		}
		if err := uc.pending.Delete(ctx, in.Token); err != nil {
			logging.FromCtx(ctx).Error("drop pending order after simulated payment", "err", err)
		}
	}
	logging.FromCtx(ctx).Info("checkout dispatched",
		"order_uuid", out.Order.UUID, "method", method.ID, "mode", out.Dispatch.Mode)
	return out, nil
}

// Preview prices the cart and checks stock without taking the lock or
// creating anything.
func (uc *Checkout) Preview(ctx context.Context, token string) (domain.CartSummary, domain.ValidationResult, error) {
	if _, err := uc.sessions.Require(ctx, token); err != nil {
		return domain.CartSummary{}, domain.ValidationResult{}, err
	}
	cart, err := uc.carts.Load(ctx, token)
	if err != nil {
		return domain.CartSummary{}, domain.ValidationResult{}, err
	}
	if cart.IsEmpty() {
		return domain.CartSummary{}, domain.ValidationResult{}, domain.ErrCartEmpty
	}
	res, err := uc.validator.Validate(ctx, token, cart)
	if err != nil {
		return domain.CartSummary{}, domain.ValidationResult{}, uc.sessions.Check(ctx, token, err)
	}
	return uc.pricing.Summarize(cart), res, nil
}

// lockBudget leaves a fifth of the lock TTL for releasing the lock.
func lockBudget(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return ttl - ttl/5
}

func outcomeOf(out CheckoutResult, err error) string {
	switch {
	case err == nil && out.Dispatch.Mode == domain.DispatchSimulated:
		return "simulated"
	case err == nil:
		return "dispatched"
	case out.Order.UUID != "":
		return "payment_failed"
	case len(out.Validation.Errors) > 0:
		return "stock_invalid"
	}
	return "rejected"
}
