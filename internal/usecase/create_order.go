package usecase

import (
	"context"
	"errors"
	"strings"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/logging"
)

type CreateOrderInput struct {
	Session domain.Session
	Cart    *domain.Cart
	Email   string
	Notes   string
}

// OrderCreator turns a freshly validated cart into a backend order. It does
// not re-check stock and does not deduplicate; the caller owns both.
type OrderCreator struct {
	api     OrderAPI
	pricing domain.Pricing
}

func NewOrderCreator(api OrderAPI, pricing domain.Pricing) *OrderCreator {
	return &OrderCreator{api: api, pricing: pricing}
}

// ValidEmail is the minimal shape check done before any network call.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && strings.Contains(email, "@")
}

func (uc *OrderCreator) Execute(ctx context.Context, in CreateOrderInput) (domain.PlacedOrder, error) {
	if in.Session.Token == "" {
		return domain.PlacedOrder{}, domain.ErrSessionExpired
	}
	if in.Cart == nil || in.Cart.IsEmpty() {
		return domain.PlacedOrder{}, domain.ErrCartEmpty
	}
	if !ValidEmail(in.Email) {
		return domain.PlacedOrder{}, domain.ErrInvalidEmail
	}

	req := CreateOrderRequest{
		SessionToken: in.Session.Token,
		Email:        strings.TrimSpace(in.Email),
		Notes:        in.Notes,
		Items:        make([]CreateOrderItem, 0, len(in.Cart.Lines)),
	}
	for _, l := range in.Cart.Lines {
		req.Items = append(req.Items, CreateOrderItem{MenuID: l.MenuID, Quantity: l.Quantity, SpecialNotes: l.Notes})
	}

	placed, err := uc.api.CreateOrder(ctx, in.Session.Token, req)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return domain.PlacedOrder{}, err
		}
		return domain.PlacedOrder{}, &domain.OrderCreationError{Msg: upstreamMessage(err), Err: err}
	}

	if want := uc.pricing.Summarize(in.Cart).Total; !placed.TotalAmount.Equal(want) {
		logging.FromCtx(ctx).Warn("order total differs from cart preview",
			"order_uuid", placed.UUID, "backend_total", placed.TotalAmount.String(), "cart_total", want.String())
	}
	logging.FromCtx(ctx).Info("order created", "order_uuid", placed.UUID, "order_number", placed.OrderNumber)
	return placed, nil
}

// upstreamMessage prefers the message the backend sent.
func upstreamMessage(err error) string {
	var m interface{ UserMessage() string }
	if errors.As(err, &m) && m.UserMessage() != "" {
		return m.UserMessage()
	}
	if errors.Is(err, domain.ErrNetworkOrTimeout) {
		return "the server could not be reached, please try again"
	}
	return err.Error()
}
