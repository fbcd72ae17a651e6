package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendRejection struct{ msg string }

func (e backendRejection) Error() string       { return "backend: " + e.msg }
func (e backendRejection) UserMessage() string { return e.msg }

func TestOrderCreator_Preconditions(t *testing.T) {
	cart := &domain.Cart{Lines: []domain.CartLine{cartLine(1, "Latte", 30000, 1)}}

	tests := []struct {
		name string
		in   CreateOrderInput
		want error
	}{
		{name: "no session", in: CreateOrderInput{Cart: cart, Email: "a@b.c"}, want: domain.ErrSessionExpired},
		{name: "nil cart", in: CreateOrderInput{Session: liveSession(), Email: "a@b.c"}, want: domain.ErrCartEmpty},
		{name: "empty cart", in: CreateOrderInput{Session: liveSession(), Cart: &domain.Cart{}, Email: "a@b.c"}, want: domain.ErrCartEmpty},
		{name: "empty email", in: CreateOrderInput{Session: liveSession(), Cart: cart}, want: domain.ErrInvalidEmail},
		{name: "email without at", in: CreateOrderInput{Session: liveSession(), Cart: cart, Email: "guest"}, want: domain.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeOrderAPI{}
			_, err := NewOrderCreator(api, domain.Pricing{}).Execute(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, api.createCalls)
		})
	}
}

func TestOrderCreator_Success(t *testing.T) {
	api := &fakeOrderAPI{placed: domain.PlacedOrder{UUID: "u-1", OrderNumber: "A-7", TotalAmount: money(45000), PaymentURL: "https://pay"}}
	cart := &domain.Cart{Lines: []domain.CartLine{
		{MenuID: 3, Name: "Bagel", UnitPrice: money(15000), Quantity: 2, Notes: "toasted"},
	}}

	placed, err := NewOrderCreator(api, domain.Pricing{ServiceFee: money(15000)}).Execute(context.Background(), CreateOrderInput{
		Session: liveSession(), Cart: cart, Email: " guest@example.com ", Notes: "table by the window",
	})
	require.NoError(t, err)

	assert.Equal(t, "u-1", placed.UUID)
	assert.Equal(t, "https://pay", placed.PaymentURL)
	assert.Equal(t, CreateOrderRequest{
		SessionToken: testToken,
		Email:        "guest@example.com",
		Notes:        "table by the window",
		Items:        []CreateOrderItem{{MenuID: 3, Quantity: 2, SpecialNotes: "toasted"}},
	}, api.lastCreate)
}

func TestOrderCreator_Failures(t *testing.T) {
	cart := &domain.Cart{Lines: []domain.CartLine{cartLine(1, "Latte", 30000, 1)}}
	in := CreateOrderInput{Session: liveSession(), Cart: cart, Email: "a@b.c"}

	t.Run("backend message surfaces", func(t *testing.T) {
		api := &fakeOrderAPI{createErr: fmt.Errorf("create order: %w", backendRejection{"Latte is sold out"})}
		_, err := NewOrderCreator(api, domain.Pricing{}).Execute(context.Background(), in)

		var oc *domain.OrderCreationError
		require.ErrorAs(t, err, &oc)
		assert.Equal(t, "Latte is sold out", oc.Msg)
	})

	t.Run("timeout stays a network error", func(t *testing.T) {
		api := &fakeOrderAPI{createErr: fmt.Errorf("%w: deadline exceeded", domain.ErrNetworkOrTimeout)}
		_, err := NewOrderCreator(api, domain.Pricing{}).Execute(context.Background(), in)

		var oc *domain.OrderCreationError
		require.ErrorAs(t, err, &oc)
		assert.ErrorIs(t, err, domain.ErrNetworkOrTimeout)
	})

	t.Run("session expiry passes through", func(t *testing.T) {
		api := &fakeOrderAPI{createErr: domain.ErrSessionExpired}
		_, err := NewOrderCreator(api, domain.Pricing{}).Execute(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrSessionExpired)

		var oc *domain.OrderCreationError
		assert.False(t, errors.As(err, &oc))
	})
}
