package usecase

import (
	"context"

	domain "github.com/aq2208/tableorder/internal/entity"
)

// Carts mutates the session-scoped cart. Stock is not checked here; adding
// is advisory until checkout re-validates.
type Carts struct {
	sessions *Sessions
	store    CartStore
	pricing  domain.Pricing
}

func NewCarts(sessions *Sessions, store CartStore, pricing domain.Pricing) *Carts {
	return &Carts{sessions: sessions, store: store, pricing: pricing}
}

func (uc *Carts) View(ctx context.Context, token string) (domain.CartSummary, error) {
	cart, err := uc.load(ctx, token)
	if err != nil {
		return domain.CartSummary{}, err
	}
	return uc.pricing.Summarize(cart), nil
}

func (uc *Carts) Add(ctx context.Context, token string, line domain.CartLine) (domain.CartSummary, error) {
	return uc.mutate(ctx, token, func(c *domain.Cart) error { return c.AddItem(line) })
}

func (uc *Carts) Update(ctx context.Context, token string, menuID int64, qty int) (domain.CartSummary, error) {
	return uc.mutate(ctx, token, func(c *domain.Cart) error { return c.UpdateQuantity(menuID, qty) })
}

func (uc *Carts) Remove(ctx context.Context, token string, menuID int64) (domain.CartSummary, error) {
	return uc.mutate(ctx, token, func(c *domain.Cart) error {
		if !c.RemoveItem(menuID) {
			return domain.ErrLineNotFound
		}
		return nil
	})
}

func (uc *Carts) load(ctx context.Context, token string) (*domain.Cart, error) {
	if _, err := uc.sessions.Require(ctx, token); err != nil {
		return nil, err
	}
	return uc.store.Load(ctx, token)
}

func (uc *Carts) mutate(ctx context.Context, token string, fn func(*domain.Cart) error) (domain.CartSummary, error) {
	cart, err := uc.load(ctx, token)
	if err != nil {
		return domain.CartSummary{}, err
	}
	if err := fn(cart); err != nil {
		return domain.CartSummary{}, err
	}
	if err := uc.store.Save(ctx, token, cart); err != nil {
		return domain.CartSummary{}, err
	}
	return uc.pricing.Summarize(cart), nil
}
