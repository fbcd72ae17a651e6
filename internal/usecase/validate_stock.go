package usecase

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/logging"
	"golang.org/x/sync/errgroup"
)

// StockValidator re-reads live stock for every cart line. Results are never
// cached: stock is shared with every other table.
type StockValidator struct {
	checker     StockChecker
	concurrency int
	rec         Recorder
}

func NewStockValidator(checker StockChecker, concurrency int, rec Recorder) *StockValidator {
	if concurrency <= 0 {
		concurrency = 1
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &StockValidator{checker: checker, concurrency: concurrency, rec: rec}
}

// Validate checks every line and reports all failures in cart order. A line
// whose stock cannot be read fails; "unable to verify" is never "available".
// The only error returned is domain.ErrSessionExpired, since no line can be
// checked once the backend rejects the session.
func (v *StockValidator) Validate(ctx context.Context, token string, cart *domain.Cart) (domain.ValidationResult, error) {
	lineErrs := make([]string, len(cart.Lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, l := range cart.Lines {
		g.Go(func() error {
			msg, err := v.checkLine(gctx, token, l)
			lineErrs[i] = msg
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return domain.ValidationResult{}, err
	}

	res := domain.ValidationResult{IsValid: true, Errors: []string{}}
	for _, msg := range lineErrs {
		if msg != "" {
			res.IsValid = false
			res.Errors = append(res.Errors, msg)
		}
	}
	return res, nil
}

func (v *StockValidator) checkLine(ctx context.Context, token string, l domain.CartLine) (string, error) {
	stock, err := v.checker.CheckStock(ctx, token, l.MenuID)
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		return "", err
	case err != nil:
		v.rec.StockCheckFailed("check_failed")
		logging.FromCtx(ctx).Warn("stock check failed", "menu_id", l.MenuID, "err", err)
		return fmt.Sprintf("Could not verify stock for %s, please try again", l.Name), nil
	case !stock.IsAvailable || stock.Quantity <= 0:
		v.rec.StockCheckFailed("out_of_stock")
		return fmt.Sprintf("%s is out of stock", l.Name), nil
	case l.Quantity > stock.Quantity:
		v.rec.StockCheckFailed("insufficient")
		return fmt.Sprintf("Only %d %s left in stock, you requested %d", stock.Quantity, l.Name, l.Quantity), nil
	}
	return "", nil
}
