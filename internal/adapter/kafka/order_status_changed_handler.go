package kafka

import (
	"context"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/usecase"
)

// OrderStatusChangedHandler keeps the status cache in step with the backend
// so staff lookups don't have to call it.
type OrderStatusChangedHandler struct {
	Cache usecase.OrderStatusCache
}

func NewOrderStatusChangedHandler(cache usecase.OrderStatusCache) *OrderStatusChangedHandler {
	return &OrderStatusChangedHandler{Cache: cache}
}

func (h *OrderStatusChangedHandler) Handle(ctx context.Context, ev usecase.OrderStatusChangedMsg) error {
	status := domain.ParsePaymentStatus(ev.PaymentStatus)
	return h.Cache.SetStatus(ctx, ev.OrderUUID, string(status))
}
