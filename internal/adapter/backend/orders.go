package backend

import (
	"context"
	"net/http"
	"net/url"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/usecase"
)

var _ usecase.OrderAPI = (*Client)(nil)

func (c *Client) CreateOrder(ctx context.Context, token string, req usecase.CreateOrderRequest) (domain.PlacedOrder, error) {
	var w placedOrderWire
	if err := c.do(ctx, http.MethodPost, "/orders", token, nil, req, &w); err != nil {
		return domain.PlacedOrder{}, err
	}
	return parsePlacedOrder(w)
}

func (c *Client) GetOrder(ctx context.Context, token, orderUUID string) (domain.Order, error) {
	var w orderWire
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderUUID), token, nil, nil, &w); err != nil {
		return domain.Order{}, err
	}
	return parseOrder(w)
}
