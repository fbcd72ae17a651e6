package backend

import (
	"context"
	"net/http"
	"strconv"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/usecase"
)

var _ usecase.StockChecker = (*Client)(nil)

func (c *Client) CheckStock(ctx context.Context, token string, menuID int64) (domain.StockLevel, error) {
	var w stockWire
	path := "/stock/check/" + strconv.FormatInt(menuID, 10)
	if err := c.do(ctx, http.MethodGet, path, token, nil, nil, &w); err != nil {
		return domain.StockLevel{}, err
	}
	return parseStock(menuID, w)
}
