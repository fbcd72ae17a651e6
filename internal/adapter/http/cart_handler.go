package http

import (
	"net/http"
	"strconv"

	"github.com/aq2208/tableorder/internal/adapter/http/middleware"
	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	carts    *usecase.Carts
	checkout *usecase.Checkout
}

func NewCartHandler(carts *usecase.Carts, checkout *usecase.Checkout) *CartHandler {
	return &CartHandler{carts: carts, checkout: checkout}
}

type addItemReq struct {
	MenuID    int64           `json:"menu_id" binding:"required,gt=0"`
	Name      string          `json:"name" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity" binding:"required,gte=1"`
	Notes     string          `json:"notes"`
}

type updateItemReq struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GET /v1/cart
func (h *CartHandler) View(c *gin.Context) {
	sum, err := h.carts.View(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// POST /v1/cart/items
func (h *CartHandler) Add(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "menu_id, name and quantity are required")
		return
	}
	sum, err := h.carts.Add(c.Request.Context(), middleware.SessionToken(c), domain.CartLine{
		MenuID:    req.MenuID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Quantity:  req.Quantity,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// PATCH /v1/cart/items/:menuId
func (h *CartHandler) Update(c *gin.Context) {
	menuID, ok := menuIDParam(c)
	if !ok {
		return
	}
	var req updateItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity is required")
		return
	}
	sum, err := h.carts.Update(c.Request.Context(), middleware.SessionToken(c), menuID, *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// DELETE /v1/cart/items/:menuId
func (h *CartHandler) Remove(c *gin.Context) {
	menuID, ok := menuIDParam(c)
	if !ok {
		return
	}
	sum, err := h.carts.Remove(c.Request.Context(), middleware.SessionToken(c), menuID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

type validateResp struct {
	Summary domain.CartSummary `json:"summary"`
	IsValid bool               `json:"is_valid"`
	Errors  []string           `json:"errors"`
}

// POST /v1/cart/validate
func (h *CartHandler) Validate(c *gin.Context) {
	sum, res, err := h.checkout.Preview(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	errs := res.Errors
	if errs == nil {
		errs = []string{}
	}
	c.JSON(http.StatusOK, validateResp{Summary: sum, IsValid: res.IsValid, Errors: errs})
}

func menuIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("menuId"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid menu id")
		return 0, false
	}
	return id, true
}
