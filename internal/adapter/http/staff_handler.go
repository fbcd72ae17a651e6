package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aq2208/tableorder/internal/usecase"
	"github.com/gin-gonic/gin"
)

// StaffHandler serves order lookups for kitchen displays and dashboards.
// Backend calls use the service token, not a customer session.
type StaffHandler struct {
	orders       usecase.OrderAPI
	statuses     usecase.OrderStatusCache
	serviceToken string
}

func NewStaffHandler(orders usecase.OrderAPI, statuses usecase.OrderStatusCache, serviceToken string) *StaffHandler {
	return &StaffHandler{orders: orders, statuses: statuses, serviceToken: serviceToken}
}

// GET /v1/staff/orders/:uuid
func (h *StaffHandler) GetOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orders.GetOrder(ctx, h.serviceToken, c.Param("uuid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GET /v1/staff/orders/:uuid/status
func (h *StaffHandler) GetStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	id := c.Param("uuid")
	status, ok, err := h.statuses.GetStatus(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, errorResp{Error: "not_found", Message: "no status known for this order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_uuid": id, "payment_status": status})
}
