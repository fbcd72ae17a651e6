package http

import (
	"github.com/aq2208/tableorder/internal/adapter/http/middleware"
	"github.com/aq2208/tableorder/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Session  *SessionHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Payment  *PaymentHandler
	Staff    *StaffHandler
	Token    *TokenHandler
}

func NewRouter(h Handlers, authz *middleware.Authz, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())
	r.Use(middleware.Logging(logging.New("http")))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", h.Token.IssueToken)

	v1 := r.Group("/v1")
	v1.POST("/sessions/scan", limiter.Middleware(), h.Session.Scan)
	v1.GET("/payment-methods", h.Checkout.PaymentMethods)

	customer := v1.Group("", middleware.SessionAuth(), limiter.Middleware())
	{
		customer.GET("/session", h.Session.Current)
		customer.POST("/session/extend", h.Session.Extend)

		customer.GET("/cart", h.Cart.View)
		customer.POST("/cart/items", h.Cart.Add)
		customer.PATCH("/cart/items/:menuId", h.Cart.Update)
		customer.DELETE("/cart/items/:menuId", h.Cart.Remove)
		customer.POST("/cart/validate", h.Cart.Validate)

		customer.POST("/checkout", h.Checkout.Checkout)
		customer.POST("/payments/verify", h.Payment.Verify)
		customer.GET("/payments/result", h.Payment.Result)
	}

	staff := v1.Group("/staff")
	{
		staff.GET("/orders/:uuid", authz.Require("orders.read"), h.Staff.GetOrder)
		staff.GET("/orders/:uuid/status", authz.Require("orders.read"), h.Staff.GetStatus)
	}

	return r
}
