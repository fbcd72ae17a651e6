package observ

import (
	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromRecorder counts business outcomes next to the HTTP metrics.
type PromRecorder struct {
	checkouts  *prometheus.CounterVec
	reconciled *prometheus.CounterVec
	stockFails *prometheus.CounterVec
}

// NewPromRecorder registers its collectors on reg. Pass
// prometheus.DefaultRegisterer in production.
func NewPromRecorder(reg prometheus.Registerer) *PromRecorder {
	f := promauto.With(reg)
	return &PromRecorder{
		checkouts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tableorder_checkouts_total",
			Help: "Checkout attempts by outcome",
		}, []string{"outcome"}),
		reconciled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tableorder_payment_verifications_total",
			Help: "Payment verifications by entry source and final state",
		}, []string{"source", "state"}),
		stockFails: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tableorder_stock_check_failures_total",
			Help: "Cart lines rejected by stock validation",
		}, []string{"reason"}),
	}
}

func (p *PromRecorder) CheckoutOutcome(outcome string) {
	p.checkouts.WithLabelValues(outcome).Inc()
}

func (p *PromRecorder) Reconciled(source string, state domain.PaymentState) {
	p.reconciled.WithLabelValues(source, string(state)).Inc()
}

func (p *PromRecorder) StockCheckFailed(reason string) {
	p.stockFails.WithLabelValues(reason).Inc()
}

var _ usecase.Recorder = (*PromRecorder)(nil)
