package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loan-engine/internal/domain/audit"
)

// Metrics holds the engine's Prometheus collectors on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	Activities    *prometheus.CounterVec
	PaymentAmount prometheus.Counter
	SweepRuns     *prometheus.CounterVec
	SweepFlagged  prometheus.Counter
	HTTPRequests  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		Activities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loan_engine",
			Name:      "activities_total",
			Help:      "Committed loan activities by action.",
		}, []string{"action"}),
		PaymentAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loan_engine",
			Name:      "payments_amount_total",
			Help:      "Sum of recorded repayment amounts.",
		}),
		SweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loan_engine",
			Name:      "delinquency_sweeps_total",
			Help:      "Delinquency sweeps by outcome.",
		}, []string{"outcome"}),
		SweepFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loan_engine",
			Name:      "npl_flagged_total",
			Help:      "Loans flagged non-performing by sweeps.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loan_engine",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
	}
	reg.MustRegister(
		m.Activities, m.PaymentAmount, m.SweepRuns, m.SweepFlagged, m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Publish counts committed activities. It lets Metrics sit behind
// audit.Fanout next to the Kafka publisher.
func (m *Metrics) Publish(_ context.Context, activities ...audit.Activity) error {
	for _, a := range activities {
		m.Activities.WithLabelValues(string(a.Action)).Inc()
		if a.Action == audit.ActionPayment && a.Amount.Valid {
			f, _ := a.Amount.Decimal.Float64()
			m.PaymentAmount.Add(f)
		}
		if a.Action == audit.ActionFlagged {
			m.SweepFlagged.Inc()
		}
	}
	return nil
}

// SweepDone records one sweep outcome: ok, partial, busy or error.
func (m *Metrics) SweepDone(outcome string) { m.SweepRuns.WithLabelValues(outcome).Inc() }
