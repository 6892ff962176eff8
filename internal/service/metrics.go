package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	collectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pc_collects_total",
		Help: "Finished collect runs by pay mode, type and result.",
	}, []string{"paymode", "type", "status"})

	collectDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pc_collect_duration_seconds",
		Help:    "Duration of a collect run from start to the last attachment.",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"type"})

	activeCollects = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pc_active_collects",
		Help: "Collect runs in progress.",
	})

	debitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pc_debits_total",
		Help: "Debit records written to collection files.",
	}, []string{"paymode"})

	outcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pc_return_outcomes_total",
		Help: "Return lines matched to an invoice, by result code.",
	}, []string{"paymode", "code"})
)
