package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skillmatch",
		Subsystem: "ai",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of provider evaluation requests",
	}, []string{"provider", "model"})

	evaluationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skillmatch",
		Subsystem: "ai",
		Name:      "evaluation_failures_total",
		Help:      "Number of failed provider evaluation requests",
	}, []string{"provider", "model"})

	evaluationCost = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skillmatch",
		Subsystem: "ai",
		Name:      "evaluation_cost_dollars_total",
		Help:      "Accumulated metered evaluation spend in dollars",
	}, []string{"provider", "model"})
)
