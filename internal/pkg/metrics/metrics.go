package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RelaysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hookgate_relays_total",
		Help: "The total number of swaps deferred to the relayer",
	}, []string{"venue"})

	SwapsExecutedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hookgate_swaps_executed_total",
		Help: "The total number of swaps observed on the after-swap path",
	}, []string{"venue", "relayed"})

	UnauthorizedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hookgate_unauthorized_total",
		Help: "Total admin mutations rejected by the authorization registry",
	}, []string{"op"})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hookgate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
