package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthTotal counts wallet sign-in attempts by chain and outcome.
	AuthTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_total",
			Help: "Wallet authentication attempts",
		},
		[]string{"chain", "outcome"},
	)

	// VerificationTotal counts payment verification attempts by chain and outcome.
	VerificationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_total",
			Help: "Payment verification attempts",
		},
		[]string{"chain", "outcome"},
	)

	// ChainRPCDuration tracks latency of upstream chain RPC calls.
	ChainRPCDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chain_rpc_duration_seconds",
			Help:    "Chain RPC call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain", "method"},
	)
)

// ObserveRPC records one RPC call duration.
func ObserveRPC(chain, method string, start time.Time) {
	ChainRPCDuration.WithLabelValues(chain, method).Observe(time.Since(start).Seconds())
}
