// Package metrics exposes Prometheus counters for the pledge engine.
// Collection is always on; the launcher decides whether to serve them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pledge"

var (
	// PurchaseCount counts accepted purchases, including zero-amount no-ops.
	PurchaseCount = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_total",
		Help:      "Accepted pledge purchases.",
	})

	// GrantedTokens totals the pledge tokens granted by accepted purchases.
	GrantedTokens = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "granted_tokens_total",
		Help:      "Pledge tokens granted across accepted purchases.",
	})

	// MintedRewards totals the reward tokens minted by vesting accrual.
	MintedRewards = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "minted_rewards_total",
		Help:      "Reward tokens minted by vesting accrual.",
	})

	// ClaimedRewards totals the reward tokens settled by successful claims.
	ClaimedRewards = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "claimed_rewards_total",
		Help:      "Reward tokens transferred out by successful claims.",
	})

	// RejectedOps counts rejected operations by operation name.
	RejectedOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_ops_total",
		Help:      "Operations rejected by the engine.",
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(
		PurchaseCount,
		GrantedTokens,
		MintedRewards,
		ClaimedRewards,
		RejectedOps,
	)
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
