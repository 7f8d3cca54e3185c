package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(entitlementChecks) }

var entitlementChecks = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "entitlement_checks_total",
		Help: "Access evaluations by outcome reason (free/purchased/not_purchased).",
	},
	[]string{"reason"},
)

func IncEntitlementCheck(reason string) {
	entitlementChecks.WithLabelValues(norm(reason)).Inc()
}
