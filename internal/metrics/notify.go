package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fanoutDeliveryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobhunter",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Fan-out delivery attempts per channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)

	liveSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jobhunter",
			Subsystem: "notify",
			Name:      "live_subscriptions",
			Help:      "Currently open live push channels.",
		},
	)
)

// Fan-out channel and outcome labels.
const (
	ChannelRecord = "record"
	ChannelLive   = "live"
	ChannelEmail  = "email"

	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// ObserveDelivery counts one fan-out delivery attempt.
func ObserveDelivery(channel, outcome string) {
	fanoutDeliveryTotal.WithLabelValues(channel, outcome).Inc()
}

// LiveSubscriptionsInc records a newly opened live channel.
func LiveSubscriptionsInc() { liveSubscriptions.Inc() }

// LiveSubscriptionsDec records a closed live channel.
func LiveSubscriptionsDec() { liveSubscriptions.Dec() }
