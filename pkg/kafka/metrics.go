package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Values of the result label.
const (
	resultDelivered = "delivered"
	resultFailed    = "failed"
)

var (
	eventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_events_delivered_total",
			Help: "Events handed to Kafka, by topic and delivery result",
		},
		[]string{"topic", "result"},
	)

	// In async mode this measures the enqueue, not the broker round trip.
	publishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_events_publish_duration_seconds",
			Help:    "Time spent in Producer.Publish",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"topic"},
	)
)

func countDelivery(topic string, n int, err error) {
	result := resultDelivered
	if err != nil {
		result = resultFailed
	}
	eventsDelivered.WithLabelValues(topic, result).Add(float64(n))
}
