// Package metrics exposes Prometheus instrumentation for the presence
// tracking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventbeacon"

var (
	locationUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "location_updates_total",
		Help:      "Accepted location updates, labeled by resulting presence status.",
	}, []string{"status"})

	locationRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "location_rejected_total",
		Help:      "Location updates rejected by coordinate validation.",
	})

	ingestLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "latency_seconds",
		Help:      "Latency of the location ingest pipeline.",
		Buckets:   prometheus.DefBuckets,
	})

	transitions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "presence",
		Name:      "transitions_total",
		Help:      "Geofence status transitions detected.",
	})

	broadcasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "realtime",
		Name:      "broadcasts_total",
		Help:      "Messages broadcast to rooms, labeled by message type.",
	}, []string{"type"})

	broadcastsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "realtime",
		Name:      "broadcasts_dropped_total",
		Help:      "Messages dropped because a client send buffer was full.",
	})

	roomMembers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "realtime",
		Name:      "room_members",
		Help:      "Currently connected members per event room.",
	}, []string{"event_id"})
)

// RecordLocationUpdate counts an accepted location update.
func RecordLocationUpdate(status string) {
	locationUpdates.WithLabelValues(status).Inc()
}

// RecordLocationRejected counts a validation rejection.
func RecordLocationRejected() {
	locationRejected.Inc()
}

// ObserveIngestLatency records one ingest pipeline duration in seconds.
func ObserveIngestLatency(seconds float64) {
	ingestLatency.Observe(seconds)
}

// RecordTransition counts a detected geofence transition.
func RecordTransition() {
	transitions.Inc()
}

// RecordBroadcast counts a room broadcast by message type.
func RecordBroadcast(messageType string) {
	broadcasts.WithLabelValues(messageType).Inc()
}

// RecordBroadcastDropped counts a message dropped due to backpressure.
func RecordBroadcastDropped() {
	broadcastsDropped.Inc()
}

// SetRoomMembers reports the member count of an event room.
func SetRoomMembers(eventID string, n int) {
	roomMembers.WithLabelValues(eventID).Set(float64(n))
}

// DeleteRoomMembers drops the gauge series for a closed room.
func DeleteRoomMembers(eventID string) {
	roomMembers.DeleteLabelValues(eventID)
}
