package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReadingsConsumed counts readings pulled from the vitals stream.
	ReadingsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "healthmon_readings_consumed_total",
		Help: "Total number of vital readings consumed from the stream",
	})

	// ReadingsIngested counts readings accepted at ingest, by source.
	ReadingsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthmon_readings_ingested_total",
		Help: "Total number of vital readings accepted at ingest",
	}, []string{"source"}) // mqtt, http

	// ReadingsDropped counts readings dropped by the bridge queue.
	ReadingsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "healthmon_readings_dropped_total",
		Help: "Total number of readings dropped by the full bridge queue",
	})

	// AlertsSuppressed counts alerts held back by cooldown.
	AlertsSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "healthmon_alerts_suppressed_total",
		Help: "Total number of alerts suppressed by per-vital cooldown",
	})

	// AlertsEmitted counts emitted alerts by severity.
	AlertsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthmon_alerts_emitted_total",
		Help: "Total number of alerts emitted",
	}, []string{"severity"})

	// AdviceRequests counts advisor calls by outcome.
	AdviceRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthmon_advice_requests_total",
		Help: "Total number of advisor requests",
	}, []string{"status"}) // ok, error
)
